package animation

import (
	"github.com/decker502/datableed/internal/easing"
	"github.com/decker502/datableed/internal/keyframe"
)

// ActionPlayer 播放单个动作（一条关键帧轨道）
//
// 播放器由宿主调度器通过 Advance(deltaTime) 驱动：每个 tick 计算
// rawProgress = min(elapsed/duration, 1)，经轨道的缓动曲线映射后
// 采样轨道，并将姿态转发给 PoseSink。
//
// 终止保证：rawProgress 到达 1 的那个 tick 仍会完成最后一次采样
// 并转发（即使轨道时长为 0，也至少转发一次终止姿态）。
type ActionPlayer struct {
	track    *keyframe.Track
	duration float64 // 播放时长（秒）
	elapsed  float64 // 已播放时间（秒）
	done     bool
	sink     PoseSink
}

// NewActionPlayer 创建单动作播放器
//
// 参数：
//   - track: 要播放的关键帧轨道
//   - durationMs: 播放时长（毫秒）；非正值视为 0，首次 Advance 即完成
//   - sink: 姿态接收器，可为 nil（仅推进时间，不转发姿态）
func NewActionPlayer(track *keyframe.Track, durationMs int, sink PoseSink) *ActionPlayer {
	return &ActionPlayer{
		track:    track,
		duration: float64(durationMs) / 1000.0,
		sink:     sink,
	}
}

// Advance 推进播放 deltaTime 秒，采样一次姿态并转发
//
// 返回：
//   - bool: 本次推进后动作是否已完成
//
// 完成后的再次调用是空操作，直接返回 true。
func (p *ActionPlayer) Advance(deltaTime float64) bool {
	if p.done {
		return true
	}

	p.elapsed += deltaTime

	raw := 1.0
	if p.duration > 0 {
		raw = p.elapsed / p.duration
		if raw > 1 {
			raw = 1
		}
	}

	progress := easing.Ease(p.track.Easing, raw)
	pose := p.track.Sample(progress)
	if p.sink != nil {
		p.sink.ApplyPose(pose)
	}

	// 先完成终止采样，再报告完成
	if raw >= 1 {
		p.done = true
	}
	return p.done
}

// Done 返回动作是否已播放完成
func (p *ActionPlayer) Done() bool {
	return p.done
}
