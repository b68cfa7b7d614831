// Package animation 实现角色动画播放引擎：
// 单动作播放器（ActionPlayer）、顺序动画序列器（Sequencer）
// 以及特效/音频派发接口（EffectDispatcher）。
//
// 引擎采用显式的 Advance(deltaTime) 推进模型，由宿主的渲染循环
// （如 ebiten 的 Update）每帧调用一次，不绑定任何具体的帧泵机制。
package animation

import "github.com/decker502/datableed/internal/keyframe"

// ActionStep 动画序列中的单个动作步骤
type ActionStep struct {
	// ActionName 动作名称，对应角色目录中的一个关键帧轨道
	ActionName string

	// DurationMs 该动作的播放时长（毫秒），必须大于 0
	DurationMs int
}

// Definition 一个完整动画的定义（纯数据，构建后只读）
//
// 一个动画由若干按序播放的动作步骤组成，并关联一组特效和
// 可选的音频。例如 "victory_pose" = 抬臂 + 保持胜利姿势。
type Definition struct {
	// Name 动画名称（如 "victory_pose"）
	Name string

	// Sequence 按序播放的动作步骤，严格顺序执行，不重叠
	Sequence []ActionStep

	// TotalDurationMs 动画总时长（毫秒）
	TotalDurationMs int

	// EffectNames 动画开始时一次性触发的特效名称列表
	EffectNames []string

	// AudioName 动画开始时播放的音频名称，空字符串表示无音频
	AudioName string
}

// PlaybackState 序列器的播放状态快照
//
// 状态只由序列器自身的方法修改，且只在单一事件循环线程上调用，
// 不需要加锁。
type PlaybackState struct {
	// IsPlaying 是否正在播放动画
	IsPlaying bool

	// CurrentAnimation 当前播放的动画名称，空字符串表示无
	CurrentAnimation string

	// PendingAnimation 待播放槽（仅一个），播放中收到的新请求
	// 存放于此；再次收到请求时会覆盖（后到者保留）
	PendingAnimation string
}

// PoseSink 渲染器姿态接收接口
//
// 播放器每个 tick 采样一次姿态并转发给 sink（fire-and-forget）。
// 引擎不关心渲染器如何解释姿态。
type PoseSink interface {
	ApplyPose(pose keyframe.Pose)
}

// PoseSinkFunc 将普通函数适配为 PoseSink
type PoseSinkFunc func(pose keyframe.Pose)

// ApplyPose 实现 PoseSink 接口
func (f PoseSinkFunc) ApplyPose(pose keyframe.Pose) { f(pose) }

// EffectDispatcher 特效/音频派发接口
//
// 两个方法都是 fire-and-forget，没有返回值约定；
// 派发失败由具体实现自行记录。
type EffectDispatcher interface {
	// StartEffect 触发命名特效（如粒子爆发）
	StartEffect(name string)

	// PlayAudio 播放命名音频
	PlayAudio(name string)
}

// NopDispatcher 空派发器，用于未接入特效系统的场合
type NopDispatcher struct{}

// StartEffect 实现 EffectDispatcher 接口（空操作）
func (NopDispatcher) StartEffect(name string) {}

// PlayAudio 实现 EffectDispatcher 接口（空操作）
func (NopDispatcher) PlayAudio(name string) {}
