package animation

import (
	"log"

	"github.com/decker502/datableed/internal/keyframe"
)

// settleDelaySeconds 连续电影时刻之间的固定间歇（秒）
// 对应前一动画结束到待播放动画开始之间刻意留出的"呼吸"时间
const settleDelaySeconds = 0.5

// Sequencer 顺序动画序列器（状态机：Idle → Playing → Idle | Playing[next]）
//
// 职责：
//   - 按严格顺序播放一个动画的各动作步骤（步骤之间不重叠）
//   - 播放开始时一次性触发特效和音频
//   - 维护单槽待播放队列：播放中收到的请求覆盖待播放槽，
//     前一个待播放请求被丢弃
//   - 步骤失败（未知动作、姿态转发 panic）被捕获并记录，
//     不中断后续步骤的调度，序列器总能回到 Idle 并排空待播放槽
//
// 所有方法只能在宿主的单一事件循环线程上调用。
type Sequencer struct {
	characterName string
	tracks        map[string]*keyframe.Track
	animations    map[string]Definition

	sink       PoseSink
	dispatcher EffectDispatcher

	state     PlaybackState
	current   *Definition
	stepIndex int
	player    *ActionPlayer

	// 延迟启动槽：待播放动画排空、以及带启动延迟的播放请求
	queuedName  string
	queuedDelay float64
}

// NewSequencer 创建动画序列器
//
// 参数：
//   - characterName: 角色名（仅用于日志）
//   - tracks: 动作名 → 关键帧轨道
//   - animations: 动画名 → 动画定义
//   - sink: 姿态接收器，可为 nil
//   - dispatcher: 特效派发器，nil 时使用 NopDispatcher
func NewSequencer(characterName string, tracks map[string]*keyframe.Track, animations map[string]Definition, sink PoseSink, dispatcher EffectDispatcher) *Sequencer {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &Sequencer{
		characterName: characterName,
		tracks:        tracks,
		animations:    animations,
		sink:          sink,
		dispatcher:    dispatcher,
	}
}

// Play 请求播放指定动画
//
// 空闲时立即开始播放（同步触发特效/音频）；播放中则写入待播放槽，
// 槽已占用时覆盖之（被覆盖的请求丢弃并记录日志）。
// 未知动画名记录警告后忽略，不是致命错误。
func (s *Sequencer) Play(name string) {
	s.PlayAfter(name, 0)
}

// PlayAfter 请求在 delaySeconds 秒后开始播放指定动画
//
// 用于灯光切换后的定格延迟等场合。播放中的行为与 Play 相同
// （延迟不进入待播放槽语义）。
func (s *Sequencer) PlayAfter(name string, delaySeconds float64) {
	if s.state.IsPlaying {
		if s.state.PendingAnimation != "" && s.state.PendingAnimation != name {
			log.Printf("[Sequencer] %s: 覆盖待播放动画 %s -> %s", s.characterName, s.state.PendingAnimation, name)
		}
		s.state.PendingAnimation = name
		return
	}

	// 空闲或间歇等待中：新请求取代已排队的动画
	if s.queuedName != "" && s.queuedName != name {
		log.Printf("[Sequencer] %s: 取消排队动画 %s，改为 %s", s.characterName, s.queuedName, name)
	}
	if delaySeconds > 0 {
		s.queuedName = name
		s.queuedDelay = delaySeconds
		return
	}
	s.queuedName = ""
	s.queuedDelay = 0
	s.begin(name)
}

// Stop 立即停止当前播放，丢弃序列剩余步骤
//
// 已触发的特效不会撤销，未到达步骤的特效不会触发。
// 待播放槽不清空：其中的动画仍会在间歇延迟后开始播放
// （保证序列器在任何回到 Idle 的路径上都排空待播放槽）。
func (s *Sequencer) Stop() {
	if !s.state.IsPlaying {
		return
	}
	log.Printf("[Sequencer] %s: 停止动画 %s（步骤 %d/%d）", s.characterName, s.state.CurrentAnimation, s.stepIndex+1, len(s.current.Sequence))
	s.finishPlayback()
}

// Advance 推进播放 deltaTime 秒，由宿主每个渲染 tick 调用一次
func (s *Sequencer) Advance(deltaTime float64) {
	// 排队/间歇延迟
	if s.queuedName != "" {
		s.queuedDelay -= deltaTime
		if s.queuedDelay <= 0 {
			name := s.queuedName
			s.queuedName = ""
			s.queuedDelay = 0
			s.begin(name)
		}
		return
	}

	if !s.state.IsPlaying {
		return
	}

	if s.player != nil {
		if !s.advancePlayer(deltaTime) {
			return
		}
		s.player = nil
	}

	s.startNextStep()
}

// State 返回播放状态快照
func (s *Sequencer) State() PlaybackState {
	return s.state
}

// begin 立即开始播放动画：触发特效/音频并进入 Playing 状态
func (s *Sequencer) begin(name string) {
	def, ok := s.animations[name]
	if !ok {
		log.Printf("[Sequencer] %s: 未知动画 %s，忽略", s.characterName, name)
		return
	}

	log.Printf("[Sequencer] %s: 开始播放动画 %s（%d 个步骤，总时长 %dms）", s.characterName, def.Name, len(def.Sequence), def.TotalDurationMs)

	for _, effect := range def.EffectNames {
		s.dispatcher.StartEffect(effect)
	}
	if def.AudioName != "" {
		s.dispatcher.PlayAudio(def.AudioName)
	}

	s.current = &def
	s.state.IsPlaying = true
	s.state.CurrentAnimation = def.Name
	s.stepIndex = -1
	s.player = nil
	s.startNextStep()
}

// startNextStep 推进到下一个动作步骤
//
// 未知动作记录警告后跳过（非致命）；序列耗尽时结束播放并
// 安排待播放槽的排空。
func (s *Sequencer) startNextStep() {
	for {
		s.stepIndex++
		if s.stepIndex >= len(s.current.Sequence) {
			log.Printf("[Sequencer] %s: 动画 %s 播放完成", s.characterName, s.state.CurrentAnimation)
			s.finishPlayback()
			return
		}

		step := s.current.Sequence[s.stepIndex]
		track, ok := s.tracks[step.ActionName]
		if !ok {
			log.Printf("[Sequencer] %s: 未知动作 %s（动画 %s 步骤 %d），跳过", s.characterName, step.ActionName, s.state.CurrentAnimation, s.stepIndex+1)
			continue
		}
		s.player = NewActionPlayer(track, step.DurationMs, s.sink)
		return
	}
}

// advancePlayer 推进当前步骤的播放器，捕获姿态转发中的 panic
//
// 返回：
//   - bool: 当前步骤是否已结束（完成或失败）
func (s *Sequencer) advancePlayer(deltaTime float64) (stepDone bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Sequencer] %s: 姿态转发失败（动画 %s 步骤 %d）: %v", s.characterName, s.state.CurrentAnimation, s.stepIndex+1, r)
			stepDone = true
		}
	}()
	return s.player.Advance(deltaTime)
}

// finishPlayback 回到 Idle，并安排待播放槽在间歇延迟后开始
func (s *Sequencer) finishPlayback() {
	s.current = nil
	s.player = nil
	s.stepIndex = 0
	s.state.IsPlaying = false
	s.state.CurrentAnimation = ""

	if s.state.PendingAnimation != "" {
		next := s.state.PendingAnimation
		s.state.PendingAnimation = ""
		s.queuedName = next
		s.queuedDelay = settleDelaySeconds
		log.Printf("[Sequencer] %s: %0.1f 秒后播放待播放动画 %s", s.characterName, settleDelaySeconds, next)
	}
}
