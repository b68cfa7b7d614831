package character

import (
	"context"
	"fmt"
	"log"

	"github.com/decker502/datableed/internal/keyframe"
	"github.com/decker502/datableed/pkg/animation"
	"github.com/decker502/datableed/pkg/pipeline"
)

// lightingSettleSeconds 灯光切换后到动画开始的定格延迟（秒）
// 纯粹是演出节奏上的停顿
const lightingSettleSeconds = 0.3

// IntegrationStage 呈现器的集成阶段
//
// 每个阶段是单向闩锁，由对应的初始化步骤设置，
// 只有 Dispose 会全部重置回 StageUninitialized。
type IntegrationStage int

const (
	StageUninitialized IntegrationStage = iota
	StageConfigLoaded
	StageModelProcessed
	StageAnimationsReady
	StageFullyIntegrated
)

// String 返回阶段名称
func (s IntegrationStage) String() string {
	switch s {
	case StageConfigLoaded:
		return "config_loaded"
	case StageModelProcessed:
		return "model_processed"
	case StageAnimationsReady:
		return "animations_ready"
	case StageFullyIntegrated:
		return "fully_integrated"
	default:
		return "uninitialized"
	}
}

// Renderer 外部渲染器接口（姿态接收 + 灯光应用）
//
// 两个方法都假定非阻塞；引擎不检查其效果。
type Renderer interface {
	// ApplyPose 应用一帧姿态（fire-and-forget）
	ApplyPose(pose keyframe.Pose)

	// ApplyLighting 应用灯光预设
	ApplyLighting(preset LightingPreset)
}

// TriggerResult 触发电影时刻的结构化结果
//
// 预期失败（未集成、未知时刻）通过 Success=false + Reason 表达，
// 不跨门面边界抛出异常。
type TriggerResult struct {
	Success bool
	Reason  string // 失败原因："not_integrated"、"unknown_moment"

	// 成功时供 UI 呈现的数据
	Dialogue    string
	DurationMs  int
	EffectNames []string
}

// 触发失败原因
const (
	ReasonNotIntegrated = "not_integrated"
	ReasonUnknownMoment = "unknown_moment"
)

// Status 呈现器状态快照（供调试和宿主 UI 查询）
type Status struct {
	Character        string
	Stage            string
	IsPlaying        bool
	CurrentAnimation string
	PendingAnimation string
	ModelProcessed   bool
	MomentCount      int
}

// Presenter 角色动画呈现门面
//
// 组合触发评估器、动画序列器和每角色静态目录，对宿主游戏循环
// 暴露 initialize / trigger / update / dispose 生命周期。
// 每个角色一个实例；实例之间完全独立，无共享可变状态。
type Presenter struct {
	catalog    *Catalog
	dispatcher animation.EffectDispatcher
	pipe       *pipeline.Pipeline

	renderer  Renderer
	evaluator *TriggerEvaluator
	sequencer *animation.Sequencer
	model     *pipeline.ModelHandle
	stage     IntegrationStage
}

// NewPresenter 创建角色呈现器
//
// 参数：
//   - catalog: 角色静态目录（BuildCatalog 的产物）
//   - dispatcher: 特效/音频派发器，nil 时不派发
//   - pipe: 资产处理管线，nil 时使用默认配置的管线
func NewPresenter(catalog *Catalog, dispatcher animation.EffectDispatcher, pipe *pipeline.Pipeline) *Presenter {
	if dispatcher == nil {
		dispatcher = animation.NopDispatcher{}
	}
	if pipe == nil {
		pipe = pipeline.New(pipeline.Options{})
	}
	return &Presenter{
		catalog:    catalog,
		dispatcher: dispatcher,
		pipe:       pipe,
		evaluator:  NewTriggerEvaluator(catalog),
		stage:      StageUninitialized,
	}
}

// Initialize 绑定外部渲染器并载入角色配置
//
// 成功后进入 StageConfigLoaded。renderer 为 nil 是配置错误，
// 对该呈现器是致命的（返回错误，不进入下一阶段）。
func (p *Presenter) Initialize(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("character '%s': renderer is nil", p.catalog.ID)
	}
	p.renderer = renderer
	p.stage = StageConfigLoaded
	log.Printf("[Presenter] %s: 配置载入完成（%d 动作，%d 动画，%d 电影时刻）",
		p.catalog.ID, len(p.catalog.Tracks), len(p.catalog.Animations), len(p.catalog.Moments))
	return nil
}

// ProcessCharacterModel 处理角色源图片（委托给模拟资产管线）
//
// 成功后进入 StageModelProcessed。必须先 Initialize。
func (p *Presenter) ProcessCharacterModel(ctx context.Context, images []pipeline.ImageInput) (*pipeline.ModelHandle, error) {
	if p.stage < StageConfigLoaded {
		return nil, fmt.Errorf("character '%s': ProcessCharacterModel requires Initialize first", p.catalog.ID)
	}

	handle, err := p.pipe.Process(ctx, p.catalog.ID, images)
	if err != nil {
		return nil, err
	}
	p.model = handle
	if p.stage < StageModelProcessed {
		p.stage = StageModelProcessed
	}
	return handle, nil
}

// FinalizeIntegration 构建动画序列器并完成场景集成
//
// 依次设置 StageAnimationsReady 和 StageFullyIntegrated。
// 必须先完成模型处理。
func (p *Presenter) FinalizeIntegration() error {
	if p.stage < StageModelProcessed {
		return fmt.Errorf("character '%s': FinalizeIntegration requires a processed model", p.catalog.ID)
	}

	p.sequencer = animation.NewSequencer(
		p.catalog.ID,
		p.catalog.Tracks,
		p.catalog.Animations,
		animation.PoseSinkFunc(p.renderer.ApplyPose),
		p.dispatcher,
	)
	p.stage = StageAnimationsReady

	// 场景接入：应用默认灯光预设（如有），然后闩锁为完全集成
	if preset, ok := p.catalog.LightingPresets["default"]; ok {
		p.renderer.ApplyLighting(preset)
	}
	p.stage = StageFullyIntegrated
	log.Printf("[Presenter] %s: 集成完成", p.catalog.ID)
	return nil
}

// ShouldTriggerCinematicMoment 评估指定位置和游戏状态下应触发的时刻
//
// 任何阶段都可调用（纯查询，无副作用）。
func (p *Presenter) ShouldTriggerCinematicMoment(location string, state GameState) (string, bool) {
	return p.evaluator.ShouldTrigger(location, state)
}

// TriggerCinematicMoment 触发命名电影时刻
//
// 要求 StageFullyIntegrated，否则返回 not_integrated 失败结果，
// 且不产生任何副作用（不调用灯光、不触碰序列器）。
// 成功时应用灯光预设、在定格延迟后开始播放动画，并返回
// 对白/时长/特效名供 UI 呈现。
func (p *Presenter) TriggerCinematicMoment(name string) TriggerResult {
	if p.stage < StageFullyIntegrated {
		return TriggerResult{Success: false, Reason: ReasonNotIntegrated}
	}

	moment, ok := p.catalog.Moment(name)
	if !ok {
		log.Printf("[Presenter] %s: 未知电影时刻 %s", p.catalog.ID, name)
		return TriggerResult{Success: false, Reason: ReasonUnknownMoment}
	}

	if moment.LightingPreset != "" {
		if preset, ok := p.catalog.LightingPresets[moment.LightingPreset]; ok {
			p.renderer.ApplyLighting(preset)
		}
	}

	p.sequencer.PlayAfter(moment.AnimationName, lightingSettleSeconds)

	log.Printf("[Presenter] %s: 触发电影时刻 %s（动画 %s，%dms）", p.catalog.ID, moment.Name, moment.AnimationName, moment.DurationMs)
	return TriggerResult{
		Success:     true,
		Dialogue:    moment.Dialogue,
		DurationMs:  moment.DurationMs,
		EffectNames: moment.EffectNames,
	}
}

// Update 推进动画播放，由宿主每个渲染 tick 调用一次
func (p *Presenter) Update(deltaTime float64) {
	if p.sequencer != nil {
		p.sequencer.Advance(deltaTime)
	}
}

// Stop 立即停止当前动画播放
func (p *Presenter) Stop() {
	if p.sequencer != nil {
		p.sequencer.Stop()
	}
}

// Dispose 停止播放并重置全部集成阶段
func (p *Presenter) Dispose() {
	if p.sequencer != nil {
		p.sequencer.Stop()
		p.sequencer = nil
	}
	p.renderer = nil
	p.model = nil
	p.stage = StageUninitialized
	log.Printf("[Presenter] %s: 已释放", p.catalog.ID)
}

// Status 返回呈现器状态快照
func (p *Presenter) Status() Status {
	st := Status{
		Character:      p.catalog.ID,
		Stage:          p.stage.String(),
		ModelProcessed: p.model != nil,
		MomentCount:    len(p.catalog.Moments),
	}
	if p.sequencer != nil {
		ps := p.sequencer.State()
		st.IsPlaying = ps.IsPlaying
		st.CurrentAnimation = ps.CurrentAnimation
		st.PendingAnimation = ps.PendingAnimation
	}
	return st
}

// AvailableCinematicMoments 按声明顺序列出全部电影时刻名称
func (p *Presenter) AvailableCinematicMoments() []string {
	names := make([]string, len(p.catalog.Moments))
	for i, m := range p.catalog.Moments {
		names[i] = m.Name
	}
	return names
}

// Stage 返回当前集成阶段
func (p *Presenter) Stage() IntegrationStage {
	return p.stage
}
