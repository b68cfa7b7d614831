package character

import (
	"fmt"

	"github.com/decker502/datableed/internal/keyframe"
	"github.com/decker502/datableed/pkg/animation"
	"github.com/decker502/datableed/pkg/config"
)

// LightingPreset 灯光预设（纯数据，构建后只读）
type LightingPreset struct {
	Name      string
	Ambient   string // 环境光颜色（十六进制）
	KeyColor  string // 主光颜色
	Intensity float64
}

// CinematicMoment 电影时刻：位置和条件门控的一次性演出
// （对白 + 灯光 + 动画 + 特效）
type CinematicMoment struct {
	Name            string
	TriggerLocation string
	Condition       string // 引用目录中的命名条件
	AnimationName   string // 引用目录中的动画
	Dialogue        string
	DurationMs      int
	LightingPreset  string // 引用目录中的灯光预设，可为空
	EffectNames     []string
}

// Catalog 单个角色的静态目录：动作轨道、动画、条件、灯光预设
// 和电影时刻。由配置构建一次，之后只读。
type Catalog struct {
	ID          string
	DisplayName string

	Tracks          map[string]*keyframe.Track
	Animations      map[string]animation.Definition
	Conditions      map[string]Condition
	LightingPresets map[string]LightingPreset

	// Moments 保持声明顺序（触发评估按序扫描，返回第一个匹配）
	Moments []CinematicMoment
}

// BuildCatalog 从角色配置构建类型化目录并做跨引用校验
//
// 校验规则：
//   - 每个动作的关键帧满足轨道不变式（时间递增、0 开头 1 结尾）
//   - 每个动画序列非空、步骤时长为正、引用的动作存在
//   - 每个电影时刻引用的动画、条件、灯光预设存在
//
// 特效/音频名称是外部协作方的不透明标识，不做校验。
func BuildCatalog(cfg *config.CharacterConfigFile) (*Catalog, error) {
	catalog := &Catalog{
		ID:              cfg.Character,
		DisplayName:     cfg.DisplayName,
		Tracks:          make(map[string]*keyframe.Track),
		Animations:      make(map[string]animation.Definition),
		Conditions:      make(map[string]Condition),
		LightingPresets: make(map[string]LightingPreset),
	}

	// 动作 → 关键帧轨道
	for name, action := range cfg.Actions {
		kfs := make([]keyframe.Keyframe, len(action.Keyframes))
		for i, kc := range action.Keyframes {
			kfs[i] = keyframe.Keyframe{
				Time: kc.Time,
				Pose: keyframe.Pose{
					Slots:   kc.Pose,
					Scale:   kc.Scale,
					Opacity: kc.Opacity,
				},
			}
		}
		track, err := keyframe.NewTrack(name, action.Easing, kfs)
		if err != nil {
			return nil, fmt.Errorf("character '%s': %w", cfg.Character, err)
		}
		catalog.Tracks[name] = track
	}

	// 动画定义
	for name, anim := range cfg.Animations {
		if len(anim.Sequence) == 0 {
			return nil, fmt.Errorf("character '%s': animation '%s' has empty sequence", cfg.Character, name)
		}
		def := animation.Definition{
			Name:        name,
			EffectNames: anim.Effects,
			AudioName:   anim.Audio,
		}
		for i, step := range anim.Sequence {
			if step.DurationMs <= 0 {
				return nil, fmt.Errorf("character '%s': animation '%s' step %d has non-positive duration", cfg.Character, name, i+1)
			}
			if _, ok := catalog.Tracks[step.Action]; !ok {
				return nil, fmt.Errorf("character '%s': animation '%s' references unknown action '%s'", cfg.Character, name, step.Action)
			}
			def.Sequence = append(def.Sequence, animation.ActionStep{
				ActionName: step.Action,
				DurationMs: step.DurationMs,
			})
			def.TotalDurationMs += step.DurationMs
		}
		catalog.Animations[name] = def
	}

	// 命名条件
	for name, cond := range cfg.Conditions {
		c := Condition{Name: name}
		for _, clause := range cond.Clauses() {
			cc := conditionClause{}
			if clause.Flag != "" {
				cc.isFlag = true
				cc.flag = clause.Flag
				cc.expect = true
				if clause.Equals != nil {
					cc.expect = *clause.Equals
				}
			} else {
				if clause.Field == "" {
					return nil, fmt.Errorf("character '%s': condition '%s' clause has neither field nor flag", cfg.Character, name)
				}
				cc.field = clause.Field
				cc.op = clause.Op
				cc.value = clause.Value
			}
			c.clauses = append(c.clauses, cc)
		}
		catalog.Conditions[name] = c
	}

	// 灯光预设
	for name, preset := range cfg.LightingPresets {
		intensity := preset.Intensity
		if intensity == 0 {
			intensity = 1.0
		}
		catalog.LightingPresets[name] = LightingPreset{
			Name:      name,
			Ambient:   preset.Ambient,
			KeyColor:  preset.KeyColor,
			Intensity: intensity,
		}
	}

	// 电影时刻（保持声明顺序）
	for _, mc := range cfg.CinematicMoments {
		if _, ok := catalog.Animations[mc.Animation]; !ok {
			return nil, fmt.Errorf("character '%s': moment '%s' references unknown animation '%s'", cfg.Character, mc.Name, mc.Animation)
		}
		if _, ok := catalog.Conditions[mc.Condition]; !ok {
			return nil, fmt.Errorf("character '%s': moment '%s' references unknown condition '%s'", cfg.Character, mc.Name, mc.Condition)
		}
		if mc.Lighting != "" {
			if _, ok := catalog.LightingPresets[mc.Lighting]; !ok {
				return nil, fmt.Errorf("character '%s': moment '%s' references unknown lighting preset '%s'", cfg.Character, mc.Name, mc.Lighting)
			}
		}
		catalog.Moments = append(catalog.Moments, CinematicMoment{
			Name:            mc.Name,
			TriggerLocation: mc.TriggerLocation,
			Condition:       mc.Condition,
			AnimationName:   mc.Animation,
			Dialogue:        mc.Dialogue,
			DurationMs:      mc.DurationMs,
			LightingPreset:  mc.Lighting,
			EffectNames:     mc.Effects,
		})
	}

	return catalog, nil
}

// Moment 按名称查找电影时刻
func (c *Catalog) Moment(name string) (CinematicMoment, bool) {
	for _, m := range c.Moments {
		if m.Name == name {
			return m, true
		}
	}
	return CinematicMoment{}, false
}
