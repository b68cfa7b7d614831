package config

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"
)

// CharacterConfigFile 定义单个角色目录配置文件的结构
//
// 每个角色（Eli、Maya、Stanley）一个 YAML 文件，包含该角色的
// 动作关键帧轨道、动画序列、电影时刻、灯光预设和触发条件。
// 三个角色共享同一套引擎，仅数据不同。
type CharacterConfigFile struct {
	Version     string `yaml:"version"`
	Character   string `yaml:"character"`    // 角色 ID（如 "eli"）
	DisplayName string `yaml:"display_name"` // 显示名称

	// LightingPresets 灯光预设（名称 → 预设参数）
	LightingPresets map[string]LightingPresetConfig `yaml:"lighting_presets"`

	// Actions 动作定义（动作名 → 关键帧轨道配置）
	Actions map[string]ActionConfig `yaml:"actions"`

	// Animations 动画定义（动画名 → 动作序列配置）
	Animations map[string]AnimationConfig `yaml:"animations"`

	// Conditions 命名触发条件（条件名 → 谓词配置）
	Conditions map[string]ConditionConfig `yaml:"conditions"`

	// CinematicMoments 电影时刻目录
	// 注意：声明顺序即扫描顺序（触发评估返回第一个匹配项）
	CinematicMoments []CinematicMomentConfig `yaml:"cinematic_moments"`
}

// LightingPresetConfig 灯光预设配置
type LightingPresetConfig struct {
	Ambient   string  `yaml:"ambient"`   // 环境光颜色（十六进制，如 "#1a1a2e"）
	KeyColor  string  `yaml:"key_color"` // 主光颜色
	Intensity float64 `yaml:"intensity"` // 主光强度（1.0 = 标准）
}

// KeyframeConfig 单个关键帧配置
type KeyframeConfig struct {
	Time float64 `yaml:"time"` // 归一化时间 [0,1]

	// Pose 槽位 → 符号值（如 arms: victory_v）
	Pose map[string]string `yaml:"pose"`

	// Scale 可选的缩放数值通道（nil = 该帧不设缩放）
	Scale *float64 `yaml:"scale,omitempty"`

	// Opacity 可选的不透明度数值通道（nil = 该帧不设不透明度）
	Opacity *float64 `yaml:"opacity,omitempty"`
}

// ActionConfig 动作（关键帧轨道）配置
type ActionConfig struct {
	Easing    string           `yaml:"easing"` // 缓动曲线名，未知名称回退为 linear
	Keyframes []KeyframeConfig `yaml:"keyframes"`
}

// StepConfig 动画序列中的单个步骤配置
type StepConfig struct {
	Action     string `yaml:"action"`
	DurationMs int    `yaml:"duration_ms"`
}

// AnimationConfig 动画（动作序列）配置
type AnimationConfig struct {
	Sequence []StepConfig `yaml:"sequence"`
	Effects  []string     `yaml:"effects"` // 动画开始时触发的特效
	Audio    string       `yaml:"audio"`   // 可选音频
}

// ConditionClauseConfig 条件子句：数值比较或布尔标志检查
//
// 二选一：
//   - 数值：field + op (gte/gt/lte/lt/eq) + value
//   - 标志：flag + equals
type ConditionClauseConfig struct {
	Field string  `yaml:"field,omitempty"`
	Op    string  `yaml:"op,omitempty"`
	Value float64 `yaml:"value,omitempty"`

	Flag   string `yaml:"flag,omitempty"`
	Equals *bool  `yaml:"equals,omitempty"`
}

// ConditionConfig 命名条件配置
//
// 支持单子句内联写法（直接写 field/op/value）或 all_of 列表
// （全部子句为真时条件为真）。
type ConditionConfig struct {
	ConditionClauseConfig `yaml:",inline"`

	AllOf []ConditionClauseConfig `yaml:"all_of,omitempty"`
}

// Clauses 返回归一化的子句列表
func (c ConditionConfig) Clauses() []ConditionClauseConfig {
	if len(c.AllOf) > 0 {
		return c.AllOf
	}
	return []ConditionClauseConfig{c.ConditionClauseConfig}
}

// CinematicMomentConfig 电影时刻配置
type CinematicMomentConfig struct {
	Name            string   `yaml:"name"`
	TriggerLocation string   `yaml:"trigger_location"`
	Condition       string   `yaml:"condition"`
	Animation       string   `yaml:"animation"`
	Dialogue        string   `yaml:"dialogue"`
	DurationMs      int      `yaml:"duration_ms"`
	Lighting        string   `yaml:"lighting"`
	Effects         []string `yaml:"effects"`
}

// LoadCharacterConfigData 从 YAML 字节解析角色配置
//
// 只做结构解析和基本完整性检查；跨引用校验（动画引用的动作、
// 时刻引用的动画/灯光/条件是否存在）由 character.BuildCatalog 完成。
func LoadCharacterConfigData(data []byte) (*CharacterConfigFile, error) {
	cfg := &CharacterConfigFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse character config: %w", err)
	}

	if cfg.Character == "" {
		return nil, fmt.Errorf("character config missing 'character' field")
	}
	if cfg.Version == "" {
		log.Printf("[CharacterConfig] Warning: config for '%s' has no version field", cfg.Character)
	}
	for i, moment := range cfg.CinematicMoments {
		if moment.Name == "" {
			return nil, fmt.Errorf("character '%s': cinematic moment #%d missing 'name'", cfg.Character, i)
		}
	}

	return cfg, nil
}
