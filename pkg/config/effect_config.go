package config

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/decker502/datableed/pkg/embedded"
)

// EffectPresetsFile 定义特效预设配置文件结构
//
// 配置文件路径：data/effects/presets.yaml
// 每个预设描述一种命名粒子特效的发射参数。
type EffectPresetsFile struct {
	Version string                        `yaml:"version"`
	Presets map[string]EffectPresetConfig `yaml:"presets"`
}

// EffectPresetConfig 单个粒子特效预设
type EffectPresetConfig struct {
	ParticleCount int     `yaml:"particle_count"` // 一次爆发的粒子数
	Color         string  `yaml:"color"`          // 粒子颜色（十六进制）
	SpreadDeg     float64 `yaml:"spread_deg"`     // 发射扇形角度（度），360 = 全方向
	Speed         float64 `yaml:"speed"`          // 初速度（单位/秒）
	LifetimeSec   float64 `yaml:"lifetime_sec"`   // 粒子寿命（秒）
	Gravity       float64 `yaml:"gravity"`        // 重力加速度（单位/秒²）
	Size          float64 `yaml:"size"`           // 粒子尺寸
	FadeOut       bool    `yaml:"fade_out"`       // 寿命末期是否淡出
}

// LoadEffectPresetsData 从 YAML 字节解析特效预设
func LoadEffectPresetsData(data []byte) (*EffectPresetsFile, error) {
	cfg := &EffectPresetsFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse effect presets: %w", err)
	}
	if len(cfg.Presets) == 0 {
		log.Printf("[EffectConfig] Warning: effect presets file has no presets defined")
	}
	return cfg, nil
}

// LoadEffectPresets 从嵌入文件加载特效预设
//
// 参数：
//   - path: 配置文件路径（如 "data/effects/presets.yaml"）
func LoadEffectPresets(path string) (*EffectPresetsFile, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取特效预设文件 %s: %w", path, err)
	}
	return LoadEffectPresetsData(data)
}
