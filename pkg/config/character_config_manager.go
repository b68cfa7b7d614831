package config

import (
	"fmt"
	"sync"

	"github.com/decker502/datableed/pkg/embedded"
)

// CharacterConfigManager 角色配置管理器
// 负责从目录加载和索引全部角色目录配置
type CharacterConfigManager struct {
	characters map[string]*CharacterConfigFile // 按角色 ID 索引
	order      []string                        // 加载顺序（文件名顺序）
	mu         sync.RWMutex
}

// NewCharacterConfigManager 创建角色配置管理器
//
// 参数：
//   - dirPath: 角色配置目录（如 "data/characters"），目录下每个
//     YAML 文件对应一个角色
//
// 返回：
//   - *CharacterConfigManager: 配置管理器实例
//   - error: 目录为空、读取或解析失败时返回错误
func NewCharacterConfigManager(dirPath string) (*CharacterConfigManager, error) {
	pattern := dirPath + "/*.yaml"
	files, err := embedded.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("扫描目录 %s 失败: %w", dirPath, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("目录 %s 中没有角色配置文件", dirPath)
	}

	m := &CharacterConfigManager{
		characters: make(map[string]*CharacterConfigFile),
	}

	for _, file := range files {
		data, err := embedded.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("无法读取配置文件 %s: %w", file, err)
		}
		cfg, err := LoadCharacterConfigData(data)
		if err != nil {
			return nil, fmt.Errorf("加载文件 %s 失败: %w", file, err)
		}
		if _, exists := m.characters[cfg.Character]; exists {
			return nil, fmt.Errorf("重复的角色 ID: %s", cfg.Character)
		}
		m.characters[cfg.Character] = cfg
		m.order = append(m.order, cfg.Character)
	}

	return m, nil
}

// GetCharacter 获取指定角色的配置
//
// 返回：
//   - *CharacterConfigFile: 角色配置
//   - error: 角色不存在时返回错误
func (m *CharacterConfigManager) GetCharacter(id string) (*CharacterConfigFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, exists := m.characters[id]
	if !exists {
		return nil, fmt.Errorf("角色 '%s' 不存在", id)
	}
	return cfg, nil
}

// ListCharacters 按加载顺序列出所有角色 ID
func (m *CharacterConfigManager) ListCharacters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
