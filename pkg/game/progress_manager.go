package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/datableed/pkg/character"
)

// StoryProgress 可持久化的剧情进度
//
// Counters 存放数值型剧情字段（如 tournamentsWon、communityTrust），
// Flags 存放布尔型剧情标志（如 metMaya）。电影时刻的触发条件
// 只读取这两张表；字段名即条件配置中引用的名字。
type StoryProgress struct {
	Counters map[string]float64 `yaml:"counters"`
	Flags    map[string]bool    `yaml:"flags"`

	// SeenMoments 已演出过的电影时刻（"角色/时刻名"），用于一次性门控
	SeenMoments map[string]bool `yaml:"seenMoments"`

	// CurrentLocation 玩家当前所在场景位置
	CurrentLocation string `yaml:"currentLocation"`
}

// newStoryProgress 返回空白进度
func newStoryProgress() *StoryProgress {
	return &StoryProgress{
		Counters:    make(map[string]float64),
		Flags:       make(map[string]bool),
		SeenMoments: make(map[string]bool),
	}
}

// ProgressManager 剧情进度管理器
// 职责：
//   - 维护触发条件读取的剧情字段和标志
//   - 记录已演出的电影时刻，实现一次性触发
//   - 通过 gdata 持久化（nil 时降级为仅内存）
type ProgressManager struct {
	gdataManager *gdata.Manager
	progress     *StoryProgress
}

// 存储路径常量
const (
	progressObject   = "progress"
	progressProperty = "story"
)

// NewProgressManager 创建进度管理器
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存进度）
func NewProgressManager(gdataManager *gdata.Manager) *ProgressManager {
	pm := &ProgressManager{
		gdataManager: gdataManager,
		progress:     newStoryProgress(),
	}

	if err := pm.Load(); err != nil {
		log.Printf("[ProgressManager] Warning: Failed to load progress: %v (starting fresh)", err)
	}

	return pm
}

// Load 从 gdata 加载进度，不存在时保持空白进度
func (pm *ProgressManager) Load() error {
	if pm.gdataManager == nil {
		return nil
	}
	if !pm.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	loaded := newStoryProgress()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	// 反序列化可能留下 nil map
	if loaded.Counters == nil {
		loaded.Counters = make(map[string]float64)
	}
	if loaded.Flags == nil {
		loaded.Flags = make(map[string]bool)
	}
	if loaded.SeenMoments == nil {
		loaded.SeenMoments = make(map[string]bool)
	}

	pm.progress = loaded
	log.Printf("[ProgressManager] Progress loaded (%d counters, %d flags, %d seen moments)",
		len(loaded.Counters), len(loaded.Flags), len(loaded.SeenMoments))
	return nil
}

// Save 保存进度到 gdata，降级模式下不报错
func (pm *ProgressManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(pm.progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := pm.gdataManager.SaveObjectProp(progressObject, progressProperty, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// SetCounter 设置数值型剧情字段
func (pm *ProgressManager) SetCounter(name string, value float64) {
	pm.progress.Counters[name] = value
}

// AddCounter 增加数值型剧情字段，返回新值
func (pm *ProgressManager) AddCounter(name string, delta float64) float64 {
	pm.progress.Counters[name] += delta
	return pm.progress.Counters[name]
}

// Counter 读取数值型剧情字段，缺失时返回 0
func (pm *ProgressManager) Counter(name string) float64 {
	return pm.progress.Counters[name]
}

// SetFlag 设置布尔型剧情标志
func (pm *ProgressManager) SetFlag(name string, value bool) {
	pm.progress.Flags[name] = value
}

// Flag 读取布尔型剧情标志，缺失时返回 false
func (pm *ProgressManager) Flag(name string) bool {
	return pm.progress.Flags[name]
}

// SetLocation 记录玩家当前位置
func (pm *ProgressManager) SetLocation(location string) {
	pm.progress.CurrentLocation = location
}

// Location 返回玩家当前位置
func (pm *ProgressManager) Location() string {
	return pm.progress.CurrentLocation
}

// momentKey 组合角色和时刻名作为唯一键
func momentKey(characterID, moment string) string {
	return characterID + "/" + moment
}

// MarkMomentSeen 记录电影时刻已演出
func (pm *ProgressManager) MarkMomentSeen(characterID, moment string) {
	pm.progress.SeenMoments[momentKey(characterID, moment)] = true
}

// HasSeenMoment 查询电影时刻是否已演出过
func (pm *ProgressManager) HasSeenMoment(characterID, moment string) bool {
	return pm.progress.SeenMoments[momentKey(characterID, moment)]
}

// Snapshot 导出触发评估用的游戏状态视图
//
// 返回的 map 是副本；评估期间修改进度不影响已导出的快照。
func (pm *ProgressManager) Snapshot() character.GameState {
	numbers := make(map[string]float64, len(pm.progress.Counters))
	for k, v := range pm.progress.Counters {
		numbers[k] = v
	}
	flags := make(map[string]bool, len(pm.progress.Flags))
	for k, v := range pm.progress.Flags {
		flags[k] = v
	}
	return character.GameState{Numbers: numbers, Flags: flags}
}

// Reset 清空全部进度（仅内存，需 Save 持久化）
func (pm *ProgressManager) Reset() {
	pm.progress = newStoryProgress()
	log.Printf("[ProgressManager] Progress reset")
}
