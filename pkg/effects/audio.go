package effects

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"

	"github.com/decker502/datableed/pkg/embedded"
)

const defaultSampleRate = 44100

// AudioSettings 音频开关与音量来源（通常由设置管理器实现）
type AudioSettings interface {
	SoundEnabled() bool
	SoundVolume() float64
}

// AudioManager 角色音频管理器
// 职责：
//   - 按音频名播放动画附带的一次性音效
//   - 从嵌入资源加载并缓存播放器
//   - 与设置联动（开关、音量）
//
// 音频名到文件路径的映射约定：data/audio/<name>.ogg（或 .mp3）。
// 文件缺失只打印警告；演出不因音频缺失而中断。
type AudioManager struct {
	context  *audio.Context
	settings AudioSettings
	baseDir  string
	players  map[string]*audio.Player
	missing  map[string]bool // 已报告缺失的音频名，避免刷屏
}

// NewAudioManager 创建音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，nil 时创建默认采样率的新上下文
//   - settings: 设置来源，nil 时始终启用、音量 0.8
//   - baseDir: 音频文件目录（如 "data/audio"）
func NewAudioManager(ctx *audio.Context, settings AudioSettings, baseDir string) *AudioManager {
	if ctx == nil {
		ctx = audio.NewContext(defaultSampleRate)
	}
	return &AudioManager{
		context:  ctx,
		settings: settings,
		baseDir:  baseDir,
		players:  make(map[string]*audio.Player),
		missing:  make(map[string]bool),
	}
}

// PlaySound 按音频名播放一次性音效
//
// 返回是否实际开始播放（禁用或缺失时为 false）。
func (am *AudioManager) PlaySound(name string) bool {
	if am.settings != nil && !am.settings.SoundEnabled() {
		return false
	}

	player := am.getPlayer(name)
	if player == nil {
		return false
	}

	volume := 0.8
	if am.settings != nil {
		volume = am.settings.SoundVolume()
	}
	player.SetVolume(volume)

	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: 音效 %s 重绕失败: %v", name, err)
	}
	player.Play()
	return true
}

// getPlayer 获取或加载音效播放器
func (am *AudioManager) getPlayer(name string) *audio.Player {
	if player, exists := am.players[name]; exists {
		return player
	}
	if am.missing[name] {
		return nil
	}

	for _, ext := range []string{".ogg", ".mp3"} {
		path := filepath.ToSlash(filepath.Join(am.baseDir, name+ext))
		if !embedded.Exists(path) {
			continue
		}
		player, err := am.loadPlayer(path)
		if err != nil {
			log.Printf("[AudioManager] Warning: 音效 %s 加载失败: %v", name, err)
			break
		}
		am.players[name] = player
		return player
	}

	am.missing[name] = true
	log.Printf("[AudioManager] Warning: 音效未找到: %s", name)
	return nil
}

// loadPlayer 从嵌入资源解码并创建播放器（一次性播放，不循环）
func (am *AudioManager) loadPlayer(path string) (*audio.Player, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio %s: %w", path, err)
	}
	reader := bytes.NewReader(data)

	var stream io.ReadSeeker
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		stream, err = vorbis.DecodeWithoutResampling(reader)
	case ".mp3":
		stream, err = mp3.DecodeWithoutResampling(reader)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio %s: %w", path, err)
	}

	player, err := am.context.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", path, err)
	}
	return player, nil
}

// Preload 预加载一组音效，避免首次播放时的解码延迟
func (am *AudioManager) Preload(names []string) {
	loaded := 0
	for _, name := range names {
		if am.getPlayer(name) != nil {
			loaded++
		}
	}
	log.Printf("[AudioManager] 预加载 %d/%d 音效", loaded, len(names))
}
