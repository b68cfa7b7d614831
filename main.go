// Data Bleed 角色演出展示入口
//
// 加载三个角色（Eli、Maya、Stanley）的目录，走完模型处理与场景
// 集成流程，然后进入交互循环：按键修改剧情状态，回车评估并触发
// 当前位置的电影时刻。
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/datableed/internal/keyframe"
	"github.com/decker502/datableed/pkg/character"
	"github.com/decker502/datableed/pkg/config"
	"github.com/decker502/datableed/pkg/effects"
	"github.com/decker502/datableed/pkg/embedded"
	"github.com/decker502/datableed/pkg/game"
	"github.com/decker502/datableed/pkg/pipeline"
)

const (
	screenWidth  = 960
	screenHeight = 600

	// 固定逻辑帧步长（ebiten 默认 60 TPS）
	tickSeconds = 1.0 / 60.0
)

// characterHome 每个角色绑定的主场景位置
var characterHome = map[string]string{
	"eli":     "area-2-tournament-arena",
	"maya":    "area-1-community-garden",
	"stanley": "area-4-old-archive",
}

// stageRenderer 展示用渲染器：记录最新姿态和灯光，绘制为文本面板
type stageRenderer struct {
	pose     keyframe.Pose
	lighting character.LightingPreset
	hasPose  bool
}

func (r *stageRenderer) ApplyPose(pose keyframe.Pose) {
	r.pose = pose
	r.hasPose = true
}

func (r *stageRenderer) ApplyLighting(preset character.LightingPreset) {
	r.lighting = preset
}

// Game 展示程序主循环
type Game struct {
	presenters map[string]*character.Presenter
	renderers  map[string]*stageRenderer
	order      []string
	selected   int

	progress  *game.ProgressManager
	particles *effects.ParticleSystem

	dialogue    string
	dialogueTTL float64
	statusLine  string
	statusTTL   float64
}

func (g *Game) current() (*character.Presenter, *stageRenderer, string) {
	id := g.order[g.selected]
	return g.presenters[id], g.renderers[id], id
}

// Update 处理输入并推进所有呈现器
func (g *Game) Update() error {
	g.handleInput()

	for _, p := range g.presenters {
		p.Update(tickSeconds)
	}
	g.particles.Update(tickSeconds)

	if g.dialogueTTL > 0 {
		g.dialogueTTL -= tickSeconds
		if g.dialogueTTL <= 0 {
			g.dialogue = ""
		}
	}
	if g.statusTTL > 0 {
		g.statusTTL -= tickSeconds
		if g.statusTTL <= 0 {
			g.statusLine = ""
		}
	}
	return nil
}

func (g *Game) handleInput() {
	// 角色切换
	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3} {
		if inpututil.IsKeyJustPressed(key) && i < len(g.order) {
			g.selected = i
			g.progress.SetLocation(characterHome[g.order[i]])
		}
	}

	// 剧情状态按键
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		v := g.progress.AddCounter("tournamentsWon", 1)
		g.setStatus(fmt.Sprintf("tournamentsWon = %.0f", v))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v := g.progress.AddCounter("communityTrust", 25)
		g.setStatus(fmt.Sprintf("communityTrust = %.0f", v))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.progress.SetFlag("metMaya", true)
		g.setStatus("metMaya = true")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.progress.SetFlag("gardenRestored", true)
		g.setStatus("gardenRestored = true")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		g.progress.SetFlag("foundArchiveKey", true)
		g.setStatus("foundArchiveKey = true")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.progress.SetFlag("sawDataBleed", true)
		g.setStatus("sawDataBleed = true")
	}

	// 触发评估
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.tryTrigger()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		p, _, id := g.current()
		p.Stop()
		g.setStatus(fmt.Sprintf("%s: stopped", id))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if err := g.progress.Save(); err != nil {
			g.setStatus(fmt.Sprintf("save failed: %v", err))
		} else {
			g.setStatus("progress saved")
		}
	}
}

// tryTrigger 在当前角色的位置评估并触发电影时刻（一次性门控）
func (g *Game) tryTrigger() {
	p, _, id := g.current()
	location := characterHome[id]
	state := g.progress.Snapshot()

	moment, ok := p.ShouldTriggerCinematicMoment(location, state)
	if !ok {
		g.setStatus(fmt.Sprintf("%s: no moment triggers at %s", id, location))
		return
	}
	if g.progress.HasSeenMoment(id, moment) {
		g.setStatus(fmt.Sprintf("%s: %s already played", id, moment))
		return
	}

	g.particles.SetOrigin(screenWidth/2, screenHeight/2-60)
	result := p.TriggerCinematicMoment(moment)
	if !result.Success {
		g.setStatus(fmt.Sprintf("%s: trigger failed (%s)", id, result.Reason))
		return
	}

	g.progress.MarkMomentSeen(id, moment)
	g.dialogue = result.Dialogue
	g.dialogueTTL = float64(result.DurationMs) / 1000
	g.setStatus(fmt.Sprintf("%s: playing %s", id, moment))
}

func (g *Game) setStatus(line string) {
	g.statusLine = line
	g.statusTTL = 3
}

// Draw 绘制舞台背景、姿态面板、粒子和 HUD
func (g *Game) Draw(screen *ebiten.Image) {
	_, r, id := g.current()

	// 背景用当前灯光预设的环境色
	bg := color.RGBA{R: 16, G: 16, B: 24, A: 255}
	if r.lighting.Ambient != "" {
		bg = ambientColor(r.lighting.Ambient)
	}
	screen.Fill(bg)

	g.particles.Draw(screen)

	// 角色与姿态面板
	st := g.presenters[id].Status()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[%s] stage=%s playing=%v anim=%s",
		st.Character, st.Stage, st.IsPlaying, st.CurrentAnimation), 10, 10)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("location: %s", characterHome[id]), 10, 26)

	if r.hasPose {
		y := 58
		ebitenutil.DebugPrintAt(screen, "pose:", 10, y)
		slots := make([]string, 0, len(r.pose.Slots))
		for slot := range r.pose.Slots {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			y += 16
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  %s: %s", slot, r.pose.Slots[slot]), 10, y)
		}
		if r.pose.Scale != nil {
			y += 16
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  scale: %.3f", *r.pose.Scale), 10, y)
		}
		if r.pose.Opacity != nil {
			y += 16
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  opacity: %.3f", *r.pose.Opacity), 10, y)
		}
	}

	if g.dialogue != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %q", g.presenters[id].Status().Character, g.dialogue),
			20, screenHeight-80)
	}
	if g.statusLine != "" {
		ebitenutil.DebugPrintAt(screen, g.statusLine, 20, screenHeight-56)
	}
	ebitenutil.DebugPrintAt(screen,
		"1/2/3 character  T tournament  G trust  M/R/K/B flags  Enter trigger  S stop  P save",
		20, screenHeight-24)
}

// Layout 返回逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// ambientColor 解析十六进制环境色，失败时返回深色背景
func ambientColor(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 16, G: 16, B: 24, A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// placeholderCaptures 生成展示用的占位捕捉图片
func placeholderCaptures(n int) []pipeline.ImageInput {
	inputs := make([]pipeline.ImageInput, 0, n)
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 512, 512))
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			log.Printf("[Main] Warning: 占位图片生成失败: %v", err)
			continue
		}
		inputs = append(inputs, pipeline.ImageInput{
			Name: fmt.Sprintf("capture_%02d.png", i),
			Data: buf.Bytes(),
		})
	}
	return inputs
}

func main() {
	// 初始化嵌入资源，必须最先执行
	embedded.Init(dataFS)

	// 跨平台持久化存储（失败时降级为仅内存）
	gdataManager, err := gdata.Open(gdata.Config{AppName: "datableed"})
	if err != nil {
		log.Printf("[Main] Warning: gdata 初始化失败: %v（进度将不持久化）", err)
		gdataManager = nil
	}

	settings, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		log.Printf("[Main] Warning: 设置加载失败: %v", err)
	}
	progress := game.NewProgressManager(gdataManager)

	// 角色目录
	configManager, err := config.NewCharacterConfigManager("data/characters")
	if err != nil {
		log.Fatalf("[Main] 角色配置加载失败: %v", err)
	}

	// 特效与音频
	presets, err := config.LoadEffectPresets("data/effects/presets.yaml")
	if err != nil {
		log.Fatalf("[Main] 特效预设加载失败: %v", err)
	}
	particles := effects.NewParticleSystem(presets.Presets)
	audioManager := effects.NewAudioManager(nil, settings, "data/audio")
	dispatcher := &effects.Dispatcher{Particles: particles, Audio: audioManager}

	// 为每个角色构建目录、处理模型并完成集成
	pipe := pipeline.New(pipeline.Options{StageDelay: 150 * time.Millisecond})
	gameLoop := &Game{
		presenters: make(map[string]*character.Presenter),
		renderers:  make(map[string]*stageRenderer),
		progress:   progress,
		particles:  particles,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range configManager.ListCharacters() {
		cfg, err := configManager.GetCharacter(id)
		if err != nil {
			log.Fatalf("[Main] 角色 %s 读取失败: %v", id, err)
		}
		catalog, err := character.BuildCatalog(cfg)
		if err != nil {
			log.Fatalf("[Main] 角色 %s 目录构建失败: %v", id, err)
		}

		presenter := character.NewPresenter(catalog, dispatcher, pipe)
		renderer := &stageRenderer{}
		if err := presenter.Initialize(renderer); err != nil {
			log.Fatalf("[Main] 角色 %s 初始化失败: %v", id, err)
		}
		if _, err := presenter.ProcessCharacterModel(ctx, placeholderCaptures(4)); err != nil {
			log.Fatalf("[Main] 角色 %s 模型处理失败: %v", id, err)
		}
		if err := presenter.FinalizeIntegration(); err != nil {
			log.Fatalf("[Main] 角色 %s 集成失败: %v", id, err)
		}

		gameLoop.presenters[id] = presenter
		gameLoop.renderers[id] = renderer
		gameLoop.order = append(gameLoop.order, id)
	}
	if len(gameLoop.order) == 0 {
		log.Fatal("[Main] 没有可用角色")
	}
	progress.SetLocation(characterHome[gameLoop.order[0]])

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Data Bleed - Character Stage")
	if settings != nil && settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(gameLoop); err != nil {
		log.Fatal(err)
	}
}
