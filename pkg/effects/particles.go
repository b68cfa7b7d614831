package effects

import (
	"image/color"
	"log"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/datableed/pkg/config"
)

// particle 单个活跃粒子
type particle struct {
	x, y     float64
	vx, vy   float64
	age      float64
	lifetime float64
	size     float64
	gravity  float64
	fadeOut  bool
	clr      color.RGBA
}

// ParticleSystem 预设驱动的粒子系统
//
// 每个命名预设描述一次爆发的发射参数（数量、颜色、扇形、速度、
// 寿命、重力）。StartEffect 按预设生成一批粒子，Update 按帧推进，
// 寿命耗尽后移除。与宿主渲染循环同步，无内部计时器。
type ParticleSystem struct {
	presets   map[string]config.EffectPresetConfig
	particles []particle
	originX   float64
	originY   float64
	rng       *rand.Rand

	dot *ebiten.Image // 1x1 白色像素，绘制时缩放并着色
}

// NewParticleSystem 创建粒子系统
//
// 参数：
//   - presets: 特效预设表（LoadEffectPresets 的产物），nil 时无可用特效
func NewParticleSystem(presets map[string]config.EffectPresetConfig) *ParticleSystem {
	if presets == nil {
		presets = map[string]config.EffectPresetConfig{}
	}
	return &ParticleSystem{
		presets: presets,
		rng:     rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetOrigin 设置后续爆发的发射原点（屏幕坐标）
func (ps *ParticleSystem) SetOrigin(x, y float64) {
	ps.originX = x
	ps.originY = y
}

// StartEffect 按命名预设发射一次粒子爆发
// 未知预设打印警告并忽略（特效缺失不应中断演出）
func (ps *ParticleSystem) StartEffect(name string) {
	preset, ok := ps.presets[name]
	if !ok {
		log.Printf("[ParticleSystem] Warning: 未知特效预设 %s，忽略", name)
		return
	}

	count := preset.ParticleCount
	if count <= 0 {
		count = 12
	}
	lifetime := preset.LifetimeSec
	if lifetime <= 0 {
		lifetime = 1.0
	}
	size := preset.Size
	if size <= 0 {
		size = 3.0
	}
	clr := parseHexColor(preset.Color)

	// 扇形中心朝上；360 度退化为全方向
	spread := preset.SpreadDeg * math.Pi / 180
	if spread <= 0 {
		spread = 2 * math.Pi
	}
	center := -math.Pi / 2

	for i := 0; i < count; i++ {
		angle := center + (ps.rng.Float64()-0.5)*spread
		speed := preset.Speed * (0.6 + 0.8*ps.rng.Float64())
		ps.particles = append(ps.particles, particle{
			x:        ps.originX,
			y:        ps.originY,
			vx:       math.Cos(angle) * speed,
			vy:       math.Sin(angle) * speed,
			lifetime: lifetime * (0.7 + 0.6*ps.rng.Float64()),
			size:     size,
			gravity:  preset.Gravity,
			fadeOut:  preset.FadeOut,
			clr:      clr,
		})
	}
}

// Update 推进所有粒子，移除寿命耗尽者
func (ps *ParticleSystem) Update(dt float64) {
	alive := ps.particles[:0]
	for i := range ps.particles {
		p := &ps.particles[i]
		p.age += dt
		if p.age >= p.lifetime {
			continue
		}
		p.vy += p.gravity * dt
		p.x += p.vx * dt
		p.y += p.vy * dt
		alive = append(alive, *p)
	}
	ps.particles = alive
}

// Draw 绘制所有活跃粒子
func (ps *ParticleSystem) Draw(screen *ebiten.Image) {
	if len(ps.particles) == 0 {
		return
	}
	if ps.dot == nil {
		ps.dot = ebiten.NewImage(1, 1)
		ps.dot.Fill(color.White)
	}

	for i := range ps.particles {
		p := &ps.particles[i]
		alpha := 1.0
		if p.fadeOut {
			alpha = 1.0 - p.age/p.lifetime
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(p.size, p.size)
		op.GeoM.Translate(p.x-p.size/2, p.y-p.size/2)
		op.ColorScale.Scale(
			float32(p.clr.R)/255,
			float32(p.clr.G)/255,
			float32(p.clr.B)/255,
			float32(alpha),
		)
		screen.DrawImage(ps.dot, op)
	}
}

// ActiveCount 返回当前活跃粒子数
func (ps *ParticleSystem) ActiveCount() int {
	return len(ps.particles)
}

// Clear 移除全部粒子
func (ps *ParticleSystem) Clear() {
	ps.particles = ps.particles[:0]
}

// parseHexColor 解析 "#rrggbb" 颜色，解析失败时退回白色
func parseHexColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	hex := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hex(s[1+2*i])
		lo, ok2 := hex(s[2+2*i])
		if !ok1 || !ok2 {
			return color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}
