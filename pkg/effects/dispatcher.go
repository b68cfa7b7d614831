package effects

// Dispatcher 把粒子系统和音频管理器组合成动画引擎的特效派发器
//
// 实现 animation.EffectDispatcher。任一协作方为 nil 时对应派发静默跳过，
// 便于无音频设备的环境（如测试和无头运行）。
type Dispatcher struct {
	Particles *ParticleSystem
	Audio     *AudioManager
}

// StartEffect 派发命名粒子特效
func (d *Dispatcher) StartEffect(name string) {
	if d.Particles != nil {
		d.Particles.StartEffect(name)
	}
}

// PlayAudio 派发命名音效
func (d *Dispatcher) PlayAudio(name string) {
	if d.Audio != nil {
		d.Audio.PlaySound(name)
	}
}
