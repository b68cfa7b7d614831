// Package pipeline 实现模拟的 3D 资产处理管线
//
// NeRF / Gaussian-Splatting 处理完全是模拟的：各阶段只有固定
// 延迟和预制的结果元数据，没有真实的神经渲染算法。本包保留
// 分阶段的流程骨架，图片校验基于可度量的图片元数据，结果确定。
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	// 注册标准图片解码器
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// 模拟阶段名称（仅用于日志和进度报告）
const (
	stageCaptureAlignment = "capture_alignment"
	stageSplatTraining    = "splat_training"
	stageMeshExtraction   = "mesh_extraction"
)

// 图片校验阈值
const (
	minImageDimension = 256  // 低于此尺寸的图片产生警告
	maxAspectRatio    = 3.0  // 宽高比超过此值产生警告
	minValidImages    = 1    // 至少需要一张可解码图片
)

// Options 管线配置
type Options struct {
	// StageDelay 每个模拟阶段的固定延迟；0 表示不延迟（测试用）
	StageDelay time.Duration

	// MaxParallel 图片分析的最大并发数；0 表示默认 4
	MaxParallel int

	// PreviewWidths 各 LOD 级别的预览图宽度；nil 使用默认三级
	PreviewWidths []int
}

// ImageInput 一张待处理的源图片
type ImageInput struct {
	Name string
	Data []byte
}

// ImageReport 单张图片的确定性分析结果
type ImageReport struct {
	Name     string
	Width    int
	Height   int
	Valid    bool     // 是否可解码
	Warnings []string // 尺寸/比例警告（非致命）
}

// LODLevel 一个细节级别的导出元数据
type LODLevel struct {
	Level         int
	VertexCount   int
	PreviewWidth  int
	PreviewHeight int
	Preview       *image.RGBA // 缩放后的预览图；无可解码图片时为 nil
	TargetUse     string      // 预期用途（如 "hero"、"mid"、"billboard"）
}

// ModelHandle 处理完成的角色模型句柄
//
// 对动画引擎而言这是不透明数据：门面只检查非空，
// 从不解释其内部结构。
type ModelHandle struct {
	Character    string
	SourceImages int
	ValidImages  int
	VertexCount  int
	SplatCount   int
	LODs         []LODLevel
	Reports      []ImageReport
	ProcessedAt  time.Time
}

// Pipeline 模拟资产处理管线
type Pipeline struct {
	opts Options
}

// New 创建管线
func New(opts Options) *Pipeline {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}
	if len(opts.PreviewWidths) == 0 {
		opts.PreviewWidths = []int{512, 128, 32}
	}
	return &Pipeline{opts: opts}
}

// Process 处理角色源图片，产出模型句柄
//
// 阶段：图片分析（并发）→ 对齐模拟 → splat 训练模拟 → 网格提取模拟。
// 模拟阶段只消耗固定延迟；结果元数据由图片数量确定性推导。
// ctx 取消会中止尚未开始的阶段并返回 ctx 错误。
func (p *Pipeline) Process(ctx context.Context, character string, images []ImageInput) (*ModelHandle, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("character '%s': no source images provided", character)
	}

	log.Printf("[Pipeline] %s: 分析 %d 张源图片", character, len(images))
	reports, err := p.analyzeImages(ctx, images)
	if err != nil {
		return nil, err
	}

	valid := 0
	var firstValid *image.Image
	for i := range reports {
		if reports[i].Valid {
			valid++
			if firstValid == nil {
				if img := decodeImage(images[i].Data); img != nil {
					firstValid = &img
				}
			}
		}
	}
	if valid < minValidImages {
		return nil, fmt.Errorf("character '%s': no decodable source images", character)
	}

	for _, stage := range []string{stageCaptureAlignment, stageSplatTraining, stageMeshExtraction} {
		log.Printf("[Pipeline] %s: 模拟阶段 %s", character, stage)
		if err := p.simulateStage(ctx); err != nil {
			return nil, fmt.Errorf("character '%s': stage %s aborted: %w", character, stage, err)
		}
	}

	handle := &ModelHandle{
		Character:    character,
		SourceImages: len(images),
		ValidImages:  valid,
		VertexCount:  baseVertexCount + perImageVertices*valid,
		SplatCount:   baseSplatCount + perImageSplats*valid,
		Reports:      reports,
		ProcessedAt:  time.Now(),
	}
	handle.LODs = p.buildLODs(handle.VertexCount, firstValid)

	log.Printf("[Pipeline] %s: 处理完成（%d/%d 有效图片，%d 顶点，%d LOD 级别）",
		character, valid, len(images), handle.VertexCount, len(handle.LODs))
	return handle, nil
}

// 预制元数据的推导参数。数值来自原始实现的占位输出量级。
const (
	baseVertexCount  = 2000
	perImageVertices = 500
	baseSplatCount   = 150000
	perImageSplats   = 25000
)

// analyzeImages 并发解码图片头并产出确定性校验报告
func (p *Pipeline) analyzeImages(ctx context.Context, images []ImageInput) ([]ImageReport, error) {
	reports := make([]ImageReport, len(images))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxParallel)

	for i, input := range images {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report := analyzeOne(input)
			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// analyzeOne 对单张图片做确定性校验
func analyzeOne(input ImageInput) ImageReport {
	report := ImageReport{Name: input.Name}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(input.Data))
	if err != nil {
		log.Printf("[Pipeline] Warning: 图片 %s 无法解码: %v", input.Name, err)
		return report
	}

	report.Valid = true
	report.Width = cfg.Width
	report.Height = cfg.Height

	if cfg.Width < minImageDimension || cfg.Height < minImageDimension {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("low resolution %dx%d (min %d)", cfg.Width, cfg.Height, minImageDimension))
	}
	ratio := float64(cfg.Width) / float64(cfg.Height)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	if ratio > maxAspectRatio {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("extreme aspect ratio %.1f (max %.1f)", ratio, maxAspectRatio))
	}
	return report
}

// simulateStage 消耗一个阶段的固定延迟，可被 ctx 取消
func (p *Pipeline) simulateStage(ctx context.Context) error {
	if p.opts.StageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.opts.StageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// buildLODs 构建各细节级别的导出元数据和预览图
func (p *Pipeline) buildLODs(vertexCount int, source *image.Image) []LODLevel {
	uses := []string{"hero", "mid", "billboard"}
	lods := make([]LODLevel, 0, len(p.opts.PreviewWidths))

	for i, width := range p.opts.PreviewWidths {
		lod := LODLevel{
			Level:        i,
			VertexCount:  vertexCount >> (2 * i), // 每级降到 1/4
			PreviewWidth: width,
		}
		if i < len(uses) {
			lod.TargetUse = uses[i]
		} else {
			lod.TargetUse = "billboard"
		}
		if source != nil {
			lod.Preview = scaleImage(*source, width)
			if lod.Preview != nil {
				lod.PreviewHeight = lod.Preview.Bounds().Dy()
			}
		}
		lods = append(lods, lod)
	}
	return lods
}

// decodeImage 完整解码图片，失败时返回 nil
func decodeImage(data []byte) image.Image {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// scaleImage 将图片等比缩放到目标宽度
func scaleImage(src image.Image, width int) *image.RGBA {
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}
