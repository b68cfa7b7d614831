package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

// TestProcess_DeterministicMetadata 元数据由有效图片数量确定性推导
func TestProcess_DeterministicMetadata(t *testing.T) {
	p := New(Options{StageDelay: 0})
	images := []ImageInput{
		{Name: "front.png", Data: encodePNG(t, 512, 512)},
		{Name: "side.png", Data: encodePNG(t, 512, 512)},
	}

	handle, err := p.Process(context.Background(), "eli", images)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if handle.Character != "eli" || handle.SourceImages != 2 || handle.ValidImages != 2 {
		t.Errorf("handle counts = %+v", handle)
	}
	wantVertices := baseVertexCount + 2*perImageVertices
	if handle.VertexCount != wantVertices {
		t.Errorf("VertexCount = %d, want %d", handle.VertexCount, wantVertices)
	}
	wantSplats := baseSplatCount + 2*perImageSplats
	if handle.SplatCount != wantSplats {
		t.Errorf("SplatCount = %d, want %d", handle.SplatCount, wantSplats)
	}

	// 相同输入再跑一次：元数据一致
	again, err := p.Process(context.Background(), "eli", images)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if again.VertexCount != handle.VertexCount || again.SplatCount != handle.SplatCount {
		t.Error("metadata should be deterministic for identical input")
	}
}

// TestProcess_LODChain 每级 LOD 顶点数降到上一级的 1/4 并带预览图
func TestProcess_LODChain(t *testing.T) {
	p := New(Options{StageDelay: 0})
	images := []ImageInput{{Name: "a.png", Data: encodePNG(t, 512, 256)}}

	handle, err := p.Process(context.Background(), "maya", images)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(handle.LODs) != 3 {
		t.Fatalf("LOD levels = %d, want 3", len(handle.LODs))
	}

	for i, lod := range handle.LODs {
		want := handle.VertexCount >> (2 * i)
		if lod.VertexCount != want {
			t.Errorf("LOD %d vertices = %d, want %d", i, lod.VertexCount, want)
		}
		if lod.Preview == nil {
			t.Errorf("LOD %d has no preview image", i)
			continue
		}
		if lod.Preview.Bounds().Dx() != lod.PreviewWidth {
			t.Errorf("LOD %d preview width = %d, want %d", i, lod.Preview.Bounds().Dx(), lod.PreviewWidth)
		}
		// 512x256 源图：预览保持 2:1 宽高比
		if lod.PreviewHeight != lod.PreviewWidth/2 {
			t.Errorf("LOD %d preview height = %d, want %d", i, lod.PreviewHeight, lod.PreviewWidth/2)
		}
	}
	if handle.LODs[0].TargetUse != "hero" || handle.LODs[2].TargetUse != "billboard" {
		t.Errorf("target uses = %v", []string{handle.LODs[0].TargetUse, handle.LODs[1].TargetUse, handle.LODs[2].TargetUse})
	}
}

// TestProcess_ValidationWarnings 低分辨率和极端宽高比产生警告但不致命
func TestProcess_ValidationWarnings(t *testing.T) {
	p := New(Options{StageDelay: 0})
	images := []ImageInput{
		{Name: "tiny.png", Data: encodePNG(t, 64, 64)},
		{Name: "banner.png", Data: encodePNG(t, 1600, 400)},
		{Name: "good.png", Data: encodePNG(t, 512, 512)},
	}

	handle, err := p.Process(context.Background(), "stanley", images)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if handle.ValidImages != 3 {
		t.Errorf("ValidImages = %d, want 3 (warnings are non-fatal)", handle.ValidImages)
	}

	byName := map[string]ImageReport{}
	for _, r := range handle.Reports {
		byName[r.Name] = r
	}
	if len(byName["tiny.png"].Warnings) == 0 || !strings.Contains(byName["tiny.png"].Warnings[0], "low resolution") {
		t.Errorf("tiny.png warnings = %v", byName["tiny.png"].Warnings)
	}
	if len(byName["banner.png"].Warnings) == 0 || !strings.Contains(byName["banner.png"].Warnings[0], "aspect ratio") {
		t.Errorf("banner.png warnings = %v", byName["banner.png"].Warnings)
	}
	if len(byName["good.png"].Warnings) != 0 {
		t.Errorf("good.png warnings = %v, want none", byName["good.png"].Warnings)
	}
}

// TestProcess_UndecodableImages 不可解码图片标记无效；全部无效时报错
func TestProcess_UndecodableImages(t *testing.T) {
	p := New(Options{StageDelay: 0})

	mixed := []ImageInput{
		{Name: "junk.png", Data: []byte("not an image")},
		{Name: "good.png", Data: encodePNG(t, 512, 512)},
	}
	handle, err := p.Process(context.Background(), "eli", mixed)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if handle.ValidImages != 1 || handle.SourceImages != 2 {
		t.Errorf("counts = %d/%d, want 1 valid of 2", handle.ValidImages, handle.SourceImages)
	}

	junkOnly := []ImageInput{{Name: "junk.png", Data: []byte("still not an image")}}
	if _, err := p.Process(context.Background(), "eli", junkOnly); err == nil {
		t.Error("Process should fail when no image decodes")
	}
}

// TestProcess_EmptyInput 空输入直接报错
func TestProcess_EmptyInput(t *testing.T) {
	p := New(Options{StageDelay: 0})
	if _, err := p.Process(context.Background(), "eli", nil); err == nil {
		t.Error("Process(nil images) should fail")
	}
}

// TestProcess_ContextCancel 阶段延迟可被 ctx 取消
func TestProcess_ContextCancel(t *testing.T) {
	p := New(Options{StageDelay: 10 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	images := []ImageInput{{Name: "a.png", Data: encodePNG(t, 512, 512)}}
	start := time.Now()
	_, err := p.Process(ctx, "eli", images)
	if err == nil {
		t.Fatal("Process should abort when context expires")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %v, should return promptly", elapsed)
	}
}
