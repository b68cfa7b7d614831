package keyframe

import (
	"reflect"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func testTrack(t *testing.T) *Track {
	t.Helper()
	track, err := NewTrack("victory_rise", "linear", []Keyframe{
		{Time: 0, Pose: Pose{Slots: map[string]string{"arms": "down", "expression": "focused"}, Scale: floatPtr(1.0)}},
		{Time: 0.3, Pose: Pose{Slots: map[string]string{"arms": "raising", "expression": "bright"}, Scale: floatPtr(1.1)}},
		{Time: 0.7, Pose: Pose{Slots: map[string]string{"arms": "victory_v", "expression": "bright"}, Scale: floatPtr(1.2)}},
		{Time: 1, Pose: Pose{Slots: map[string]string{"arms": "victory_v", "expression": "triumphant"}, Scale: floatPtr(1.0)}},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	return track
}

// TestSample_ExactKeyframeHit 精确命中关键帧时必须原样返回该关键帧的姿态
func TestSample_ExactKeyframeHit(t *testing.T) {
	track := testTrack(t)

	got := track.Sample(0.3)
	want := track.Keyframes[1].Pose
	if !reflect.DeepEqual(got.Slots, want.Slots) {
		t.Errorf("Sample(0.3).Slots = %v, want keyframe[1] %v", got.Slots, want.Slots)
	}
	if got.Scale == nil || *got.Scale != 1.1 {
		t.Errorf("Sample(0.3).Scale = %v, want 1.1", got.Scale)
	}

	got = track.Sample(0)
	if got.Slots["arms"] != "down" {
		t.Errorf("Sample(0) arms = %q, want keyframe[0] \"down\"", got.Slots["arms"])
	}
	got = track.Sample(1)
	if got.Slots["expression"] != "triumphant" {
		t.Errorf("Sample(1) expression = %q, want \"triumphant\"", got.Slots["expression"])
	}
}

// TestSample_SymbolicSnapToLaterKeyframe 区段中间的符号槽位取后一个关键帧的值（不混合）
func TestSample_SymbolicSnapToLaterKeyframe(t *testing.T) {
	track := testTrack(t)

	got := track.Sample(0.5)
	if got.Slots["arms"] != "victory_v" {
		t.Errorf("Sample(0.5) arms = %q, want later keyframe value \"victory_v\"", got.Slots["arms"])
	}
}

// TestSample_NumericLerp 数值通道在区段内线性插值
func TestSample_NumericLerp(t *testing.T) {
	track := testTrack(t)

	// 0.5 位于 [0.3, 0.7] 区段中点: scale = 1.1 + 0.5*(1.2-1.1) = 1.15
	got := track.Sample(0.5)
	if got.Scale == nil {
		t.Fatal("Sample(0.5).Scale is nil")
	}
	if diff := *got.Scale - 1.15; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Sample(0.5).Scale = %g, want 1.15", *got.Scale)
	}
}

// TestSample_Idempotent 相同进度两次采样结果一致
func TestSample_Idempotent(t *testing.T) {
	track := testTrack(t)
	for _, p := range []float64{0, 0.15, 0.3, 0.5, 0.99, 1} {
		a := track.Sample(p)
		b := track.Sample(p)
		if !reflect.DeepEqual(a.Slots, b.Slots) {
			t.Errorf("Sample(%g) not idempotent: %v vs %v", p, a.Slots, b.Slots)
		}
	}
}

// TestSample_ClampsOutOfRange 越界进度被钳制，不会出错
func TestSample_ClampsOutOfRange(t *testing.T) {
	track := testTrack(t)

	low := track.Sample(-0.5)
	if low.Slots["arms"] != "down" {
		t.Errorf("Sample(-0.5) arms = %q, want clamp to first keyframe", low.Slots["arms"])
	}
	high := track.Sample(2.0)
	if high.Slots["expression"] != "triumphant" {
		t.Errorf("Sample(2.0) expression = %q, want clamp to last keyframe", high.Slots["expression"])
	}
}

// TestSample_SingleKeyframe 单关键帧轨道对任意进度都返回该帧
func TestSample_SingleKeyframe(t *testing.T) {
	track, err := NewTrack("hold", "easeOutCubic", []Keyframe{
		{Time: 0, Pose: Pose{Slots: map[string]string{"arms": "crossed"}}},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	for _, p := range []float64{0, 0.5, 1} {
		if got := track.Sample(p); got.Slots["arms"] != "crossed" {
			t.Errorf("Sample(%g) = %v, want single keyframe pose", p, got.Slots)
		}
	}
}

// TestSample_SharedTimeIsInstantaneousCut 两个关键帧共享时间时瞬间切换到后者
func TestSample_SharedTimeIsInstantaneousCut(t *testing.T) {
	track, err := NewTrack("cut", "linear", []Keyframe{
		{Time: 0, Pose: Pose{Slots: map[string]string{"head": "down"}}},
		{Time: 0.5, Pose: Pose{Slots: map[string]string{"head": "left"}}},
		{Time: 0.5, Pose: Pose{Slots: map[string]string{"head": "right"}}},
		{Time: 1, Pose: Pose{Slots: map[string]string{"head": "up"}}},
	})
	if err != nil {
		t.Fatalf("NewTrack failed: %v", err)
	}
	got := track.Sample(0.5)
	if got.Slots["head"] != "left" && got.Slots["head"] != "right" {
		t.Errorf("Sample(0.5) head = %q, want a keyframe at time 0.5", got.Slots["head"])
	}
	// 共享时间区段不能触发除零
	_ = track.Sample(0.5000001)
}

// TestSample_ReturnsClone 采样结果的修改不得影响轨道数据
func TestSample_ReturnsClone(t *testing.T) {
	track := testTrack(t)
	got := track.Sample(0)
	got.Slots["arms"] = "tampered"
	if track.Keyframes[0].Pose.Slots["arms"] != "down" {
		t.Error("mutating a sampled pose leaked into track keyframes")
	}
}

// TestNewTrack_Validation 非法关键帧序列必须被拒绝
func TestNewTrack_Validation(t *testing.T) {
	tests := []struct {
		name string
		kfs  []Keyframe
	}{
		{"empty", nil},
		{"first not zero", []Keyframe{{Time: 0.1, Pose: Pose{}}, {Time: 1, Pose: Pose{}}}},
		{"last not one", []Keyframe{{Time: 0, Pose: Pose{}}, {Time: 0.9, Pose: Pose{}}}},
		{"unsorted", []Keyframe{{Time: 0, Pose: Pose{}}, {Time: 0.8, Pose: Pose{}}, {Time: 0.4, Pose: Pose{}}, {Time: 1, Pose: Pose{}}}},
		{"out of range", []Keyframe{{Time: -0.2, Pose: Pose{}}, {Time: 1, Pose: Pose{}}}},
	}
	for _, tt := range tests {
		if _, err := NewTrack(tt.name, "linear", tt.kfs); err == nil {
			t.Errorf("NewTrack(%s) accepted invalid keyframes", tt.name)
		}
	}
}
