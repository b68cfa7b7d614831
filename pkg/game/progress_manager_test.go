package game

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// TestProgressManager_CountersAndFlags 数值字段和标志的读写
func TestProgressManager_CountersAndFlags(t *testing.T) {
	pm := NewProgressManager(nil)

	if pm.Counter("tournamentsWon") != 0 {
		t.Error("missing counter should read 0")
	}
	pm.SetCounter("tournamentsWon", 1)
	if pm.Counter("tournamentsWon") != 1 {
		t.Errorf("tournamentsWon = %g, want 1", pm.Counter("tournamentsWon"))
	}
	if got := pm.AddCounter("communityTrust", 25); got != 25 {
		t.Errorf("AddCounter returned %g, want 25", got)
	}
	if got := pm.AddCounter("communityTrust", 25); got != 50 {
		t.Errorf("second AddCounter returned %g, want 50", got)
	}

	if pm.Flag("metMaya") {
		t.Error("missing flag should read false")
	}
	pm.SetFlag("metMaya", true)
	if !pm.Flag("metMaya") {
		t.Error("flag not persisted in memory")
	}
}

// TestProgressManager_Snapshot 快照是副本，后续修改不影响快照
func TestProgressManager_Snapshot(t *testing.T) {
	pm := NewProgressManager(nil)
	pm.SetCounter("tournamentsWon", 1)
	pm.SetFlag("metMaya", true)

	snap := pm.Snapshot()
	if v, ok := snap.Number("tournamentsWon"); !ok || v != 1 {
		t.Errorf("snapshot tournamentsWon = %g,%v", v, ok)
	}
	if v, ok := snap.Flag("metMaya"); !ok || !v {
		t.Errorf("snapshot metMaya = %v,%v", v, ok)
	}

	pm.SetCounter("tournamentsWon", 99)
	if v, _ := snap.Number("tournamentsWon"); v != 1 {
		t.Error("snapshot should not track later mutations")
	}
}

// TestProgressManager_SeenMoments 一次性时刻按角色区分
func TestProgressManager_SeenMoments(t *testing.T) {
	pm := NewProgressManager(nil)

	if pm.HasSeenMoment("eli", "tournament_arena_victory") {
		t.Error("fresh progress should have no seen moments")
	}
	pm.MarkMomentSeen("eli", "tournament_arena_victory")
	if !pm.HasSeenMoment("eli", "tournament_arena_victory") {
		t.Error("moment not marked seen")
	}
	// 同名时刻在另一角色下独立
	if pm.HasSeenMoment("maya", "tournament_arena_victory") {
		t.Error("seen moments must be scoped per character")
	}
}

// TestProgressManager_DegradedPersistence nil gdata 时 Save/Load 不报错
func TestProgressManager_DegradedPersistence(t *testing.T) {
	pm := NewProgressManager(nil)
	pm.SetCounter("tournamentsWon", 3)

	if err := pm.Save(); err != nil {
		t.Errorf("Save in degraded mode returned error: %v", err)
	}
	if err := pm.Load(); err != nil {
		t.Errorf("Load in degraded mode returned error: %v", err)
	}
	// 降级模式下 Load 不清空内存进度
	if pm.Counter("tournamentsWon") != 3 {
		t.Error("degraded Load wiped in-memory progress")
	}
}

// TestProgressManager_Reset 重置清空全部进度
func TestProgressManager_Reset(t *testing.T) {
	pm := NewProgressManager(nil)
	pm.SetCounter("tournamentsWon", 1)
	pm.SetFlag("metMaya", true)
	pm.MarkMomentSeen("eli", "tournament_arena_victory")
	pm.SetLocation("area-2-tournament-arena")

	pm.Reset()
	if pm.Counter("tournamentsWon") != 0 || pm.Flag("metMaya") ||
		pm.HasSeenMoment("eli", "tournament_arena_victory") || pm.Location() != "" {
		t.Error("Reset did not clear all progress")
	}
}

// TestStoryProgress_YAMLRoundTrip 进度序列化与反序列化
func TestStoryProgress_YAMLRoundTrip(t *testing.T) {
	original := &StoryProgress{
		Counters:        map[string]float64{"tournamentsWon": 2, "communityTrust": 60},
		Flags:           map[string]bool{"metMaya": true},
		SeenMoments:     map[string]bool{"eli/tournament_arena_victory": true},
		CurrentLocation: "area-2-tournament-arena",
	}

	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored := &StoryProgress{}
	if err := yaml.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored.Counters["tournamentsWon"] != 2 || restored.Counters["communityTrust"] != 60 {
		t.Errorf("counters = %v", restored.Counters)
	}
	if !restored.Flags["metMaya"] {
		t.Errorf("flags = %v", restored.Flags)
	}
	if !restored.SeenMoments["eli/tournament_arena_victory"] {
		t.Errorf("seen moments = %v", restored.SeenMoments)
	}
	if restored.CurrentLocation != "area-2-tournament-arena" {
		t.Errorf("location = %q", restored.CurrentLocation)
	}
}
