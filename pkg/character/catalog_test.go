package character

import (
	"strings"
	"testing"

	"github.com/decker502/datableed/pkg/config"
)

// eliTestConfig 构造与出厂 Eli 目录同构的最小配置
func eliTestConfig() *config.CharacterConfigFile {
	return &config.CharacterConfigFile{
		Version:     "1.0",
		Character:   "eli",
		DisplayName: "Eli",
		LightingPresets: map[string]config.LightingPresetConfig{
			"victory_glow": {Ambient: "#332211", KeyColor: "#ffd700", Intensity: 1.4},
		},
		Actions: map[string]config.ActionConfig{
			"victory_rise": {
				Easing: "easeOutCubic",
				Keyframes: []config.KeyframeConfig{
					{Time: 0, Pose: map[string]string{"arms": "down", "expression": "focused"}},
					{Time: 0.6, Pose: map[string]string{"arms": "raising", "expression": "bright"}},
					{Time: 1, Pose: map[string]string{"arms": "victory_v", "expression": "triumphant"}},
				},
			},
			"victory_hold": {
				Easing: "linear",
				Keyframes: []config.KeyframeConfig{
					{Time: 0, Pose: map[string]string{"arms": "victory_v"}},
					{Time: 1, Pose: map[string]string{"arms": "victory_v"}},
				},
			},
		},
		Animations: map[string]config.AnimationConfig{
			"victory_pose": {
				Sequence: []config.StepConfig{
					{Action: "victory_rise", DurationMs: 900},
					{Action: "victory_hold", DurationMs: 1200},
				},
				Effects: []string{"gold_sparkle", "confetti_burst"},
				Audio:   "fanfare_eli",
			},
		},
		Conditions: map[string]config.ConditionConfig{
			"won_first_tournament": {
				ConditionClauseConfig: config.ConditionClauseConfig{Field: "tournamentsWon", Op: "gte", Value: 1},
			},
		},
		CinematicMoments: []config.CinematicMomentConfig{
			{
				Name:            "tournament_arena_victory",
				TriggerLocation: "area-2-tournament-arena",
				Condition:       "won_first_tournament",
				Animation:       "victory_pose",
				Dialogue:        "I did it. I actually did it!",
				DurationMs:      4000,
				Lighting:        "victory_glow",
				Effects:         []string{"gold_sparkle"},
			},
		},
	}
}

// TestBuildCatalog_Valid 合法配置构建出完整目录
func TestBuildCatalog_Valid(t *testing.T) {
	catalog, err := BuildCatalog(eliTestConfig())
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	if catalog.ID != "eli" {
		t.Errorf("catalog.ID = %q, want eli", catalog.ID)
	}
	if len(catalog.Tracks) != 2 {
		t.Errorf("tracks = %d, want 2", len(catalog.Tracks))
	}

	def, ok := catalog.Animations["victory_pose"]
	if !ok {
		t.Fatal("animation victory_pose missing")
	}
	if def.TotalDurationMs != 2100 {
		t.Errorf("TotalDurationMs = %d, want 2100 (sum of steps)", def.TotalDurationMs)
	}
	if len(def.Sequence) != 2 || def.Sequence[0].ActionName != "victory_rise" {
		t.Errorf("sequence = %+v, want victory_rise then victory_hold", def.Sequence)
	}

	moment, ok := catalog.Moment("tournament_arena_victory")
	if !ok {
		t.Fatal("moment tournament_arena_victory missing")
	}
	if moment.TriggerLocation != "area-2-tournament-arena" {
		t.Errorf("trigger location = %q", moment.TriggerLocation)
	}
	if moment.LightingPreset != "victory_glow" {
		t.Errorf("lighting = %q, want victory_glow", moment.LightingPreset)
	}
}

// TestBuildCatalog_RejectsBrokenReferences 跨引用校验
func TestBuildCatalog_RejectsBrokenReferences(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.CharacterConfigFile)
		wantErr string
	}{
		{
			"animation references unknown action",
			func(c *config.CharacterConfigFile) {
				anim := c.Animations["victory_pose"]
				anim.Sequence = []config.StepConfig{{Action: "no_such_action", DurationMs: 100}}
				c.Animations["victory_pose"] = anim
			},
			"unknown action",
		},
		{
			"animation with empty sequence",
			func(c *config.CharacterConfigFile) {
				c.Animations["victory_pose"] = config.AnimationConfig{}
			},
			"empty sequence",
		},
		{
			"step with non-positive duration",
			func(c *config.CharacterConfigFile) {
				anim := c.Animations["victory_pose"]
				anim.Sequence[0].DurationMs = 0
				c.Animations["victory_pose"] = anim
			},
			"non-positive duration",
		},
		{
			"moment references unknown animation",
			func(c *config.CharacterConfigFile) {
				c.CinematicMoments[0].Animation = "no_such_animation"
			},
			"unknown animation",
		},
		{
			"moment references unknown condition",
			func(c *config.CharacterConfigFile) {
				c.CinematicMoments[0].Condition = "no_such_condition"
			},
			"unknown condition",
		},
		{
			"moment references unknown lighting preset",
			func(c *config.CharacterConfigFile) {
				c.CinematicMoments[0].Lighting = "no_such_preset"
			},
			"unknown lighting preset",
		},
		{
			"keyframes not spanning timeline",
			func(c *config.CharacterConfigFile) {
				action := c.Actions["victory_rise"]
				action.Keyframes[0].Time = 0.2
				c.Actions["victory_rise"] = action
			},
			"timeline",
		},
	}

	for _, tt := range tests {
		cfg := eliTestConfig()
		tt.mutate(cfg)
		_, err := BuildCatalog(cfg)
		if err == nil {
			t.Errorf("%s: BuildCatalog accepted invalid config", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}

// TestBuildCatalog_DefaultLightingIntensity 未设置强度时默认 1.0
func TestBuildCatalog_DefaultLightingIntensity(t *testing.T) {
	cfg := eliTestConfig()
	cfg.LightingPresets["flat"] = config.LightingPresetConfig{Ambient: "#000000"}

	catalog, err := BuildCatalog(cfg)
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}
	if catalog.LightingPresets["flat"].Intensity != 1.0 {
		t.Errorf("default intensity = %g, want 1.0", catalog.LightingPresets["flat"].Intensity)
	}
}
