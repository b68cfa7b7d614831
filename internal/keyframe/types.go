// Package keyframe provides the pose keyframe data model and the
// normalized-timeline sampling used by the character animation engine.
// A track holds ordered keyframes on a [0,1] timeline together with an
// easing curve; sampling a track yields the pose for any progress value.
package keyframe

import "github.com/decker502/datableed/internal/easing"

// Pose is a symbolic snapshot of body and expression state at one
// animation instant. Slot values (e.g. "arms" -> "victory_v") are
// opaque tokens to the engine; only the renderer interprets them.
// Scale and Opacity are optional numeric channels used by
// emergence-style transforms. Nil means "not animated on this track";
// when present the channel is linearly interpolated between keyframes.
type Pose struct {
	// Slots maps body-part/expression slot names to symbolic values,
	// e.g. {"arms": "raised", "head": "up", "expression": "triumphant"}.
	Slots map[string]string

	// Scale is the optional uniform scale channel (1.0 = normal size).
	Scale *float64

	// Opacity is the optional opacity channel (1.0 = fully opaque).
	Opacity *float64
}

// Clone returns a deep copy of the pose. Sampling returns clones so
// callers can never mutate track data through a sampled pose.
func (p Pose) Clone() Pose {
	out := Pose{}
	if p.Slots != nil {
		out.Slots = make(map[string]string, len(p.Slots))
		for k, v := range p.Slots {
			out.Slots[k] = v
		}
	}
	if p.Scale != nil {
		v := *p.Scale
		out.Scale = &v
	}
	if p.Opacity != nil {
		v := *p.Opacity
		out.Opacity = &v
	}
	return out
}

// Keyframe anchors a pose at one point of the normalized [0,1] timeline.
type Keyframe struct {
	// Time is the keyframe position on the normalized timeline.
	// Within a track, keyframe times ascend; the first keyframe sits
	// at 0 and the last at 1.
	Time float64

	// Pose is the pose at this instant.
	Pose Pose
}

// Track is the ordered keyframe sequence for one named action,
// constructed once from catalog data and immutable afterwards.
type Track struct {
	// Name is the action name, e.g. "victory_rise".
	Name string

	// Easing is the curve applied to raw progress before sampling.
	Easing easing.Kind

	// Keyframes are ordered by ascending Time.
	Keyframes []Keyframe
}
