package keyframe

import (
	"fmt"
	"sort"

	"github.com/decker502/datableed/internal/easing"
)

// Numeric channels default to these values when a keyframe leaves them
// unset, so interpolation stays total even on sparsely-authored tracks.
const (
	defaultScale   = 1.0
	defaultOpacity = 1.0
)

// NewTrack validates keyframes and builds an immutable track.
// Validation rules: at least one keyframe, times ascending within [0,1],
// and for multi-keyframe tracks the first time must be 0 and the last 1
// (they define the normalized timeline).
func NewTrack(name string, kind string, keyframes []Keyframe) (*Track, error) {
	if len(keyframes) == 0 {
		return nil, fmt.Errorf("track %q has no keyframes", name)
	}
	if !sort.SliceIsSorted(keyframes, func(i, j int) bool {
		return keyframes[i].Time < keyframes[j].Time
	}) {
		return nil, fmt.Errorf("track %q keyframe times are not ascending", name)
	}
	first := keyframes[0].Time
	last := keyframes[len(keyframes)-1].Time
	if first < 0 || last > 1 {
		return nil, fmt.Errorf("track %q keyframe times outside [0,1]", name)
	}
	if len(keyframes) > 1 && (first != 0 || last != 1) {
		return nil, fmt.Errorf("track %q timeline must span 0..1, got %g..%g", name, first, last)
	}

	copied := make([]Keyframe, len(keyframes))
	for i, kf := range keyframes {
		copied[i] = Keyframe{Time: kf.Time, Pose: kf.Pose.Clone()}
	}
	return &Track{Name: name, Easing: easing.Parse(kind), Keyframes: copied}, nil
}

// Sample returns the interpolated pose at the given progress.
//
// Progress outside [0,1] is clamped first. The surrounding keyframe
// pair (k_i, k_next) is the first pair with progress <= k_next.Time;
// local progress s = (progress - k_i.Time) / (k_next.Time - k_i.Time).
// Symbolic slot values take k_next verbatim once s leaves 0 (no
// blending between symbolic tokens); at s == 0 the earlier keyframe is
// returned unchanged, so an exact keyframe hit yields that keyframe.
// Numeric channels (scale, opacity) linearly interpolate. Two keyframes
// sharing a time are treated as an instantaneous cut to the later one.
// Sampling is idempotent and never faults.
func (t *Track) Sample(progress float64) Pose {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	kfs := t.Keyframes
	if len(kfs) == 1 {
		return kfs[0].Pose.Clone()
	}

	// At or past the last keyframe: return it unmodified, no extrapolation.
	if progress >= kfs[len(kfs)-1].Time {
		return kfs[len(kfs)-1].Pose.Clone()
	}

	for i := 0; i < len(kfs)-1; i++ {
		cur, next := kfs[i], kfs[i+1]
		if progress > next.Time {
			continue
		}

		span := next.Time - cur.Time
		if span == 0 {
			// Instantaneous cut.
			return next.Pose.Clone()
		}
		s := (progress - cur.Time) / span
		if s <= 0 {
			return cur.Pose.Clone()
		}
		if s >= 1 {
			return next.Pose.Clone()
		}
		return blend(cur.Pose, next.Pose, s)
	}

	return kfs[len(kfs)-1].Pose.Clone()
}

// blend combines two poses at local progress s in (0,1): symbolic slots
// from the later pose, numeric channels linearly interpolated.
func blend(from, to Pose, s float64) Pose {
	out := to.Clone()

	if from.Scale != nil || to.Scale != nil {
		a := defaultScale
		b := defaultScale
		if from.Scale != nil {
			a = *from.Scale
		}
		if to.Scale != nil {
			b = *to.Scale
		}
		v := a + s*(b-a)
		out.Scale = &v
	}
	if from.Opacity != nil || to.Opacity != nil {
		a := defaultOpacity
		b := defaultOpacity
		if from.Opacity != nil {
			a = *from.Opacity
		}
		if to.Opacity != nil {
			b = *to.Opacity
		}
		v := a + s*(b-a)
		out.Opacity = &v
	}
	return out
}
