// Package easing provides the named easing curves used by the character
// animation engine. Every curve is a pure function mapping a normalized
// progress value in [0,1] to an eased progress value in [0,1].
package easing

import "math"

// Kind identifies an easing curve by name. The zero value is KindLinear.
type Kind string

const (
	KindLinear      Kind = "linear"
	KindOutCubic    Kind = "easeOutCubic"
	KindInOutSine   Kind = "easeInOutSine"
	KindOutQuart    Kind = "easeOutQuart"
	KindOutBack     Kind = "easeOutBack"
	KindInOutCubic  Kind = "easeInOutCubic"
	KindInOutQuad   Kind = "easeInOutQuad"
	KindOutElastic  Kind = "easeOutElastic"
	KindOutBounce   Kind = "easeOutBounce"
	KindInOutBounce Kind = "easeInOutBounce"
)

// Constants for the back, elastic and bounce curves. The values match
// the conventional easings.net formulas so that catalog data authored
// against the original presentation layer keeps its timing feel.
const (
	backC1 = 1.70158
	backC3 = backC1 + 1

	elasticC4 = 2 * math.Pi / 3

	bounceN1 = 7.5625
	bounceD1 = 2.75
)

// Parse returns the Kind named by s. Unknown names fall back to
// KindLinear; the caller does not need to pre-validate catalog data.
func Parse(s string) Kind {
	switch Kind(s) {
	case KindLinear, KindOutCubic, KindInOutSine, KindOutQuart,
		KindOutBack, KindInOutCubic, KindInOutQuad, KindOutElastic,
		KindOutBounce, KindInOutBounce:
		return Kind(s)
	}
	return KindLinear
}

// Ease maps progress p through the curve identified by kind.
// p is clamped to [0,1] first. Unknown kinds behave as linear.
func Ease(kind Kind, p float64) float64 {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}

	switch kind {
	case KindOutCubic:
		return 1 - math.Pow(1-p, 3)
	case KindInOutSine:
		return -(math.Cos(math.Pi*p) - 1) / 2
	case KindOutQuart:
		return 1 - math.Pow(1-p, 4)
	case KindOutBack:
		return 1 + backC3*math.Pow(p-1, 3) + backC1*math.Pow(p-1, 2)
	case KindInOutCubic:
		if p < 0.5 {
			return 4 * p * p * p
		}
		return 1 - math.Pow(-2*p+2, 3)/2
	case KindInOutQuad:
		if p < 0.5 {
			return 2 * p * p
		}
		return 1 - math.Pow(-2*p+2, 2)/2
	case KindOutElastic:
		if p == 0 {
			return 0
		}
		if p == 1 {
			return 1
		}
		return math.Pow(2, -10*p)*math.Sin((p*10-0.75)*elasticC4) + 1
	case KindOutBounce:
		return outBounce(p)
	case KindInOutBounce:
		if p < 0.5 {
			return (1 - outBounce(1-2*p)) / 2
		}
		return (1 + outBounce(2*p-1)) / 2
	}
	return p
}

// outBounce is the standard four-segment bounce curve.
func outBounce(p float64) float64 {
	switch {
	case p < 1/bounceD1:
		return bounceN1 * p * p
	case p < 2/bounceD1:
		p -= 1.5 / bounceD1
		return bounceN1*p*p + 0.75
	case p < 2.5/bounceD1:
		p -= 2.25 / bounceD1
		return bounceN1*p*p + 0.9375
	default:
		p -= 2.625 / bounceD1
		return bounceN1*p*p + 0.984375
	}
}
