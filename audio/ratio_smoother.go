// SPDX-License-Identifier: EPL-2.0

package audio

// RatioSmoother eases a resampling ratio from its current value toward a
// newly requested one over a short window of calls, instead of handing the
// kernel an abrupt step. A host doing clock recovery or drift correction
// typically nudges the target ratio once per control period; feeding that
// step straight into the resampler would show up as an audible
// discontinuity, so Push records the new target and At interpolates a
// smooth curve between the old and new values using cubic (Catmull-Rom)
// interpolation.
type RatioSmoother struct {
	y0, y1, y2, y3 float64
}

// NewRatioSmoother seeds the smoother with an initial ratio so the first
// few interpolated values are flat rather than ramping from zero.
func NewRatioSmoother(initial float64) *RatioSmoother {
	return &RatioSmoother{y0: initial, y1: initial, y2: initial, y3: initial}
}

// Push records a newly requested ratio as the smoother's new endpoint,
// retaining the previous endpoint as the curve's starting point.
func (s *RatioSmoother) Push(target float64) {
	s.y0, s.y1 = s.y1, s.y2
	s.y2, s.y3 = target, target
}

// At returns the interpolated ratio at fractional position x in [0,1]
// between the ratio last pushed (at x=1) and the one before it (at x=0).
func (s *RatioSmoother) At(x float64) float64 {
	return cubicInterpolate(s.y0, s.y1, s.y2, s.y3, x)
}

// cubicInterpolate is a Catmull-Rom spline evaluated at x in [0,1] between
// y1 and y2, using y0/y3 as the neighboring control points.
func cubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
