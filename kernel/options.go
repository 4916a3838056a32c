// SPDX-License-Identifier: EPL-2.0

package kernel

// config collects NewResampler's construction parameters before
// validation. The functional-options idiom (and the config/Option naming)
// is grounded on github.com/cwbudde/algo-dsp/dsp/resample's
// Option func(*config) pattern.
type config struct {
	numTaps     int
	numFilters  int
	window      Window
	interpolate bool
	lowpass     bool
	cutoff      float64
}

func defaultConfig() config {
	return config{
		numTaps:     256,
		numFilters:  256,
		window:      WindowHann,
		interpolate: true,
		lowpass:     false,
		cutoff:      1.0,
	}
}

// Option configures a Resampler at construction time. Each knob is its
// own option rather than a shared bitset, for idiomatic readability at
// call sites, e.g.:
//
//	kernel.NewResampler(2, kernel.WithTaps(64), kernel.WithFilters(64),
//		kernel.WithWindow(kernel.WindowBlackmanHarris4),
//		kernel.WithLowpass(0.45))
type Option func(*config)

// WithTaps sets T, the number of taps per filter. Must be a multiple of 4
// in [4, 1024]; validated by NewResampler.
func WithTaps(taps int) Option {
	return func(c *config) { c.numTaps = taps }
}

// WithFilters sets F, the number of fractional-phase filters in the bank.
// Must be in [2, 1024]; validated by NewResampler.
func WithFilters(filters int) Option {
	return func(c *config) { c.numFilters = filters }
}

// WithWindow selects the apodization window; the zero value (unset) is
// Hann.
func WithWindow(w Window) Option {
	return func(c *config) { c.window = w }
}

// WithInterpolation toggles linear blending between adjacent filter
// phases to approximate phases finer than the bank's own spacing.
func WithInterpolation(enabled bool) Option {
	return func(c *config) { c.interpolate = enabled }
}

// WithLowpass scales the sinc prototype by the given normalized cutoff in
// (0,1]. Calling it at all enables the embedded lowpass and records the
// cutoff; the default configuration has no lowpass (cutoff 1.0).
func WithLowpass(cutoff float64) Option {
	return func(c *config) {
		c.lowpass = true
		c.cutoff = cutoff
	}
}

// LowpassRatio computes 1 - 10.24/T, floored at 0.84: how far the
// embedded-lowpass cutoff is widened toward 1 as the tap count grows, before
// it is folded against any particular resample ratio.
func LowpassRatio(numTaps int) float64 {
	lr := 1 - 10.24/float64(numTaps)
	if lr < 0.84 {
		lr = 0.84
	}
	return lr
}

// DownsampleCutoff computes the embedded-lowpass cutoff for a downsample:
// given a target/source ratio r < 1 and the tap count T, it returns
// max(LowpassRatio(T), r)*r. The result never exceeds r and never drops
// below 0.84*r; it rises toward r as T grows (more taps afford a sharper
// transition band).
func DownsampleCutoff(ratio float64, numTaps int) float64 {
	lowpassRatio := LowpassRatio(numTaps)
	if lowpassRatio < ratio {
		lowpassRatio = ratio
	}
	c := lowpassRatio * ratio
	if c > 1 {
		c = 1
	}
	if c <= 0 {
		c = ratio
	}
	return c
}
