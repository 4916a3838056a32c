// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/sincrate/kernel"
)

// resamplerConfig collects Resampler's construction parameters before
// validation, following the same functional-options idiom as
// kernel.Option.
type resamplerConfig struct {
	taps          int
	filters       int
	window        kernel.Window
	interpolate   bool
	lowpassCutoff float64 // explicit override; 0 means "use policy default"
	biquad        bool
	phaseShift    float64
}

func defaultResamplerConfig() resamplerConfig {
	return resamplerConfig{
		taps:        256,
		filters:     256,
		window:      kernel.WindowHann,
		interpolate: true,
	}
}

// Option configures a Resampler at construction time.
type Option func(*resamplerConfig)

// WithTaps overrides the filter bank's tap count T.
func WithTaps(taps int) Option { return func(c *resamplerConfig) { c.taps = taps } }

// WithFilters overrides the filter bank's phase count F.
func WithFilters(filters int) Option { return func(c *resamplerConfig) { c.filters = filters } }

// WithWindow selects the apodization window.
func WithWindow(w kernel.Window) Option { return func(c *resamplerConfig) { c.window = w } }

// WithInterpolation toggles linear blending between adjacent filter phases.
func WithInterpolation(enabled bool) Option {
	return func(c *resamplerConfig) { c.interpolate = enabled }
}

// WithLowpass overrides the embedded-lowpass cutoff, bypassing the
// automatic downsample-cutoff policy entirely.
func WithLowpass(cutoff float64) Option {
	return func(c *resamplerConfig) { c.lowpassCutoff = cutoff }
}

// WithBiquadMargin enables an optional pre/post biquad cascade for callers
// who want extra stopband margin beyond the embedded lowpass.
func WithBiquadMargin(enabled bool) Option { return func(c *resamplerConfig) { c.biquad = enabled } }

// WithPhaseShift adds a fractional-sample offset (|shift| < 1.0) on top of
// the group-delay priming applied at construction.
func WithPhaseShift(shift float64) Option { return func(c *resamplerConfig) { c.phaseShift = shift } }

// ratioSmoothSteps is how many ReadSamples calls a SetRatio change takes to
// fully settle, easing the ratio toward its new target one call at a time
// instead of jumping straight to it.
const ratioSmoothSteps = 8

// Resampler streams from src to a target sample rate using a windowed-sinc
// polyphase filter bank (see package kernel), optionally bracketed by a
// pre/post biquad cascade for extra anti-alias margin. Works on interleaved
// samples; preserves channel count.
type Resampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int
	ratio    float64 // nominal dstRate / srcRate, used for lowpass/cascade design

	targetRatio float64
	smoother    *RatioSmoother
	smoothStep  int

	kernel *kernel.Resampler
	pre    []*kernel.Cascade // one per channel, nil if not configured
	post   []*kernel.Cascade

	srcBuf        []float32
	pendingOffset int // frame offset of unconsumed data in srcBuf
	pendingFrames int
	eof           bool
}

// NewResampler constructs a Resampler reading from src and producing
// samples at dstRate. The embedded lowpass is selected automatically when
// downsampling; override with WithLowpass or tune the bank with
// WithTaps/WithFilters/WithWindow/WithInterpolation.
func NewResampler(src Source, dstRate int, opts ...Option) (*Resampler, error) {
	channels := src.Channels()
	srcRate := src.SampleRate()
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: srcRate=%d dstRate=%d", kernel.ErrInvalidRatio, srcRate, dstRate)
	}
	ratio := float64(dstRate) / float64(srcRate)

	cfg := defaultResamplerConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	kopts := []kernel.Option{
		kernel.WithTaps(cfg.taps),
		kernel.WithFilters(cfg.filters),
		kernel.WithWindow(cfg.window),
		kernel.WithInterpolation(cfg.interpolate),
	}

	switch {
	case cfg.lowpassCutoff > 0:
		kopts = append(kopts, kernel.WithLowpass(cfg.lowpassCutoff))
	case ratio < 1:
		kopts = append(kopts, kernel.WithLowpass(kernel.DownsampleCutoff(ratio, cfg.taps)))
	}

	kr, err := kernel.NewResampler(channels, kopts...)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}
	kr.AdvancePosition(kr.GroupDelay() + cfg.phaseShift)

	r := &Resampler{
		src:         src,
		srcRate:     srcRate,
		dstRate:     dstRate,
		channels:    channels,
		ratio:       ratio,
		targetRatio: ratio,
		smoother:    NewRatioSmoother(ratio),
		smoothStep:  ratioSmoothSteps,
		kernel:      kr,
		srcBuf:      make([]float32, DefaultBufferFrames*channels),
	}

	if cfg.biquad {
		r.pre, r.post = buildMarginCascades(ratio, cfg.taps, channels)
	}

	return r, nil
}

// buildMarginCascades designs the optional pre/post biquad cascade: a
// lowpass at lowpass_ratio·ratio/2 ahead of a downsampling kernel, or at
// lowpass_ratio/(ratio·2) after an upsampling one.
func buildMarginCascades(ratio float64, taps, channels int) (pre, post []*kernel.Cascade) {
	lr := kernel.LowpassRatio(taps)
	switch {
	case ratio < 1:
		coeffs := kernel.DesignLowpassButterworth(lr * ratio / 2)
		pre = make([]*kernel.Cascade, channels)
		for ch := range pre {
			pre[ch] = kernel.NewCascade(coeffs)
		}
	case ratio > 1:
		coeffs := kernel.DesignLowpassButterworth(lr / (ratio * 2))
		post = make([]*kernel.Cascade, channels)
		for ch := range post {
			post[ch] = kernel.NewCascade(coeffs)
		}
	}
	return pre, post
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.kernel.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Ratio returns the resampler's nominal output/input sample-rate ratio, as
// configured at construction.
func (r *Resampler) Ratio() float64 { return r.ratio }

// Position returns the kernel's current fractional read position, in
// input-sample units.
func (r *Resampler) Position() float64 { return r.kernel.GetPosition() }

// SetRatio retargets the live output/input ratio, for hosts doing clock
// recovery or drift correction against a playback clock. The change isn't
// applied immediately: each of the next ratioSmoothSteps ReadSamples calls
// eases the ratio fed to the kernel toward newRatio along a smooth curve,
// so a host nudging the ratio once per control period never hands the
// kernel an abrupt step that would otherwise show up as an audible click.
func (r *Resampler) SetRatio(newRatio float64) {
	r.smoother.Push(newRatio)
	r.targetRatio = newRatio
	r.smoothStep = 0
}

// effectiveRatio returns the ratio to feed the kernel for the next
// ReadSamples call, advancing the smoothing curve by one step.
func (r *Resampler) effectiveRatio() float64 {
	if r.smoothStep >= ratioSmoothSteps {
		return r.targetRatio
	}
	x := float64(r.smoothStep) / float64(ratioSmoothSteps)
	r.smoothStep++
	return r.smoother.At(x)
}

func applyCascades(cascades []*kernel.Cascade, buf []float32, channels, frames int) {
	if cascades == nil {
		return
	}
	for ch := 0; ch < channels; ch++ {
		cascades[ch].ProcessInterleaved(buf, ch, channels, frames)
	}
}

// refill reads one chunk from src into srcBuf, applying the pre-filter
// cascade (if configured) to each freshly read sample exactly once.
func (r *Resampler) refill() error {
	if r.eof {
		return io.EOF
	}
	n, err := r.src.ReadSamples(r.srcBuf)
	if n > 0 {
		frames := n / r.channels
		applyCascades(r.pre, r.srcBuf[:n], r.channels, frames)
		r.pendingOffset = 0
		r.pendingFrames = frames
	}
	if err == io.EOF {
		r.eof = true
		if n == 0 {
			return io.EOF
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples produces dst samples at r.dstRate, driving the kernel
// resampler with interleaved chunks pulled from src. dst length must be a
// multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	outCapacity := len(dst) / r.channels
	written := 0
	ratio := r.effectiveRatio()

	for written < outCapacity {
		if r.pendingFrames == 0 && !r.eof {
			if err := r.refill(); err != nil && err != io.EOF {
				return written * r.channels, err
			}
		}

		inBase := r.pendingOffset * r.channels
		inSlice := r.srcBuf[inBase : inBase+r.pendingFrames*r.channels]
		outSlice := dst[written*r.channels:]

		res, err := r.kernel.ProcessInterleaved(inSlice, r.pendingFrames, outSlice, outCapacity-written, ratio)
		if err != nil {
			return written * r.channels, fmt.Errorf("%w", err)
		}

		if res.OutputGenerated > 0 {
			applyCascades(r.post, dst[written*r.channels:(written+res.OutputGenerated)*r.channels], r.channels, res.OutputGenerated)
		}

		r.pendingOffset += res.InputConsumed
		r.pendingFrames -= res.InputConsumed
		written += res.OutputGenerated

		if res.OutputGenerated == 0 && res.InputConsumed == 0 && r.pendingFrames == 0 && r.eof {
			break
		}
	}

	if written == 0 && r.eof && r.pendingFrames == 0 {
		return 0, io.EOF
	}
	if written < outCapacity && r.eof && r.pendingFrames == 0 {
		return written * r.channels, io.EOF
	}
	return written * r.channels, nil
}
