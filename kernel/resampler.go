// SPDX-License-Identifier: EPL-2.0

// Package kernel implements a windowed-sinc polyphase resampling engine:
// a precomputed bank of fractional-phase FIR filters (FilterBank), a
// streaming convolution driver that advances a fractional read position
// through per-channel delay lines (Resampler), and a cascadable biquad
// lowpass section used by callers as an optional pre/post anti-alias
// filter (Section/Cascade).
//
// The streaming driver advances a fractional read position through each
// channel's delay line one output sample at a time, pulling in fresh
// input samples as the position crosses whole-sample boundaries and
// convolving against the filter bank's current phase.
package kernel

import (
	"fmt"
	"math"
)

// ProcessResult reports how much of a ProcessInterleaved call actually
// happened. Output-capacity shortfall is not an error: the caller simply
// calls again with a fresh output buffer.
type ProcessResult struct {
	InputConsumed   int // input frames fully consumed
	OutputGenerated int // output frames written
}

// Resampler owns a FilterBank (shared, immutable), one DelayLine per
// channel, and the fractional read position driving the streaming
// convolution. It is not safe for concurrent use by multiple goroutines,
// but distinct Resamplers never share mutable state and may run on
// separate goroutines freely.
type Resampler struct {
	bank     *FilterBank
	channels int

	delay []*delayLine

	position   float64
	pushed     int64 // total samples pushed into the delay lines so far
	interpolate bool
}

// compactThreshold bounds how large position/pushed are allowed to grow
// before the resampler's caller-invisible bookkeeping folds the integer
// part away, keeping float64 precision in the fractional part for
// streams that run for a very long time. Ordinary streams (even hours
// of audio) never approach this.
const compactThreshold = 1 << 45

// NewResampler constructs a Resampler for the given channel count. Default
// configuration is T=256, F=256, Hann window, interpolation on, no
// embedded lowpass (cutoff=1.0); override with Option values.
func NewResampler(channels int, opts ...Option) (*Resampler, error) {
	if channels < 1 || channels > 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	bank, err := NewFilterBank(cfg.numFilters, cfg.numTaps, cfg.window, cfg.lowpass, cfg.cutoff)
	if err != nil {
		return nil, err
	}

	if int64(cfg.numTaps)*int64(cfg.numFilters+1)*int64(channels) > (1 << 30) {
		return nil, fmt.Errorf("%w: taps=%d filters=%d channels=%d", ErrAllocationFailure, cfg.numTaps, cfg.numFilters, channels)
	}

	delay := make([]*delayLine, channels)
	for ch := range delay {
		delay[ch] = newDelayLine(cfg.numTaps)
	}

	return &Resampler{
		bank:        bank,
		channels:    channels,
		delay:       delay,
		interpolate: cfg.interpolate,
	}, nil
}

// Bank returns the resampler's underlying FilterBank, primarily so an
// orchestration layer can read NumTaps()/NumFilters() without threading
// the bank through separately.
func (r *Resampler) Bank() *FilterBank { return r.bank }

// Channels returns the channel count the Resampler was constructed with.
func (r *Resampler) Channels() int { return r.channels }

// GroupDelay returns the FIR group delay in input samples (T/2), the
// amount AdvancePosition should be called with at start-up to align the
// first output sample with the first input sample instead of with the
// filter's zero-padded warm-up region.
func (r *Resampler) GroupDelay() float64 {
	return float64(r.bank.NumTaps()) / 2
}

// AdvancePosition adds delta (input-sample units) to the read position.
// Typically called once after construction with GroupDelay() +
// userPhaseShift, where |userPhaseShift| < 1.0.
func (r *Resampler) AdvancePosition(delta float64) {
	r.position += delta
}

// GetPosition returns the current fractional read position, in
// input-sample units. ASRC feedback loops poll this between calls.
func (r *Resampler) GetPosition() float64 {
	return r.position
}

// Reset zeros all delay lines and sets position back to 0.
func (r *Resampler) Reset() {
	for _, d := range r.delay {
		d.reset()
	}
	r.position = 0
	r.pushed = 0
}

// Close releases the Resampler's owned delay lines. The FilterBank may be
// shared across several Resamplers, so Close leaves it alone.
func (r *Resampler) Close() error {
	r.delay = nil
	r.bank = nil
	return nil
}

// ProcessInterleaved consumes up to inFrames frames of interleaved input
// (channels inner) and writes up to outCapacity frames of interleaved
// output, advancing the fractional read position by 1/ratio per output
// frame. ratio must be positive and finite; it may change between calls
// (ASRC), and the fractional position is preserved across calls.
//
// in must have length >= inFrames*Channels(); out must have length >=
// outCapacity*Channels().
func (r *Resampler) ProcessInterleaved(in []float32, inFrames int, out []float32, outCapacity int, ratio float64) (ProcessResult, error) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ProcessResult{}, fmt.Errorf("%w: got %g", ErrInvalidRatio, ratio)
	}
	if inFrames < 0 || len(in) < inFrames*r.channels {
		return ProcessResult{}, fmt.Errorf("%w: in too short for %d frames", ErrInvalidBufferSize, inFrames)
	}
	if outCapacity < 0 || len(out) < outCapacity*r.channels {
		return ProcessResult{}, fmt.Errorf("%w: out too short for capacity %d", ErrInvalidBufferSize, outCapacity)
	}

	step := 1 / ratio
	inputConsumed := 0
	outFrames := 0
	numFilters := r.bank.NumFilters()

	for outFrames < outCapacity {
		// Push input frames until the delay lines hold the sample at
		// floor(position), or input runs out. Samples not yet pushed
		// read back as silence (delay lines start zero-filled), which is
		// the expected start-up ramp from zero for a causal FIR.
		for int64(math.Floor(r.position)) >= r.pushed {
			if inputConsumed >= inFrames {
				goto done
			}
			base := inputConsumed * r.channels
			for ch := 0; ch < r.channels; ch++ {
				r.delay[ch].push(float64(in[base+ch]))
			}
			r.pushed++
			inputConsumed++
		}

		frac := r.position - math.Floor(r.position)
		k0 := int(math.Floor(frac * float64(numFilters)))
		if k0 >= numFilters {
			k0 = numFilters - 1
		}
		alpha := frac*float64(numFilters) - float64(k0)

		row0 := r.bank.Row(k0)
		outBase := outFrames * r.channels
		if r.interpolate {
			row1 := r.bank.Row(k0 + 1)
			for ch := 0; ch < r.channels; ch++ {
				y0 := r.delay[ch].dot(row0)
				y1 := r.delay[ch].dot(row1)
				out[outBase+ch] = float32(y0 + alpha*(y1-y0))
			}
		} else {
			for ch := 0; ch < r.channels; ch++ {
				out[outBase+ch] = float32(r.delay[ch].dot(row0))
			}
		}

		outFrames++
		r.position += step
	}

done:
	if r.position > compactThreshold {
		shift := math.Floor(r.position)
		r.position -= shift
		r.pushed -= int64(shift)
	}

	return ProcessResult{InputConsumed: inputConsumed, OutputGenerated: outFrames}, nil
}
