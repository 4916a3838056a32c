// SPDX-License-Identifier: EPL-2.0

// Package condition implements the host-side sample-conditioning layer
// applied to the kernel's float output: float-to-integer quantization with
// TPDF dither and 1st-order noise shaping, and packing into little-endian
// PCM or float bytes. Gain scaling is not part of it. None of it runs
// inside the resampling kernel itself, which works exclusively in 32-bit
// float interleaved buffers.
//
// Each channel owns one quantization-error accumulator and one
// independent RNG (grounded on the error-feedback accumulator pattern in
// github.com/thesyncim/gopus's silk noise shaper), so dithering one
// channel never perturbs another's sequence.
package condition

import "math/rand/v2"

// Channel holds the running state a single channel's quantizer needs: the
// previous sample's rounding error (fed back for 1st-order noise shaping)
// and its own dither RNG.
type Channel struct {
	rng      *rand.Rand
	feedback float64
}

// NewChannel seeds a Channel's dither generator. Two Channels built from
// the same seed produce identical dither sequences; pass distinct seeds
// (e.g. derived from a channel index) to decorrelate channels.
func NewChannel(seed uint64) *Channel {
	return &Channel{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// tpdf draws a triangular-probability-density dither sample in (-1, 1):
// the difference of two independent uniform draws, which is the standard
// construction for TPDF dither from a uniform RNG.
func (c *Channel) tpdf() float64 {
	return c.rng.Float64() - c.rng.Float64()
}

// Quantize converts a float32 sample in [-1, 1] to a signed integer at the
// given bit depth (1..32 inclusive), adding TPDF dither at one quantization
// step and feeding back the previous sample's rounding error (1st-order
// noise shaping) before rounding.
func (c *Channel) Quantize(x float32, bits int) int32 {
	full := float64(int64(1)<<uint(bits-1)) - 1

	v := float64(x)*full + c.feedback + c.tpdf()
	q := roundHalfAwayFromZero(v)

	if q > full {
		q = full
	}
	if q < -full-1 {
		q = -full - 1
	}

	c.feedback = v - q
	return int32(q)
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

// Reset clears the noise-shaping accumulator. The dither RNG's sequence is
// left untouched: a fresh stream doesn't need a fresh random seed, only a
// clean feedback history.
func (c *Channel) Reset() {
	c.feedback = 0
}

// Conditioner quantizes interleaved float32 buffers to signed PCM at an
// arbitrary bit depth, one Channel per audio channel.
type Conditioner struct {
	channels []*Channel
	bits     int
}

// NewConditioner builds a Conditioner for the given channel count and bit
// depth (1..32). Each channel is seeded from its own index so repeated runs
// are reproducible while channels stay decorrelated.
func NewConditioner(channels, bits int) *Conditioner {
	c := &Conditioner{
		channels: make([]*Channel, channels),
		bits:     bits,
	}
	for i := range c.channels {
		c.channels[i] = NewChannel(uint64(i) + 1)
	}
	return c
}

// Bits reports the configured output bit depth.
func (c *Conditioner) Bits() int { return c.bits }

// QuantizeInterleaved converts frames of interleaved float32 samples in src
// to signed integers, appending them to dst in the same interleaved order.
func (c *Conditioner) QuantizeInterleaved(dst []int32, src []float32, frames int) []int32 {
	channels := len(c.channels)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			dst = append(dst, c.channels[ch].Quantize(src[f*channels+ch], c.bits))
		}
	}
	return dst
}

// Reset clears every channel's noise-shaping accumulator.
func (c *Conditioner) Reset() {
	for _, ch := range c.channels {
		ch.Reset()
	}
}
