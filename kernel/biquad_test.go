// SPDX-License-Identifier: EPL-2.0

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A DC input through any stable lowpass section settles to unity gain: the
// Butterworth design normalizes B0+B1+B2 == 1+A1+A2 at w=0 by construction.
func TestSectionDCGainIsUnity(t *testing.T) {
	t.Parallel()

	c := DesignLowpassButterworth(0.1)
	s := NewSection(c)

	var y float64
	for i := 0; i < 200; i++ {
		y = s.ProcessSample(1.0)
	}
	assert.InDelta(t, 1.0, y, 1e-6)
}

// A two-section cascade at cutoff 0.25 driven by a constant 1.0 settles to
// 1.0 within 1e-6 after 100 warm-up samples.
func TestCascadeDCSteadyState(t *testing.T) {
	t.Parallel()

	coeffs := DesignLowpassButterworth(0.25)
	cascade := NewCascade(coeffs)

	var y float64
	for i := 0; i < 100; i++ {
		y = cascade.ProcessSample(1.0)
	}
	assert.InDelta(t, 1.0, y, 1e-6)
}

func TestCascadeProcessInterleavedMatchesProcessSample(t *testing.T) {
	t.Parallel()

	coeffs := DesignLowpassButterworth(0.15)
	viaSamples := NewCascade(coeffs)
	viaBuffer := NewCascade(coeffs)

	const n = 64
	buf := make([]float32, n*2) // stereo, channel 1 is the probe
	want := make([]float64, n)
	for i := 0; i < n; i++ {
		x := 0.0
		if i%7 == 0 {
			x = 1.0
		}
		buf[i*2+1] = float32(x)
		want[i] = viaSamples.ProcessSample(x)
	}

	viaBuffer.ProcessInterleaved(buf, 1, 2, n)

	for i := 0; i < n; i++ {
		assert.InDelta(t, want[i], float64(buf[i*2+1]), 1e-6)
	}
}

func TestCascadeResetClearsState(t *testing.T) {
	t.Parallel()

	coeffs := DesignLowpassButterworth(0.2)
	c := NewCascade(coeffs)

	for i := 0; i < 10; i++ {
		c.ProcessSample(1.0)
	}
	c.Reset()

	// Immediately after reset, an impulse response should match a freshly
	// constructed cascade's first output.
	fresh := NewCascade(coeffs)
	assert.Equal(t, fresh.ProcessSample(1.0), c.ProcessSample(1.0))
}
