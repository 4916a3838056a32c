// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResamplerMetadata(t *testing.T) {
	t.Parallel()

	src := newSilentSource(44100, 2, 1000)
	resampler, err := NewResampler(src, 8000)
	require.NoError(t, err)

	assert.Equal(t, 8000, resampler.SampleRate())
	assert.Equal(t, 2, resampler.Channels())
	assert.InDelta(t, 8000.0/44100.0, resampler.Ratio(), 1e-9)
}

func TestResamplerSameRateConvergesToConstant(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 1, 2000, 0.5)
	resampler, err := NewResampler(src, 8000, WithTaps(64), WithFilters(64))
	require.NoError(t, err)

	var samples []float32
	buf := make([]float32, 256)
	for {
		n, err := resampler.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	require.NotEmpty(t, samples)
	for i := 64; i < len(samples); i++ {
		assert.InDeltaf(t, 0.5, float64(samples[i]), 1e-3, "sample %d", i)
	}
}

func TestResamplerDownsamplingProducesExpectedFrameCount(t *testing.T) {
	t.Parallel()

	totalSamples := 44100
	src := newSineSource(44100, 1, totalSamples, 440.0)
	resampler, err := NewResampler(src, 8000, WithTaps(64), WithFilters(64))
	require.NoError(t, err)

	var samples []float32
	buf := make([]float32, 1024)
	for {
		n, err := resampler.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	expected := 8000
	tolerance := 200
	assert.InDeltaf(t, expected, len(samples), float64(tolerance), "got %d output samples", len(samples))
}

func TestResamplerUpsamplingProducesExpectedFrameCount(t *testing.T) {
	t.Parallel()

	totalSamples := 8000
	src := newSineSource(8000, 2, totalSamples, 200.0)
	resampler, err := NewResampler(src, 44100, WithTaps(64), WithFilters(64))
	require.NoError(t, err)

	var samples []float32
	buf := make([]float32, 2048)
	for {
		n, err := resampler.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	frames := len(samples) / 2
	expected := 44100
	tolerance := 500
	assert.InDeltaf(t, expected, frames, float64(tolerance), "got %d output frames", frames)
}

func TestResamplerRejectsMisalignedBuffer(t *testing.T) {
	t.Parallel()

	src := newSilentSource(8000, 2, 100)
	resampler, err := NewResampler(src, 8000)
	require.NoError(t, err)

	_, err = resampler.ReadSamples(make([]float32, 3))
	assert.ErrorIs(t, err, ErrInvalidDstSize)
}

func TestResamplerChunkedReadsMatchOneShot(t *testing.T) {
	t.Parallel()

	readAll := func(r *Resampler, chunkSize int) []float32 {
		var out []float32
		buf := make([]float32, chunkSize)
		for {
			n, err := r.ReadSamples(buf)
			out = append(out, buf[:n]...)
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
		}
		return out
	}

	srcA := newSineSource(8000, 1, 4000, 300.0)
	resamplerA, err := NewResampler(srcA, 8000, WithTaps(32), WithFilters(32))
	require.NoError(t, err)
	oneShot := readAll(resamplerA, 8192)

	srcB := newSineSource(8000, 1, 4000, 300.0)
	resamplerB, err := NewResampler(srcB, 8000, WithTaps(32), WithFilters(32))
	require.NoError(t, err)
	chunked := readAll(resamplerB, 37)

	require.Equal(t, len(oneShot), len(chunked))
	for i := range oneShot {
		assert.Equal(t, oneShot[i], chunked[i], "mismatch at %d", i)
	}
}

func TestResamplerBiquadMarginConvergesToConstant(t *testing.T) {
	t.Parallel()

	src := newConstantSource(44100, 1, 4096, 0.7)
	resampler, err := NewResampler(src, 8000, WithTaps(64), WithFilters(64), WithBiquadMargin(true))
	require.NoError(t, err)

	var samples []float32
	buf := make([]float32, 256)
	for {
		n, err := resampler.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	require.Greater(t, len(samples), 200)
	for i := 100; i < len(samples); i++ {
		assert.InDeltaf(t, 0.7, float64(samples[i]), 5e-3, "sample %d", i)
	}
}

func TestResamplerPositionAdvancesWithStreamLength(t *testing.T) {
	t.Parallel()

	src := newSineSource(1000, 1, 1000, 50.0)
	resampler, err := NewResampler(src, 1001, WithTaps(16), WithFilters(16))
	require.NoError(t, err)

	buf := make([]float32, 4096)
	for {
		_, err := resampler.ReadSamples(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	// Position grows by input samples consumed, plus the group-delay prime.
	assert.Greater(t, resampler.Position(), 900.0)
}

func TestResamplerSetRatioSmoothsTowardTarget(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 1, 8000, 0.5)
	resampler, err := NewResampler(src, 8000, WithTaps(32), WithFilters(32))
	require.NoError(t, err)

	base := resampler.Ratio()
	resampler.SetRatio(base * 2)

	// The very next call still starts from the old ratio...
	first := resampler.effectiveRatio()
	assert.InDelta(t, base, first, 1e-6)

	// ...and settles on the new target after ratioSmoothSteps calls, with
	// intermediate steps strictly between the two.
	var prev = first
	for i := 1; i < ratioSmoothSteps; i++ {
		cur := resampler.effectiveRatio()
		assert.Greater(t, cur, prev)
		assert.Less(t, cur, base*2+1e-9)
		prev = cur
	}

	settled := resampler.effectiveRatio()
	assert.InDelta(t, base*2, settled, 1e-6)
}

func TestNewResamplerRejectsInvalidRate(t *testing.T) {
	t.Parallel()

	src := newSilentSource(8000, 1, 10)
	_, err := NewResampler(src, 0)
	assert.Error(t, err)
}

func TestNewResamplerPropagatesKernelValidation(t *testing.T) {
	t.Parallel()

	src := newSilentSource(8000, 1, 10)
	_, err := NewResampler(src, 8000, WithTaps(5)) // not a multiple of 4
	assert.Error(t, err)
}

func TestResamplerCloseClosesSource(t *testing.T) {
	t.Parallel()

	src := newSilentSource(8000, 1, 10)
	resampler, err := NewResampler(src, 8000)
	require.NoError(t, err)
	require.NoError(t, resampler.Close())
}

// A bit of a sanity check on float precision assumptions used above.
func TestFloat32PrecisionAssumption(t *testing.T) {
	t.Parallel()
	assert.True(t, math.Abs(float64(float32(0.1))-0.1) < 1e-3)
}
