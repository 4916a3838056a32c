// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/sincrate/audio/condition"
)

// ResampleToMono16 is a high-level convenience function that resamples audio
// to a target sample rate, converts it to mono, and collects all samples as
// dithered 16-bit PCM data.
//
// This function creates a processing pipeline:
//  1. Resamples the source audio to targetRate through the polyphase kernel
//  2. Converts the resampled audio to mono by averaging channels
//  3. Reads all samples from the pipeline
//  4. Quantizes float32 samples to 16-bit PCM with TPDF dither and
//     1st-order noise shaping
//
// Parameters:
//   - src: The audio source to process (implements Source interface)
//   - targetRate: Target sample rate in Hz (e.g., 8000, 16000, 44100, 48000)
//   - bufferSize: Size of the buffer for reading samples (e.g., 4096)
//     Larger buffers may be more efficient but use more memory
//
// Returns:
//   - []int16: Collected PCM samples as 16-bit signed integers
//   - int: The output sample rate (same as targetRate)
//   - error: Any error encountered during processing; nil once the source
//     is drained (io.EOF is not passed on)
//
// Note: This is a convenience function for common use cases. For more
// control over the audio processing pipeline, use NewResampler() and
// NewMonoMixer() directly.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	pcm16, rate, err := audio.ResampleToMono16(src, 8000, 4096)
//	if err != nil && err != io.EOF {
//	    panic(err)
//	}
//	// pcm16 now contains dithered mono 16-bit PCM at 8kHz
func ResampleToMono16(src Source, targetRate int, bufferSize int) ([]int16, int, error) {
	resampler, err := NewResampler(src, targetRate)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	mono := NewMonoMixer(resampler)

	quantizer := condition.NewChannel(1)
	var pcm16 []int16
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		if n > 0 {
			for i := range n {
				pcm16 = append(pcm16, int16(quantizer.Quantize(buf[i], 16)))
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, targetRate, nil
}
