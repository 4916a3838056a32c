// SPDX-License-Identifier: EPL-2.0

package sincrate

import (
	"fmt"

	"github.com/ik5/sincrate/audio"
)

// ResampleToMono16 is a high-level convenience function that resamples audio
// to a target sample rate, converts it to mono, and collects all samples as
// dithered 16-bit PCM data. It's a thin wrapper over audio.ResampleToMono16
// for callers who don't need the audio subpackage's lower-level types.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	pcm16, rate, err := sincrate.ResampleToMono16(src, 8000, 4096)
//	if err != nil && err != io.EOF {
//	    panic(err)
//	}
//	// pcm16 now contains dithered mono 16-bit PCM at 8kHz
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	pcm16, rate, err := audio.ResampleToMono16(src, targetRate, bufferSize)
	if err != nil {
		return pcm16, rate, fmt.Errorf("%w", err)
	}
	return pcm16, rate, nil
}
