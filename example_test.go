// SPDX-License-Identifier: EPL-2.0

package sincrate_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/sincrate"
	"github.com/ik5/sincrate/formats/wav"
)

// Example_basicUsage demonstrates the most common use case:
// decoding an audio file and resampling it to mono 16-bit PCM. Source and
// target rate match here, but the 6-frame input is shorter than the default
// 256-tap kernel's T/2 = 128-frame group-delay prime, so the kernel consumes
// all of it without reaching its first output frame.
func Example_basicUsage() {
	samples := []int16{100, -100, 200, -200, 300, -300}
	wavData := new(bytes.Buffer)
	wav.WriteWAV16(wavData, 8000, samples)

	decoder := wav.Decoder{}
	src, err := decoder.Decode(wavData)
	if err != nil {
		fmt.Printf("decode error: %v\n", err)
		return
	}

	pcm16, rate, err := sincrate.ResampleToMono16(src, 8000, 4096)
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Printf("resample error: %v\n", err)
		return
	}

	fmt.Printf("Processed %d samples at %d Hz\n", len(pcm16), rate)
	// Output: Processed 0 samples at 8000 Hz
}

// TestResampleToMono16CrossRate shows using ResampleToMono16 across a
// non-unity ratio. The output frame count tracks the ratio only
// approximately, since the polyphase kernel's T/2 group-delay prime leaves
// it about T/2*ratio frames short (about 23 here).
func TestResampleToMono16CrossRate(t *testing.T) {
	samples := make([]int16, 44100) // 1 second at 44.1kHz
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	wavData := new(bytes.Buffer)
	require.NoError(t, wav.WriteWAV16(wavData, 44100, samples))

	decoder := wav.Decoder{}
	src, err := decoder.Decode(wavData)
	require.NoError(t, err)

	pcm16, rate, err := sincrate.ResampleToMono16(src, 8000, 4096)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}

	assert.Equal(t, 8000, rate)
	assert.InDelta(t, 8000, len(pcm16), 200)
}

// Example_decodingWAV demonstrates decoding a WAV file.
func Example_decodingWAV() {
	samples := []int16{100, 200, 300, 400, 500}
	wavData := new(bytes.Buffer)
	wav.WriteWAV16(wavData, 16000, samples)

	decoder := wav.Decoder{}
	src, err := decoder.Decode(wavData)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("Sample rate: %d Hz\n", src.SampleRate())
	fmt.Printf("Channels: %d\n", src.Channels())

	buf := make([]float32, 10)
	n, err := src.ReadSamples(buf)
	if err != nil && err != io.EOF {
		fmt.Printf("read error: %v\n", err)
		return
	}

	fmt.Printf("Read %d samples\n", n)
	// Output:
	// Sample rate: 16000 Hz
	// Channels: 1
	// Read 5 samples
}

// Example_writingWAV demonstrates writing audio data to a WAV file.
func Example_writingWAV() {
	samples := make([]int16, 100)
	for i := range samples {
		if i%10 < 5 {
			samples[i] = 10000
		} else {
			samples[i] = -10000
		}
	}

	output := new(bytes.Buffer)
	err := wav.WriteWAV16(output, 8000, samples)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("Wrote WAV file: %d bytes\n", output.Len())
	fmt.Printf("Header (44 bytes) + data (%d bytes)\n", len(samples)*2)
	// Output:
	// Wrote WAV file: 244 bytes
	// Header (44 bytes) + data (200 bytes)
}

// TestProcessingPipeline shows building a custom processing pipeline.
func TestProcessingPipeline(t *testing.T) {
	samples := make([]int16, 44100*2) // 1 second stereo
	wavData := new(bytes.Buffer)
	require.NoError(t, wav.WriteWAV16(wavData, 44100, samples))

	decoder := wav.Decoder{}
	src, err := decoder.Decode(wavData)
	require.NoError(t, err)

	pcm16, rate, err := sincrate.ResampleToMono16(src, 8000, 4096)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}

	assert.Equal(t, 8000, rate)
	assert.InDelta(t, 8000, len(pcm16), 200)
}

// Example_multipleFormats shows how to decode different audio formats.
func Example_multipleFormats() {
	format := "wav" // In reality, check file extension or magic bytes

	switch format {
	case "wav":
		fmt.Println("Using WAV decoder")
	case "mp3":
		fmt.Println("Using MP3 decoder")
	case "ogg", "vorbis":
		fmt.Println("Using Vorbis decoder")
	case "aiff":
		fmt.Println("Using AIFF decoder")
	default:
		fmt.Println("Unsupported format")
	}

	// Output: Using WAV decoder
}

// Example_errorHandling demonstrates proper error handling.
func Example_errorHandling() {
	invalidData := bytes.NewReader([]byte("not an audio file"))

	decoder := wav.Decoder{}
	src, err := decoder.Decode(invalidData)

	if err != nil {
		if errors.Is(err, wav.ErrNotWavFile) {
			fmt.Println("Not a valid WAV file")
		} else {
			fmt.Printf("Decode error: %v\n", err)
		}
		return
	}

	_ = src
	// Output: Not a valid WAV file
}

// TestRealWorldUsage demonstrates a more complete real-world scenario.
func TestRealWorldUsage(t *testing.T) {
	samples := make([]int16, 16000) // 1 second at 16kHz
	wavData := new(bytes.Buffer)
	require.NoError(t, wav.WriteWAV16(wavData, 16000, samples))

	decoder := wav.Decoder{}
	src, err := decoder.Decode(wavData)
	require.NoError(t, err)

	targetRate := 8000
	bufferSize := 4096

	pcm16, rate, err := sincrate.ResampleToMono16(src, targetRate, bufferSize)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}

	assert.Equal(t, targetRate, rate)
	assert.InDelta(t, targetRate, len(pcm16), 200)
}

// TestBufferSizesDoNotAffectOutputLength demonstrates that buffer size is
// purely a memory/performance knob: results converge to the same output
// length regardless of the chunking chosen.
func TestBufferSizesDoNotAffectOutputLength(t *testing.T) {
	samples := make([]int16, 44100)

	bufferSizes := []int{1024, 4096, 16384}
	var lengths []int

	for _, size := range bufferSizes {
		wavData := new(bytes.Buffer)
		require.NoError(t, wav.WriteWAV16(wavData, 44100, samples))

		decoder := wav.Decoder{}
		src, err := decoder.Decode(wavData)
		require.NoError(t, err)

		pcm16, _, err := sincrate.ResampleToMono16(src, 8000, size)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
		}
		lengths = append(lengths, len(pcm16))
	}

	for i := 1; i < len(lengths); i++ {
		assert.Equal(t, lengths[0], lengths[i], "buffer size should not change total output length")
	}
}
