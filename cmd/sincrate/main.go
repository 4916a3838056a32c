// SPDX-License-Identifier: EPL-2.0

// Command sincrate resamples a WAV/MP3/Ogg-Vorbis file to an arbitrary
// target sample rate through the windowed-sinc polyphase kernel in package
// kernel, writing PCM or float WAV at an arbitrary bit depth.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ik5/sincrate/audio"
	"github.com/ik5/sincrate/audio/condition"
	"github.com/ik5/sincrate/formats/mp3"
	"github.com/ik5/sincrate/formats/vorbis"
	"github.com/ik5/sincrate/formats/wav"
	"github.com/ik5/sincrate/kernel"
)

// presetTaps maps the -1..-4 quality presets to (F=T).
var presetTaps = map[int]int{1: 16, 2: 64, 3: 256, 4: 1024}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	var (
		preset1   = pflag.BoolP("preset-1", "1", false, "quality preset 1 (F=T=16)")
		preset2   = pflag.BoolP("preset-2", "2", false, "quality preset 2 (F=T=64), the default")
		preset3   = pflag.BoolP("preset-3", "3", false, "quality preset 3 (F=T=256)")
		preset4   = pflag.BoolP("preset-4", "4", false, "quality preset 4 (F=T=1024)")
		filters   = pflag.IntP("filters", "f", 0, "override number of filter-bank phases F")
		taps      = pflag.IntP("taps", "t", 0, "override number of taps per filter T")
		rate      = pflag.IntP("rate", "r", 0, "target sample rate in Hz (required)")
		gainDB    = pflag.Float64P("gain", "g", 0, "output gain in dB")
		phaseDeg  = pflag.Float64P("phase-shift", "s", 0, "phase shift in degrees, |s| < 360")
		lowpassHz = pflag.Float64P("lowpass", "l", 0, "explicit lowpass cutoff in Hz (overrides the automatic downsample-cutoff default)")
		noInterp  = pflag.BoolP("no-interpolate", "n", false, "disable linear blending between adjacent filter phases")
		blackman  = pflag.BoolP("blackman-harris", "b", false, "use the 4-term Blackman-Harris window instead of Hann")
		biquad    = pflag.BoolP("biquad", "p", false, "enable the pre/post biquad anti-alias cascade")
		outBits   = pflag.IntP("output-bits", "o", 16, "output PCM bit depth (4-24), or 32 with --float")
		outFloat  = pflag.Bool("float", false, "write 32-bit IEEE float samples instead of integer PCM")
		verbose   = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input> <output.wav>\n\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	preset := 2 // default quality, per presetTaps
	switch {
	case *preset1:
		preset = 1
	case *preset3:
		preset = 3
	case *preset4:
		preset = 4
	}

	if pflag.NArg() < 2 {
		pflag.Usage()
		os.Exit(2)
	}
	inPath, outPath := pflag.Arg(0), pflag.Arg(1)

	if *rate <= 0 {
		logger.Fatal("missing required -r/--rate")
	}
	if math.Abs(*phaseDeg) >= 360 {
		logger.Fatal("phase shift out of range, must satisfy |s| < 360", "shift", *phaseDeg)
	}

	effTaps, effFilters := presetTaps[preset], presetTaps[preset]
	if *taps > 0 {
		effTaps = *taps
	}
	if *filters > 0 {
		effFilters = *filters
	}

	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})

	ext := filepath.Ext(inPath)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	dec, ok := reg.Get(ext)
	if !ok {
		logger.Fatal("unsupported input format", "ext", ext)
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		logger.Fatal("opening input", "err", err)
	}
	defer inFile.Close()

	src, err := dec.Decode(inFile)
	if err != nil {
		logger.Fatal("decoding input", "err", err)
	}
	defer src.Close()

	logger.Debug("decoded input", "sampleRate", src.SampleRate(), "channels", src.Channels())

	opts := []audio.Option{
		audio.WithTaps(effTaps),
		audio.WithFilters(effFilters),
		audio.WithInterpolation(!*noInterp),
		audio.WithBiquadMargin(*biquad),
		audio.WithPhaseShift(*phaseDeg / 360),
	}
	if *blackman {
		opts = append(opts, audio.WithWindow(kernel.WindowBlackmanHarris4))
	}
	if *lowpassHz > 0 {
		nyquist := float64(src.SampleRate()) / 2
		opts = append(opts, audio.WithLowpass(*lowpassHz/nyquist))
	}

	resampler, err := audio.NewResampler(src, *rate, opts...)
	if err != nil {
		logger.Fatal("constructing resampler", "err", err)
	}
	defer resampler.Close()

	gain := float32(math.Pow(10, *gainDB/20))

	outFile, err := os.Create(outPath)
	if err != nil {
		logger.Fatal("creating output", "err", err)
	}
	defer outFile.Close()

	if err := run(logger, resampler, outFile, gain, *outBits, *outFloat); err != nil {
		logger.Fatal("resampling", "err", err)
	}

	logger.Info("wrote output", "path", outPath)
}

// run drains resampler, applies gain and conditioning, and streams a WAV
// file to w. It buffers the whole conditioned output before writing the
// header so the data-chunk size is known up front, rather than seeking
// back to patch it in after the fact.
func run(logger *log.Logger, resampler *audio.Resampler, w *os.File, gain float32, outBits int, outFloat bool) error {
	channels := resampler.Channels()
	buf := make([]float32, audio.DefaultBufferFrames*channels)

	var conditioner *condition.Conditioner
	if !outFloat {
		conditioner = condition.NewConditioner(channels, outBits)
	}

	var pcm []int32
	var floatSamples []float32
	frames := 0

	for {
		n, err := resampler.ReadSamples(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				buf[i] *= gain
			}
			if outFloat {
				floatSamples = append(floatSamples, buf[:n]...)
			} else {
				pcm = conditioner.QuantizeInterleaved(pcm, buf[:n], n/channels)
			}
			frames += n / channels
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
	}

	logger.Debug("resampled", "frames", frames)

	writer := wav.Writer{
		SampleRate: resampler.SampleRate(),
		Channels:   channels,
		Bits:       outBits,
		Float:      outFloat,
	}
	if outFloat {
		writer.Bits = 32
		data := condition.PackFloat32(nil, floatSamples)
		return writer.WriteAll(w, data)
	}

	data := condition.PackPCM(nil, pcm, outBits)
	return writer.WriteAll(w, data)
}
