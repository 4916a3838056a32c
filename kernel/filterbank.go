// SPDX-License-Identifier: EPL-2.0

package kernel

import "fmt"

// FilterBank is an immutable table of F+1 windowed-sinc FIR filters, each
// of length T, covering the fractional phase positions k/F for k in [0,F).
// Row F is a sentinel equal to row 0 shifted by one input sample, so a
// streaming driver can read rows k and k+1 without a modulus at the wrap.
//
// Construction is grounded on the per-phase table build in
// github.com/cwbudde/algo-dsp/dsp/resample's designPolyphaseFIR: lay out
// the continuous prototype, normalize each row to unit DC gain, guard
// against a degenerate zero-sum row.
type FilterBank struct {
	numFilters int
	numTaps    int
	window     Window
	interp     bool
	lowpass    bool
	cutoff     float64
	taps       [][]float64 // (numFilters+1) rows of numTaps taps each
}

// NewFilterBank builds a bank of numFilters filters, each numTaps taps
// long, for fractional-phase interpolation. cutoff is the normalized
// passband edge in (0,1]; it only affects the taps when includeLowpass is
// true (cutoff == 1.0 is conventional when it is false).
func NewFilterBank(numFilters, numTaps int, window Window, includeLowpass bool, cutoff float64) (*FilterBank, error) {
	if numFilters < 2 || numFilters > 1024 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFilters, numFilters)
	}
	if numTaps < 4 || numTaps > 1024 || numTaps%4 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTaps, numTaps)
	}
	if cutoff <= 0 || cutoff > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidCutoff, cutoff)
	}

	c := 1.0
	if includeLowpass {
		c = cutoff
	}

	fb := &FilterBank{
		numFilters: numFilters,
		numTaps:    numTaps,
		window:     window,
		lowpass:    includeLowpass,
		cutoff:     cutoff,
		taps:       make([][]float64, numFilters+1),
	}

	half := float64(numTaps) / 2

	for k := 0; k < numFilters; k++ {
		row := make([]float64, numTaps)
		var sum float64
		for i := 0; i < numTaps; i++ {
			x := float64(i) - half + 1 + float64(k)/float64(numFilters)
			u := x / half
			h := windowValue(window, u) * sinc(c*x)
			row[i] = h
			sum += h
		}
		if sum != 0 {
			for i := range row {
				row[i] /= sum
			}
		}
		fb.taps[k] = row
	}

	// Sentinel row: row 0 shifted by one input sample.
	sentinel := make([]float64, numTaps)
	sentinel[0] = 0
	copy(sentinel[1:], fb.taps[0][:numTaps-1])
	fb.taps[numFilters] = sentinel

	return fb, nil
}

// NumFilters returns F.
func (fb *FilterBank) NumFilters() int { return fb.numFilters }

// NumTaps returns T.
func (fb *FilterBank) NumTaps() int { return fb.numTaps }

// Cutoff returns the normalized cutoff stored at construction time,
// regardless of whether the lowpass was actually applied.
func (fb *FilterBank) Cutoff() float64 { return fb.cutoff }

// IncludesLowpass reports whether the sinc was scaled by Cutoff.
func (fb *FilterBank) IncludesLowpass() bool { return fb.lowpass }

// Window reports the apodization function used.
func (fb *FilterBank) Window() Window { return fb.window }

// Row returns the taps for filter index k, where k may be numFilters (the
// sentinel row). It is a read-only view into the bank's own storage.
func (fb *FilterBank) Row(k int) []float64 {
	return fb.taps[k]
}
