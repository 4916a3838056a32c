// SPDX-License-Identifier: EPL-2.0

package kernel

import "errors"

var (
	// ErrInvalidTaps indicates num_taps is out of range or not a multiple of 4.
	ErrInvalidTaps = errors.New("kernel: num_taps must be a multiple of 4 in [4, 1024]")

	// ErrInvalidFilters indicates num_filters is out of range.
	ErrInvalidFilters = errors.New("kernel: num_filters must be in [2, 1024]")

	// ErrInvalidChannels indicates the channel count is out of range.
	ErrInvalidChannels = errors.New("kernel: channels must be in [1, 32]")

	// ErrInvalidCutoff indicates cutoff is outside (0, 1].
	ErrInvalidCutoff = errors.New("kernel: cutoff must be in (0, 1]")

	// ErrInvalidRatio indicates a non-positive or non-finite ratio was supplied to Process.
	ErrInvalidRatio = errors.New("kernel: ratio must be positive and finite")

	// ErrInvalidPhaseShift indicates |phase_shift| >= 1.0 sample.
	ErrInvalidPhaseShift = errors.New("kernel: phase shift must satisfy |shift| < 1.0")

	// ErrInvalidBufferSize indicates an interleaved buffer length is not a
	// multiple of the resampler's channel count.
	ErrInvalidBufferSize = errors.New("kernel: buffer length must be a multiple of channels")

	// ErrAllocationFailure is returned by NewResampler when the requested
	// (channels, taps, filters) combination would require an unreasonably
	// large delay-line/table allocation. No partial state is retained.
	ErrAllocationFailure = errors.New("kernel: requested configuration exceeds allocation budget")
)
