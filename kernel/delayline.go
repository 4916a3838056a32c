// SPDX-License-Identifier: EPL-2.0

package kernel

// delayLine is a per-channel circular history buffer holding the T most
// recent input samples, where T is the filter bank's tap count.
type delayLine struct {
	buf    []float64
	cap    int
	write  int // next write index
	filled int // number of valid samples written so far, capped at cap
}

func newDelayLine(taps int) *delayLine {
	return &delayLine{
		buf: make([]float64, taps),
		cap: taps,
	}
}

// push appends one sample, overwriting the oldest.
func (d *delayLine) push(x float64) {
	d.buf[d.write] = x
	d.write = (d.write + 1) % d.cap
	if d.filled < d.cap {
		d.filled++
	}
}

// ready reports whether the line holds a full T-tap history.
func (d *delayLine) ready() bool {
	return d.filled >= d.cap
}

// at returns the sample written `age` pushes ago (age=0 is the most
// recent, age=cap-1 the oldest still retained).
func (d *delayLine) at(age int) float64 {
	idx := d.write - 1 - age
	idx %= d.cap
	if idx < 0 {
		idx += d.cap
	}
	return d.buf[idx]
}

// reset clears the line to silence.
func (d *delayLine) reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.write = 0
	d.filled = 0
}

// dot computes sum(taps[i] * sample at age (cap-1-i)) for i in [0,len(taps)),
// i.e. convolves taps against the history oldest-to-newest: taps[i]
// multiplies the sample that is (len(taps)-1-i) pushes old, so taps[0]
// lines up with the oldest retained sample.
func (d *delayLine) dot(taps []float64) float64 {
	var sum float64
	n := len(taps)
	for i := 0; i < n; i++ {
		age := n - 1 - i
		sum += taps[i] * d.at(age)
	}
	return sum
}
