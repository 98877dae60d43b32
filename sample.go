// Package pitmaster models the temperature trajectory of a long, slow cook.
// It buffers timestamped probe readings, detects the stall with a local
// finite-difference growth-rate estimate, and fits a five-parameter logistic
// curve to the pre-stall ramp to forecast wrap and finish times.
package pitmaster

import (
	"sync"
	"time"
)

// Sample is a single reading from the pit and meat probes. It is immutable
// once appended to a SampleBuffer.
type Sample struct {
	Time time.Time `json:"time"`
	Pit  float64   `json:"pit"`  // °F
	Meat float64   `json:"meat"` // °F
}

// SampleBuffer is an append-only, chronological store of every sample seen
// during a cook. It never drops samples; windowed analysis slices the most
// recent N via Recent rather than assuming a bounded buffer.
//
// One producer may Append while one consumer reads. Readers always receive
// copies, so a consumer can analyze a snapshot without racing later appends.
//
// Append trusts the feed to deliver timestamps in non-decreasing order.
// Out-of-order samples are not rejected and will silently skew the stall
// derivative and the curve-fitting window.
type SampleBuffer struct {
	mu      sync.Mutex
	samples []Sample
}

// NewSampleBuffer returns an empty buffer.
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

// Append adds s to the end of the buffer.
func (b *SampleBuffer) Append(s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, s)
}

// Len returns the number of samples ingested so far.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.samples)
}

// Recent returns a copy of the last n samples, or fewer if the buffer is
// shorter than n.
func (b *SampleBuffer) Recent(n int) []Sample {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > len(b.samples) {
		n = len(b.samples)
	}

	out := make([]Sample, n)
	copy(out, b.samples[len(b.samples)-n:])

	return out
}

// All returns a copy of the full sample history in ingestion order.
func (b *SampleBuffer) All() []Sample {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Sample, len(b.samples))
	copy(out, b.samples)

	return out
}
