package pitmaster

import "math"

// Default stall detection thresholds. The window size and the stall zone are
// empirical values for low-and-slow cooks at a ~30 second sensor cadence;
// they are fields on StallDetector rather than hard-coded so other cadences
// and meats can tune them.
const (
	DefaultStallWindow  = 10
	DefaultStallMinTemp = 150.0 // °F
	DefaultStallMaxTemp = 170.0 // °F
	DefaultMaxAlpha     = 0.03  // per hour
)

// StallDetector decides whether the cook is currently in the stall (Stage II)
// from a short window of the most recent samples.
//
// The criterion is a relative growth rate: a centered 3-point finite
// difference over the newest samples gives f', and the stall is declared when
// |f'/f| drops to ~zero while the meat sits in the stall temperature zone.
// The relative rate (rather than an absolute °F/hour threshold) normalizes
// for meat heating faster at lower absolute temperatures.
type StallDetector struct {
	Window   int     // samples examined
	MinTemp  float64 // °F, lower edge of the stall zone
	MaxTemp  float64 // °F, upper edge of the stall zone
	MaxAlpha float64 // |f'/f| at or below this is a plateau, per hour
}

// NewStallDetector returns a detector with the default thresholds.
func NewStallDetector() *StallDetector {
	return &StallDetector{
		Window:   DefaultStallWindow,
		MinTemp:  DefaultStallMinTemp,
		MaxTemp:  DefaultStallMaxTemp,
		MaxAlpha: DefaultMaxAlpha,
	}
}

// Stalled reports whether the meat is currently stalled. With fewer than
// Window samples, or a degenerate feed (fewer than 3 distinct timestamps in
// the window, or zero elapsed time across the newest 3 samples), it reports
// false rather than erroring.
func (d *StallDetector) Stalled(buf *SampleBuffer) bool {
	recent := buf.Recent(d.Window)
	if len(recent) < d.Window {
		return false
	}

	distinct := make(map[int64]struct{}, len(recent))
	for _, s := range recent {
		distinct[s.Time.UnixNano()] = struct{}{}
	}

	if len(distinct) < 3 {
		return false
	}

	newest := recent[len(recent)-1]
	middle := recent[len(recent)-2]
	oldest := recent[len(recent)-3]

	dt := newest.Time.Sub(oldest.Time).Hours()
	if dt == 0 {
		return false
	}

	prime := (newest.Meat - oldest.Meat) / (2 * dt) // °F per hour
	alpha := prime / middle.Meat                    // per hour

	return middle.Meat >= d.MinTemp && middle.Meat <= d.MaxTemp && math.Abs(alpha) <= d.MaxAlpha
}
