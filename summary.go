package pitmaster

import (
	"fmt"
	"time"
)

// Default trend window for summaries. At the default 30 second sensor
// cadence this is the last 20 samples.
const (
	DefaultCadence       = 30 * time.Second
	DefaultSummaryWindow = 10 * time.Minute
)

// Summary is a point-in-time view of the cook combining the raw short-window
// trend with the curve model's latest predictions. It performs no analysis of
// its own; everything here is derived from already-computed state.
type Summary struct {
	HasData bool

	Pit      float64 // °F, latest
	PitTrend float64 // °F change over the trend window
	Meat     float64 // °F, latest
	MeatRate float64 // °F/hour extrapolated from the trend window
	Window   time.Duration

	Ambient    float64 // °F, from the outdoor sensor
	HasAmbient bool

	Prediction    Prediction
	HasPrediction bool
	HoursLeft     float64 // until FinishETA, when predicted
}

// SummaryProjector renders summaries from a sample buffer and an optional
// curve model. The trend window is sized from the configured sensor cadence
// rather than a fixed sample count so the summary stays a ~10 minute view
// under any sensor rate.
type SummaryProjector struct {
	Buffer  *SampleBuffer
	Model   *CurveModel // may be nil
	Cadence time.Duration
	Window  time.Duration
}

// NewSummaryProjector returns a projector over buf and model with the default
// cadence and window.
func NewSummaryProjector(buf *SampleBuffer, model *CurveModel) *SummaryProjector {
	return &SummaryProjector{
		Buffer:  buf,
		Model:   model,
		Cadence: DefaultCadence,
		Window:  DefaultSummaryWindow,
	}
}

// SamplesPerWindow is the number of recent samples spanning the trend window
// at the configured cadence.
func (p *SummaryProjector) SamplesPerWindow() int {
	cadence := p.Cadence
	if cadence <= 0 {
		cadence = DefaultCadence
	}

	window := p.Window
	if window <= 0 {
		window = DefaultSummaryWindow
	}

	n := int(window / cadence)
	if n < 2 {
		n = 2
	}

	return n
}

// Snapshot builds a summary as of now. Ambient is the latest outdoor reading;
// pass ok=false when no ambient sensor has reported.
func (p *SummaryProjector) Snapshot(now time.Time, ambient float64, ok bool) Summary {
	recent := p.Buffer.Recent(p.SamplesPerWindow())
	if len(recent) < 2 {
		return Summary{}
	}

	first := recent[0]
	last := recent[len(recent)-1]

	s := Summary{
		HasData:    true,
		Pit:        last.Pit,
		PitTrend:   last.Pit - first.Pit,
		Meat:       last.Meat,
		Window:     p.Window,
		Ambient:    ambient,
		HasAmbient: ok,
	}

	if elapsed := last.Time.Sub(first.Time).Hours(); elapsed > 0 {
		s.MeatRate = (last.Meat - first.Meat) / elapsed
	}

	if pred, live := p.Model.Predictions(); live {
		s.Prediction = pred
		s.HasPrediction = true

		if pred.HasFinish() {
			s.HoursLeft = pred.FinishETA.Sub(now).Hours()
		}
	}

	return s
}

// String renders the summary in the compact form fed to the advisor and
// printed on each update.
func (s Summary) String() string {
	if !s.HasData {
		return "no temp data yet"
	}

	ambient := "Unknown"
	if s.HasAmbient {
		ambient = fmt.Sprintf("%.0f°F", s.Ambient)
	}

	out := fmt.Sprintf("Temps: pit %.0f°F (%+.1f/%.0f min), meat %.0f°F (%+.1f°F/hr), ambient %s",
		s.Pit, s.PitTrend, s.Window.Minutes(), s.Meat, s.MeatRate, ambient)

	if s.HasPrediction && s.Prediction.HasFinish() {
		out += fmt.Sprintf(" | ETA wrap %s, finish %s (%.1f h) RMSE %.1f°F",
			s.Prediction.WrapETA.Format("15:04"),
			s.Prediction.FinishETA.Format("15:04"),
			s.HoursLeft,
			s.Prediction.RMSE)
	}

	return out
}
