package pitmaster

import (
	"time"
)

// StaleAfter is how long without a probe reading before the cook is
// considered stale and worth a sensor check.
const StaleAfter = 5 * time.Minute

// CookConfig describes one smoking session.
type CookConfig struct {
	MeatType   string
	Weight     float64       // lbs
	TargetPit  float64       // °F
	TargetMeat float64       // °F
	Cadence    time.Duration // sensor cadence, defaults to 30s
	Start      time.Time     // defaults to now
}

// Cook is one smoking session: the full sample history plus the stall
// detector, curve model, summary projector, and alerting state that hang off
// it. All methods are intended for a single consumer goroutine; the sensor
// producer hands samples over a channel and never touches the Cook directly.
type Cook struct {
	MeatType   string
	Weight     float64
	TargetPit  float64
	TargetMeat float64
	Start      time.Time

	Buffer    *SampleBuffer
	Detector  *StallDetector
	Model     *CurveModel // nil disables curve fitting
	Projector *SummaryProjector
	Alerter   *Alerter

	ambient    float64
	hasAmbient bool
	lastUpdate time.Time
}

// NewCook starts a session from cfg.
func NewCook(cfg CookConfig) *Cook {
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}

	if cfg.Cadence <= 0 {
		cfg.Cadence = DefaultCadence
	}

	buf := NewSampleBuffer()
	model := NewCurveModel(cfg.TargetMeat, cfg.Start)

	projector := NewSummaryProjector(buf, model)
	projector.Cadence = cfg.Cadence

	return &Cook{
		MeatType:   cfg.MeatType,
		Weight:     cfg.Weight,
		TargetPit:  cfg.TargetPit,
		TargetMeat: cfg.TargetMeat,
		Start:      cfg.Start,
		Buffer:     buf,
		Detector:   NewStallDetector(),
		Model:      model,
		Projector:  projector,
		Alerter:    NewAlerter(cfg.TargetPit, cfg.TargetMeat),
	}
}

// ProcessSample ingests one probe reading: appends it to the history, refits
// the curve model, and returns any alerts the reading raised.
func (c *Cook) ProcessSample(s Sample) []Alert {
	c.Buffer.Append(s)
	c.lastUpdate = s.Time
	c.Model.Refit(c.Buffer, s.Time)

	return c.Alerter.Check(s, c.Buffer)
}

// SetAmbient records the latest outdoor temperature.
func (c *Cook) SetAmbient(f float64) {
	c.ambient = f
	c.hasAmbient = true
}

// Ambient returns the latest outdoor temperature, if one has been reported.
func (c *Cook) Ambient() (float64, bool) {
	return c.ambient, c.hasAmbient
}

// Stalled reports whether the meat is currently in the stall.
func (c *Cook) Stalled() bool {
	return c.Detector.Stalled(c.Buffer)
}

// Predictions returns the curve model's latest successful fit, if any.
func (c *Cook) Predictions() (Prediction, bool) {
	return c.Model.Predictions()
}

// Summary builds the display summary as of now.
func (c *Cook) Summary(now time.Time) Summary {
	return c.Projector.Snapshot(now, c.ambient, c.hasAmbient)
}

// Elapsed is the cook time as of now.
func (c *Cook) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.Start)
}

// Stale reports whether no probe reading has arrived for StaleAfter.
func (c *Cook) Stale(now time.Time) bool {
	return !c.lastUpdate.IsZero() && now.Sub(c.lastUpdate) > StaleAfter
}

// Record is one line of the JSON-lines cook log written during monitoring
// and replayed by the forecast and plot commands.
type Record struct {
	Time    time.Time `json:"time"`
	Pit     float64   `json:"pit"`
	Meat    float64   `json:"meat"`
	Ambient float64   `json:"ambient,omitempty"`
}

// Sample converts the record back to a probe sample.
func (r Record) Sample() Sample {
	return Sample{Time: r.Time, Pit: r.Pit, Meat: r.Meat}
}
