package pitmaster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// AlertType identifies an alert condition, and doubles as the cooldown key
// for SMS delivery.
type AlertType string

// Alert conditions raised while processing samples.
const (
	AlertPitCrash AlertType = "pit_crash"
	AlertPitSpike AlertType = "pit_spike"
	AlertStall    AlertType = "stall"
	AlertDoneSoon AlertType = "done_soon"
	AlertDone     AlertType = "done"
)

// Alert is a condition worth telling the pitmaster about.
type Alert struct {
	Type    AlertType
	Message string

	// AskAdvice marks alerts urgent enough to also put in front of the
	// advisor, not just the phone.
	AskAdvice bool
}

// Alerter watches incoming samples for conditions worth an alert. The crash,
// spike, and stall-approaching alerts latch: each fires once and re-arms only
// after its condition clears, so a pit hovering below threshold does not
// fire on every sample. Done and done-soon rely on the SMS cooldown instead.
type Alerter struct {
	TargetPit  float64 // °F
	TargetMeat float64 // °F

	latched map[AlertType]bool
}

// NewAlerter returns an Alerter for the given pit and meat targets.
func NewAlerter(targetPit, targetMeat float64) *Alerter {
	return &Alerter{
		TargetPit:  targetPit,
		TargetMeat: targetMeat,
		latched:    make(map[AlertType]bool),
	}
}

// Check evaluates s against the alert conditions and returns any alerts that
// fired. buf supplies the recent history for the stall-approaching check.
func (a *Alerter) Check(s Sample, buf *SampleBuffer) []Alert {
	var alerts []Alert

	if s.Pit < a.TargetPit-75 {
		if !a.latched[AlertPitCrash] {
			a.latched[AlertPitCrash] = true
			alerts = append(alerts, Alert{
				Type:      AlertPitCrash,
				Message:   fmt.Sprintf("Pit crashed to %.0f°F - add fuel NOW", s.Pit),
				AskAdvice: true,
			})
		}
	} else {
		a.latched[AlertPitCrash] = false
	}

	if s.Pit > a.TargetPit+50 {
		if !a.latched[AlertPitSpike] {
			a.latched[AlertPitSpike] = true
			alerts = append(alerts, Alert{
				Type:    AlertPitSpike,
				Message: fmt.Sprintf("Pit spiked to %.0f°F - close vents", s.Pit),
			})
		}
	} else {
		a.latched[AlertPitSpike] = false
	}

	if alert, ok := a.checkStallApproaching(s, buf); ok {
		alerts = append(alerts, alert)
	}

	if s.Meat > 195 && s.Meat < 200 {
		alerts = append(alerts, Alert{
			Type:    AlertDoneSoon,
			Message: fmt.Sprintf("Almost done! Meat at %.0f°F", s.Meat),
		})
	}

	if s.Meat >= a.TargetMeat {
		alerts = append(alerts, Alert{
			Type:    AlertDone,
			Message: fmt.Sprintf("DONE - meat hit %.0f°F", s.Meat),
		})
	}

	return alerts
}

// checkStallApproaching fires when the meat enters the 148-152°F band and
// the last 10 meat readings have flattened to within 3°F of each other.
func (a *Alerter) checkStallApproaching(s Sample, buf *SampleBuffer) (Alert, bool) {
	if s.Meat <= 148 || s.Meat >= 152 || buf.Len() <= 10 {
		a.latched[AlertStall] = false

		return Alert{}, false
	}

	recent := buf.Recent(10)
	meats := make([]float64, len(recent))

	for i, r := range recent {
		meats[i] = r.Meat
	}

	if floats.Max(meats)-floats.Min(meats) >= 3 {
		return Alert{}, false
	}

	if a.latched[AlertStall] {
		return Alert{}, false
	}

	a.latched[AlertStall] = true

	return Alert{
		Type:    AlertStall,
		Message: fmt.Sprintf("Stall incoming at %.0f°F - wrap now?", s.Meat),
	}, true
}
