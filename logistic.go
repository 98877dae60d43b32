package pitmaster

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Curve fitting defaults. The one hour window and the 150°F ceiling restrict
// fitting to genuinely pre-stall (Stage I) data even when the buffer holds
// the whole cook; like the stall thresholds they are configuration, not
// derived invariants.
const (
	DefaultFitWindow  = time.Hour
	DefaultStageICeil = 150.0 // °F
	DefaultMinPoints  = 15
	DefaultMaxIter    = 8000
)

// Params are the five parameters of the logistic cook curve.
type Params struct {
	K      float64 // asymptotic temperature, °F
	Rate   float64 // growth rate k, per hour
	Lambda float64 // inflection time, elapsed hours
	D      float64 // baseline temperature, °F
	Gamma  float64 // asymmetry exponent
}

// Logistic5 evaluates the five-parameter logistic
//
//	f(t) = D + (K-D) / (1 + e^(-k(t-λ)))^γ
//
// at t elapsed hours.
func Logistic5(t float64, p Params) float64 {
	return p.D + (p.K-p.D)/math.Pow(1+math.Exp(-p.Rate*(t-p.Lambda)), p.Gamma)
}

// Prediction is the result of one successful fit: the fitted parameters, the
// wrap and finish ETAs, and the fit's RMSE against the entire history
// available at fit time. A Prediction is immutable; CurveModel replaces the
// whole value on each successful fit and never mutates it in place.
type Prediction struct {
	Params    Params
	Anchor    time.Time // zero point of the fitting window's elapsed hours
	WrapETA   time.Time // estimated time of the inflection, the wrap cue
	FinishETA time.Time // zero if the fitted curve never reaches the target
	RMSE      float64   // °F, over the full history, not just the fit window
}

// HasFinish reports whether the fitted curve reaches the target temperature.
func (p Prediction) HasFinish() bool {
	return !p.FinishETA.IsZero()
}

// CurveModel maintains a best-effort 5PL fit of Stage I heating data and the
// ETA predictions derived from it. All state is owned by the single consumer
// that calls Refit; see Cook.
//
// A nil *CurveModel is a valid degraded mode: Refit and Predictions no-op,
// so stall detection and summaries keep working without forecasts.
type CurveModel struct {
	TargetMeat float64       // °F, inversion target and initial asymptote guess
	Start      time.Time     // cook start, anchors absolute ETAs
	Window     time.Duration // fitting window
	StageICeil float64       // °F, samples above this are not Stage I
	MinPoints  int           // minimum qualifying samples per fit
	MaxIter    int           // solver iteration budget

	current *Prediction
}

// NewCurveModel returns a model targeting target °F for a cook that began at
// start, with the default fitting window and solver budget.
func NewCurveModel(target float64, start time.Time) *CurveModel {
	return &CurveModel{
		TargetMeat: target,
		Start:      start,
		Window:     DefaultFitWindow,
		StageICeil: DefaultStageICeil,
		MinPoints:  DefaultMinPoints,
		MaxIter:    DefaultMaxIter,
	}
}

// Predictions returns the latest successful fit, if any.
func (m *CurveModel) Predictions() (Prediction, bool) {
	if m == nil || m.current == nil {
		return Prediction{}, false
	}

	return *m.current, true
}

// Refit reruns the Stage I fit against the buffer as of now and reports
// whether the predictions changed. Failures of any kind, from too few
// qualifying points to solver non-convergence to a degenerate inversion,
// leave the previous predictions untouched; nothing propagates out as an
// error.
func (m *CurveModel) Refit(buf *SampleBuffer, now time.Time) bool {
	if m == nil {
		return false
	}

	result := m.refit(buf, now)

	return result.updated
}

// fitResult tags a fit cycle as updated or skipped. The reason is internal
// only; callers see just "did it change".
type fitResult struct {
	updated bool
	reason  string
}

func skipped(reason string) fitResult { return fitResult{reason: reason} }

func (m *CurveModel) refit(buf *SampleBuffer, now time.Time) fitResult {
	all := buf.All()
	cutoff := now.Add(-m.Window)

	var points []Sample

	for _, s := range all {
		if !s.Time.Before(cutoff) && s.Meat <= m.StageICeil {
			points = append(points, s)
		}
	}

	if len(points) < m.MinPoints {
		return skipped("insufficient stage I points")
	}

	// Re-anchor elapsed time to zero at the earliest qualifying point.
	anchor := points[0].Time
	hours := make([]float64, len(points))
	temps := make([]float64, len(points))

	for i, s := range points {
		hours[i] = s.Time.Sub(anchor).Hours()
		temps[i] = s.Meat
	}

	guess := Params{
		K:      m.TargetMeat,
		Rate:   1.0,
		Lambda: hours[len(hours)/2],
		D:      temps[0],
		Gamma:  1.0,
	}

	fitted, err := fit5PL(hours, temps, guess, m.MaxIter)
	if err != nil {
		return skipped(err.Error())
	}

	// λ is relative to the window anchor; re-express against cook start.
	offset := anchor.Sub(m.Start).Hours()
	wrap := m.Start.Add(durationHours(fitted.Lambda + offset))

	var finish time.Time

	if m.TargetMeat < fitted.K {
		ratio := (fitted.K - fitted.D) / (m.TargetMeat - fitted.D)
		inner := math.Pow(ratio, 1/fitted.Gamma) - 1

		if !(inner > 0) {
			return skipped("degenerate inversion")
		}

		tTarget := fitted.Lambda - math.Log(inner)/fitted.Rate
		if math.IsNaN(tTarget) || math.IsInf(tTarget, 0) {
			return skipped("non-finite finish time")
		}

		finish = m.Start.Add(durationHours(tTarget + offset))
	}

	// RMSE against the whole history so a curve that fit the early ramp but
	// mismatches later behavior shows a visibly elevated error.
	residuals := make([]float64, len(all))
	for i, s := range all {
		residuals[i] = s.Meat - Logistic5(s.Time.Sub(anchor).Hours(), fitted)
	}

	rmse := math.Sqrt(floats.Dot(residuals, residuals) / float64(len(all)))
	if math.IsNaN(rmse) || math.IsInf(rmse, 0) {
		return skipped("non-finite rmse")
	}

	m.current = &Prediction{
		Params:    fitted,
		Anchor:    anchor,
		WrapETA:   wrap,
		FinishETA: finish,
		RMSE:      rmse,
	}

	return fitResult{updated: true}
}

// fit5PL runs nonlinear least squares on the 5PL model. Nelder-Mead with a
// generous iteration budget tolerates the crude initial guesses the same way
// the large maxfev does for Levenberg-Marquardt.
func fit5PL(hours, temps []float64, guess Params, maxIter int) (Params, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := Params{K: x[0], Rate: x[1], Lambda: x[2], D: x[3], Gamma: x[4]}

			var sse float64

			for i, t := range hours {
				r := temps[i] - Logistic5(t, p)
				sse += r * r
			}

			return sse
		},
	}

	x0 := []float64{guess.K, guess.Rate, guess.Lambda, guess.D, guess.Gamma}

	settings := optimize.Settings{
		Converger:       &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 100},
		MajorIterations: maxIter,
		FuncEvaluations: maxIter,
	}

	result, err := optimize.Minimize(problem, x0, &settings, &optimize.NelderMead{})
	if err != nil {
		return Params{}, err
	}

	if result.Status == optimize.IterationLimit || result.Status == optimize.FunctionEvaluationLimit {
		return Params{}, errors.New("solver did not converge")
	}

	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, errors.New("non-finite parameters")
		}
	}

	return Params{
		K:      result.X[0],
		Rate:   result.X[1],
		Lambda: result.X[2],
		D:      result.X[3],
		Gamma:  result.X[4],
	}, nil
}

func durationHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
