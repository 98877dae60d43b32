package pitmaster

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotterOptions is used to configure the Plotter.
type PlotterOptions struct {
	Title            string
	Period           Period
	AmbientColor     color.Color
	AmbientFillColor color.Color
	MeatColor        color.Color
	PitColor         color.Color
	CurveColor       color.Color
	MarkerColor      color.Color
	TargetPit        float64         // °F, drawn as a dashed reference line when set
	TargetMeat       float64         // °F, drawn as a dashed reference line when set
	Data             []Record
	Curve            *Prediction     // fitted curve overlaid when set
	Markers          []time.Duration // cook-relative event times (wrap, finish)
}

// Plotter creates a graph of a recorded cook.
type Plotter struct {
	options PlotterOptions
	plot    *plot.Plot
}

// Period is used to set the x-axis time period.
type Period int

// The Period can be hours, minutes, or days. The default is hours.
const (
	ByHour Period = iota
	ByMinute
	ByDay
)

// NewPlotter returns a Plotter configured with the options o. If o is empty
// the default settings are used.
func NewPlotter(options *PlotterOptions) *Plotter {
	p := Plotter{ //nolint:varnamelen
		options: PlotterOptions{
			AmbientColor:     color.Gray{Y: 200},
			AmbientFillColor: color.Gray{Y: 200},
			MeatColor:        color.RGBA{B: 255, A: 255},
			PitColor:         color.RGBA{R: 255, A: 255},
			CurveColor:       color.RGBA{R: 128, B: 128, A: 255},
			MarkerColor:      color.RGBA{G: 100, A: 255},
		},
	}

	p.options.Title = options.Title
	p.options.Period = options.Period
	p.options.TargetPit = options.TargetPit
	p.options.TargetMeat = options.TargetMeat
	p.options.Data = options.Data
	p.options.Curve = options.Curve
	p.options.Markers = options.Markers

	if options.AmbientColor != nil {
		p.options.AmbientColor = options.AmbientColor
	}

	if options.AmbientFillColor != nil {
		p.options.AmbientFillColor = options.AmbientFillColor
	}

	if options.MeatColor != nil {
		p.options.MeatColor = options.MeatColor
	}

	if options.PitColor != nil {
		p.options.PitColor = options.PitColor
	}

	if options.CurveColor != nil {
		p.options.CurveColor = options.CurveColor
	}

	if options.MarkerColor != nil {
		p.options.MarkerColor = options.MarkerColor
	}

	return &p
}

// Plot returns the plot.Plot for the cook data given to the Plotter. The
// caller should call plot.Save to create the graph files. This allows the
// caller to define the Plot size and graphics format.
func (p *Plotter) Plot() (*plot.Plot, error) {
	if p.options.Data == nil {
		return nil, errors.New("no data")
	}

	offsets := normalizeRecords(p.options.Data)

	ambient := make(plotter.XYs, len(p.options.Data))
	pit := make(plotter.XYs, len(p.options.Data))
	meat := make(plotter.XYs, len(p.options.Data))

	var maxTemp float64

	for i, d := range p.options.Data {
		x := p.scale(offsets[i])

		ambient[i] = plotter.XY{X: x, Y: d.Ambient}
		pit[i] = plotter.XY{X: x, Y: d.Pit}
		meat[i] = plotter.XY{X: x, Y: d.Meat}

		if d.Pit > maxTemp {
			maxTemp = d.Pit
		}
	}

	p.plot = plot.New()
	p.plot.Title.Text = p.options.Title
	p.plot.X.Label.Text = p.xLabel()
	p.plot.Y.Label.Text = "Temperature"

	if err := p.ambient(ambient); err != nil {
		return nil, fmt.Errorf("ambient: %w", err)
	}

	if err := p.series("pit", pit, p.options.PitColor, p.options.TargetPit); err != nil {
		return nil, fmt.Errorf("pit: %w", err)
	}

	if err := p.series("meat", meat, p.options.MeatColor, p.options.TargetMeat); err != nil {
		return nil, fmt.Errorf("meat: %w", err)
	}

	if p.options.Curve != nil {
		if err := p.curve(offsets); err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
	}

	if len(p.options.Markers) > 0 {
		if err := p.markers(maxTemp); err != nil {
			return nil, fmt.Errorf("markers: %w", err)
		}
	}

	p.plot.Add(plotter.NewGrid())

	return p.plot, nil
}

func (p *Plotter) scale(d time.Duration) float64 {
	switch p.options.Period {
	case ByMinute:
		return d.Minutes()
	case ByDay:
		return d.Hours() / 24
	case ByHour:
	}

	return d.Hours()
}

func (p *Plotter) xLabel() string {
	switch p.options.Period {
	case ByMinute:
		return "Minutes"
	case ByDay:
		return "Days"
	case ByHour:
	}

	return "Hours"
}

func (p *Plotter) ambient(data plotter.XYs) error {
	if data == nil {
		return errors.New("no ambient data")
	}

	line, err := plotter.NewLine(data)
	if err != nil {
		return err
	}

	line.Color = p.options.AmbientColor
	line.FillColor = p.options.AmbientFillColor
	p.plot.Add(line)
	p.plot.Legend.Add("ambient", line)

	return nil
}

func (p *Plotter) series(name string, actual plotter.XYs, c color.Color, target float64) error {
	if actual == nil {
		return errors.New("no data")
	}

	a, err := plotter.NewLine(actual)
	if err != nil {
		return err
	}

	a.Color = c
	p.plot.Add(a)
	p.plot.Legend.Add(name, a)

	if target == 0 || len(actual) == 0 {
		return nil
	}

	ref := plotter.XYs{
		{X: actual[0].X, Y: target},
		{X: actual[len(actual)-1].X, Y: target},
	}

	s, err := plotter.NewLine(ref)
	if err != nil {
		return err
	}

	s.Color = c
	s.Dashes = []vg.Length{vg.Points(1), vg.Points(5)}
	p.plot.Add(s)

	return nil
}

// curve overlays the fitted logistic sampled across the recorded span.
func (p *Plotter) curve(offsets []time.Duration) error {
	pred := p.options.Curve
	t0 := p.options.Data[0].Time

	const steps = 200

	span := offsets[len(offsets)-1]
	fitted := make(plotter.XYs, 0, steps+1)

	for i := 0; i <= steps; i++ {
		d := span * time.Duration(i) / steps
		h := t0.Add(d).Sub(pred.Anchor).Hours()
		fitted = append(fitted, plotter.XY{X: p.scale(d), Y: Logistic5(h, pred.Params)})
	}

	line, err := plotter.NewLine(fitted)
	if err != nil {
		return err
	}

	line.Color = p.options.CurveColor
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.plot.Add(line)
	p.plot.Legend.Add("model", line)

	return nil
}

func (p *Plotter) markers(maxTemp float64) error {
	marks := make(plotter.XYs, len(p.options.Markers))

	for i, m := range p.options.Markers {
		marks[i] = plotter.XY{X: p.scale(m), Y: maxTemp / 2} // middle of the data
	}

	s, err := plotter.NewScatter(marks)
	if err != nil {
		return err
	}

	s.Shape = draw.CrossGlyph{}
	s.Radius = vg.Points(4)
	s.Color = p.options.MarkerColor
	p.plot.Add(s)
	p.plot.Legend.Add("events", s)

	return nil
}

func normalizeRecords(r []Record) []time.Duration {
	if len(r) == 0 {
		return nil
	}

	d := make([]time.Duration, len(r))

	t0 := r[0].Time
	for i := range r {
		d[i] = r[i].Time.Sub(t0)
	}

	return d
}
