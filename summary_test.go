package pitmaster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplesPerWindow(t *testing.T) {
	p := NewSummaryProjector(NewSampleBuffer(), nil)
	assert.Equal(t, 20, p.SamplesPerWindow())

	p.Cadence = time.Minute
	assert.Equal(t, 10, p.SamplesPerWindow())

	// a window shorter than the cadence still needs two points for a trend
	p.Cadence = time.Minute
	p.Window = 30 * time.Second
	assert.Equal(t, 2, p.SamplesPerWindow())

	p.Cadence = 0
	p.Window = 0
	assert.Equal(t, 20, p.SamplesPerWindow())
}

func TestSnapshotNoData(t *testing.T) {
	p := NewSummaryProjector(NewSampleBuffer(), nil)

	s := p.Snapshot(time.Now(), 0, false)
	assert.False(t, s.HasData)
	assert.Equal(t, "no temp data yet", s.String())
}

func TestSnapshotTrends(t *testing.T) {
	start := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
	buf := NewSampleBuffer()

	for i := 0; i < 20; i++ {
		buf.Append(Sample{
			Time: start.Add(time.Duration(i) * 30 * time.Second),
			Pit:  220 + float64(i),
			Meat: 100 + float64(i),
		})
	}

	p := NewSummaryProjector(buf, nil)

	s := p.Snapshot(start.Add(10*time.Minute), 85, true)
	require.True(t, s.HasData)

	assert.Equal(t, 239.0, s.Pit)
	assert.Equal(t, 19.0, s.PitTrend)
	assert.Equal(t, 119.0, s.Meat)

	// 19°F over the 9.5 minutes actually spanned, not the nominal window
	assert.InDelta(t, 120.0, s.MeatRate, 1e-9)

	assert.True(t, s.HasAmbient)
	assert.Equal(t, 85.0, s.Ambient)
	assert.False(t, s.HasPrediction)
}

func TestSnapshotIgnoresSamplesOutsideWindow(t *testing.T) {
	start := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
	buf := NewSampleBuffer()

	// an old cold reading followed by a flat recent window
	buf.Append(Sample{Time: start, Pit: 100, Meat: 40})

	for i := 0; i < 20; i++ {
		buf.Append(Sample{
			Time: start.Add(time.Hour + time.Duration(i)*30*time.Second),
			Pit:  225,
			Meat: 150,
		})
	}

	p := NewSummaryProjector(buf, nil)

	s := p.Snapshot(start.Add(2*time.Hour), 0, false)
	require.True(t, s.HasData)
	assert.Equal(t, 0.0, s.PitTrend)
	assert.Equal(t, 0.0, s.MeatRate)
}

func TestSummaryStringWithoutPrediction(t *testing.T) {
	s := Summary{
		HasData:  true,
		Pit:      248,
		PitTrend: -2.5,
		Meat:     161,
		MeatRate: 4.2,
		Window:   10 * time.Minute,
	}

	assert.Equal(t,
		"Temps: pit 248°F (-2.5/10 min), meat 161°F (+4.2°F/hr), ambient Unknown",
		s.String())
}

func TestSummaryStringWithPrediction(t *testing.T) {
	wrap := time.Date(2025, 7, 5, 14, 30, 0, 0, time.UTC)
	finish := time.Date(2025, 7, 5, 19, 15, 0, 0, time.UTC)

	s := Summary{
		HasData:    true,
		Pit:        225,
		PitTrend:   1.0,
		Meat:       155,
		MeatRate:   6.0,
		Window:     10 * time.Minute,
		Ambient:    92,
		HasAmbient: true,
		Prediction: Prediction{
			WrapETA:   wrap,
			FinishETA: finish,
			RMSE:      1.4,
		},
		HasPrediction: true,
		HoursLeft:     5.2,
	}

	assert.Equal(t,
		"Temps: pit 225°F (+1.0/10 min), meat 155°F (+6.0°F/hr), ambient 92°F"+
			" | ETA wrap 14:30, finish 19:15 (5.2 h) RMSE 1.4°F",
		s.String())
}

func TestSummaryStringOmitsETAWithoutFinish(t *testing.T) {
	s := Summary{
		HasData: true,
		Pit:     225,
		Meat:    130,
		Window:  10 * time.Minute,
		Prediction: Prediction{
			WrapETA: time.Date(2025, 7, 5, 14, 30, 0, 0, time.UTC),
		},
		HasPrediction: true,
	}

	assert.NotContains(t, s.String(), "ETA")
}
