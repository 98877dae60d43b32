package pitmaster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBufferAppendOrder(t *testing.T) {
	buf := NewSampleBuffer()
	start := time.Date(2025, 7, 5, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		buf.Append(Sample{
			Time: start.Add(time.Duration(i) * 30 * time.Second),
			Pit:  225,
			Meat: 100 + float64(i),
		})
	}

	all := buf.All()
	require.Len(t, all, 5)
	assert.Equal(t, 100.0, all[0].Meat)
	assert.Equal(t, 104.0, all[4].Meat)
	assert.Equal(t, 5, buf.Len())
}

func TestSampleBufferRecent(t *testing.T) {
	buf := NewSampleBuffer()
	start := time.Date(2025, 7, 5, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		buf.Append(Sample{Time: start.Add(time.Duration(i) * time.Minute), Meat: float64(i)})
	}

	recent := buf.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 7.0, recent[0].Meat)
	assert.Equal(t, 9.0, recent[2].Meat)
}

func TestSampleBufferRecentShorterThanN(t *testing.T) {
	buf := NewSampleBuffer()
	buf.Append(Sample{Meat: 1})
	buf.Append(Sample{Meat: 2})

	recent := buf.Recent(10)
	assert.Len(t, recent, 2)
}

func TestSampleBufferReadsAreCopies(t *testing.T) {
	buf := NewSampleBuffer()
	buf.Append(Sample{Meat: 1})

	all := buf.All()
	all[0].Meat = 99

	assert.Equal(t, 1.0, buf.All()[0].Meat)
}

func TestSampleBufferConcurrentAppendAndRead(t *testing.T) {
	buf := NewSampleBuffer()
	start := time.Date(2025, 7, 5, 8, 0, 0, 0, time.UTC)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; i < 1000; i++ {
			buf.Append(Sample{Time: start.Add(time.Duration(i) * time.Second), Meat: float64(i)})
		}
	}()

	for i := 0; i < 100; i++ {
		snapshot := buf.All()

		for j := range snapshot {
			assert.Equal(t, float64(j), snapshot[j].Meat)
		}
	}

	<-done
	assert.Equal(t, 1000, buf.Len())
}
