package buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	l := 1001

	type test struct {
		transform func(i int) float64
		avg       float64
		count     int
		min       float64
		max       float64
		stDev     float64
		variance  float64
		sum       float64
	}

	tests := map[string]test{
		"monotonically-increasing": {
			transform: func(i int) float64 {
				return float64(i)
			},
			avg:      float64(l / 2),
			count:    l,
			sum:      float64(l) * 500,
			min:      0,
			max:      float64(l) - 1,
			stDev:    289,
			variance: 83500,
		},
		"monotonically-decreasing": {
			transform: func(i int) float64 {
				return -1 * float64(i)
			},
			avg:   -1 * float64(l/2),
			count: l,
			sum:   -1 * float64(l) * 500,
			min:   -1 * (float64(l) - 1),
			max:   0,
			// NOTE : these are the same as for the increasing case
			stDev:    289,
			variance: 83500,
		},
		"abs": {
			transform: func(i int) float64 {
				return math.Abs(-1*float64(l/2) + float64(i))
			},
			avg:   250.2,
			count: l,
			sum:   250500,
			min:   0,
			max:   float64(l / 2),
			// NOTE : these are half of the monotonical case
			stDev:    289 / 2,
			variance: 83500 / 4,
		},
		"constant": {
			transform: func(i int) float64 {
				return 4.2
			},
			avg:      4.2,
			count:    l,
			sum:      math.Round(4.2 * float64(l)),
			min:      4.2,
			max:      4.2,
			stDev:    0,
			variance: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for i := 0; i < l; i++ {
				stats.Push(tt.transform(i))
			}
			assert.Equal(t, tt.avg, roundTo(stats.Avg()))
			assert.Equal(t, tt.count, stats.Count())
			assert.Equal(t, tt.sum, math.Round(stats.Sum()))
			assert.Equal(t, tt.min, stats.Min())
			assert.Equal(t, tt.max, stats.Max())
			assert.Equal(t, tt.stDev, math.Round(stats.StDev()))
			assert.Equal(t, tt.variance, math.Round(stats.Variance()))
		})
	}
}

// roundTo keeps one decimal, enough to compare the constant case exactly.
func roundTo(f float64) float64 {
	return math.Round(f*10) / 10
}

func TestStatsCollector_Push(t *testing.T) {
	sc := NewStatsCollector(2)
	for i := 0; i < 10; i++ {
		sc.Push(float64(i), float64(2*i))
	}
	assert.Equal(t, 10, sc.Size())
	assert.Equal(t, 4.5, sc.Column(0).Avg())
	assert.Equal(t, 9.0, sc.Column(1).Avg())
	assert.Equal(t, 0.0, sc.Column(0).Min())
	assert.Equal(t, 18.0, sc.Column(1).Max())
}

func TestStatsCollector_PushPanicsOnWidth(t *testing.T) {
	sc := NewStatsCollector(2)
	assert.Panics(t, func() {
		sc.Push(1.0)
	})
}
