package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRand feeds predetermined values so each policy branch can be
// forced deterministically.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

func TestZeroExposureBand(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(1)))

	for i := 0; i < 1000; i++ {
		point := p.NextCrashPoint(0, false)
		// A long run of low crashes will trip the pity rule; those draws
		// land in [10,100) and reset the streak.
		if point >= 10.0 {
			require.Less(t, point, 100.0)
			continue
		}
		require.GreaterOrEqual(t, point, 1.0)
		require.Less(t, point, 2.5)
	}
}

func TestHighExposureBands(t *testing.T) {
	// First float is the branch pick, second the draw inside the band.
	p := NewPolicy(&scriptedRand{floats: []float64{0.5, 0.3}})
	point := p.NextCrashPoint(600, false)
	require.InDelta(t, 1.3, point, 1e-9)

	p = NewPolicy(&scriptedRand{floats: []float64{0.95, 0.5}})
	point = p.NextCrashPoint(600, false)
	require.InDelta(t, 3.5, point, 1e-9)
}

func TestMediumExposureBands(t *testing.T) {
	p := NewPolicy(&scriptedRand{floats: []float64{0.5, 0.5}})
	point := p.NextCrashPoint(300, false)
	require.InDelta(t, 2.0, point, 1e-9)

	p = NewPolicy(&scriptedRand{floats: []float64{0.9, 0.5}})
	point = p.NextCrashPoint(300, false)
	require.InDelta(t, 6.5, point, 1e-9)
}

func TestLowExposureBands(t *testing.T) {
	p := NewPolicy(&scriptedRand{floats: []float64{0.1, 0.5}})
	require.InDelta(t, 2.0, p.NextCrashPoint(100, false), 1e-9)

	p = NewPolicy(&scriptedRand{floats: []float64{0.5, 0.5}})
	require.InDelta(t, 6.5, p.NextCrashPoint(100, false), 1e-9)

	p = NewPolicy(&scriptedRand{floats: []float64{0.8, 0.5}})
	require.InDelta(t, 30.0, p.NextCrashPoint(100, false), 1e-9)
}

func TestPityStreakForcesBigCrash(t *testing.T) {
	p := NewPolicy(rand.New(rand.NewSource(42)))

	// Zero-exposure draws stay below 2.5, so every round extends the
	// streak until the pity rule fires.
	p.lowCrashStreak = 8
	pityRng := &scriptedRand{ints: []int{0}, floats: []float64{0.5}}
	p.rng = pityRng

	point := p.NextCrashPoint(0, false)
	require.GreaterOrEqual(t, point, 10.0)
	require.Less(t, point, 100.0)
	require.Equal(t, 0, p.lowCrashStreak, "big crash must reset the streak")
}

func TestPityJitterDelaysBigCrash(t *testing.T) {
	// Streak 8 but jitter of 2 keeps the threshold at 10: the policy stays
	// in the exposure bands.
	p := NewPolicy(&scriptedRand{ints: []int{2}, floats: []float64{0.5}})
	p.lowCrashStreak = 8

	point := p.NextCrashPoint(0, false)
	require.Less(t, point, 2.5)
}

func TestStreakCounting(t *testing.T) {
	p := NewPolicy(&scriptedRand{floats: []float64{0.5, 0.5, 0.5}})

	p.NextCrashPoint(0, false) // 1.75, low
	require.Equal(t, 1, p.lowCrashStreak)
	p.NextCrashPoint(0, false)
	require.Equal(t, 2, p.lowCrashStreak)

	p.rng = &scriptedRand{floats: []float64{0.9, 0.9}} // 300-band high branch: 9.3
	point := p.NextCrashPoint(300, false)
	require.Greater(t, point, 3.0)
	require.Equal(t, 0, p.lowCrashStreak)
}

func TestScriptedSequence(t *testing.T) {
	p := NewPolicy(&scriptedRand{})

	require.InDelta(t, fixedSequence[0], p.NextCrashPoint(50, true), 1e-9)
	require.InDelta(t, fixedSequence[1], p.NextCrashPoint(300, true), 1e-9)

	// The sequence index advances with every round, scripted or not.
	p.NextCrashPoint(0, false)
	require.InDelta(t, fixedSequence[3], p.NextCrashPoint(700, true), 1e-9)
}
