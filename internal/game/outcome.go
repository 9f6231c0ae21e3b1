package game

// The crash point for each round is drawn from exposure-banded distributions:
// the more money riding on a round, the tighter the crash distribution. A
// pity rule forces an occasional high round after a streak of low ones, and
// one designated account can script outcomes for demonstrations.

// randSource is the slice of math/rand the policy needs. *rand.Rand
// satisfies it; tests inject scripted sources.
type randSource interface {
	Float64() float64
	Intn(n int) int
}

var fixedSequence = []float64{12.00, 8.04, 16.02, 6.50, 1.01, 9.02, 2.00, 1.04, 11.72, 1.89}

const lowCrashCeiling = 3.0

type Policy struct {
	rng randSource

	lowCrashStreak int
	totalRounds    int
}

func NewPolicy(rng randSource) *Policy {
	return &Policy{rng: rng}
}

// NextCrashPoint draws the hidden crash point for the round about to start.
// exposure is the total stake committed by this round's bettors; scripted
// reports whether the fixed-outcome account is among them. The scripted
// sequence advances with the round counter whether or not it is used.
func (p *Policy) NextCrashPoint(exposure float64, scripted bool) float64 {
	round := p.totalRounds
	p.totalRounds++

	point := p.draw(exposure, scripted, round)

	if point <= lowCrashCeiling {
		p.lowCrashStreak++
	} else {
		p.lowCrashStreak = 0
	}
	return point
}

func (p *Policy) draw(exposure float64, scripted bool, round int) float64 {
	if scripted {
		return fixedSequence[round%len(fixedSequence)]
	}

	// Pity rule: after 8 low crashes in a row (plus up to 2 rounds of
	// jitter) force a big one.
	if p.lowCrashStreak >= 8+p.rng.Intn(3) {
		return 10.0 + p.rng.Float64()*90.0
	}

	if exposure == 0 {
		return 1.0 + p.rng.Float64()*1.5
	}

	if exposure >= 500 {
		if p.rng.Float64() < 0.9 {
			return 1.0 + p.rng.Float64()*1.0
		}
		return 2.0 + p.rng.Float64()*3.0
	}

	if exposure >= 200 {
		if p.rng.Float64() < 0.8 {
			return 1.0 + p.rng.Float64()*2.0
		}
		return 3.0 + p.rng.Float64()*7.0
	}

	r := p.rng.Float64()
	if r < 0.3 {
		return 1.0 + p.rng.Float64()*2.0
	}
	if r < 0.7 {
		return 3.0 + p.rng.Float64()*7.0
	}
	return 10.0 + p.rng.Float64()*40.0
}
