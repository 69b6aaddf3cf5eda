package enforcement

import (
	"math"
	"time"
)

// Rand is the entropy source used for the chaos perturbation and for the
// haunt channel shuffle. *math/rand.Rand satisfies it; tests inject a
// fixed sequence.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// GuildConfig is the per-guild enforcement tuning, consumed read-only.
type GuildConfig struct {
	// Threshold is the warning score above which enforcement fires.
	Threshold float64
	// ChaosFactor in [0,1] scales the random perturbation. Out-of-range
	// values are clamped, never rejected.
	ChaosFactor float64
	// DecayHalfLife controls exponential decay of older warnings. A
	// non-positive value means no decay (full weight).
	DecayHalfLife time.Duration
}

// WarningEntry is one warning in a user's per-guild history, ordered by
// time. Entries are append-only; retention is the storage layer's concern.
type WarningEntry struct {
	IssuerID  string
	Timestamp time.Time
	Weight    float64
}

const (
	// diversityBonusPerIssuer is added for every distinct issuer beyond
	// the first, rewarding corroboration across moderators over repeated
	// warnings from a single one.
	diversityBonusPerIssuer = 0.25

	// chaosBoundFraction caps the perturbation at this fraction of the
	// threshold, so chaos can only tip scores already near the line.
	chaosBoundFraction = 0.25
)

// Score turns a warning history and guild config into a warning score and
// an enforcement decision. With ChaosFactor 0 the result is a pure
// function of its inputs and rng is never consulted (nil is fine);
// otherwise a perturbation bounded by ChaosFactor*chaosBoundFraction*
// Threshold is added, uniform in either direction.
func Score(history []WarningEntry, cfg GuildConfig, now time.Time, rng Rand) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}

	score := 0.0
	issuers := make(map[string]struct{}, len(history))
	for _, e := range history {
		score += e.Weight * decayFactor(now.Sub(e.Timestamp), cfg.DecayHalfLife)
		issuers[e.IssuerID] = struct{}{}
	}
	if n := len(issuers); n > 1 {
		score += diversityBonusPerIssuer * float64(n-1)
	}

	if chaos := clamp01(cfg.ChaosFactor); chaos > 0 && rng != nil {
		bound := chaos * chaosBoundFraction * cfg.Threshold
		score += (2*rng.Float64() - 1) * bound
	}

	return score, score > cfg.Threshold
}

// decayFactor is 2^(-age/halfLife): a warning one half-life old counts
// half, two half-lives old a quarter. Future-dated entries count full.
func decayFactor(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	if age <= 0 {
		return 1
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
