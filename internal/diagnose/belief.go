package diagnose

// The harmonic-mean-with-alpha-blend update is the one piece of nontrivial
// numerical logic in the engine, kept here as pure functions so it stays
// auditable in isolation.

// HarmonicMean folds a step's evidence strengths into one aggregate.
//
// The harmonic mean is used instead of the arithmetic mean so that a single
// strongly refuting score pulls the aggregate down sharply rather than being
// diluted. A strength of exactly 0 makes the whole aggregate 0, since the
// harmonic mean is undefined there. Empty input returns 0; callers skip the
// update entirely when a hypothesis received no evidence.
func HarmonicMean(strengths []float64) float64 {
	if len(strengths) == 0 {
		return 0
	}
	var inv float64
	for _, s := range strengths {
		if s <= 0 {
			return 0
		}
		inv += 1 / s
	}
	return float64(len(strengths)) / inv
}

// Blend smooths the evidence aggregate into the prior belief:
//
//	new = (1−alpha)·prior + alpha·aggregate
//
// clamped into [0,1].
func Blend(prior, alpha, aggregate float64) float64 {
	return clamp01((1-alpha)*prior + alpha*aggregate)
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
