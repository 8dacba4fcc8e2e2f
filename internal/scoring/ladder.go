// Package scoring holds the deterministic post-prediction policy: risk score,
// risk level, per-feature impact labels and recommendations. Thresholds live in
// ladders so the policy reads as data.
package scoring

// Rung pairs a threshold with the value returned when it matches.
type Rung[T any] struct {
	Bound float64
	Value T
}

// Ladder returns the value of the first matching rung, or the fallback when
// none match. Rungs are evaluated in declaration order.
type Ladder[T any] struct {
	rungs    []Rung[T]
	fallback T
	match    func(v, bound float64) bool
}

// Below builds a ladder that matches when v < bound. Rungs should be listed
// from the lowest bound up.
func Below[T any](fallback T, rungs ...Rung[T]) Ladder[T] {
	return Ladder[T]{
		rungs:    rungs,
		fallback: fallback,
		match:    func(v, bound float64) bool { return v < bound },
	}
}

// AtLeast builds a ladder that matches when v >= bound. Rungs should be listed
// from the highest bound down.
func AtLeast[T any](fallback T, rungs ...Rung[T]) Ladder[T] {
	return Ladder[T]{
		rungs:    rungs,
		fallback: fallback,
		match:    func(v, bound float64) bool { return v >= bound },
	}
}

func (l Ladder[T]) Lookup(v float64) T {
	for _, r := range l.rungs {
		if l.match(v, r.Bound) {
			return r.Value
		}
	}
	return l.fallback
}
