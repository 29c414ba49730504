package qsteg

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/cmplxs"
)

// DefaultThreshold is the fidelity below which a pair of states counts as tampered.
const DefaultThreshold = 0.95

/*
Fidelity computes |⟨a|b⟩|² / (⟨a|a⟩⟨b|b⟩) for two pure states. The result is
symmetric, lies in [0, 1] and is 1 exactly when the states agree up to a
global phase.
*/
func Fidelity(a, b *StateVector) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.Wrap(ErrInvalidInput, "fidelity needs two state vectors")
	}

	if a.Len() != b.Len() {
		return 0, errors.Wrapf(
			ErrInvalidInput, "state dimensions differ: %d and %d", a.Len(), b.Len(),
		)
	}

	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "fidelity of a zero vector is undefined")
	}

	overlap := cmplx.Abs(cmplxs.Dot(a.vector, b.vector)) / (na * nb)
	return math.Min(1, overlap*overlap), nil
}

// Verdict is the outcome of comparing a clean and a tampered state.
type Verdict string

const (
	VerdictClean    Verdict = "clean"
	VerdictTampered Verdict = "tampered"
)

func (v Verdict) Detected() bool {
	return v == VerdictTampered
}

/*
Classify maps a fidelity onto a verdict. A fidelity equal to the threshold is
clean; anything below it, or anything that does not compare, is tampered.
*/
func Classify(fidelity, threshold float64) Verdict {
	if fidelity >= threshold {
		return VerdictClean
	}
	return VerdictTampered
}
