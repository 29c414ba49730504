package qsteg

import (
	"math/bits"
	"math/cmplx"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/cmplxs"
)

/*
StateVector holds the 2^n complex amplitudes of an n-qubit register. Index i
encodes qubit k in bit k of i, so qubit 0 is the least significant bit.
Only a Backend creates state vectors; callers get copies of the amplitudes.
*/
type StateVector struct {
	qubits int
	vector []complex128
}

/*
NewStateVector wraps raw amplitudes. The length must be a power of two.
The slice is copied.
*/
func NewStateVector(amplitudes []complex128) (*StateVector, error) {
	n := len(amplitudes)
	if n == 0 || n&(n-1) != 0 {
		return nil, errors.Wrapf(
			ErrInvalidInput, "state vector length %d is not a power of two", n,
		)
	}

	vector := make([]complex128, n)
	copy(vector, amplitudes)

	return &StateVector{
		qubits: bits.TrailingZeros(uint(n)),
		vector: vector,
	}, nil
}

func (sv *StateVector) Qubits() int {
	return sv.qubits
}

func (sv *StateVector) Len() int {
	return len(sv.vector)
}

func (sv *StateVector) Amplitude(i int) complex128 {
	return sv.vector[i]
}

// Amplitudes returns a copy of the amplitude vector.
func (sv *StateVector) Amplitudes() []complex128 {
	out := make([]complex128, len(sv.vector))
	copy(out, sv.vector)
	return out
}

// Norm is the L2 norm of the amplitudes, 1 for a physical state.
func (sv *StateVector) Norm() float64 {
	return cmplxs.Norm(sv.vector, 2)
}

// Probabilities returns |amplitude|² per basis state, normalised.
func (sv *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(sv.vector))
	totalProb := 0.0

	for i, amplitude := range sv.vector {
		prob := cmplx.Abs(amplitude)
		prob *= prob // Square of the modulus
		probs[i] = prob
		totalProb += prob
	}

	if totalProb > 0 {
		for i := range probs {
			probs[i] /= totalProb
		}
	}

	return probs
}

/*
Measure samples one basis state index from the amplitude distribution without
collapsing the vector.
*/
func (sv *StateVector) Measure(rng *rand.Rand) int {
	probs := sv.Probabilities()
	r := rng.Float64()

	cumulativeProb := 0.0
	for i, prob := range probs {
		cumulativeProb += prob
		if r < cumulativeProb {
			return i
		}
	}

	// Rounding left r above the final cumulative sum, take the last
	// outcome that carries any weight.
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}

	return 0
}

/*
Sample measures the state shots times and returns counts keyed by the
outcome's bitstring, qubit 0 leftmost.
*/
func (sv *StateVector) Sample(rng *rand.Rand, shots int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < shots; i++ {
		counts[sv.Label(sv.Measure(rng))]++
	}
	return counts
}

// Label renders basis index i as a bitstring with qubit 0 first.
func (sv *StateVector) Label(i int) string {
	var sb strings.Builder
	sb.Grow(sv.qubits)
	for q := 0; q < sv.qubits; q++ {
		if i&(1<<q) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Support lists the labels of basis states with non-negligible probability.
func (sv *StateVector) Support(tol float64) []string {
	var labels []string
	for i, p := range sv.Probabilities() {
		if p > tol {
			labels = append(labels, sv.Label(i))
		}
	}
	sort.Strings(labels)
	return labels
}
