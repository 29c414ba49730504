package qsteg

import "math"

// Qubit is a single two-level state, alpha|0⟩ + beta|1⟩.
type Qubit struct {
	alpha complex128 // |0⟩ amplitude
	beta  complex128 // |1⟩ amplitude
}

func NewQubit(alpha, beta complex128) *Qubit {
	return &Qubit{
		alpha: alpha,
		beta:  beta,
	}
}

// GroundQubit returns |0⟩.
func GroundQubit() *Qubit {
	return NewQubit(1, 0)
}

func (q *Qubit) ApplyX() {
	// X = [0 1]
	//     [1 0]
	q.alpha, q.beta = q.beta, q.alpha
}

func (q *Qubit) ApplyZ() {
	// Z = [1  0]
	//     [0 -1]
	q.beta = -q.beta
}

func (q *Qubit) ApplyHadamard() {
	// H = 1/√2 * [1  1]
	//           [1 -1]
	newAlpha := (q.alpha + q.beta) / complex(math.Sqrt(2), 0)
	newBeta := (q.alpha - q.beta) / complex(math.Sqrt(2), 0)
	q.alpha = newAlpha
	q.beta = newBeta
}

// Apply runs a single-qubit operation kind against the qubit.
func (q *Qubit) Apply(kind OpKind) {
	switch kind {
	case OpX:
		q.ApplyX()
	case OpZ:
		q.ApplyZ()
	case OpH:
		q.ApplyHadamard()
	}
}

func (q *Qubit) Amplitudes() (complex128, complex128) {
	return q.alpha, q.beta
}
