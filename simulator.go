package qsteg

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
Backend turns a circuit into the state vector it prepares under ideal,
noiseless execution. Implementations must be deterministic for circuits that
carry no randomness of their own.
*/
type Backend interface {
	Simulate(ctx context.Context, circuit *Circuit) (*StateVector, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, circuit *Circuit) (*StateVector, error)

func (f BackendFunc) Simulate(ctx context.Context, circuit *Circuit) (*StateVector, error) {
	return f(ctx, circuit)
}

/*
LocalSimulator computes states in closed form. Every supported gate acts on
one qubit, so the register is the tensor product of independently evolved
single-qubit states and no 2^n x 2^n matrix is ever formed.
*/
type LocalSimulator struct{}

func NewLocalSimulator() *LocalSimulator {
	return &LocalSimulator{}
}

func (s *LocalSimulator) Simulate(ctx context.Context, circuit *Circuit) (*StateVector, error) {
	if circuit == nil {
		return nil, errors.Wrap(ErrInvalidInput, "nil circuit")
	}

	if err := circuit.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(ErrSimulation, err.Error())
	}

	qubits := make([]*Qubit, circuit.Qubits())
	for i := range qubits {
		qubits[i] = GroundQubit()
	}

	for _, op := range circuit.ops {
		qubits[op.Qubit].Apply(op.Kind)
	}

	return &StateVector{
		qubits: len(qubits),
		vector: tensor(qubits),
	}, nil
}

// tensor expands single-qubit states into the register amplitudes, qubit k
// landing on bit k of the basis index.
func tensor(qubits []*Qubit) []complex128 {
	vector := make([]complex128, 1, 1<<len(qubits))
	vector[0] = 1

	for _, q := range qubits {
		alpha, beta := q.Amplitudes()
		half := len(vector)
		vector = vector[:2*half]

		for i := 0; i < half; i++ {
			vector[half+i] = vector[i] * beta
			vector[i] *= alpha
		}
	}

	return vector
}

/*
simulate runs one backend call. The call is raced against the context and the
timeout so a stuck backend surfaces as ErrSimulation instead of hanging the run.
*/
func simulate(
	ctx context.Context, backend Backend, circuit *Circuit, timeout time.Duration,
) (*StateVector, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		state *StateVector
		err   error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: errors.Errorf("backend panicked: %v", r)}
			}
		}()

		state, err := backend.Simulate(ctx, circuit)
		done <- result{state: state, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrapf(ErrSimulation, "backend failed: %v", res.err)
		}

		if res.state == nil {
			return nil, errors.Wrap(ErrSimulation, "backend returned no state vector")
		}

		if res.state.Qubits() != circuit.Qubits() {
			return nil, errors.Wrapf(
				ErrSimulation, "backend returned %d qubits for a %d qubit circuit",
				res.state.Qubits(), circuit.Qubits(),
			)
		}

		return res.state, nil
	case <-ctx.Done():
		errnie.Info("simulation of %d qubits abandoned: %v", circuit.Qubits(), ctx.Err())
		return nil, errors.Wrapf(ErrSimulation, "simulation did not finish: %v", ctx.Err())
	}
}
