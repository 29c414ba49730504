package qsteg

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
Comparator simulates a clean and a tampered circuit and decides, from the
fidelity of the two states, whether tampering is visible.
*/
type Comparator struct {
	backend   Backend
	threshold float64
	timeout   time.Duration
	metrics   *Metrics
}

// ComparatorOption is a function type for configuring a Comparator.
type ComparatorOption func(*Comparator)

// WithThreshold overrides DefaultThreshold. NaN keeps the default.
func WithThreshold(threshold float64) ComparatorOption {
	return func(c *Comparator) {
		c.threshold = threshold
	}
}

// WithTimeout bounds each individual backend call. Zero disables the bound.
func WithTimeout(timeout time.Duration) ComparatorOption {
	return func(c *Comparator) {
		c.timeout = timeout
	}
}

// WithMetrics records simulation timings into m.
func WithMetrics(m *Metrics) ComparatorOption {
	return func(c *Comparator) {
		c.metrics = m
	}
}

func NewComparator(backend Backend, opts ...ComparatorOption) *Comparator {
	c := &Comparator{
		backend:   backend,
		threshold: DefaultThreshold,
	}

	for _, opt := range opts {
		opt(c)
	}

	if math.IsNaN(c.threshold) {
		c.threshold = DefaultThreshold
	}

	if c.metrics == nil {
		c.metrics = NewMetrics()
	}

	return c
}

func (c *Comparator) Threshold() float64 {
	return c.threshold
}

func (c *Comparator) Metrics() *Metrics {
	return c.metrics
}

// Comparison is the outcome of one clean/tampered comparison.
type Comparison struct {
	Clean     *StateVector
	Tampered  *StateVector
	Fidelity  float64
	Threshold float64
	Verdict   Verdict
}

/*
Compare simulates both circuits, clean first, and classifies their fidelity.
Malformed circuits and circuits of different widths are rejected before the
backend is touched. Anything the backend raises is a simulation error.
*/
func (c *Comparator) Compare(ctx context.Context, clean, tampered *Circuit) (*Comparison, error) {
	if clean == nil || tampered == nil {
		return nil, AtStage(StageCompare, errors.Wrap(ErrInvalidInput, "comparison needs two circuits"))
	}

	if clean.Qubits() != tampered.Qubits() {
		return nil, AtStage(StageCompare, errors.Wrapf(
			ErrInvalidInput, "qubit counts differ: clean %d, tampered %d",
			clean.Qubits(), tampered.Qubits(),
		))
	}

	for _, circuit := range []*Circuit{clean, tampered} {
		if err := circuit.Validate(); err != nil {
			return nil, AtStage(StageCompare, err)
		}
	}

	if c.backend == nil {
		return nil, AtStage(StageSimulate, errors.Wrap(ErrSimulation, "no simulation backend"))
	}

	cleanState, err := c.run(ctx, "clean", clean)
	if err != nil {
		return nil, err
	}

	tamperedState, err := c.run(ctx, "tampered", tampered)
	if err != nil {
		return nil, err
	}

	fidelity, err := Fidelity(cleanState, tamperedState)
	if err != nil {
		return nil, AtStage(StageCompare, err)
	}

	verdict := Classify(fidelity, c.threshold)
	errnie.Info("fidelity %.4f against threshold %.2f: %s", fidelity, c.threshold, verdict)

	return &Comparison{
		Clean:     cleanState,
		Tampered:  tamperedState,
		Fidelity:  fidelity,
		Threshold: c.threshold,
		Verdict:   verdict,
	}, nil
}

func (c *Comparator) run(ctx context.Context, label string, circuit *Circuit) (*StateVector, error) {
	startTime := time.Now()

	state, err := simulate(ctx, c.backend, circuit, c.timeout)
	c.metrics.recordSimulation(label, startTime, err == nil)

	if err != nil {
		return nil, AtStage(StageSimulate, errors.Wrapf(err, "%s circuit", label))
	}

	return state, nil
}
