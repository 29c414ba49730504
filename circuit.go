package qsteg

import (
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
)

// MaxQubits bounds the circuits the local simulator is willing to expand.
const MaxQubits = 20

// OpKind is the single-qubit gate an Operation applies.
type OpKind int

const (
	OpX OpKind = iota // basis flip
	OpZ               // phase flip
	OpH               // Hadamard
)

func (k OpKind) String() string {
	switch k {
	case OpX:
		return "x"
	case OpZ:
		return "z"
	case OpH:
		return "h"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Operation applies Kind to the qubit at index Qubit.
type Operation struct {
	Kind  OpKind
	Qubit int
}

func (op Operation) String() string {
	return fmt.Sprintf("%s(%d)", op.Kind, op.Qubit)
}

/*
Circuit is an ordered list of single-qubit operations over a fixed number of
qubits, all starting in |0⟩. A circuit is not modified after Build returns it.
*/
type Circuit struct {
	qubits      int
	ops         []Operation
	tamperIndex int
}

func (c *Circuit) Qubits() int {
	return c.qubits
}

// Operations returns a copy of the operation list.
func (c *Circuit) Operations() []Operation {
	out := make([]Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

/*
TamperIndex returns the qubit that received the hidden phase flip, or -1 when
the circuit is untampered.
*/
func (c *Circuit) TamperIndex() int {
	return c.tamperIndex
}

func (c *Circuit) Tampered() bool {
	return c.tamperIndex >= 0
}

/*
Validate checks the qubit count and that every operation addresses a qubit
inside the register.
*/
func (c *Circuit) Validate() error {
	if c.qubits < 0 || c.qubits > MaxQubits {
		return errors.Wrapf(
			ErrInvalidInput, "circuit has %d qubits, limit is %d", c.qubits, MaxQubits,
		)
	}

	for i, op := range c.ops {
		if op.Qubit < 0 || op.Qubit >= c.qubits {
			return errors.Wrapf(
				ErrInvalidInput, "operation %d (%s) is outside a %d-qubit register", i, op, c.qubits,
			)
		}
	}

	return nil
}

// Encoding selects how bits are mapped onto qubit states.
type Encoding string

const (
	// EncodingBasis writes each bit straight into the computational basis.
	EncodingBasis Encoding = "basis"
	// EncodingHadamard rotates every encoded qubit into the |+⟩/|−⟩ basis.
	EncodingHadamard Encoding = "hadamard"
)

func (e Encoding) Valid() bool {
	return e == EncodingBasis || e == EncodingHadamard
}

/*
Builder turns bit sequences into circuits. The random source only feeds the
tamper index, so untampered builds are deterministic.
*/
type Builder struct {
	rng      *rand.Rand
	encoding Encoding
}

// BuilderOption is a function type for configuring a Builder.
type BuilderOption func(*Builder)

// WithRand injects the random source used to pick the tamper index.
func WithRand(rng *rand.Rand) BuilderOption {
	return func(b *Builder) {
		b.rng = rng
	}
}

// WithSeed makes tamper index selection reproducible.
func WithSeed(seed uint64) BuilderOption {
	return func(b *Builder) {
		b.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithEncoding selects the bit-to-qubit mapping.
func WithEncoding(encoding Encoding) BuilderOption {
	return func(b *Builder) {
		b.encoding = encoding
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		encoding: EncodingBasis,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return b
}

/*
Build returns a circuit with one basis flip for every set bit. When tamper is
true and the sequence is non-empty, one phase flip is appended at an index
drawn uniformly from [0, len(bits)). An empty sequence never receives a tamper
operation and never consumes randomness.
*/
func (b *Builder) Build(bits BitSequence, tamper bool) (*Circuit, error) {
	if !b.encoding.Valid() {
		return nil, errors.Wrapf(ErrInvalidInput, "unknown encoding %q", b.encoding)
	}

	n := len(bits)
	if n > MaxQubits {
		return nil, errors.Wrapf(
			ErrInvalidInput, "%d bits exceed the %d qubit limit", n, MaxQubits,
		)
	}

	c := &Circuit{
		qubits:      n,
		ops:         make([]Operation, 0, bits.Ones()+n+1),
		tamperIndex: -1,
	}

	for i, bit := range bits {
		if bit == One {
			c.ops = append(c.ops, Operation{Kind: OpX, Qubit: i})
		}
	}

	if b.encoding == EncodingHadamard {
		for i := 0; i < n; i++ {
			c.ops = append(c.ops, Operation{Kind: OpH, Qubit: i})
		}
	}

	if tamper && n > 0 {
		c.tamperIndex = b.rng.IntN(n)
		c.ops = append(c.ops, Operation{Kind: OpZ, Qubit: c.tamperIndex})
	}

	return c, nil
}
