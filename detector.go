package qsteg

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/theapemachine/errnie"
)

/*
Detector runs the whole pipeline once: load the text, encode it, cap the bit
count, build a clean and a tampered circuit, and compare their states.
*/
type Detector struct {
	config  *Config
	fs      afero.Fs
	backend Backend
	rng     *rand.Rand
	bits    BitSequence
	metrics *Metrics
}

// DetectorOption is a function type for configuring a Detector.
type DetectorOption func(*Detector)

// WithFilesystem swaps the filesystem the sample file is read from.
func WithFilesystem(fs afero.Fs) DetectorOption {
	return func(d *Detector) {
		d.fs = fs
	}
}

// WithBackend swaps the simulation backend.
func WithBackend(backend Backend) DetectorOption {
	return func(d *Detector) {
		d.backend = backend
	}
}

// WithSource injects the random source for tamper selection and sampling.
func WithSource(rng *rand.Rand) DetectorOption {
	return func(d *Detector) {
		d.rng = rng
	}
}

// WithBits skips the loader and encoder and feeds bits straight to the builder.
func WithBits(bits BitSequence) DetectorOption {
	return func(d *Detector) {
		d.bits = bits
	}
}

func NewDetector(config *Config, opts ...DetectorOption) *Detector {
	if config == nil {
		config = NewConfig()
	}

	d := &Detector{
		config:  config,
		fs:      afero.NewOsFs(),
		backend: NewLocalSimulator(),
		metrics: NewMetrics(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.rng == nil {
		if config.Seed != 0 {
			d.rng = rand.New(rand.NewPCG(config.Seed, config.Seed))
		} else {
			d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	return d
}

func (d *Detector) Metrics() *Metrics {
	return d.metrics
}

func (d *Detector) Run(ctx context.Context) (*Report, error) {
	if err := d.config.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Encoding:  d.config.Encoding,
		Threshold: d.config.Threshold,
	}

	bits, bitLength := d.bits, len(d.bits)
	if d.bits == nil {
		loader := NewLoader(d.fs, d.config.SamplePath, d.config.SampleContent)

		content, created, err := loader.Load()
		if err != nil {
			return nil, err
		}

		report.Source = loader.Path()
		report.Content = content
		report.Created = created

		if bits, bitLength, err = EncodeTextPrefix(content, d.config.MaxBits); err != nil {
			return nil, AtStage(StageEncode, errors.Wrapf(err, "encoding %s", loader.Path()))
		}
	}

	bits, err := bits.Truncate(d.config.MaxBits)
	if err != nil {
		return nil, AtStage(StageEncode, err)
	}

	report.BitLength = bitLength
	report.SimulatedBits = len(bits)
	report.Bits = bits.String()
	errnie.Info("encoded %d bits, simulating %d", bitLength, len(bits))

	builder := NewBuilder(WithRand(d.rng), WithEncoding(d.config.Encoding))

	clean, err := builder.Build(bits, false)
	if err != nil {
		return nil, AtStage(StageBuild, err)
	}

	tampered, err := builder.Build(bits, true)
	if err != nil {
		return nil, AtStage(StageBuild, err)
	}

	report.CleanCircuit = clean
	report.TamperedCircuit = tampered
	report.TamperIndex = tampered.TamperIndex()

	comparator := NewComparator(
		d.backend,
		WithThreshold(d.config.Threshold),
		WithTimeout(d.config.SimulationTimeout),
		WithMetrics(d.metrics),
	)

	comparison, err := comparator.Compare(ctx, clean, tampered)
	if err != nil {
		return nil, err
	}

	report.Fidelity = comparison.Fidelity
	report.Verdict = comparison.Verdict
	report.Detected = comparison.Verdict.Detected()
	report.CleanSupport = comparison.Clean.Support(supportTolerance)
	report.TamperedSupport = comparison.Tampered.Support(supportTolerance)

	if d.config.Shots > 0 {
		report.CleanCounts = comparison.Clean.Sample(d.rng, d.config.Shots)
		report.TamperedCounts = comparison.Tampered.Sample(d.rng, d.config.Shots)
	}

	report.Metrics = d.metrics.Snapshot()
	return report, nil
}

const supportTolerance = 1e-12
