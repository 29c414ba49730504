package qsteg

import "github.com/pkg/errors"

var (
	// ErrInput marks a source file that could not be read or holds characters
	// outside the encodable byte range.
	ErrInput = errors.New("input error")

	// ErrInvalidInput marks arguments the pipeline refuses to work with, such as
	// mismatched qubit counts or non-positive bit lengths.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSimulation marks a backend that failed to produce a state vector.
	ErrSimulation = errors.New("simulation error")
)

/*
Stage names the pipeline step an error originated from, so the CLI can report
which part of the run failed.
*/
type Stage string

const (
	StageLoad     Stage = "load"
	StageEncode   Stage = "encode"
	StageBuild    Stage = "build"
	StageSimulate Stage = "simulate"
	StageCompare  Stage = "compare"
	StageConfig   Stage = "config"
	StageReport   Stage = "report"
)

// StageError wraps an error with the stage it was raised in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Cause() error {
	return e.Err
}

// AtStage tags err with stage unless an earlier stage already claimed it.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}

	var se *StageError
	if errors.As(err, &se) {
		return err
	}

	return &StageError{Stage: stage, Err: err}
}
