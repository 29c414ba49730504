package qsteg

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLocalSimulator(t *testing.T) {
	Convey("Given the local simulator", t, func() {
		sim := NewLocalSimulator()
		ctx := context.Background()

		Convey("The empty circuit over three qubits should stay in |000⟩", func() {
			state, err := sim.Simulate(ctx, &Circuit{qubits: 3, tamperIndex: -1})
			So(err, ShouldBeNil)
			So(state.Len(), ShouldEqual, 8)
			So(state.Amplitude(0), ShouldEqual, complex(1, 0))
			So(state.Support(1e-12), ShouldResemble, []string{"000"})
		})

		Convey("Basis flips should land on the index with those bits set", func() {
			bits, _ := ParseBits("01001000")
			circuit, _ := NewBuilder(WithSeed(1)).Build(bits, false)

			state, err := sim.Simulate(ctx, circuit)
			So(err, ShouldBeNil)
			So(state.Qubits(), ShouldEqual, 8)

			// qubits 1 and 4 set
			So(state.Amplitude(1<<1|1<<4), ShouldEqual, complex(1, 0))
			So(state.Support(1e-12), ShouldResemble, []string{"01001000"})
		})

		Convey("A phase flip on a set qubit should only negate the amplitude", func() {
			circuit := &Circuit{
				qubits:      2,
				ops:         []Operation{{Kind: OpX, Qubit: 0}, {Kind: OpZ, Qubit: 0}},
				tamperIndex: 0,
			}

			state, err := sim.Simulate(ctx, circuit)
			So(err, ShouldBeNil)
			So(state.Amplitude(1), ShouldEqual, complex(-1, 0))
		})

		Convey("A Hadamard should spread the amplitude evenly", func() {
			circuit := &Circuit{
				qubits:      2,
				ops:         []Operation{{Kind: OpH, Qubit: 0}, {Kind: OpH, Qubit: 1}},
				tamperIndex: -1,
			}

			state, err := sim.Simulate(ctx, circuit)
			So(err, ShouldBeNil)
			for _, amp := range state.Amplitudes() {
				So(real(amp), ShouldAlmostEqual, 0.5, 1e-12)
			}
			So(state.Norm(), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("A zero-qubit circuit should give the scalar state", func() {
			state, err := sim.Simulate(ctx, &Circuit{tamperIndex: -1})
			So(err, ShouldBeNil)
			So(state.Len(), ShouldEqual, 1)
		})

		Convey("An invalid circuit should be rejected", func() {
			_, err := sim.Simulate(ctx, &Circuit{
				qubits: 1,
				ops:    []Operation{{Kind: OpX, Qubit: 3}},
			})
			So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
		})

		Convey("A cancelled context should fail the simulation", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := sim.Simulate(cancelled, &Circuit{qubits: 1, tamperIndex: -1})
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
		})
	})
}

func TestSimulateGuard(t *testing.T) {
	Convey("Given backends that misbehave", t, func() {
		ctx := context.Background()
		circuit := &Circuit{qubits: 1, tamperIndex: -1}

		Convey("A failing backend should surface as a simulation error", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				return nil, errors.New("device offline")
			})

			_, err := simulate(ctx, backend, circuit, time.Second)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "device offline")
		})

		Convey("A backend raising an input error should still surface as a simulation error", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				return nil, errors.Wrap(ErrInvalidInput, "remote device rejected job")
			})

			_, err := simulate(ctx, backend, circuit, time.Second)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
			So(errors.Is(err, ErrInvalidInput), ShouldBeFalse)
		})

		Convey("A backend returning nothing should surface as a simulation error", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				return nil, nil
			})

			_, err := simulate(ctx, backend, circuit, time.Second)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
		})

		Convey("A backend returning the wrong width should be rejected", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				return mustState(1, 0, 0, 0), nil
			})

			_, err := simulate(ctx, backend, circuit, time.Second)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
		})

		Convey("A panicking backend should surface as a simulation error", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				panic("boom")
			})

			_, err := simulate(ctx, backend, circuit, time.Second)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "boom")
		})

		Convey("A backend that hangs should time out", func() {
			release := make(chan struct{})
			defer close(release)

			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				<-release
				return mustState(1, 0), nil
			})

			start := time.Now()
			_, err := simulate(ctx, backend, circuit, 50*time.Millisecond)
			So(errors.Is(err, ErrSimulation), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
		})

		Convey("A healthy backend should pass through", func() {
			backend := BackendFunc(func(context.Context, *Circuit) (*StateVector, error) {
				return mustState(0, complex(0, 1)), nil
			})

			state, err := simulate(ctx, backend, circuit, 0)
			So(err, ShouldBeNil)
			So(math.Abs(imag(state.Amplitude(1))), ShouldEqual, 1.0)
		})
	})
}
