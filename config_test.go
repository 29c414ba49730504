package qsteg

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestConfig(t *testing.T) {
	Convey("Given no config file", t, func() {
		config, err := LoadConfig(afero.NewMemMapFs(), "")
		So(err, ShouldBeNil)

		Convey("It should carry the defaults", func() {
			So(config, ShouldResemble, NewConfig())
			So(config.Validate(), ShouldBeNil)
		})
	})

	Convey("Given a YAML config file", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, "qsteg.yaml", []byte(
			"max_bits: 12\n"+
				"threshold: 0.9\n"+
				"encoding: hadamard\n"+
				"simulation_timeout: 2s\n"+
				"sample_path: notes.txt\n",
		), 0o644), ShouldBeNil)

		config, err := LoadConfig(fs, "qsteg.yaml")
		So(err, ShouldBeNil)

		Convey("File values should override defaults", func() {
			So(config.MaxBits, ShouldEqual, 12)
			So(config.Threshold, ShouldEqual, 0.9)
			So(config.Encoding, ShouldEqual, EncodingHadamard)
			So(config.SimulationTimeout, ShouldEqual, 2*time.Second)
			So(config.SamplePath, ShouldEqual, "notes.txt")
			So(config.SampleContent, ShouldEqual, DefaultSampleContent)
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv("QSTEG_SEED", "77")
		t.Setenv("QSTEG_FORMAT", "json")

		config, err := LoadConfig(afero.NewMemMapFs(), "")
		So(err, ShouldBeNil)
		So(config.Seed, ShouldEqual, uint64(77))
		So(config.Format, ShouldEqual, FormatJSON)
	})

	Convey("Given a NaN threshold from the environment", t, func() {
		t.Setenv("QSTEG_THRESHOLD", "NaN")

		config, err := LoadConfig(afero.NewMemMapFs(), "")
		So(err, ShouldBeNil)
		So(errors.Is(config.Validate(), ErrInvalidInput), ShouldBeTrue)
	})

	Convey("Given a config path that does not exist", t, func() {
		_, err := LoadConfig(afero.NewMemMapFs(), "missing.yaml")
		So(errors.Is(err, ErrInput), ShouldBeTrue)
	})

	Convey("Given invalid settings", t, func() {
		cases := map[string]func(*Config){
			"zero max bits":      func(c *Config) { c.MaxBits = 0 },
			"negative max bits":  func(c *Config) { c.MaxBits = -1 },
			"oversized register": func(c *Config) { c.MaxBits = MaxQubits + 1 },
			"threshold above 1":  func(c *Config) { c.Threshold = 1.2 },
			"NaN threshold":      func(c *Config) { c.Threshold = math.NaN() },
			"unknown encoding":   func(c *Config) { c.Encoding = "gray" },
			"negative shots":     func(c *Config) { c.Shots = -1 },
			"zero timeout":       func(c *Config) { c.SimulationTimeout = 0 },
			"unknown format":     func(c *Config) { c.Format = "xml" },
			"empty sample path":  func(c *Config) { c.SamplePath = "" },
		}

		for name, mutate := range cases {
			config := NewConfig()
			mutate(config)

			err := config.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
			Printf("rejected %s\n", name)
		}
	})
}
