package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/theapemachine/qsteg"
)

// VERSION is populated via build flags when packaging release binaries.
var VERSION = "SELFBUILD"

func main() {
	if err := newApp(afero.NewOsFs(), os.Stdout).Run(os.Args); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func newApp(fs afero.Fs, out io.Writer) *cli.App {
	myApp := cli.NewApp()
	myApp.Name = "qsteg"
	myApp.Usage = "quantum steganography detector (simulated)"
	myApp.Version = VERSION
	myApp.Writer = out
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Value: "",
			Usage: "config file (yaml, json or toml); QSTEG_* environment variables override it",
		},
		cli.StringFlag{
			Name:  "env",
			Value: ".env",
			Usage: "dotenv file loaded before configuration, ignored when missing",
		},
		cli.StringFlag{
			Name:  "file,f",
			Usage: "text file to inspect, created with demo content when absent",
		},
		cli.StringFlag{
			Name:  "bits",
			Usage: `inspect a literal bit string such as "01001000" instead of a file`,
		},
		cli.IntFlag{
			Name:  "max-bits",
			Usage: "number of leading bits to simulate",
		},
		cli.Float64Flag{
			Name:  "threshold",
			Usage: "fidelity below which tampering is reported",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "seed for tamper selection and sampling, 0 for a random seed",
		},
		cli.StringFlag{
			Name:  "encoding",
			Usage: "bit encoding: basis, hadamard",
		},
		cli.IntFlag{
			Name:  "shots",
			Usage: "measurement samples per state, 0 to disable",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "bound on each simulation call",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "report format: text, json, yaml",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, error",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		return run(c, fs, out)
	}

	return myApp
}

func run(c *cli.Context, fs afero.Fs, out io.Writer) error {
	if envFile := c.String("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return qsteg.AtStage(qsteg.StageConfig, errors.Wrapf(err, "loading %s", envFile))
		}
	}

	config, err := qsteg.LoadConfig(fs, c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, config)

	logger := newLogger(config.LogLevel)

	if err := config.Validate(); err != nil {
		return err
	}

	opts := []qsteg.DetectorOption{qsteg.WithFilesystem(fs)}
	if c.IsSet("bits") {
		bits, err := qsteg.ParseBits(c.String("bits"))
		if err != nil {
			return qsteg.AtStage(qsteg.StageEncode, err)
		}
		opts = append(opts, qsteg.WithBits(bits))
	}

	logger.Info("starting run",
		"file", config.SamplePath,
		"max_bits", config.MaxBits,
		"encoding", config.Encoding,
		"threshold", config.Threshold,
	)

	report, err := qsteg.NewDetector(config, opts...).Run(context.Background())
	if err != nil {
		return err
	}

	if logger.GetLevel() <= log.DebugLevel {
		logger.Debug("clean circuit\n" + spew.Sdump(report.CleanCircuit.Operations()))
		logger.Debug("tampered circuit\n" + spew.Sdump(report.TamperedCircuit.Operations()))
	}

	logger.Info("run complete",
		"run_id", report.RunID,
		"verdict", report.Verdict,
		"simulate_ms", report.Metrics.TotalMillis,
	)

	return qsteg.AtStage(qsteg.StageReport, qsteg.WriteReport(out, report, config.Format))
}

func applyFlags(c *cli.Context, config *qsteg.Config) {
	if c.IsSet("file") {
		config.SamplePath = c.String("file")
	}
	if c.IsSet("max-bits") {
		config.MaxBits = c.Int("max-bits")
	}
	if c.IsSet("threshold") {
		config.Threshold = c.Float64("threshold")
	}
	if c.IsSet("seed") {
		config.Seed = c.Uint64("seed")
	}
	if c.IsSet("encoding") {
		config.Encoding = qsteg.Encoding(c.String("encoding"))
	}
	if c.IsSet("shots") {
		config.Shots = c.Int("shots")
	}
	if c.IsSet("timeout") {
		config.SimulationTimeout = c.Duration("timeout")
	}
	if c.IsSet("format") {
		config.Format = c.String("format")
	}
	if c.IsSet("log-level") {
		config.LogLevel = c.String("log-level")
	}
}

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "qsteg",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	log.SetDefault(logger)

	return logger
}
