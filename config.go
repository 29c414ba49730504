package qsteg

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultSamplePath    = "sample.txt"
	DefaultSampleContent = "Hello Quantum World!"
	DefaultMaxBits       = 8

	// EnvPrefix namespaces environment overrides, e.g. QSTEG_MAX_BITS.
	EnvPrefix = "QSTEG"
)

// Report formats understood by WriteReport.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	SamplePath        string        `mapstructure:"sample_path"`
	SampleContent     string        `mapstructure:"sample_content"`
	MaxBits           int           `mapstructure:"max_bits"`
	Threshold         float64       `mapstructure:"threshold"`
	Seed              uint64        `mapstructure:"seed"`
	Encoding          Encoding      `mapstructure:"encoding"`
	Shots             int           `mapstructure:"shots"`
	SimulationTimeout time.Duration `mapstructure:"simulation_timeout"`
	LogLevel          string        `mapstructure:"log_level"`
	Format            string        `mapstructure:"format"`
}

func NewConfig() *Config {
	return &Config{
		SamplePath:        DefaultSamplePath,
		SampleContent:     DefaultSampleContent,
		MaxBits:           DefaultMaxBits,
		Threshold:         DefaultThreshold,
		Encoding:          EncodingBasis,
		SimulationTimeout: 10 * time.Second,
		LogLevel:          "info",
		Format:            FormatText,
	}
}

/*
LoadConfig layers defaults, an optional config file and QSTEG_* environment
variables, in that order of precedence. An empty path skips the file; a path
that does not exist is an error.
*/
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("sample_path", defaults.SamplePath)
	v.SetDefault("sample_content", defaults.SampleContent)
	v.SetDefault("max_bits", defaults.MaxBits)
	v.SetDefault("threshold", defaults.Threshold)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("encoding", string(defaults.Encoding))
	v.SetDefault("shots", defaults.Shots)
	v.SetDefault("simulation_timeout", defaults.SimulationTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("format", defaults.Format)

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, AtStage(StageConfig, errors.Wrapf(ErrInput, "config %s: %v", path, err))
		}

		if !exists {
			return nil, AtStage(StageConfig, errors.Wrapf(ErrInput, "config %s does not exist", path))
		}

		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, AtStage(StageConfig, errors.Wrapf(ErrInput, "config %s: %v", path, err))
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, AtStage(StageConfig, errors.Wrapf(ErrInvalidInput, "decoding config: %v", err))
	}

	return config, nil
}

func (c *Config) Validate() error {
	var problem string

	switch {
	case c.SamplePath == "":
		problem = "sample path is empty"
	case c.MaxBits <= 0:
		problem = "max bits must be positive"
	case c.MaxBits > MaxQubits:
		problem = "max bits exceeds the qubit limit"
	case math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1:
		problem = "threshold must lie in [0, 1]"
	case !c.Encoding.Valid():
		problem = "unknown encoding " + string(c.Encoding)
	case c.Shots < 0:
		problem = "shots must not be negative"
	case c.SimulationTimeout <= 0:
		problem = "simulation timeout must be positive"
	case c.Format != FormatText && c.Format != FormatJSON && c.Format != FormatYAML:
		problem = "unknown report format " + c.Format
	default:
		return nil
	}

	return AtStage(StageConfig, errors.Wrap(ErrInvalidInput, problem))
}
