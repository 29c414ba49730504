package qsteg

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Report is everything one detector run observed.
type Report struct {
	RunID           string          `json:"run_id" yaml:"run_id"`
	StartedAt       time.Time       `json:"started_at" yaml:"started_at"`
	Source          string          `json:"source,omitempty" yaml:"source,omitempty"`
	Content         string          `json:"content,omitempty" yaml:"content,omitempty"`
	Created         bool            `json:"created" yaml:"created"`
	BitLength       int             `json:"bit_length" yaml:"bit_length"`
	SimulatedBits   int             `json:"simulated_bits" yaml:"simulated_bits"`
	Bits            string          `json:"bits" yaml:"bits"`
	Encoding        Encoding        `json:"encoding" yaml:"encoding"`
	TamperIndex     int             `json:"tamper_index" yaml:"tamper_index"`
	Fidelity        float64         `json:"fidelity" yaml:"fidelity"`
	Threshold       float64         `json:"threshold" yaml:"threshold"`
	Verdict         Verdict         `json:"verdict" yaml:"verdict"`
	Detected        bool            `json:"detected" yaml:"detected"`
	CleanSupport    []string        `json:"clean_support" yaml:"clean_support"`
	TamperedSupport []string        `json:"tampered_support" yaml:"tampered_support"`
	CleanCounts     map[string]int  `json:"clean_counts,omitempty" yaml:"clean_counts,omitempty"`
	TamperedCounts  map[string]int  `json:"tampered_counts,omitempty" yaml:"tampered_counts,omitempty"`
	Metrics         MetricsSnapshot `json:"metrics" yaml:"metrics"`

	CleanCircuit    *Circuit `json:"-" yaml:"-"`
	TamperedCircuit *Circuit `json:"-" yaml:"-"`
}

// VerdictLine is the human-readable conclusion of the run.
func (r *Report) VerdictLine() string {
	if r.Detected {
		return "Hidden or tampered data detected in file (simulated)!"
	}
	return "File is clean (no hidden data detected)."
}

// WriteReport renders r in one of FormatText, FormatJSON or FormatYAML.
func WriteReport(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatText, "":
		return writeText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "encoding json report")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encoding yaml report")
		}
		return errors.Wrap(enc.Close(), "closing yaml report")
	default:
		return errors.Wrapf(ErrInvalidInput, "unknown report format %q", format)
	}
}

func writeText(w io.Writer, r *Report) error {
	heading := color.New(color.Bold)
	ew := &errWriter{w: w}

	ew.println(heading.Sprint("=== Quantum Steganography Detector ==="))
	ew.println()

	if r.Source != "" {
		ew.printf("Reading file: %s\n", r.Source)
		ew.printf("File content: %s\n\n", r.Content)
		ew.printf("Original binary string length: %d bits\n", r.BitLength)
	} else {
		ew.printf("Bit string supplied directly: %d bits\n", r.BitLength)
	}
	ew.printf("Simulating first %d bits only (%s, %s encoding)...\n\n", r.SimulatedBits, r.Bits, r.Encoding)

	if r.TamperIndex >= 0 {
		ew.printf("[Tampering] Hidden data added at qubit %d\n", r.TamperIndex)
	} else {
		ew.println("[Tampering] Nothing to tamper with in an empty register")
	}

	if len(r.CleanCounts) > 0 {
		ew.printf("Clean counts:    %s\n", formatCounts(r.CleanCounts))
		ew.printf("Tampered counts: %s\n", formatCounts(r.TamperedCounts))
	}

	ew.printf("Fidelity between clean and tampered states: %.4f\n", r.Fidelity)

	if r.Detected {
		ew.println(color.New(color.FgRed, color.Bold).Sprint(r.VerdictLine()))
	} else {
		ew.println(color.New(color.FgGreen, color.Bold).Sprint(r.VerdictLine()))
	}

	ew.println()
	ew.println(heading.Sprint("=== Detection Complete ==="))

	return ew.err
}

func formatCounts(counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := "{"
	for i, label := range labels {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", label, counts[label])
	}
	return out + "}"
}

// errWriter keeps the first write error so the text renderer reads linearly.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, args...)
}
