// Package config implements SPEC_FULL.md A.3: a Config struct parsed from
// CLI flags, with an optional YAML overlay for batch/solver tuning.
//
// Grounded on the teacher's cmd/ailang/main.go, which parses everything
// through the stdlib flag package directly in main rather than through a
// dedicated config package; this repository factors that same flag set out
// into its own package so cmd/colloml and tests can share it, and adds the
// YAML overlay using gopkg.in/yaml.v3, already a direct teacher dependency
// (used there for internal/manifest).
package config

import (
	"flag"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/collomatique/colloml/internal/errors"
)

// Config bundles every batch/solver tuning knob spec.md leaves to the
// environment: a zero-tolerance epsilon, a Big-M separation margin, the
// solver's wall-clock budget, and the CLI's output format. Epsilon and
// BigMEpsilon are validated but not passed on: internal/linexpr and
// internal/reify use their own constants (1e-9 and 0.1).
type Config struct {
	Epsilon       float64 `yaml:"epsilon"`
	BigMEpsilon   float64 `yaml:"big_m_epsilon"`
	SolverTimeout float64 `yaml:"solver_timeout_seconds"`
	OutputFormat  string  `yaml:"output_format"` // "text" or "json"
}

// Default uses the same values as internal/linexpr.Epsilon and
// internal/reify's built-in Big-M epsilon. A zero Config is not a usable
// default: Validate rejects its zero fields.
func Default() Config {
	return Config{
		Epsilon:       1e-9,
		BigMEpsilon:   0.1,
		SolverTimeout: 30,
		OutputFormat:  "text",
	}
}

func cfgErr(code, msg string) error {
	return errors.WrapReport(errors.New("CFG", code, msg, nil))
}

// LoadYAML overlays file's contents onto cfg, returning a new Config. A
// missing or unreadable file is CFG002; a value out of range is CFG003.
func LoadYAML(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, cfgErr(errors.CFG002, fmt.Sprintf("could not read config file %q: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, cfgErr(errors.CFG002, fmt.Sprintf("could not parse config file %q: %v", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports CFG003 for any value outside its sane range.
func (c Config) Validate() error {
	if c.Epsilon <= 0 || math.IsNaN(c.Epsilon) {
		return cfgErr(errors.CFG003, "epsilon must be positive")
	}
	if c.BigMEpsilon <= 0 || math.IsNaN(c.BigMEpsilon) {
		return cfgErr(errors.CFG003, "big_m_epsilon must be positive")
	}
	if c.SolverTimeout <= 0 || math.IsNaN(c.SolverTimeout) {
		return cfgErr(errors.CFG003, "solver_timeout_seconds must be positive")
	}
	switch c.OutputFormat {
	case "text", "json":
	default:
		return cfgErr(errors.CFG003, fmt.Sprintf("output_format %q must be \"text\" or \"json\"", c.OutputFormat))
	}
	return nil
}

// RegisterFlags binds cfg's fields onto fs (typically flag.CommandLine),
// following the teacher's cmd/ailang/main.go convention of declaring every
// flag inline in main rather than through a Parse-returning constructor.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) *string {
	fs.Float64Var(&cfg.Epsilon, "epsilon", cfg.Epsilon, "zero-tolerance epsilon (validated only; internal/linexpr uses its own 1e-9)")
	fs.Float64Var(&cfg.BigMEpsilon, "big-m-epsilon", cfg.BigMEpsilon, "Big-M separation margin (validated only; internal/reify uses its own 0.1)")
	fs.Float64Var(&cfg.SolverTimeout, "solver-timeout", cfg.SolverTimeout, "solver wall-clock budget in seconds")
	fs.StringVar(&cfg.OutputFormat, "output", cfg.OutputFormat, "output format: text or json")
	return fs.String("config", "", "optional YAML config file overlaying the flags above")
}

// CLIValueError reports CFG001 for a malformed flag value caught outside
// the flag package's own parsing (e.g. an enum-like flag whose string
// didn't parse into one of its accepted variants).
func CLIValueError(flagName, value string) error {
	return cfgErr(errors.CFG001, fmt.Sprintf("invalid value %q for -%s", value, flagName))
}
