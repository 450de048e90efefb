package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collomatique/colloml/internal/config"
	"github.com/collomatique/colloml/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestValidateRejectsNonPositiveEpsilon(t *testing.T) {
	cfg := config.Default()
	cfg.Epsilon = 0
	err := cfg.Validate()
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.CFG003, rep.Code)
}

func TestValidateRejectsBadOutputFormat(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.CFG003, rep.Code)
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colloml.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epsilon: 0.001\noutput_format: json\n"), 0o644))

	cfg, err := config.LoadYAML(config.Default(), path)
	require.NoError(t, err)
	require.Equal(t, 0.001, cfg.Epsilon)
	require.Equal(t, "json", cfg.OutputFormat)
	require.Equal(t, config.Default().BigMEpsilon, cfg.BigMEpsilon)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	_, err := config.LoadYAML(config.Default(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.CFG002, rep.Code)
}

func TestLoadYAMLInvalidValueFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colloml.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epsilon: -1\n"), 0o644))

	_, err := config.LoadYAML(config.Default(), path)
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	require.Equal(t, errors.CFG003, rep.Code)
}

func TestRegisterFlagsBindsDefaults(t *testing.T) {
	cfg := config.Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	configPath := config.RegisterFlags(fs, &cfg)
	require.NoError(t, fs.Parse([]string{"-epsilon", "0.5", "-output", "json"}))

	require.Equal(t, 0.5, cfg.Epsilon)
	require.Equal(t, "json", cfg.OutputFormat)
	require.Equal(t, "", *configPath)
}
