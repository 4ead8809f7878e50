package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	require.Equal(t, 0.15, cfg.TaxRate)
	require.Equal(t, "CostFactor", cfg.CostColumn)
	require.Equal(t, "both", cfg.ExportFormat)
	require.True(t, cfg.ContinueOnError)
	require.NotEmpty(t, cfg.Resolution.Header.TransactionID)
	require.NotEmpty(t, cfg.Classifier.Exclude)
	require.NotEmpty(t, cfg.Identity.Rules)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
tax_rate: 0.05
cost_column: AvgCost
export_format: csv
classifier:
  exclude: ["purchase"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 0.05, cfg.TaxRate)
	require.Equal(t, "AvgCost", cfg.CostColumn)
	require.Equal(t, "csv", cfg.ExportFormat)
	require.Equal(t, []string{"purchase"}, cfg.Classifier.Exclude)

	// Unset options still get their defaults.
	require.Equal(t, "./input", cfg.InputDir)
	require.NotEmpty(t, cfg.Classifier.Include)
	require.Equal(t, 4, cfg.MaxConcurrency)
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tax_rate: 1.5\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "tax_rate")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tax_rate: [unclosed\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Config)) *Config {
		cfg := Default()
		f(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"tax rate too high", mutate(func(c *Config) { c.TaxRate = 1 })},
		{"tax rate negative", mutate(func(c *Config) { c.TaxRate = -0.1 })},
		{"cost column outside candidates", mutate(func(c *Config) { c.CostColumn = "Imaginary" })},
		{"bad export format", mutate(func(c *Config) { c.ExportFormat = "pdf" })},
		{"bad encoding", mutate(func(c *Config) { c.Encoding = "EBCDIC" })},
		{"no join key candidates", mutate(func(c *Config) { c.Resolution.Header.TransactionID = nil })},
		{"no date candidates", mutate(func(c *Config) { c.Resolution.Header.DateSerial = nil })},
		{"rule without canonical", mutate(func(c *Config) {
			c.Identity.Rules = []IdentityRule{{Contains: []string{"x"}}}
		})},
		{"rule without substrings", mutate(func(c *Config) {
			c.Identity.Rules = []IdentityRule{{Canonical: "x"}}
		})},
		{"zero concurrency", mutate(func(c *Config) { c.MaxConcurrency = -1 })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, Validate(tt.cfg))
		})
	}
}

func TestCostCandidates(t *testing.T) {
	cfg := Default()
	require.Equal(t, []string{"CostFactor", "AvgCost", "CostPrice"}, cfg.CostCandidates())

	cfg.CostColumn = "AvgCost"
	require.Equal(t, []string{"AvgCost", "CostFactor", "CostPrice"}, cfg.CostCandidates())
}
