// Package config loads pipeline configuration from YAML with ${VAR}
// environment-variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// StatementVariant selects which Merkle hash / circuit variant a run uses.
type StatementVariant string

const (
	VariantSHA256   StatementVariant = "sha256"
	VariantPoseidon StatementVariant = "poseidon2"
)

// TreeDepth is the fixed Merkle tree depth. Changing it invalidates every
// manifest issued against the old depth, so it is a constant, not a field.
const TreeDepth = 8

// TreeCapacity is 2^TreeDepth, the maximum number of leaves a tree holds.
const TreeCapacity = 1 << TreeDepth

// PipelineConfig holds all configuration for a proof or verify run. No
// package-level globals: every component receives the fields it needs
// explicitly.
type PipelineConfig struct {
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	Statement StatementSettings `yaml:"statement"`
	Paths     PathSettings      `yaml:"paths"`
	Output    OutputSettings    `yaml:"output"`
	Prover    ProverSettings    `yaml:"prover"`
	EUTrust   EUTrustSettings   `yaml:"eu_trust"`
	Logging   LoggingSettings   `yaml:"logging"`
}

// StatementSettings selects the circuit/hash variant for this run.
type StatementSettings struct {
	Variant StatementVariant `yaml:"variant"`
}

// PathSettings names the input files a run consumes.
type PathSettings struct {
	PDF            string `yaml:"pdf"`
	AllowList      string `yaml:"allow_list"`
	LOTL           string `yaml:"lotl"`
	RecipientKey   string `yaml:"recipient_key"`
	CiphertextPath string `yaml:"ciphertext_path"`
}

// OutputSettings controls where pipeline artefacts land.
type OutputSettings struct {
	Dir string `yaml:"dir"`
}

// ProverSettings tunes the Groth16 backend.
type ProverSettings struct {
	Threads        int      `yaml:"threads"`
	MemoryBudgetMB int      `yaml:"memory_budget_mb"`
	ProvingKeyPath string   `yaml:"proving_key_path"`
	VerifyKeyPath  string   `yaml:"verify_key_path"`
	SetupTimeout   Duration `yaml:"setup_timeout"`
}

// EUTrustSettings controls whether the EU List of Trusted Lists branch of
// the statement is enabled for this run.
type EUTrustSettings struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingSettings mirrors logging.Config so it can be loaded from YAML.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration wraps time.Duration so it can be unmarshaled from a YAML string
// like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads a PipelineConfig from a YAML file, substituting ${VAR} and
// ${VAR:-default} environment references before parsing.
func Load(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	var cfg PipelineConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills unset fields with sensible values.
func (c *PipelineConfig) applyDefaults() {
	if c.Statement.Variant == "" {
		c.Statement.Variant = VariantPoseidon
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "out"
	}
	if c.Prover.Threads == 0 {
		c.Prover.Threads = 4
	}
	if c.Prover.SetupTimeout == 0 {
		c.Prover.SetupTimeout = Duration(10 * time.Minute)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}
