// Package config loads breadboard settings from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

// Config contains all breadboard configuration settings.
type Config struct {
	// Simulation contains settings for the transient and impedance solvers.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

type SimulationConfig struct {
	// TimeStep is the fixed transient step in seconds.
	TimeStep float64 `json:"time_step" yaml:"time_step"`

	// StepsPerFrame is how many transient steps one frame of the editor
	// advances.
	StepsPerFrame int `json:"steps_per_frame" yaml:"steps_per_frame"`
	// TestOmega is the angular frequency (rad/s) used to measure the
	// equivalent inductance.
	TestOmega float64 `json:"test_omega" yaml:"test_omega"`

	// Solver selects the matrix backend: "dense", "sparse" or "gonum".
	Solver string `json:"solver" yaml:"solver"`
}

type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TimeStep:      consts.DefaultTimeStep,
			StepsPerFrame: 1,
			TestOmega:     consts.DefaultTestOmega,
			Solver:        string(matrix.BackendDense),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the default location and environment variables.
// Order: defaults -> ~/.breadboard/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".breadboard", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file, then applies
// environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(config)
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !(c.Simulation.TimeStep > 0) {
		return fmt.Errorf("time_step must be positive, got %g", c.Simulation.TimeStep)
	}
	if c.Simulation.StepsPerFrame < 1 {
		return fmt.Errorf("steps_per_frame must be at least 1, got %d", c.Simulation.StepsPerFrame)
	}
	if !(c.Simulation.TestOmega > 0) {
		return fmt.Errorf("test_omega must be positive, got %g", c.Simulation.TestOmega)
	}
	if _, err := matrix.ParseBackend(c.Simulation.Solver); err != nil {
		return fmt.Errorf("invalid solver: %w", err)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn, error, or empty for default)", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}
	return nil
}

// Backend returns the configured solver backend, dense when unset.
func (c *Config) Backend() matrix.Backend {
	backend, err := matrix.ParseBackend(c.Simulation.Solver)
	if err != nil {
		return matrix.BackendDense
	}
	return backend
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("BREADBOARD_TIME_STEP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.TimeStep = f
		}
	}

	if v := os.Getenv("BREADBOARD_STEPS_PER_FRAME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.StepsPerFrame = n
		}
	}

	if v := os.Getenv("BREADBOARD_TEST_OMEGA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.TestOmega = f
		}
	}

	if v := os.Getenv("BREADBOARD_SOLVER"); v != "" {
		config.Simulation.Solver = v
	}

	if v := os.Getenv("BREADBOARD_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
