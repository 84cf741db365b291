package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

const (
	// ProjectConfigName is the project-level config file name.
	ProjectConfigName = ".joinindex.yaml"
	// ProjectConfigAltName is accepted when ProjectConfigName is absent.
	ProjectConfigAltName = ".joinindex.yml"
)

// Scenario names understood by the bench harness.
const (
	ScenarioEqual           = "equal"
	ScenarioMixed           = "mixed"
	ScenarioContainingAnyOf = "containing-any-of"
	ScenarioContainedIn     = "contained-in"
)

// AllScenarios lists every bench scenario in run order.
var AllScenarios = []string{ScenarioEqual, ScenarioMixed, ScenarioContainingAnyOf, ScenarioContainedIn}

// Config represents the complete joinindex configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version" validate:"gte=1"`
	Index     IndexConfig     `yaml:"index" json:"index"`
	Bench     BenchConfig     `yaml:"bench" json:"bench"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// IndexConfig configures how index chains are built.
type IndexConfig struct {
	// Backend selects the terminal store: linked or indexed.
	Backend string `yaml:"backend" json:"backend" validate:"required,oneof=linked linked_list indexed indexed_set"`
}

// BenchConfig configures the timetabling workload driven by `joinindex bench`
// and `joinindex check`.
type BenchConfig struct {
	Scenarios []string `yaml:"scenarios" json:"scenarios" validate:"required,min=1,dive,oneof=equal mixed containing-any-of contained-in"`
	Backends  []string `yaml:"backends" json:"backends" validate:"required,min=1,dive,oneof=linked linked_list indexed indexed_set"`

	// Facts is the number of lessons inserted before moves start.
	Facts int `yaml:"facts" json:"facts" validate:"gt=0,lte=1000000"`
	// Moves is the number of retract/reinsert cycles per chain.
	Moves int `yaml:"moves" json:"moves" validate:"gte=0"`
	// Seed makes a run reproducible.
	Seed uint64 `yaml:"seed" json:"seed"`

	Rooms  int `yaml:"rooms" json:"rooms" validate:"gt=0"`
	Days   int `yaml:"days" json:"days" validate:"gt=0"`
	Slots  int `yaml:"slots" json:"slots" validate:"gt=0"`
	Skills int `yaml:"skills" json:"skills" validate:"gt=0,lte=64"`

	// Parallelism bounds concurrently running scenarios. 0 means NumCPU.
	Parallelism int `yaml:"parallelism" json:"parallelism" validate:"gte=0"`
	// VerifyEvery cross-checks query results against a naive scan every N moves.
	// 0 disables verification.
	VerifyEvery int `yaml:"verify_every" json:"verify_every" validate:"gte=0"`
}

// TelemetryConfig configures per-chain metrics and the run store.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// DBPath is the SQLite file that stores bench runs.
	DBPath string `yaml:"db_path" json:"db_path"`
	// HotKeys is the capacity of the most-queried key tracker.
	HotKeys int `yaml:"hot_keys" json:"hot_keys" validate:"gt=0,lte=100000"`
}

// LoggingConfig mirrors logging.Config in YAML form.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level" validate:"required,oneof=debug info warn error"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gt=0"`
	MaxFiles  int    `yaml:"max_files" json:"max_files" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Backend: "linked",
		},
		Bench: BenchConfig{
			Scenarios:   append([]string(nil), AllScenarios...),
			Backends:    []string{"linked", "indexed"},
			Facts:       2000,
			Moves:       20000,
			Seed:        42,
			Rooms:       24,
			Days:        5,
			Slots:       8,
			Skills:      16,
			Parallelism: runtime.NumCPU(),
			VerifyEvery: 500,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			DBPath:  DefaultRunsDBPath(),
			HotKeys: 64,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultDataDir returns ~/.joinindex, the home of logs and the run store.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".joinindex")
	}
	return filepath.Join(home, ".joinindex")
}

// DefaultRunsDBPath returns the default SQLite run store location.
func DefaultRunsDBPath() string {
	return filepath.Join(DefaultDataDir(), "runs.db")
}

// GetUserConfigPath returns the path to the user's global config file.
// Respects XDG_CONFIG_HOME, falls back to ~/.config/joinindex/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "joinindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "joinindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "joinindex", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user config file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/joinindex/config.yaml)
//  3. Project config (.joinindex.yaml in dir)
//  4. Environment variables (JOININDEX_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
// The .yaml name takes precedence over .yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, ProjectConfigAltName} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

// loadYAML decodes path on top of the current values. Keys absent from the
// file keep whatever an earlier layer set.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ErrCodeConfigNotFound, fmt.Sprintf("failed to read config file %s", path), err).
			WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies JOININDEX_* environment variable overrides.
// Empty values are ignored.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("JOININDEX_BACKEND"); v != "" {
		c.Index.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("JOININDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("JOININDEX_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.ConfigError("JOININDEX_SEED must be an unsigned integer", err).
				WithDetail("value", v)
		}
		c.Bench.Seed = seed
	}
	if v := os.Getenv("JOININDEX_FACTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigError("JOININDEX_FACTS must be an integer", err).
				WithDetail("value", v)
		}
		c.Bench.Facts = n
	}
	if v := os.Getenv("JOININDEX_TELEMETRY_DB"); v != "" {
		c.Telemetry.DBPath = v
	}
	return nil
}

// Validate checks struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigError(describe(err), err).
			WithSuggestion("run 'joinindex config show' to inspect the effective configuration")
	}

	if c.Telemetry.Enabled && c.Telemetry.DBPath == "" {
		return errors.ConfigError("telemetry.db_path is required when telemetry is enabled", nil)
	}
	if c.Bench.Moves > 0 && c.Bench.Rooms*c.Bench.Days*c.Bench.Slots < 2 {
		return errors.ConfigError(
			fmt.Sprintf("bench needs at least two timeslot/room cells to move lessons, got %d",
				c.Bench.Rooms*c.Bench.Days*c.Bench.Slots), nil)
	}
	if c.Bench.VerifyEvery > 0 && c.Bench.Moves > 0 && c.Bench.VerifyEvery > c.Bench.Moves {
		return errors.ConfigError(
			fmt.Sprintf("bench.verify_every (%d) exceeds bench.moves (%d)", c.Bench.VerifyEvery, c.Bench.Moves), nil)
	}
	return nil
}

// describe turns validator errors into "section.field must ..." text.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return strings.Join(msgs, "; ")
}

// WriteYAML writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// project config file. It returns startDir (absolute) when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) || ProjectConfigPath(currentDir) != "" {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
