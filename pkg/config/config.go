// Package config loads meshsplit settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/meshsplit/pkg/kernel/sdfx"
	"github.com/chazu/meshsplit/pkg/logging"
	"github.com/chazu/meshsplit/pkg/meshio"
	"github.com/chazu/meshsplit/pkg/recipe"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root configuration structure.
type Config struct {
	Split  SplitConfig  `yaml:"split" toml:"split"`
	Output OutputConfig `yaml:"output" toml:"output"`
	Kernel KernelConfig `yaml:"kernel" toml:"kernel"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// SplitConfig holds the split settings.
type SplitConfig struct {
	Parts      int    `yaml:"parts" toml:"parts"`             // parts < 2 leaves the mesh alone
	Mode       string `yaml:"mode" toml:"mode"`               // "vertex" or "face"
	Axis       string `yaml:"axis" toml:"axis"`               // "x", "y", "z"
	Strategy   string `yaml:"strategy" toml:"strategy"`       // "bmesh" or "operator"
	FaceBudget string `yaml:"face_budget" toml:"face_budget"` // "faces" or "vertices"
	Refine     string `yaml:"refine" toml:"refine"`           // empty disables the refine cut
}

// OutputConfig controls where parts are written.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"` // "obj" or "stl"
	Dir    string `yaml:"dir" toml:"dir"`       // empty writes next to the input
}

// KernelConfig tunes recipe tessellation.
type KernelConfig struct {
	Cells int `yaml:"cells" toml:"cells"` // marching cubes cells along the longest side
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	job := recipe.DefaultJob("")
	return &Config{
		Split: SplitConfig{
			Parts:      job.Params.Parts,
			Mode:       job.Params.Policy.String(),
			Axis:       job.Params.Axis.String(),
			Strategy:   job.Strategy.String(),
			FaceBudget: job.Budget.String(),
		},
		Output: OutputConfig{Format: string(meshio.FormatOBJ)},
		Kernel: KernelConfig{Cells: sdfx.DefaultMeshCells},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every enum string and numeric field.
func (c *Config) Validate() error {
	if _, err := c.Split.Job(""); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := meshio.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %w", ErrInvalidConfig, err)
	}
	if c.Kernel.Cells <= 0 {
		return fmt.Errorf("%w: kernel.cells must be positive, got %d", ErrInvalidConfig, c.Kernel.Cells)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Job converts the split settings into a job for the named mesh.
func (s SplitConfig) Job(mesh string) (recipe.Job, error) {
	job := recipe.DefaultJob(mesh)
	job.Params.Parts = s.Parts

	var err error
	if job.Params.Policy, err = split.ParsePolicy(s.Mode); err != nil {
		return job, fmt.Errorf("split.mode: %w", err)
	}
	if job.Params.Axis, err = split.ParseAxis(s.Axis); err != nil {
		return job, fmt.Errorf("split.axis: %w", err)
	}
	if job.Strategy, err = split.ParseStrategy(s.Strategy); err != nil {
		return job, fmt.Errorf("split.strategy: %w", err)
	}
	if job.Budget, err = split.ParseFaceBudget(s.FaceBudget); err != nil {
		return job, fmt.Errorf("split.face_budget: %w", err)
	}
	if s.Refine != "" {
		axis, err := split.ParseAxis(s.Refine)
		if err != nil {
			return job, fmt.Errorf("split.refine: %w", err)
		}
		job.Refine = &axis
	}
	return job, nil
}
