package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/banshee-data/profiler.report/internal/profiler"
	"github.com/banshee-data/profiler.report/internal/timeutil"
)

// DefaultConfigPath is where the CLI looks for a config file when --config is
// not given. A missing file there is not an error.
const DefaultConfigPath = "profiler.toml"

// maxConfigSize bounds the config file read.
const maxConfigSize = 1 * 1024 * 1024

// AnalysisConfig holds site settings for profile analysis. Every field is
// optional; the Get* accessors supply defaults for anything left unset, so
// partial files are safe.
type AnalysisConfig struct {
	// ReferenceDir holds <MACHINE>_ref<ENERGY>.txt reference exports.
	ReferenceDir *string `toml:"reference_dir,omitempty"`
	// Machine is the default linac name used to pick a reference file.
	Machine *string `toml:"machine,omitempty"`
	// Database is the sqlite run-history file. Empty disables history.
	Database *string `toml:"database,omitempty"`
	// PlotDir receives PNG plots. Empty disables plotting.
	PlotDir *string `toml:"plot_dir,omitempty"`
	// Timezone is the tz database name history timestamps are shown in.
	Timezone *string `toml:"timezone,omitempty"`

	// Arc rejection policy
	ThresholdPercent *float64 `toml:"threshold_percent,omitempty"`
	SkipFrames       *int     `toml:"skip_frames,omitempty"`
	StartFrame       *int     `toml:"start_frame,omitempty"`
}

func ptrString(v string) *string    { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyConfig returns a config with every field unset.
func EmptyConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadConfig reads a TOML config file. The file must have a .toml extension
// and be under 1MB.
func LoadConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".toml" {
		return nil, fmt.Errorf("config file must have .toml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := EmptyConfig()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns an empty config when it
// does not. Other errors are returned.
func LoadOrDefault(path string) (*AnalysisConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return EmptyConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.ThresholdPercent != nil && *c.ThresholdPercent <= 0 {
		return fmt.Errorf("threshold_percent must be positive, got %g", *c.ThresholdPercent)
	}
	if c.SkipFrames != nil && *c.SkipFrames < 0 {
		return fmt.Errorf("skip_frames must be non-negative, got %d", *c.SkipFrames)
	}
	if c.StartFrame != nil && *c.StartFrame < 1 {
		return fmt.Errorf("start_frame must be at least 1, got %d", *c.StartFrame)
	}
	if c.Timezone != nil {
		if _, err := timeutil.LoadTimezone(*c.Timezone); err != nil {
			return err
		}
	}
	if c.Machine != nil && *c.Machine != "" && !KnownMachine(*c.Machine) {
		return fmt.Errorf("unknown machine %q", *c.Machine)
	}
	return nil
}

// GetReferenceDir returns reference_dir or the current directory.
func (c *AnalysisConfig) GetReferenceDir() string {
	if c.ReferenceDir == nil || *c.ReferenceDir == "" {
		return "."
	}
	return *c.ReferenceDir
}

// GetMachine returns machine or VERSA.
func (c *AnalysisConfig) GetMachine() string {
	if c.Machine == nil || *c.Machine == "" {
		return MachineVersa
	}
	return *c.Machine
}

// GetDatabase returns the history database path, empty when unset.
func (c *AnalysisConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// GetPlotDir returns the plot directory, empty when unset.
func (c *AnalysisConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return ""
	}
	return *c.PlotDir
}

// GetTimezone returns the display zone, the host zone when unset.
func (c *AnalysisConfig) GetTimezone() *time.Location {
	if c.Timezone == nil {
		return time.Local
	}
	loc, err := timeutil.LoadTimezone(*c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetThresholdPercent returns threshold_percent or the default.
func (c *AnalysisConfig) GetThresholdPercent() float64 {
	if c.ThresholdPercent == nil {
		return profiler.DefaultThreshold
	}
	return *c.ThresholdPercent
}

// GetSkipFrames returns skip_frames or the default.
func (c *AnalysisConfig) GetSkipFrames() int {
	if c.SkipFrames == nil {
		return profiler.DefaultSkipFrames
	}
	return *c.SkipFrames
}

// GetStartFrame returns start_frame or the default.
func (c *AnalysisConfig) GetStartFrame() int {
	if c.StartFrame == nil {
		return profiler.DefaultStartFrame
	}
	return *c.StartFrame
}

// ArcOptions assembles the rejection policy from the config.
func (c *AnalysisConfig) ArcOptions() profiler.ArcOptions {
	return profiler.ArcOptions{
		StartFrame: c.GetStartFrame(),
		Threshold:  c.GetThresholdPercent(),
		SkipFrames: c.GetSkipFrames(),
	}
}
