package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/config"
	"github.com/banshee-data/profiler.report/internal/db"
	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/profiler"
)

const defaultConfigHint = "./" + config.DefaultConfigPath

type commandContext struct {
	configFlag *string

	// fs backs every export read and artefact write.
	fs fsutil.FileSystem

	configOnce sync.Once
	config     *config.AnalysisConfig
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		fs:         fsutil.OSFileSystem{},
	}
}

// ensureConfig loads --config, or the default file when it exists.
func (c *commandContext) ensureConfig() (*config.AnalysisConfig, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		var cfg *config.AnalysisConfig
		var err error
		if path == "" {
			cfg, err = config.LoadOrDefault(config.DefaultConfigPath)
		} else {
			cfg, err = config.LoadConfig(path)
		}
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openHistory opens the run-history database named by flag, falling back to
// the configured one. It returns nil when neither is set.
func (c *commandContext) openHistory(flag string) (*db.DB, error) {
	path := strings.TrimSpace(flag)
	if path == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.GetDatabase()
	}
	if path == "" {
		return nil, nil
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return d, nil
}

// requireHistory is openHistory for commands that cannot run without one.
func (c *commandContext) requireHistory(flag string) (*db.DB, error) {
	d, err := c.openHistory(flag)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("no history database: pass --db or set database in the config file")
	}
	return d, nil
}

// referenceFlags selects the reference export and modality for a comparison.
type referenceFlags struct {
	ref      string
	machine  string
	energy   string
	modality string
}

func (f *referenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ref, "ref", "", "Reference profile export (overrides --machine/--energy)")
	cmd.Flags().StringVar(&f.machine, "machine", "", "Linac name used to pick the reference (default from config)")
	cmd.Flags().StringVar(&f.energy, "energy", "", "Beam energy label, e.g. 6MV, 10FFF, 9MEV")
	cmd.Flags().StringVar(&f.modality, "modality", "", "PHOTON or ELECTRON (default inferred from --energy)")
}

// resolve returns the reference path and the modality to analyse with.
func (f *referenceFlags) resolve(cfg *config.AnalysisConfig) (string, profiler.Modality, error) {
	var m profiler.Modality
	var haveModality bool
	if f.modality != "" {
		parsed, err := profiler.ParseModality(f.modality)
		if err != nil {
			return "", m, err
		}
		m, haveModality = parsed, true
	}

	refPath := strings.TrimSpace(f.ref)
	if refPath == "" {
		if f.energy == "" {
			return "", m, errors.New("no reference: pass --ref, or --energy with a machine")
		}
		machine := f.machine
		if machine == "" {
			machine = cfg.GetMachine()
		}
		p, err := config.ReferencePath(cfg.GetReferenceDir(), machine, f.energy)
		if err != nil {
			return "", m, err
		}
		refPath = p
	}

	if !haveModality {
		if f.energy == "" {
			return "", m, errors.New("no modality: pass --modality, or --energy to infer it")
		}
		inferred, err := config.ModalityForEnergy(f.energy)
		if err != nil {
			return "", m, err
		}
		m = inferred
	}
	return refPath, m, nil
}

// describeInputError rewrites analysis failures into messages that name the
// offending file. Missing files are reported apart from malformed ones.
func describeInputError(err error) error {
	switch {
	case errors.Is(err, profiler.ErrFileNotFound):
		return fmt.Errorf("file not found: %w", err)
	case errors.Is(err, profiler.ErrMalformedReferenceFile), errors.Is(err, profiler.ErrMalformedMovieFile):
		return fmt.Errorf("could not read export: %w", err)
	default:
		return err
	}
}

func requireInput(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing %s: usage: %s", name, cmd.UseLine())
		}
		if len(args) > 1 {
			return fmt.Errorf("expected one %s, got %d arguments", name, len(args))
		}
		return nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
