package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"brilopt/internal/pipeline"
)

const configFileName = "brilopt.toml"

// Environment overrides sit between the config file and the flags.
const (
	envPasses   = "BRILOPT_PASSES"
	envJobs     = "BRILOPT_JOBS"
	envCache    = "BRILOPT_CACHE"
	envCacheDir = "BRILOPT_CACHE_DIR"
	envFormat   = "BRILOPT_FORMAT"
)

type toolConfig struct {
	Pipeline pipelineConfig `toml:"pipeline"`
	Output   outputConfig   `toml:"output"`
	Cache    cacheConfig    `toml:"cache"`
}

type pipelineConfig struct {
	Passes []string `toml:"passes"`
	Jobs   int      `toml:"jobs"`
}

type outputConfig struct {
	Format string `toml:"format"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func defaultConfig() toolConfig {
	passes := make([]string, len(pipeline.DefaultPasses))
	for i, p := range pipeline.DefaultPasses {
		passes[i] = string(p)
	}
	return toolConfig{
		Pipeline: pipelineConfig{Passes: passes},
		Output:   outputConfig{Format: "json"},
	}
}

func findConfigFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfigFile reads path over the defaults. Keys the file leaves out keep
// their default values; unknown keys are errors.
func loadConfigFile(path string) (toolConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return toolConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return toolConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	if err := cfg.validate(); err != nil {
		return toolConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c toolConfig) validate() error {
	if _, err := pipeline.ParsePasses(c.Pipeline.Passes); err != nil {
		return fmt.Errorf("[pipeline].passes: %w", err)
	}
	if c.Pipeline.Jobs < 0 {
		return fmt.Errorf("[pipeline].jobs must be >= 0, got %d", c.Pipeline.Jobs)
	}
	if _, err := readOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("[output].format: %w", err)
	}
	return nil
}

// applyEnv overlays the BRILOPT_* variables that are set.
func (c *toolConfig) applyEnv() error {
	if env.Has(envPasses) {
		c.Pipeline.Passes = splitList(env.Str(envPasses))
	}
	if env.Has(envJobs) {
		c.Pipeline.Jobs = env.Int(envJobs, c.Pipeline.Jobs)
	}
	if env.Has(envCache) {
		c.Cache.Enabled = env.Bool(envCache)
	}
	if env.Has(envCacheDir) {
		c.Cache.Dir = env.Str(envCacheDir)
	}
	if env.Has(envFormat) {
		c.Output.Format = env.Str(envFormat)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveConfig loads the file named by --config, or the nearest
// brilopt.toml above the working directory, or the defaults, and then
// applies the environment. It returns the path it read, empty for defaults.
func resolveConfig(cmd *cobra.Command) (toolConfig, string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return toolConfig{}, "", fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfigFile(".")
		if err != nil {
			return toolConfig{}, "", err
		}
		path = found
		if !ok {
			path = ""
		}
	}
	cfg := defaultConfig()
	if path != "" {
		if cfg, err = loadConfigFile(path); err != nil {
			return toolConfig{}, "", err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return toolConfig{}, "", err
	}
	return cfg, path, nil
}

type outputFormat string

const (
	outputJSON outputFormat = "json"
	outputText outputFormat = "text"
)

func readOutputFormat(value string) (outputFormat, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "json":
		return outputJSON, nil
	case "text":
		return outputText, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected json|text)", value)
	}
}
