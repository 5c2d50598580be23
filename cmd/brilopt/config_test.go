package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, configFileName)
	writeFile(t, want, "[pipeline]\npasses = [\"dce\"]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findConfigFile(nested)
	if err != nil || !ok {
		t.Fatalf("findConfigFile: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("found %s, want %s", got, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	writeFile(t, path, `
[pipeline]
passes = ["lvn", "dce1", "dce"]
jobs = 3

[cache]
enabled = true
dir = ".brilcache"
`)
	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	want := toolConfig{
		Pipeline: pipelineConfig{Passes: []string{"lvn", "dce1", "dce"}, Jobs: 3},
		Output:   outputConfig{Format: "json"},
		Cache:    cacheConfig{Enabled: true, Dir: filepath.Join(dir, ".brilcache")},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	writeFile(t, path, "[output]\nformat = \"text\"\n")
	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if diff := cmp.Diff([]string{"lvn", "dce"}, cfg.Pipeline.Passes); diff != "" {
		t.Errorf("default passes lost (-want +got):\n%s", diff)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("format = %q, want text", cfg.Output.Format)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown_key", "[pipeline]\nsplit = true\n", "unknown keys: pipeline.split"},
		{"unknown_pass", "[pipeline]\npasses = [\"gvn\"]\n", "[pipeline].passes"},
		{"negative_jobs", "[pipeline]\njobs = -1\n", "[pipeline].jobs"},
		{"bad_format", "[output]\nformat = \"yaml\"\n", "[output].format"},
		{"bad_toml", "[pipeline\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), configFileName)
			writeFile(t, path, tt.content)
			_, err := loadConfigFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadModes(t *testing.T) {
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Errorf("readUIMode(ON) = %v, %v", m, err)
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error for bad ui mode")
	}
	if f, err := readOutputFormat(""); err != nil || f != outputJSON {
		t.Errorf("readOutputFormat(\"\") = %v, %v", f, err)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", configFileName)
	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile(%s): %v", path, err)
	}
	if cfg.Cache.Enabled {
		t.Error("example config should leave the cache disabled")
	}
	if !filepath.IsAbs(cfg.Cache.Dir) && cfg.Cache.Dir != filepath.Join(filepath.Dir(path), ".brilopt-cache") {
		t.Errorf("cache dir %q not resolved against the config file", cfg.Cache.Dir)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envPasses, "dce1, lvn")
	t.Setenv(envJobs, "4")
	t.Setenv(envCache, "true")
	t.Setenv(envCacheDir, "/tmp/brilopt-cache")

	cfg := defaultConfig()
	if err := cfg.applyEnv(); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	want := toolConfig{
		Pipeline: pipelineConfig{Passes: []string{"dce1", "lvn"}, Jobs: 4},
		Output:   outputConfig{Format: "json"},
		Cache:    cacheConfig{Enabled: true, Dir: "/tmp/brilopt-cache"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnvRejectsBadPass(t *testing.T) {
	t.Setenv(envPasses, "lvn,cse")
	cfg := defaultConfig()
	if err := cfg.applyEnv(); err == nil {
		t.Error("expected error for unknown pass in environment")
	}
}
