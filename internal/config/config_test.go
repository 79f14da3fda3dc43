package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := Defaults()
	original.UserAgent = "podplay/test"
	original.Volume = 60

	if err := Save(path, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.UserAgent != original.UserAgent {
		t.Fatalf("UserAgent mismatch: got %q want %q", loaded.UserAgent, original.UserAgent)
	}
	if loaded.Volume != 60 {
		t.Fatalf("Volume mismatch: got %d want 60", loaded.Volume)
	}
	if loaded.ColorTheme != original.ColorTheme {
		t.Fatalf("ColorTheme mismatch: got %q want %q", loaded.ColorTheme, original.ColorTheme)
	}
}

func TestEnsureCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	ctx := context.Background()
	t.Setenv("PODPLAY_COLOR_THEME", "high_contrast")

	cfg, err := Ensure(ctx, path)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	if cfg.ColorTheme != "high_contrast" {
		t.Fatalf("ColorTheme = %q, want high_contrast", cfg.ColorTheme)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Volume != 100 {
		t.Errorf("default Volume = %d, want 100", cfg.Volume)
	}
	if cfg.PlaybackSpeed != 1.0 {
		t.Errorf("default PlaybackSpeed = %v, want 1.0", cfg.PlaybackSpeed)
	}
	if cfg.SkipSeconds != 30 {
		t.Errorf("default SkipSeconds = %d, want 30", cfg.SkipSeconds)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("default SearchLimit = %d, want 10", cfg.SearchLimit)
	}
	if !cfg.TLSVerify {
		t.Error("default TLSVerify should be true")
	}
}

func TestLoadKeepsMutedVolume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	muted := Defaults()
	muted.Volume = 0
	if err := Save(path, muted); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Volume != 0 {
		t.Errorf("Volume = %d, want 0 preserved", loaded.Volume)
	}
}

func TestEditableKeysCoverEveryYAMLField(t *testing.T) {
	keys := EditableKeys()
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	for _, want := range []string{"user_agent", "volume", "playback_speed", "max_episode_description_lines"} {
		if !seen[want] {
			t.Errorf("EditableKeys() missing %q", want)
		}
	}
}

func TestValidateSpeed(t *testing.T) {
	cases := []struct {
		input string
		ok    bool
	}{
		{"1", true},
		{"0.5", true},
		{"2.0", true},
		{"1.25", true},
		{"0.25", false},
		{"2.5", false},
		{"", false},
		{"fast", false},
	}
	for _, tc := range cases {
		err := validateSpeed(tc.input)
		if tc.ok && err != nil {
			t.Errorf("validateSpeed(%q) = %v, want nil", tc.input, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("validateSpeed(%q) = nil, want error", tc.input)
		}
	}
}

func TestLoadRepairsOutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	broken := Config{
		Volume:        250,
		PlaybackSpeed: -1,
		SkipSeconds:   0,
	}
	if err := Save(path, broken); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Volume != 100 {
		t.Errorf("Volume = %d, want clamped default 100", loaded.Volume)
	}
	if loaded.PlaybackSpeed != 1.0 {
		t.Errorf("PlaybackSpeed = %v, want default 1.0", loaded.PlaybackSpeed)
	}
	if loaded.SkipSeconds != 30 {
		t.Errorf("SkipSeconds = %d, want default 30", loaded.SkipSeconds)
	}
	if loaded.ColorTheme == "" {
		t.Error("blank ColorTheme should fall back to default")
	}
}
