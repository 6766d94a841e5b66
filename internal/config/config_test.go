package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/BTreeMap/CancelPipe/internal/script"
	"github.com/BTreeMap/CancelPipe/internal/typing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if diff := cmp.Diff(typing.DefaultConfig(), cfg.TypingSpeed()); diff != "" {
		t.Errorf("typing speed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(script.DefaultTiming(), cfg.ChallengeTiming()); diff != "" {
		t.Errorf("challenge timing (-want +got):\n%s", diff)
	}
	if cfg.RearmDelay() != 400*time.Millisecond || cfg.PongDelay() != 1200*time.Millisecond {
		t.Errorf("delays = %v/%v", cfg.RearmDelay(), cfg.PongDelay())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
mode = "freeform"
hard_mode = true
surprise = 1

[typing]
max_ms = 1500

[challenge]
timed_limit_ms = 5000

[genai]
model = "gpt-4o"
temperature = 0.2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	want.Mode = ModeFreeform
	want.HardMode = true
	want.Typing.MaxMS = 1500
	want.Challenge.TimedLimitMS = 5000
	want.GenAI.Model = "gpt-4o"
	want.GenAI.Temperature = 0.2
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("mode = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(bad) error = %v, want parse error", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Screening = false
	cfg.GenAI.APIKey = "sk-secret"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.GenAI.APIKey = ""
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		mode    bool
	}{
		{"default", func(*Config) {}, false, false},
		{"unknown mode", func(c *Config) { c.Mode = "chaotic" }, true, true},
		{"zero tick", func(c *Config) { c.Challenge.TickMS = 0 }, true, false},
		{"negative gap", func(c *Config) { c.Typing.GapMS = -1 }, true, false},
		{"zero rearm allowed", func(c *Config) { c.Challenge.RearmDelayMS = 0 }, false, false},
		{"max below min", func(c *Config) { c.Typing.MaxMS = 100 }, true, false},
		{"no winning score", func(c *Config) { c.Minigame.WinningScore = 0 }, true, false},
		{"hot temperature", func(c *Config) { c.GenAI.Temperature = 3 }, true, false},
		{"zero top_p", func(c *Config) { c.GenAI.TopP = 0 }, true, false},
		{"zero tokens", func(c *Config) { c.GenAI.MaxTokens = 0 }, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrUnknownMode) != tt.mode {
				t.Errorf("errors.Is(err, ErrUnknownMode) = %v, want %v", !tt.mode, tt.mode)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "  sk-test  ")
	t.Setenv(EnvModel, "gpt-4o")
	t.Setenv(EnvMode, "FreeForm")
	t.Setenv(EnvHardMode, "yes")
	t.Setenv(EnvScreening, "off")
	t.Setenv(EnvDebug, "maybe")

	cfg := Default()
	ApplyEnv(&cfg)

	if cfg.GenAI.APIKey != "sk-test" || cfg.GenAI.Model != "gpt-4o" {
		t.Errorf("genai = %+v", cfg.GenAI)
	}
	if cfg.Mode != ModeFreeform || !cfg.HardMode || cfg.Screening || cfg.Debug {
		t.Errorf("cfg = mode %q hard %v screening %v debug %v", cfg.Mode, cfg.HardMode, cfg.Screening, cfg.Debug)
	}
}

func TestApplyEnvUnsetKeepsValues(t *testing.T) {
	for _, key := range []string{EnvAPIKey, EnvModel, EnvMode, EnvHardMode, EnvScreening, EnvDebug} {
		t.Setenv(key, "")
	}
	cfg := Default()
	ApplyEnv(&cfg)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("ApplyEnv changed defaults (-want +got):\n%s", diff)
	}
}
