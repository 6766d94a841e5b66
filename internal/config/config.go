// Package config resolves CancelPipe's process configuration: compiled
// defaults, an optional TOML file, then environment variables. Command-line
// flags are layered on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/genai"
	"github.com/BTreeMap/CancelPipe/internal/pong"
	"github.com/BTreeMap/CancelPipe/internal/script"
	"github.com/BTreeMap/CancelPipe/internal/typing"
)

// Conversation modes.
const (
	ModeScripted = "scripted"
	ModeFreeform = "freeform"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey    = "OPENAI_API_KEY"
	EnvModel     = "OPENAI_MODEL"
	EnvMode      = "CANCELPIPE_MODE"
	EnvHardMode  = "CANCELPIPE_HARD_MODE"
	EnvScreening = "CANCELPIPE_SCREENING"
	EnvDebug     = "CANCELPIPE_DEBUG"
)

// ErrUnknownMode is returned by Validate for a mode other than scripted or freeform.
var ErrUnknownMode = errors.New("unknown mode")

// Config is the process configuration: compiled defaults overlaid by the
// TOML file, the environment and command-line flags.
type Config struct {
	Mode      string          `toml:"mode"`
	HardMode  bool            `toml:"hard_mode"`
	Screening bool            `toml:"screening"`
	Debug     bool            `toml:"debug"`
	Typing    TypingConfig    `toml:"typing"`
	Challenge ChallengeConfig `toml:"challenge"`
	Minigame  MinigameConfig  `toml:"minigame"`
	GenAI     GenAIConfig     `toml:"genai"`
}

// TypingConfig sets the simulated typing speed in milliseconds.
type TypingConfig struct {
	PerCharMS int `toml:"per_char_ms"`
	MinMS     int `toml:"min_ms"`
	MaxMS     int `toml:"max_ms"`
	GapMS     int `toml:"gap_ms"`
}

// ChallengeConfig sets challenge re-arm, countdown and pledge limits in
// milliseconds.
type ChallengeConfig struct {
	RearmDelayMS int `toml:"rearm_delay_ms"`
	TickMS       int `toml:"tick_ms"`
	TimedLimitMS int `toml:"timed_limit_ms"`
	LightLimitMS int `toml:"light_limit_ms"`
	LightCycleMS int `toml:"light_cycle_ms"`
}

// MinigameConfig configures the pong gate.
type MinigameConfig struct {
	StartDelayMS int `toml:"start_delay_ms"`
	WinningScore int `toml:"winning_score"`
}

// GenAIConfig configures the OpenAI client used in freeform mode.
type GenAIConfig struct {
	// APIKey only comes from the environment or flags.
	APIKey       string  `toml:"-"`
	Model        string  `toml:"model"`
	Temperature  float64 `toml:"temperature"`
	TopP         float64 `toml:"top_p"`
	MaxTokens    int64   `toml:"max_tokens"`
	SystemPrompt string  `toml:"system_prompt,omitempty"`
}

// Default returns the compiled defaults. Screening is on, as in the
// interactive client.
func Default() Config {
	ty := typing.DefaultConfig()
	tm := script.DefaultTiming()
	return Config{
		Mode:      ModeScripted,
		Screening: true,
		Typing: TypingConfig{
			PerCharMS: millis(ty.PerChar),
			MinMS:     millis(ty.Min),
			MaxMS:     millis(ty.Max),
			GapMS:     millis(ty.Gap),
		},
		Challenge: ChallengeConfig{
			RearmDelayMS: 400,
			TickMS:       millis(challenge.DefaultTickInterval),
			TimedLimitMS: millis(tm.TimedLimit),
			LightLimitMS: millis(tm.LightLimit),
			LightCycleMS: millis(tm.LightCycle),
		},
		Minigame: MinigameConfig{
			StartDelayMS: 1200,
			WinningScore: pong.DefaultWinningScore,
		},
		GenAI: GenAIConfig{
			Model:       genai.DefaultModel,
			Temperature: genai.DefaultTemperature,
			TopP:        genai.DefaultTopP,
			MaxTokens:   genai.DefaultMaxTokens,
		},
	}
}

// DefaultConfigPath returns ~/.config/cancelpipe/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "cancelpipe", "config.toml")
}

// Load decodes the TOML file at path over the defaults. Keys absent from the
// file keep their default values. A missing file yields an error wrapping
// os.ErrNotExist.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("config.Load: ignoring unknown key", "path", path, "key", key.String())
	}
	slog.Debug("config.Load: config loaded", "path", path, "keys", len(md.Keys()))
	return cfg, nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// Validate rejects unknown modes and out-of-range values.
func (c Config) Validate() error {
	if c.Mode != ModeScripted && c.Mode != ModeFreeform {
		return fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownMode, c.Mode, ModeScripted, ModeFreeform)
	}
	positive := []struct {
		name  string
		value int
	}{
		{"typing.per_char_ms", c.Typing.PerCharMS},
		{"typing.min_ms", c.Typing.MinMS},
		{"typing.max_ms", c.Typing.MaxMS},
		{"challenge.tick_ms", c.Challenge.TickMS},
		{"challenge.timed_limit_ms", c.Challenge.TimedLimitMS},
		{"challenge.light_limit_ms", c.Challenge.LightLimitMS},
		{"challenge.light_cycle_ms", c.Challenge.LightCycleMS},
		{"minigame.start_delay_ms", c.Minigame.StartDelayMS},
		{"minigame.winning_score", c.Minigame.WinningScore},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	if c.Typing.GapMS < 0 || c.Challenge.RearmDelayMS < 0 {
		return fmt.Errorf("typing.gap_ms and challenge.rearm_delay_ms must not be negative")
	}
	if c.Typing.MaxMS < c.Typing.MinMS {
		return fmt.Errorf("typing.max_ms (%d) is below typing.min_ms (%d)", c.Typing.MaxMS, c.Typing.MinMS)
	}
	if c.GenAI.Temperature < 0 || c.GenAI.Temperature > 2 {
		return fmt.Errorf("genai.temperature must be within [0, 2], got %g", c.GenAI.Temperature)
	}
	if c.GenAI.TopP <= 0 || c.GenAI.TopP > 1 {
		return fmt.Errorf("genai.top_p must be within (0, 1], got %g", c.GenAI.TopP)
	}
	if c.GenAI.MaxTokens <= 0 {
		return fmt.Errorf("genai.max_tokens must be positive, got %d", c.GenAI.MaxTokens)
	}
	return nil
}

// TypingSpeed converts the typing section.
func (c Config) TypingSpeed() typing.Config {
	return typing.Config{
		PerChar: ms(c.Typing.PerCharMS),
		Min:     ms(c.Typing.MinMS),
		Max:     ms(c.Typing.MaxMS),
		Gap:     ms(c.Typing.GapMS),
	}
}

// ChallengeTiming converts the pledge limits.
func (c Config) ChallengeTiming() script.Timing {
	return script.Timing{
		TimedLimit: ms(c.Challenge.TimedLimitMS),
		LightLimit: ms(c.Challenge.LightLimitMS),
		LightCycle: ms(c.Challenge.LightCycleMS),
	}
}

func (c Config) RearmDelay() time.Duration   { return ms(c.Challenge.RearmDelayMS) }
func (c Config) TickInterval() time.Duration { return ms(c.Challenge.TickMS) }
func (c Config) PongDelay() time.Duration    { return ms(c.Minigame.StartDelayMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func millis(d time.Duration) int { return int(d / time.Millisecond) }
