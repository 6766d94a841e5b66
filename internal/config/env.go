package config

import (
	"log/slog"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/util"
)

// ApplyEnv overrides cfg with the CANCELPIPE_* and OPENAI_* variables that
// are set. Loading a .env file beforehand is the caller's job.
func ApplyEnv(cfg *Config) {
	if v, ok := util.LookupEnv(EnvAPIKey); ok {
		cfg.GenAI.APIKey = v
	}
	if v, ok := util.LookupEnv(EnvModel); ok {
		cfg.GenAI.Model = v
	}
	if v, ok := util.LookupEnv(EnvMode); ok {
		cfg.Mode = strings.ToLower(v)
	}
	cfg.HardMode = util.ParseBoolEnv(EnvHardMode, cfg.HardMode)
	cfg.Screening = util.ParseBoolEnv(EnvScreening, cfg.Screening)
	cfg.Debug = util.ParseBoolEnv(EnvDebug, cfg.Debug)

	slog.Debug("config.ApplyEnv: environment applied",
		"mode", cfg.Mode,
		"hardMode", cfg.HardMode,
		"screening", cfg.Screening,
		"model", cfg.GenAI.Model,
		"apiKeySet", cfg.GenAI.APIKey != "")
}
