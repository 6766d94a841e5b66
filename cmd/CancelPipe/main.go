package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/BTreeMap/CancelPipe/internal/config"
	"github.com/BTreeMap/CancelPipe/internal/flow"
	"github.com/BTreeMap/CancelPipe/internal/genai"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/pong"
	"github.com/BTreeMap/CancelPipe/internal/tui"
)

// DefaultLogFileName is written under the system temp directory because the
// terminal UI owns stdout.
const DefaultLogFileName = "cancelpipe.log"

// logLevel is raised to debug by -debug or the debug config key.
var logLevel = new(slog.LevelVar)

func main() {
	flags := registerFlags(flag.CommandLine)
	flag.Parse()

	logFile, err := initializeLogger(*flags.logFile, *flags.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	path, explicit := resolveConfigPath(*flags.configPath)
	cfg, err := loadConfiguration(path, explicit)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err, "path", path)
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(flag.CommandLine, flags, &cfg)
	if cfg.Debug {
		logLevel.Set(slog.LevelDebug)
	}

	if *flags.writeConfig {
		if err := config.Save(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model, cleanup, err := buildApp(ctx, cfg, *flags.stateDir)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	slog.Info("Starting CancelPipe", "mode", cfg.Mode, "hardMode", cfg.HardMode, "screening", cfg.Screening)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("CancelPipe failed to run", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.Info("CancelPipe exited")
}

// Flags holds command line flag values. Only flags the user sets override
// the loaded configuration.
type Flags struct {
	configPath  *string
	logFile     *string
	stateDir    *string
	debug       *bool
	writeConfig *bool
	mode        *string
	hardMode    *bool
	screening   *bool
	model       *string
	openaiKey   *string
}

func registerFlags(fs *flag.FlagSet) Flags {
	return Flags{
		configPath:  fs.String("config", "", "path to config file (default: ~/.config/cancelpipe/config.toml)"),
		logFile:     fs.String("log-file", filepath.Join(os.TempDir(), DefaultLogFileName), "path of the log file"),
		stateDir:    fs.String("state-dir", "", "directory for generation debug logs (enables them when set with -debug)"),
		debug:       fs.Bool("debug", false, "log at debug level"),
		writeConfig: fs.Bool("write-config", false, "write the effective configuration to the config path and exit"),
		mode:        fs.String("mode", "", "conversation mode: scripted or freeform (overrides $CANCELPIPE_MODE)"),
		hardMode:    fs.Bool("hard", false, "require answers to match a generated account on file (overrides $CANCELPIPE_HARD_MODE)"),
		screening:   fs.Bool("screening", true, "run the human check, treaty and pledge challenges (overrides $CANCELPIPE_SCREENING)"),
		model:       fs.String("model", "", "OpenAI model for freeform mode (overrides $OPENAI_MODEL)"),
		openaiKey:   fs.String("openai-api-key", "", "OpenAI API key (overrides $OPENAI_API_KEY)"),
	}
}

// initializeLogger sends structured logs to path.
func initializeLogger(path string, debug bool) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	if debug {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel})))
	return f, nil
}

func resolveConfigPath(flagValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	return config.DefaultConfigPath(), false
}

// loadConfiguration layers the TOML file, .env and the environment over the
// defaults. A missing file is only an error when it was named explicitly.
func loadConfiguration(path string, explicit bool) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		slog.Debug("No config file, using defaults", "path", path)
		cfg = config.Default()
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}
	config.ApplyEnv(&cfg)
	return cfg, nil
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(fs *flag.FlagSet, flags Flags, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *flags.mode
		case "hard":
			cfg.HardMode = *flags.hardMode
		case "screening":
			cfg.Screening = *flags.screening
		case "model":
			cfg.GenAI.Model = *flags.model
		case "openai-api-key":
			cfg.GenAI.APIKey = *flags.openaiKey
		case "debug":
			cfg.Debug = *flags.debug
		}
	})
	slog.Debug("flags applied",
		"mode", cfg.Mode,
		"hardMode", cfg.HardMode,
		"screening", cfg.Screening,
		"model", cfg.GenAI.Model,
		"openaiKeySet", cfg.GenAI.APIKey != "")
}

// buildApp wires the flow for cfg.Mode into the terminal UI. cleanup stops
// the flow's timers.
func buildApp(ctx context.Context, cfg config.Config, stateDir string) (tea.Model, func(), error) {
	appOpts := []tui.Option{tui.WithContext(ctx)}

	if cfg.Mode == config.ModeFreeform {
		client, err := genai.NewClient(buildGenAIOptions(cfg, stateDir)...)
		if err != nil {
			return nil, nil, fmt.Errorf("freeform mode needs an OpenAI API key: %w", err)
		}
		f := flow.NewFreeTextFlow(client,
			flow.WithFreeTextTyping(cfg.TypingSpeed()),
			flow.WithSystemPrompt(cfg.GenAI.SystemPrompt),
		)
		return tui.NewFreeText(f, appOpts...), func() {}, nil
	}

	f := flow.NewCancellationFlow(buildFlowOptions(cfg)...)
	appOpts = append(appOpts, tui.WithGameOptions(pong.WithWinningScore(cfg.Minigame.WinningScore)))
	return tui.NewScripted(f, appOpts...), f.Close, nil
}

// buildFlowOptions constructs scripted flow options.
func buildFlowOptions(cfg config.Config) []flow.Option {
	opts := []flow.Option{
		flow.WithTypingConfig(cfg.TypingSpeed()),
		flow.WithChallengeTiming(cfg.ChallengeTiming()),
		flow.WithRearmDelay(cfg.RearmDelay()),
		flow.WithPongDelay(cfg.PongDelay()),
		flow.WithTickInterval(cfg.TickInterval()),
		flow.WithHooks(flow.Hooks{OnComplete: logSubmission}),
	}
	if cfg.Screening {
		opts = append(opts, flow.WithScreening())
	}
	if cfg.HardMode {
		opts = append(opts, flow.WithHardMode())
	}
	return opts
}

// buildGenAIOptions constructs GenAI configuration options.
func buildGenAIOptions(cfg config.Config, stateDir string) []genai.Option {
	opts := []genai.Option{
		genai.WithModel(cfg.GenAI.Model),
		genai.WithTemperature(cfg.GenAI.Temperature),
		genai.WithTopP(cfg.GenAI.TopP),
		genai.WithMaxTokens(cfg.GenAI.MaxTokens),
	}
	if cfg.GenAI.APIKey != "" {
		opts = append(opts, genai.WithAPIKey(cfg.GenAI.APIKey))
	}
	if cfg.Debug && stateDir != "" {
		opts = append(opts, genai.WithDebug(stateDir))
	}
	return opts
}

func logSubmission(captured map[models.FieldKey]string) {
	attrs := make([]any, 0, 2*len(models.CanonicalFields))
	for _, key := range models.CanonicalFields {
		attrs = append(attrs, string(key), captured[key])
	}
	slog.Info("Cancellation request submitted", attrs...)
}
