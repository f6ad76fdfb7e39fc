// Package main provides the CLI entrypoint for tuistop.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuistop/internal/config"
	"github.com/verte-zerg/tuistop/internal/game"
	"github.com/verte-zerg/tuistop/internal/generator"
	"github.com/verte-zerg/tuistop/internal/model"
	"github.com/verte-zerg/tuistop/internal/stats"
	"github.com/verte-zerg/tuistop/internal/statsui"
	"github.com/verte-zerg/tuistop/internal/store"
	"github.com/verte-zerg/tuistop/internal/tui"
)

const (
	defaultPlayer      = "player"
	defaultTargetMs    = 5000
	defaultToleranceMs = 100
	defaultTickMs      = 10
	defaultRandomMinMs = 2000
	defaultRandomMaxMs = 10000
	defaultCurveWindow = 10
	defaultPlainWidth  = 80
)

var (
	debugLogs bool

	playPlayer       string
	playTargetMs     int64
	playToleranceMs  int64
	playTickMs       int64
	playRandomTarget bool
	playRandomMinMs  int64
	playRandomMaxMs  int64

	statsPlayer      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuistop",
		Short:         "TUI stopwatch game",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(debugLogs)
		},
		RunE: runPlayCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&playPlayer, "player", defaultPlayer, "player name")
	rootCmd.Flags().Int64Var(&playTargetMs, "target-ms", defaultTargetMs, "target time in milliseconds")
	rootCmd.Flags().Int64Var(&playToleranceMs, "tolerance-ms", defaultToleranceMs, "allowed distance from the target in milliseconds")
	rootCmd.Flags().Int64Var(&playTickMs, "tick-ms", defaultTickMs, "stopwatch sampling interval in milliseconds")
	rootCmd.Flags().BoolVar(&playRandomTarget, "random-target", false, "pick a new random target after every round")
	rootCmd.Flags().Int64Var(&playRandomMinMs, "random-min-ms", defaultRandomMinMs, "lower bound for random targets")
	rootCmd.Flags().Int64Var(&playRandomMaxMs, "random-max-ms", defaultRandomMaxMs, "upper bound for random targets")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func setupLogging(debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// logToFile sends the global logger to path until the returned func is
// called, which restores the previous logger.
func logToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	prev := log.Logger
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() {
		log.Logger = prev
		if cerr := f.Close(); cerr != nil {
			log.Error().Err(cerr).Str("path", path).Msg("failed to close log file")
		}
	}, nil
}

// runProgram runs a full-screen Bubble Tea model. The program owns the
// terminal, so logs go to the log file until it exits.
func runProgram(m tea.Model) error {
	restore, err := logToFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer restore()
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := resolveSettings(cmd, fileCfg.Game)
	if err := validateSettings(settings); err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	var gen *generator.Generator
	target := settings.TargetMs
	if settings.RandomTarget {
		gen = generator.New()
		target = gen.Target(settings.RandomMinMs, settings.RandomMaxMs)
	}

	configs := game.NewConfigStore(game.Config{TargetMs: target, ToleranceMs: settings.ToleranceMs})
	scores := game.NewScoreStore(settings.Player)
	g := game.New(configs, scores, game.WithTick(time.Duration(settings.TickMs)*time.Millisecond))
	defer g.Close()

	sessionID := uuid.NewString()
	log.Debug().
		Str("session_id", sessionID).
		Str("player", settings.Player).
		Int64("target_ms", target).
		Int64("tolerance_ms", settings.ToleranceMs).
		Msg("session started")

	m := tui.NewModel(g, configs, scores, st, gen, settings, sessionID)
	if err := runProgram(m); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	final := scores.Snapshot()
	log.Info().Str("session_id", sessionID).Str("player", final.Player).Int64("total_score", final.TotalScore).Msg("session finished")
	return nil
}

func resolveSettings(cmd *cobra.Command, fileCfg config.GameConfig) model.Settings {
	applyStringConfig(cmd, "player", &playPlayer, fileCfg.Player)
	applyInt64Config(cmd, "target-ms", &playTargetMs, fileCfg.TargetMs)
	applyInt64Config(cmd, "tolerance-ms", &playToleranceMs, fileCfg.ToleranceMs)
	applyInt64Config(cmd, "tick-ms", &playTickMs, fileCfg.TickMs)
	applyBoolConfig(cmd, "random-target", &playRandomTarget, fileCfg.RandomTarget)
	applyInt64Config(cmd, "random-min-ms", &playRandomMinMs, fileCfg.RandomMinMs)
	applyInt64Config(cmd, "random-max-ms", &playRandomMaxMs, fileCfg.RandomMaxMs)

	return model.Settings{
		Player:       strings.TrimSpace(playPlayer),
		TargetMs:     playTargetMs,
		ToleranceMs:  playToleranceMs,
		TickMs:       playTickMs,
		RandomTarget: playRandomTarget,
		RandomMinMs:  playRandomMinMs,
		RandomMaxMs:  playRandomMaxMs,
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template when path does not exist.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		log.Debug().Str("path", path).Msg("wrote default config")
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPlayer, "player", "", "player filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build stats: %w", err)
		}
		return writePlainReport(cmd.OutOrStdout(), report, cfg.CurveWindow, terminalWidth())
	}

	m := statsui.NewModel(statsui.StoreSource(st), cfg)
	if err := runProgram(m); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		Player:      strings.TrimSpace(statsPlayer),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func writePlainReport(w io.Writer, report stats.Report, window, width int) error {
	if err := stats.RenderSummary(w, report.Rounds, report.Sessions); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := stats.RenderDiffTrend(w, report.Rounds, window, width); err != nil {
		return fmt.Errorf("failed to write trend: %w", err)
	}
	if err := stats.RenderRoundTable(w, report.Rounds); err != nil {
		return fmt.Errorf("failed to write rounds: %w", err)
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultPlainWidth
	}
	return width
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuistop configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# player = %q          # Player name shown in the header
# target-ms = %d          # Target time in milliseconds
# tolerance-ms = %d        # Allowed distance from the target in milliseconds
# tick-ms = %d              # Stopwatch sampling interval in milliseconds
# random-target = false     # Pick a new random target after every round
# random-min-ms = %d      # Lower bound for random targets
# random-max-ms = %d     # Upper bound for random targets
`,
		defaultPlayer,
		defaultTargetMs,
		defaultToleranceMs,
		defaultTickMs,
		defaultRandomMinMs,
		defaultRandomMaxMs,
	)
}

func validateSettings(s model.Settings) error {
	if s.Player == "" {
		return fmt.Errorf("--player must not be empty")
	}
	if s.TargetMs <= 0 {
		return fmt.Errorf("--target-ms must be > 0")
	}
	if s.ToleranceMs < 0 {
		return fmt.Errorf("--tolerance-ms must be >= 0")
	}
	if s.TickMs <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	if s.RandomTarget {
		if s.RandomMinMs <= 0 {
			return fmt.Errorf("--random-min-ms must be > 0")
		}
		if s.RandomMaxMs < s.RandomMinMs {
			return fmt.Errorf("--random-max-ms must be >= --random-min-ms")
		}
	}
	return nil
}
