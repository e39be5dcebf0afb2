// Package main is the entry point for the twsdash CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/musher-dev/twsdash/internal/buildinfo"
	"github.com/musher-dev/twsdash/internal/config"
	clierrors "github.com/musher-dev/twsdash/internal/errors"
	"github.com/musher-dev/twsdash/internal/observability"
	"github.com/musher-dev/twsdash/internal/output"
	"github.com/musher-dev/twsdash/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	// Restore the cursor if a spinner or the panel was running when we panicked.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprint(os.Stderr, "\033[?25h")
			panic(r)
		}
	}()

	buildinfo.Version = version
	buildinfo.Commit = commit

	return runCLI(os.Args[1:], os.Stdout, os.Stderr)
}

// runCLI executes the command tree and turns a failure into an exit code.
// Errors are reported through the Writer the command resolved from its
// flags, so --json keeps stdout parseable.
func runCLI(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Used until the persistent pre-run replaces it with the flag-aware writer.
	fallback := output.NewWriter(stdout, stderr, terminal.Detect())

	cmd, err := rootCmd.ExecuteContextC(fallback.WithContext(context.Background()))
	if err == nil {
		return 0
	}

	out := fallback
	if cmd != nil && cmd.Context() != nil {
		out = output.FromContext(cmd.Context())
	}

	return handleError(out, err)
}

// handleError prints err and returns the process exit code.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Message)

		if cliErr.Hint != "" {
			out.Hint("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	// Format: "unknown command \"xyz\" for \"twsdash\"\n\nDid you mean this?\n\t..."
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)

		if !strings.Contains(errStr, "--help") {
			out.Hint("Run 'twsdash --help' for usage")
		}

		return clierrors.ExitUsage
	}

	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "required flag") {
		out.Failure("%s", errStr)
		out.Hint("Run 'twsdash --help' for usage")

		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)

	return clierrors.ExitGeneral
}

func newRootCmd() *cobra.Command {
	var (
		apiURL     string
		jsonOutput bool
		quiet      bool
		noColor    bool
		logLevel   string
		logFormat  string
		logFile    string
		logStderr  string
	)

	rootCmd := &cobra.Command{
		Use:   "twsdash",
		Short: "Terminal dashboard for a TWS gateway backend",
		Long: `twsdash shows whether the backend service is connected to Trader
Workstation (TWS) and lets you ask the gateway for its current time.

Get started:
  twsdash panel         Open the interactive status panel
  twsdash status        Print the gateway connection status
  twsdash time          Ask TWS for its current time
  twsdash doctor        Diagnose configuration and connectivity`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(apiURL) != "" {
				normalized, err := validateAPIURL(apiURL)
				if err != nil {
					return err
				}

				// Viper reads this through AutomaticEnv, so every config.Load sees it.
				if err := os.Setenv(config.EnvPrefix+"_API_URL", normalized); err != nil {
					return clierrors.ConfigFailed("apply --api-url", err)
				}
			}

			out := output.NewWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(), terminal.Detect())
			out.JSON = pickBoolFlagOrEnv(jsonOutput, "TWSDASH_JSON")
			out.Quiet = pickBoolFlagOrEnv(quiet, "TWSDASH_QUIET")

			if noColor {
				out.SetNoColor(true)

				color.NoColor = true
			}

			logCfg := observability.Config{
				Level:          pickFlagOrEnv(logLevel, "TWSDASH_LOG_LEVEL", "info"),
				Format:         pickFlagOrEnv(logFormat, "TWSDASH_LOG_FORMAT", "json"),
				LogFile:        pickFlagOrEnv(logFile, "TWSDASH_LOG_FILE", ""),
				StderrMode:     pickFlagOrEnv(logStderr, "TWSDASH_LOG_STDERR", "auto"),
				InteractiveTTY: out.Terminal().InteractiveEnabled() && isInteractiveCommand(cmd.CommandPath()),
				SessionID:      uuid.NewString(),
				CommandPath:    cmd.CommandPath(),
				Version:        version,
				Commit:         commit,
			}

			logger, cleanup, err := observability.NewLogger(&logCfg)
			if err != nil {
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Invalid logging configuration: %v", err),
					Hint:    "Use --log-level (error|warn|info|debug), --log-format (json|text), --log-stderr (auto|on|off), and/or --log-file",
					Code:    clierrors.ExitUsage,
				}
			}

			slog.SetDefault(logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			ctx = out.WithContext(ctx)
			ctx = observability.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			cmd.PostRunE = wrapPostRunCleanup(cmd.PostRunE, cleanup)

			// Tracing is opt-in via OTEL_ENABLED.
			telemetryShutdown, telemetryErr := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
				Enabled: observability.IsTelemetryEnabled(),
				Version: version,
				Commit:  commit,
			})
			if telemetryErr != nil {
				logger.Warn("telemetry initialization failed", slog.String("error", telemetryErr.Error()))
			}

			if telemetryShutdown != nil {
				cmd.PostRunE = wrapNamedPostRunCleanup(cmd.PostRunE, "telemetry resources", func() error {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					return telemetryShutdown(shutdownCtx)
				})
			}

			logger.Debug("command started", slog.String("api.url", config.Load().APIURL()))

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "Backend base URL (default from config, "+config.DefaultAPIURL+")")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVar(&quiet, "quiet", false, "Minimal output (for CI)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug")
	flags.StringVar(&logFormat, "log-format", "", "Log format: json, text")
	flags.StringVar(&logFile, "log-file", "", "Optional structured log file path")
	flags.StringVar(&logStderr, "log-stderr", "", "Structured logging to stderr: auto, on, off")

	rootCmd.SuggestionsMinimumDistance = 2

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &clierrors.CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	})

	// Gateway commands
	rootCmd.AddCommand(newPanelCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newTimeCmd())
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newDisconnectCmd())

	// Utility commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// validateAPIURL normalizes raw and rejects anything that is not an absolute
// http(s) URL with a host.
func validateAPIURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", clierrors.InvalidAPIURL(raw, fmt.Errorf("empty URL"))
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", clierrors.InvalidAPIURL(raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", clierrors.InvalidAPIURL(raw, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	if u.Host == "" {
		return "", clierrors.InvalidAPIURL(raw, fmt.Errorf("missing host"))
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func wrapPostRunCleanup(postRun func(*cobra.Command, []string) error, cleanup func() error) func(*cobra.Command, []string) error {
	return wrapNamedPostRunCleanup(postRun, "logger resources", cleanup)
}

func wrapNamedPostRunCleanup(postRun func(*cobra.Command, []string) error, name string, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if postRun != nil {
			if err := postRun(cmd, args); err != nil {
				_ = cleanup()
				return err
			}
		}

		if err := cleanup(); err != nil {
			return fmt.Errorf("cleanup %s: %w", name, err)
		}

		return nil
	}
}

func pickBoolFlagOrEnv(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}

	v := strings.ToLower(strings.TrimSpace(os.Getenv(envKey)))

	return v == "1" || v == "true" || v == "yes"
}

func pickFlagOrEnv(flagValue, envKey, fallback string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}

	if envValue := strings.TrimSpace(os.Getenv(envKey)); envValue != "" {
		return envValue
	}

	return fallback
}

// isInteractiveCommand reports whether path takes over the terminal.
func isInteractiveCommand(path string) bool {
	return path == "twsdash panel" || strings.HasPrefix(path, "twsdash panel ")
}

// noArgs rejects positional arguments with a clearer message than cobra.NoArgs.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &clierrors.CLIError{
			Message: fmt.Sprintf("'%s' accepts no arguments", cmd.CommandPath()),
			Hint:    fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	}

	return nil
}

// VersionInfo represents version information for JSON output.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version information",
		Long:    `Display the twsdash binary version, git commit, and build date.`,
		Example: `  twsdash version
  twsdash version --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if out.JSON {
				return out.PrintJSON(VersionInfo{
					Version: version,
					Commit:  commit,
					Date:    date,
				})
			}

			out.Print("twsdash %s\n", version)
			out.Print("  commit: %s\n", commit)
			out.Print("  built:  %s\n", date)

			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate a shell completion script",
		Long: `Write a completion script for the given shell to stdout. Source it from
your shell profile to complete twsdash commands and flags.`,
		Example: `  twsdash completion bash > /etc/bash_completion.d/twsdash
  twsdash completion zsh > "${fpath[1]}/_twsdash"`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}
