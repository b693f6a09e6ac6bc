package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/config"
	"github.com/yildizm/vidsynth/internal/formatter"
)

// displayError prints the user-facing message of a pipeline error while
// keeping the original error for errors.Is/As
type displayError struct {
	err error
}

func (e *displayError) Error() string {
	return common.UserMessage(e.err)
}

func (e *displayError) Unwrap() error {
	return e.err
}

func userError(err error) error {
	if err == nil {
		return nil
	}
	return &displayError{err: err}
}

// prepare loads the configuration and builds the app for a command
func prepare() (*config.Config, *app, error) {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// withTimeout bounds ctx when d is positive
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func transcriptLanguage(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Transcript.Language
}

func newFormatter(cfg *config.Config) (formatter.Formatter, error) {
	return formatter.New(getOutputFormat(cfg), useColor(cfg), !noEmoji)
}

// writeOutput writes rendered output to a file, or to the command's stdout
func writeOutput(cmd *cobra.Command, data []byte, outputFile string) error {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// status prints a progress line to stderr for text output
func status(cmd *cobra.Command, cfg *config.Config, symbol, format string, args ...interface{}) {
	if getOutputFormat(cfg) != "text" && getOutputFormat(cfg) != "" {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), symbol+" "+format+"\n", args...)
}
