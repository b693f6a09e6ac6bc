package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/emoji"
	"github.com/yildizm/vidsynth/internal/formatter"
	"github.com/yildizm/vidsynth/internal/pipeline"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/transcript"
)

func newWatchCommand() *cobra.Command {
	var showContext bool

	cmd := &cobra.Command{
		Use:   "watch <transcript-file>",
		Short: "Answer questions about a transcript file as it changes",
		Long: `Index a local transcript file (.srt, .vtt or plain text) and answer questions
read from stdin. Whenever the file is written the index is rebuilt and the
conversation starts over, as if a new video had been loaded.

If a rebuild fails, for example because the file is empty mid-write, the
previous index stays in use. Press Ctrl+C to stop watching.`,
		Example: `  vidsynth watch lecture.en.srt
  vidsynth watch notes.txt --show-context`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], showContext)
		},
	}

	cmd.Flags().BoolVar(&showContext, "show-context", false, "print the retrieved transcript segments")

	return cmd
}

func runWatch(cmd *cobra.Command, filename string, showContext bool) error {
	if err := validateWatchFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	cfg, a, err := prepare()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	w := &transcriptWatcher{
		path:        filepath.Clean(filename),
		pipeline:    a.pipeline,
		session:     a.newSession(),
		formatter:   f,
		showContext: showContext || cfg.Output.ShowContext,
		timeout:     cfg.Timeouts.Query,
		out:         cmd.OutOrStdout(),
	}

	if err := w.reload(ctx); err != nil {
		return userError(err)
	}

	watcher, err := createWatcher(w.path)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	if isVerbose() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching file: %s\n", w.path)
		fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop...\n\n")
	}

	return w.run(ctx, watcher.Events, watcher.Errors, readQuestions(ctx, cmd.InOrStdin()))
}

// defaultRebuildDelay coalesces the burst of events a single save produces
const defaultRebuildDelay = 250 * time.Millisecond

// transcriptWatcher keeps a session indexed on the current contents of a file
type transcriptWatcher struct {
	path        string
	delay       time.Duration
	pipeline    *pipeline.Pipeline
	session     *rag.Session
	formatter   formatter.Formatter
	showContext bool
	timeout     time.Duration
	out         io.Writer
}

// reload rebuilds the index from the file. On failure the session keeps
// its current index and history.
func (w *transcriptWatcher) reload(ctx context.Context) error {
	text, err := transcript.ReadFile(w.path)
	if err != nil {
		return err
	}
	if err := w.pipeline.IngestText(ctx, w.session, filepath.Base(w.path), text); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "%s Indexed %s (%d segments)\n",
		emoji.GetEmoji("success"), filepath.Base(w.path), w.session.Index().Size())
	return nil
}

// run handles file events and questions until ctx is cancelled or the
// question stream ends. Changes to the file rebuild the index once the file
// has been quiet for the watcher's delay.
func (w *transcriptWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, questions <-chan string) error {
	var (
		timer   *time.Timer
		rebuild <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.rebuildDelay())
			rebuild = timer.C

		case <-rebuild:
			rebuild = nil
			w.rebuild(ctx)

		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}

		case question, ok := <-questions:
			if !ok {
				return nil
			}
			w.answer(ctx, question)
		}
	}
}

// relevant reports whether event changes the watched file. Editors that save
// by replacing the file show up as a create.
func (w *transcriptWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *transcriptWatcher) rebuildDelay() time.Duration {
	if w.delay > 0 {
		return w.delay
	}
	return defaultRebuildDelay
}

// rebuild reindexes the file, keeping the previous index when that fails
func (w *transcriptWatcher) rebuild(ctx context.Context) {
	fmt.Fprintf(w.out, "%s %s changed, rebuilding index\n", emoji.GetEmoji("watch"), filepath.Base(w.path))
	if err := w.reload(ctx); err != nil {
		fmt.Fprintf(w.out, "%s Keeping previous index: %s\n", emoji.GetEmoji("warning"), common.UserMessage(err))
	}
}

func (w *transcriptWatcher) answer(ctx context.Context, question string) {
	queryCtx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()

	answer, err := w.session.Ask(queryCtx, question)
	if err != nil {
		fmt.Fprintf(w.out, "%s %s\n", emoji.GetEmoji("error"), common.UserMessage(err))
		return
	}

	data, err := w.formatter.FormatAnswer(answer, w.showContext)
	if err != nil {
		fmt.Fprintf(w.out, "%s %v\n", emoji.GetEmoji("error"), err)
		return
	}
	fmt.Fprintln(w.out, strings.TrimRight(string(data), "\n"))
}

// readQuestions streams non-blank lines from r until EOF
func readQuestions(ctx context.Context, r io.Reader) <-chan string {
	questions := make(chan string)
	go func() {
		defer close(questions)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case questions <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return questions
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher watches the directory holding filename, so the file can be
// replaced as well as written in place
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	// Check for empty path
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	// Clean the path to resolve . and .. elements
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// For watch operations, ensure the file exists and is a regular file
	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
