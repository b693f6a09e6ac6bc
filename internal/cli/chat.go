package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/emoji"
	"github.com/yildizm/vidsynth/internal/formatter"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/ui"
)

func newChatCommand() *cobra.Command {
	var (
		language    string
		noTUI       bool
		showContext bool
		theme       string
	)

	cmd := &cobra.Command{
		Use:   "chat <video>",
		Short: "Chat about a video",
		Long: `Index a video's transcript and start a conversation about it. Every answer
is grounded in the transcript segments most relevant to the question.

Type 'exit' or press Esc to leave. Use --no-tui for a plain line-based prompt,
for example when piping questions in.`,
		Example: `  vidsynth chat dQw4w9WgXcQ
  vidsynth chat https://youtu.be/dQw4w9WgXcQ --no-tui
  echo "What is this about?" | vidsynth chat dQw4w9WgXcQ --no-tui`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args[0], language, theme, noTUI, showContext)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "transcript language (default from transcript.language)")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable terminal UI, read questions line by line")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "print retrieved segments with each answer (line mode)")
	cmd.Flags().StringVar(&theme, "theme", "default", fmt.Sprintf("TUI color theme (%s)", strings.Join(ui.GetAvailableThemes(), ", ")))

	return cmd
}

func runChat(cmd *cobra.Command, video, language, themeName string, noTUI, showContext bool) error {
	theme, ok := ui.ThemeByName(themeName)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", themeName, strings.Join(ui.GetAvailableThemes(), ", "))
	}

	cfg, a, err := prepare()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(context.Background())
	defer stop()

	session := a.newSession()
	status(cmd, cfg, emoji.GetEmoji("video"), "Indexing transcript...")
	if err := a.pipeline.Ingest(ctx, session, video, transcriptLanguage(cfg, language)); err != nil {
		return userError(err)
	}

	if noTUI {
		f, err := newFormatter(cfg)
		if err != nil {
			return err
		}
		repl := &chatREPL{
			session:     session,
			formatter:   f,
			showContext: showContext || cfg.Output.ShowContext,
			timeout:     cfg.Timeouts.Query,
		}
		return repl.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return ui.RunChat(ctx, session, ui.ChatOptions{
		Theme:        theme,
		NoColor:      !useColor(cfg),
		QueryTimeout: cfg.Timeouts.Query,
	})
}

// chatREPL answers questions read line by line. Failed questions are
// reported and the loop continues with the history untouched.
type chatREPL struct {
	session     *rag.Session
	formatter   formatter.Formatter
	showContext bool
	timeout     time.Duration
}

// Run reads questions from in until EOF, "exit" or ctx is cancelled
func (r *chatREPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	fmt.Fprintf(out, "%s Ask anything about the video. Type 'exit' to quit.\n", emoji.GetEmoji("chat"))
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		r.ask(ctx, question, out)
	}
}

func (r *chatREPL) ask(ctx context.Context, question string, out io.Writer) {
	queryCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	answer, err := r.session.Ask(queryCtx, question)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", emoji.GetEmoji("error"), common.UserMessage(err))
		return
	}

	data, err := r.formatter.FormatAnswer(answer, r.showContext)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", emoji.GetEmoji("error"), err)
		return
	}
	fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
}
