package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/emoji"
)

func newAskCommand() *cobra.Command {
	var (
		language    string
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "ask <video> <question>",
		Short: "Answer one question about a video",
		Long: `Index a video's transcript, retrieve the segments most relevant to the
question and answer it from those segments only. When the transcript does not
cover the question the answer says so.`,
		Example: `  vidsynth ask dQw4w9WgXcQ "What is the main argument?"
  vidsynth ask https://youtu.be/dQw4w9WgXcQ "Who is mentioned?" --show-context`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args[0], strings.Join(args[1:], " "), language, showContext)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "transcript language (default from transcript.language)")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "print the retrieved transcript segments")

	return cmd
}

func runAsk(cmd *cobra.Command, video, question, language string, showContext bool) error {
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

	session := a.newSession()
	status(cmd, cfg, emoji.GetEmoji("video"), "Indexing transcript...")
	if err := a.pipeline.Ingest(ctx, session, video, transcriptLanguage(cfg, language)); err != nil {
		return userError(err)
	}

	queryCtx, cancel := withTimeout(ctx, cfg.Timeouts.Query)
	defer cancel()

	answer, err := session.Ask(queryCtx, question)
	if err != nil {
		return userError(err)
	}

	data, err := f.FormatAnswer(answer, showContext || cfg.Output.ShowContext)
	if err != nil {
		return err
	}
	return writeOutput(cmd, data, "")
}
