package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/emoji"
)

func newNotesCommand() *cobra.Command {
	var (
		language   string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "notes <video>",
		Short: "Extract the main topics and notes of a video",
		Long: `Fetch a video's transcript and produce its five most important topics and
structured notes. Non-English transcripts are translated first.

The video may be a watch URL, a short link or a bare video id.`,
		Example: `  vidsynth notes https://www.youtube.com/watch?v=dQw4w9WgXcQ
  vidsynth notes dQw4w9WgXcQ --language de
  vidsynth notes dQw4w9WgXcQ -o markdown --output-file notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotes(cmd, args[0], language, outputFile)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "transcript language (default from transcript.language)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runNotes(cmd *cobra.Command, video, language, outputFile string) error {
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

	status(cmd, cfg, emoji.GetEmoji("notes"), "Generating topics and notes...")
	result, err := a.pipeline.NotesFor(ctx, video, transcriptLanguage(cfg, language))
	if err != nil {
		return userError(err)
	}

	data, err := f.FormatNotes(result)
	if err != nil {
		return err
	}
	return writeOutput(cmd, data, outputFile)
}
