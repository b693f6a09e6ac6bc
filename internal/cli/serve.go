package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/vidsynth/internal/api"
	"github.com/yildizm/vidsynth/internal/emoji"
	"github.com/yildizm/vidsynth/internal/rag"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Start an HTTP server exposing notes and chat sessions.

Each session holds its own video index and conversation. Sessions live in
memory and are lost when the server stops.

Routes:
  GET    /health
  POST   /api/v1/notes
  POST   /api/v1/sessions
  POST   /api/v1/sessions/{id}/video
  POST   /api/v1/sessions/{id}/questions
  GET    /api/v1/sessions/{id}/history
  DELETE /api/v1/sessions/{id}`,
		Example: `  vidsynth serve
  vidsynth serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cfg, a, err := prepare()
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	sessions := rag.NewSessionStore(a.retriever, a.composer, a.log)
	server := api.NewServer(a.pipeline, sessions, api.Options{
		Addr:         addr,
		Language:     cfg.Transcript.Language,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		QueryTimeout: cfg.Timeouts.Query,
		Logger:       GetLogger("api"),
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Serving on %s (Ctrl+C to stop)\n", emoji.GetEmoji("server"), addr)
	return server.Start(ctx)
}
