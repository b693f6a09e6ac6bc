// Package pipeline wires transcript loading, chunking, indexing and note
// generation into the operations the CLI and API expose.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yildizm/vidsynth/internal/chunker"
	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/transcript"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

// Pipeline holds every collaborator a session needs. It carries no per-video
// state; that lives in rag.Session.
type Pipeline struct {
	Transcripts  transcript.Provider
	Translator   transcript.Translator
	Embedder     vectorstore.Embedder
	Chunking     chunker.Options
	BuildOptions []vectorstore.BuildOption
	Generator    *notes.Generator
	Logger       *logger.Logger

	// BuildTimeout bounds Index, zero means no limit
	BuildTimeout time.Duration
}

// Load resolves a video reference and returns its transcript in English.
// Non-English transcripts are translated when a translator is configured.
func (p *Pipeline) Load(ctx context.Context, ref, language string) (string, string, error) {
	videoID, err := transcript.ExtractVideoID(ref)
	if err != nil {
		return "", "", err
	}
	if language == "" {
		language = transcript.DefaultLanguage
	}
	if p.Transcripts == nil {
		return "", "", common.NewTranscriptUnavailableError(videoID, language, errors.New("no transcript source configured"))
	}

	start := time.Now()
	text, err := p.Transcripts.Fetch(ctx, videoID, language)
	if err != nil {
		if !common.IsTranscriptUnavailableError(err) {
			err = common.NewTranscriptUnavailableError(videoID, language, err)
		}
		return "", "", err
	}

	if language != transcript.DefaultLanguage && p.Translator != nil {
		text, err = p.Translator.Translate(ctx, text, language)
		if err != nil {
			return "", "", err
		}
	}

	p.Logger.InfoWithFields("transcript loaded", []logger.Field{
		logger.VideoID(videoID),
		logger.F("language", language),
		logger.F("runes", len([]rune(text))),
		logger.Duration(time.Since(start)),
	})
	return videoID, text, nil
}

// Index chunks a transcript and builds its vector index
func (p *Pipeline) Index(ctx context.Context, text string) (*vectorstore.Index, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewConfigError("transcript", "must not be empty")
	}

	segments, err := p.Chunking.Chunk(text)
	if err != nil {
		return nil, err
	}

	if p.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.BuildTimeout)
		defer cancel()
	}

	opts := append([]vectorstore.BuildOption{vectorstore.WithLogger(p.Logger.WithComponent("index"))}, p.BuildOptions...)
	return vectorstore.Build(ctx, segments, p.Embedder, opts...)
}

// Ingest loads and indexes a video, then installs it in the session. On any
// failure the session keeps its previous video and history.
func (p *Pipeline) Ingest(ctx context.Context, session *rag.Session, ref, language string) error {
	videoID, text, err := p.Load(ctx, ref, language)
	if err != nil {
		return err
	}
	return p.install(ctx, session, videoID, text)
}

// IngestText indexes an already available transcript under the given name
func (p *Pipeline) IngestText(ctx context.Context, session *rag.Session, name, text string) error {
	return p.install(ctx, session, name, text)
}

func (p *Pipeline) install(ctx context.Context, session *rag.Session, videoID, text string) error {
	idx, err := p.Index(ctx, text)
	if err != nil {
		return err
	}
	session.Replace(videoID, idx)
	return nil
}

// Notes produces topics and notes for a transcript
func (p *Pipeline) Notes(ctx context.Context, text string) (*notes.Result, error) {
	if p.Generator == nil {
		return nil, common.NewGenerationError("notes", errors.New("no language model configured"))
	}
	return p.Generator.Generate(ctx, text)
}

// NotesFor loads a video and produces its topics and notes
func (p *Pipeline) NotesFor(ctx context.Context, ref, language string) (*notes.Result, error) {
	videoID, text, err := p.Load(ctx, ref, language)
	if err != nil {
		return nil, err
	}
	result, err := p.Notes(ctx, text)
	if err != nil {
		return nil, err
	}
	result.VideoID = videoID
	return result, nil
}
