package transcript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/vidsynth/internal/common"
)

// DefaultLanguage is the caption language requested when none is given
const DefaultLanguage = "en"

// captionExtensions are tried in order for every candidate file name
var captionExtensions = []string{".srt", ".vtt", ".txt"}

// Provider fetches the transcript text of a video in a language
type Provider interface {
	Fetch(ctx context.Context, videoID, language string) (string, error)
}

// FileProvider reads caption files named after the video id from a directory:
// <id>.<lang>.srt|vtt|txt, and for English also <id>.srt|vtt|txt.
type FileProvider struct {
	Dir string
}

// NewFileProvider creates a provider reading captions from dir
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

// Fetch implements Provider
func (p *FileProvider) Fetch(ctx context.Context, videoID, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if language == "" {
		language = DefaultLanguage
	}

	for _, path := range p.candidates(videoID, language) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", common.NewTranscriptUnavailableError(videoID, language, err)
		}

		text := JoinCaptions(ParseCaptions(string(data)))
		if strings.TrimSpace(text) == "" {
			return "", common.NewTranscriptUnavailableError(videoID, language, fmt.Errorf("%s contains no captions", filepath.Base(path)))
		}
		return text, nil
	}

	return "", common.NewTranscriptUnavailableError(videoID, language, fmt.Errorf("no caption file in %s", p.Dir))
}

func (p *FileProvider) candidates(videoID, language string) []string {
	bases := []string{videoID + "." + language}
	if language == DefaultLanguage {
		bases = append(bases, videoID)
	}

	var paths []string
	for _, base := range bases {
		for _, ext := range captionExtensions {
			paths = append(paths, filepath.Join(p.Dir, base+ext))
		}
	}
	return paths
}

// ReadFile loads a local caption or plain-text transcript file
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return JoinCaptions(ParseCaptions(string(data))), nil
}
