package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/common"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/a-b_c1234XY", "a-b_c1234XY", false},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", false},
		{"not a url", "", true},
		{"https://example.com/short", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ExtractVideoID(tt.ref)
			if tt.wantErr {
				if !common.IsNotFoundError(err) {
					t.Fatalf("expected NotFoundError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestParseCaptions(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "srt",
			data: "1\n00:00:00,000 --> 00:00:01,830\nI'm happy to\nhave you here today.\n\n2\n00:00:01,910 --> 00:00:03,610\n<i>As I'm sure</i> you're all aware\n",
			want: []string{"I'm happy to", "have you here today.", "As I'm sure you're all aware"},
		},
		{
			name: "vtt with header, note and cue ids",
			data: "WEBVTT - demo\n\nNOTE this is\na comment\n\nintro\n00:01.000 --> 00:04.000 align:start\n<v Speaker>Hello &amp; welcome\n\n00:00:04.500 --> 00:00:06.000\nto the show\n",
			want: []string{"Hello & welcome", "to the show"},
		},
		{
			name: "plain text",
			data: "first line\r\nsecond line\n",
			want: []string{"first line", "second line"},
		},
		{
			name: "plain text keeps angle brackets and NOTE lines",
			data: "If x < 5 and y > 3 then the loop ends.\nNOTE that this matters.\nWe use <b>bold</b> &amp; more.\n",
			want: []string{"If x < 5 and y > 3 then the loop ends.", "NOTE that this matters.", "We use <b>bold</b> &amp; more."},
		},
		{
			name: "plain text starting with STYLE",
			data: "STYLE is what this talk is about.\nREGION matters too.",
			want: []string{"STYLE is what this talk is about.", "REGION matters too."},
		},
		{
			name: "empty",
			data: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCaptions(tt.data)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCaptions() = %q, want %q", got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "aaaaaaaaaaa.srt", "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n2\n00:00:01,000 --> 00:00:02,000\nworld\n")
	writeFile(t, dir, "bbbbbbbbbbb.de.vtt", "WEBVTT\n\n00:00.000 --> 00:01.000\nguten tag\n")
	writeFile(t, dir, "ccccccccccc.en.txt", "plain transcript\n")
	writeFile(t, dir, "ddddddddddd.en.srt", "1\n00:00:00,000 --> 00:00:01,000\n\n")

	provider := NewFileProvider(dir)

	tests := []struct {
		id, lang string
		want     string
		wantErr  bool
	}{
		{"aaaaaaaaaaa", "en", "hello world", false},
		{"aaaaaaaaaaa", "", "hello world", false},
		{"bbbbbbbbbbb", "de", "guten tag", false},
		{"ccccccccccc", "en", "plain transcript", false},
		{"aaaaaaaaaaa", "fr", "", true},
		{"zzzzzzzzzzz", "en", "", true},
		{"ddddddddddd", "en", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.lang, func(t *testing.T) {
			got, err := provider.Fetch(context.Background(), tt.id, tt.lang)
			if tt.wantErr {
				var unavailable *common.TranscriptUnavailableError
				if !errors.As(err, &unavailable) {
					t.Fatalf("expected TranscriptUnavailableError, got %v", err)
				}
				if unavailable.VideoID != tt.id {
					t.Errorf("error video id = %q", unavailable.VideoID)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}

type countingProvider struct {
	calls int32
	text  string
	err   error
}

func (p *countingProvider) Fetch(ctx context.Context, videoID, language string) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return "", p.err
	}
	return p.text + " (" + language + ")", nil
}

func TestCachedProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "transcripts.db")
	inner := &countingProvider{text: "cached words"}

	cache, err := NewCachedProvider(inner, path, nil)
	if err != nil {
		t.Fatalf("NewCachedProvider() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := cache.Fetch(ctx, "aaaaaaaaaaa", "en")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got != "cached words (en)" {
			t.Errorf("Fetch() = %q", got)
		}
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}

	if _, err := cache.Fetch(ctx, "aaaaaaaaaaa", "de"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 2 {
		t.Errorf("language must be part of the cache key, got %d calls", calls)
	}

	if err := cache.Evict(ctx, "aaaaaaaaaaa"); err != nil {
		t.Fatalf("Evict() error = %v", err)
	}
	if _, err := cache.Fetch(ctx, "aaaaaaaaaaa", "en"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 3 {
		t.Errorf("expected refetch after eviction, got %d calls", calls)
	}
}

func TestCachedProviderPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")

	first, err := NewCachedProvider(&countingProvider{text: "persisted"}, path, nil)
	if err != nil {
		t.Fatalf("NewCachedProvider() error = %v", err)
	}
	if _, err := first.Fetch(context.Background(), "aaaaaaaaaaa", "en"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	first.Close()

	failing := &countingProvider{err: errors.New("offline")}
	second, err := NewCachedProvider(failing, path, nil)
	if err != nil {
		t.Fatalf("NewCachedProvider() error = %v", err)
	}
	defer second.Close()

	got, err := second.Fetch(context.Background(), "aaaaaaaaaaa", "en")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "persisted (en)" {
		t.Errorf("Fetch() = %q", got)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: common.NewTranscriptUnavailableError("aaaaaaaaaaa", "en", nil)}
	cache, err := NewCachedProvider(inner, filepath.Join(t.TempDir(), "c.db"), nil)
	if err != nil {
		t.Fatalf("NewCachedProvider() error = %v", err)
	}
	defer cache.Close()

	for i := 0; i < 2; i++ {
		if _, err := cache.Fetch(context.Background(), "aaaaaaaaaaa", "en"); !common.IsTranscriptUnavailableError(err) {
			t.Fatalf("expected TranscriptUnavailableError, got %v", err)
		}
	}
	if calls := atomic.LoadInt32(&inner.calls); calls != 2 {
		t.Errorf("errors must not be cached, got %d calls", calls)
	}
}

type stubLLM struct {
	content string
	err     error
	last    *ai.CompletionRequest
}

func (s *stubLLM) Name() string          { return "stub" }
func (s *stubLLM) MaxTokens() int        { return 1024 }
func (s *stubLLM) ValidateConfig() error { return nil }
func (s *stubLLM) Close() error          { return nil }
func (s *stubLLM) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &ai.CompletionResponse{Content: s.content}, nil
}

func TestLLMTranslator(t *testing.T) {
	llm := &stubLLM{content: "  Good morning everyone.  "}
	translator := NewLLMTranslator(llm, "model-x", 0.2)

	got, err := translator.Translate(context.Background(), "Guten Morgen zusammen.", "de")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Good morning everyone." {
		t.Errorf("Translate() = %q", got)
	}
	if !strings.Contains(llm.last.Prompt, "Guten Morgen zusammen.") {
		t.Errorf("prompt should carry the transcript, got %q", llm.last.Prompt)
	}
	if !strings.Contains(llm.last.SystemPrompt, "expert translator") {
		t.Errorf("system prompt = %q", llm.last.SystemPrompt)
	}
	if llm.last.Model != "model-x" {
		t.Errorf("model = %q", llm.last.Model)
	}

	for _, failing := range []*stubLLM{{err: errors.New("down")}, {content: " "}} {
		if _, err := NewLLMTranslator(failing, "", 0).Translate(context.Background(), "x", "de"); !common.IsGenerationError(err) {
			t.Errorf("expected GenerationError, got %v", err)
		}
	}
}

func TestReadFilePlainText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lecture.txt", "If x < 5 and y > 3 then the loop ends.\nNOTE that this matters.\n")

	got, err := ReadFile(filepath.Join(dir, "lecture.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "If x < 5 and y > 3 then the loop ends. NOTE that this matters."
	if got != want {
		t.Errorf("ReadFile() = %q, want %q", got, want)
	}
}
