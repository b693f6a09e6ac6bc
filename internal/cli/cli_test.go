package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/chunker"
	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/config"
	"github.com/yildizm/vidsynth/internal/formatter"
	"github.com/yildizm/vidsynth/internal/pipeline"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

const (
	sunText     = "The sun shines because of nuclear fusion in its core. Hydrogen fuses into helium and releases energy."
	penguinText = "Penguins live in the southern hemisphere. They cannot fly but swim very well in cold water."
)

type stubLLM struct{}

func (stubLLM) Name() string          { return "stub" }
func (stubLLM) MaxTokens() int        { return 1024 }
func (stubLLM) ValidateConfig() error { return nil }
func (stubLLM) Close() error          { return nil }
func (stubLLM) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if strings.Contains(req.Prompt, "fusion") {
		return &ai.CompletionResponse{Content: "The sun shines through nuclear fusion."}, nil
	}
	return &ai.CompletionResponse{Content: rag.FallbackMessage}, nil
}

func newTestPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Embedder: vectorstore.NewTFIDFVectorizer(0),
		Chunking: chunker.Options{MaxSize: 60, Overlap: 10},
	}
}

func newTestSession() *rag.Session {
	return rag.NewSession(rag.NewRetriever(2, nil), rag.NewComposer(stubLLM{}, rag.ComposerOptions{}), nil)
}

// resetGlobals clears flag state shared between command runs
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile, verbose, noColor, noEmoji, outputFmt = "", false, false, false, ""
		globalConfig = nil
	})
	globalConfig = nil
}

func TestChatREPL(t *testing.T) {
	session := newTestSession()
	if err := newTestPipeline().IngestText(context.Background(), session, "sun", sunText); err != nil {
		t.Fatalf("IngestText failed: %v", err)
	}

	repl := &chatREPL{session: session, formatter: formatter.NewTerminal(false, false)}
	in := strings.NewReader("Why does the sun shine?\n\nexit\nnever asked\n")
	var out bytes.Buffer

	if err := repl.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(out.String(), "nuclear fusion") {
		t.Errorf("expected answer in output, got %q", out.String())
	}
	if got := len(session.History()); got != 2 {
		t.Errorf("expected 2 turns after one question, got %d", got)
	}
}

func TestChatREPLReportsErrorsAndContinues(t *testing.T) {
	session := newTestSession()
	repl := &chatREPL{session: session, formatter: formatter.NewTerminal(false, false)}
	in := strings.NewReader("first question\nsecond question\n")
	var out bytes.Buffer

	if err := repl.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msg := common.UserMessage(common.ErrSessionNotReady)
	if got := strings.Count(out.String(), msg); got != 2 {
		t.Errorf("expected the not-ready message twice, got %d in %q", got, out.String())
	}
	if len(session.History()) != 0 {
		t.Errorf("failed questions must not be recorded, got %d turns", len(session.History()))
	}
}

func newTestWatcher(t *testing.T, content string) (*transcriptWatcher, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write transcript: %v", err)
	}

	var out bytes.Buffer
	w := &transcriptWatcher{
		path:      filepath.Clean(path),
		pipeline:  newTestPipeline(),
		session:   newTestSession(),
		formatter: formatter.NewTerminal(false, false),
		out:       &out,
	}
	if err := w.reload(context.Background()); err != nil {
		t.Fatalf("initial reload failed: %v", err)
	}
	return w, &out
}

func TestTranscriptWatcherRebuildsOnWrite(t *testing.T) {
	w, out := newTestWatcher(t, sunText)
	ctx := context.Background()

	w.answer(ctx, "Why does the sun shine?")
	if len(w.session.History()) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(w.session.History()))
	}
	before := w.session.Index()

	if err := os.WriteFile(w.path, []byte(penguinText), 0o600); err != nil {
		t.Fatalf("failed to rewrite transcript: %v", err)
	}
	w.rebuild(ctx)

	if w.session.Index() == before {
		t.Error("expected a new index after the file changed")
	}
	if len(w.session.History()) != 0 {
		t.Errorf("expected history cleared after rebuild, got %d turns", len(w.session.History()))
	}
	if w.session.VideoID() != "lecture.txt" {
		t.Errorf("expected session named after the file, got %q", w.session.VideoID())
	}
	if !strings.Contains(out.String(), "rebuilding index") {
		t.Errorf("expected rebuild notice, got %q", out.String())
	}
}

func TestTranscriptWatcherKeepsIndexOnFailedReload(t *testing.T) {
	w, out := newTestWatcher(t, sunText)
	before := w.session.Index()

	if err := os.WriteFile(w.path, nil, 0o600); err != nil {
		t.Fatalf("failed to truncate transcript: %v", err)
	}
	w.rebuild(context.Background())

	if w.session.Index() != before {
		t.Error("expected the previous index to stay in place")
	}
	if !strings.Contains(out.String(), "Keeping previous index") {
		t.Errorf("expected keep notice, got %q", out.String())
	}
}

func TestTranscriptWatcherRelevantEvents(t *testing.T) {
	w, _ := newTestWatcher(t, sunText)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: w.path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: w.path, Op: fsnotify.Create}, true},
		{"other file", fsnotify.Event{Name: filepath.Join(filepath.Dir(w.path), "other.txt"), Op: fsnotify.Write}, false},
		{"chmod", fsnotify.Event{Name: w.path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: w.path, Op: fsnotify.Remove}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestTranscriptWatcherCoalescesEvents(t *testing.T) {
	w, out := newTestWatcher(t, sunText)
	w.delay = 20 * time.Millisecond
	before := w.session.Index()

	if err := os.WriteFile(w.path, []byte(penguinText), 0o600); err != nil {
		t.Fatalf("failed to rewrite transcript: %v", err)
	}

	events := make(chan fsnotify.Event)
	questions := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- w.run(context.Background(), events, make(chan error), questions)
	}()

	for i := 0; i < 3; i++ {
		events <- fsnotify.Event{Name: w.path, Op: fsnotify.Write}
	}
	events <- fsnotify.Event{Name: w.path, Op: fsnotify.Chmod}
	time.Sleep(200 * time.Millisecond)
	close(questions)

	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got := strings.Count(out.String(), "rebuilding index"); got != 1 {
		t.Errorf("expected one rebuild for a burst of writes, got %d", got)
	}
	if w.session.Index() == before {
		t.Error("expected the index to be rebuilt")
	}
}

func TestTranscriptWatcherRun(t *testing.T) {
	w, out := newTestWatcher(t, sunText)

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	questions := make(chan string, 1)
	questions <- "Why does the sun shine?"
	close(questions)

	if err := w.run(context.Background(), events, errs, questions); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "nuclear fusion") {
		t.Errorf("expected answer in output, got %q", out.String())
	}
}

func TestReadQuestions(t *testing.T) {
	questions := readQuestions(context.Background(), strings.NewReader("one\n\n  \ntwo\n"))

	var got []string
	for q := range questions {
		got = append(got, q)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("expected [one two], got %v", got)
	}
}

func TestValidateWatchFilePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "captions.srt")
	if err := os.WriteFile(file, []byte("hello"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"regular file", file, false},
		{"empty", "  ", true},
		{"traversal", "../secret.txt", true},
		{"missing", filepath.Join(dir, "missing.srt"), true},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWatchFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWatchFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-emoji"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	resetGlobals(t)

	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "vidsynth 1.2.3 (abc123) built on 2026-01-01") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "nested", "vidsynth.yaml")

	out, err := runRoot(t, "config", "init", "--minimal", "--path", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected created path in output, got %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if _, err := runRoot(t, "config", "init", "--path", path); err == nil {
		t.Error("expected init to refuse overwriting without --force")
	}
	if _, err := runRoot(t, "config", "init", "--force", "--path", path); err != nil {
		t.Errorf("init --force failed: %v", err)
	}

	out, err = runRoot(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("unexpected validate output: %q", out)
	}

	out, err = runRoot(t, "--config", path, "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var shown config.Config
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show produced invalid JSON: %v\n%s", err, out)
	}
	if shown.Retrieval.TopK < 1 {
		t.Errorf("expected a usable top_k, got %d", shown.Retrieval.TopK)
	}

	if _, err := runRoot(t, "--config", path, "config", "show", "--format", "toml"); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("retrieval:\n  top_k: 0\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out, err := runRoot(t, "--config", path, "config", "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "validation failed") {
		t.Errorf("expected failure message, got %q", out)
	}
}

func TestRedact(t *testing.T) {
	if redact("") != "" {
		t.Error("empty key should stay empty")
	}
	if got := redact("sk-secret"); got == "sk-secret" || got == "" {
		t.Errorf("expected key to be masked, got %q", got)
	}
}

func TestCreateEmbedderTFIDF(t *testing.T) {
	registry, err := newRegistry()
	if err != nil {
		t.Fatalf("newRegistry failed: %v", err)
	}

	embedder, err := createEmbedder(registry, &config.EmbeddingConfig{Provider: "TFIDF", Dimensions: 128}, &config.AIConfig{})
	if err != nil {
		t.Fatalf("createEmbedder failed: %v", err)
	}
	if _, ok := embedder.(*vectorstore.TFIDFVectorizer); !ok {
		t.Errorf("expected TF-IDF vectorizer, got %T", embedder)
	}
}

func TestCreateLLMUnknownProvider(t *testing.T) {
	registry, err := newRegistry()
	if err != nil {
		t.Fatalf("newRegistry failed: %v", err)
	}

	if _, err := createLLM(registry, &config.AIConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestEndpointFor(t *testing.T) {
	tests := []struct {
		provider string
		endpoint string
		want     string
	}{
		{"ollama", config.DefaultOllamaEndpoint, config.DefaultOllamaEndpoint},
		{"openai", config.DefaultOllamaEndpoint, ""},
		{"anthropic", config.DefaultOllamaEndpoint, ""},
		{"openai", "https://proxy.internal/v1", "https://proxy.internal/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+" "+tt.endpoint, func(t *testing.T) {
			if got := endpointFor(tt.provider, tt.endpoint); got != tt.want {
				t.Errorf("endpointFor(%q, %q) = %q, want %q", tt.provider, tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestUserError(t *testing.T) {
	if userError(nil) != nil {
		t.Error("nil error should stay nil")
	}

	cause := common.NewTranscriptUnavailableError("aaaaaaaaaaa", "en", nil)
	err := userError(cause)
	if err.Error() != common.UserMessage(cause) {
		t.Errorf("expected user message, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected the original error to be preserved")
	}
}

func TestTranscriptLanguage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Transcript.Language = "de"

	if got := transcriptLanguage(cfg, ""); got != "de" {
		t.Errorf("expected configured language, got %q", got)
	}
	if got := transcriptLanguage(cfg, "fr"); got != "fr" {
		t.Errorf("expected flag language, got %q", got)
	}
}
