package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

// Answer is the outcome of one question
type Answer struct {
	Question string                     `json:"question"`
	Text     string                     `json:"answer"`
	Sources  []vectorstore.SearchResult `json:"sources,omitempty"`
	Fallback bool                       `json:"fallback"`
}

// Session holds the index of the active video and the conversation about it.
// A new video replaces the index and clears the history.
type Session struct {
	ID        string
	CreatedAt time.Time

	retriever *Retriever
	composer  *Composer
	logger    *logger.Logger

	mu         sync.RWMutex
	videoID    string
	index      *vectorstore.Index
	history    []common.ConversationTurn
	generation uint64
}

// NewSession creates an empty session
func NewSession(retriever *Retriever, composer *Composer, log *logger.Logger) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		retriever: retriever,
		composer:  composer,
		logger:    log.WithComponent("session"),
	}
}

// Replace installs the index for a new video and clears the conversation
func (s *Session) Replace(videoID string, idx *vectorstore.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videoID = videoID
	s.index = idx
	s.history = nil
	s.generation++

	s.logger.InfoWithFields("session index replaced", []logger.Field{
		logger.Session(s.ID),
		logger.VideoID(videoID),
		logger.Count(idx.Size()),
	})
}

// Ask answers a question against the active index and records the exchange.
// A failed question leaves the history untouched.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, common.NewConfigError("question", "must not be empty")
	}

	s.mu.RLock()
	idx := s.index
	generation := s.generation
	s.mu.RUnlock()

	if idx == nil {
		return nil, common.ErrSessionNotReady
	}

	results, err := s.retriever.Retrieve(ctx, idx, question, 0)
	if err != nil {
		return nil, err
	}

	text, err := s.composer.Answer(ctx, question, results)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// A video swapped in while answering owns a fresh history.
	if s.generation == generation {
		s.history = append(s.history,
			common.NewTurn(common.RoleUser, question),
			common.NewTurn(common.RoleAssistant, text),
		)
	}
	s.mu.Unlock()

	return &Answer{
		Question: question,
		Text:     text,
		Sources:  results,
		Fallback: text == FallbackMessage,
	}, nil
}

// History returns a copy of the conversation so far
func (s *Session) History() []common.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]common.ConversationTurn, len(s.history))
	copy(history, s.history)
	return history
}

// Ready reports whether a video has been indexed
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// VideoID returns the id of the active video
func (s *Session) VideoID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoID
}

// Index returns the active index, nil before the first video
func (s *Session) Index() *vectorstore.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Reset drops the index and the conversation
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoID = ""
	s.index = nil
	s.history = nil
	s.generation++
}
