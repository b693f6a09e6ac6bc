package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/formatter"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/rag"
)

// VideoRequest selects the video for a session or a notes request
type VideoRequest struct {
	Video    string `json:"video"`
	Language string `json:"language,omitempty"`
}

// QuestionRequest carries one question about the session's video
type QuestionRequest struct {
	Question    string `json:"question"`
	ShowContext bool   `json:"show_context,omitempty"`
}

// SessionResponse describes a session and its indexed video
type SessionResponse struct {
	ID       string `json:"id"`
	VideoID  string `json:"video_id,omitempty"`
	Segments int    `json:"segments"`
}

// HistoryResponse lists a session's conversation
type HistoryResponse struct {
	ID      string                    `json:"id"`
	VideoID string                    `json:"video_id,omitempty"`
	Turns   []common.ConversationTurn `json:"turns"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// createSession handles POST /api/v1/sessions. An empty video creates a
// session that must be given one before questions are accepted.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session := s.sessions.Create()
	if strings.TrimSpace(req.Video) != "" {
		if err := s.pipeline.Ingest(r.Context(), session, req.Video, s.language(req.Language)); err != nil {
			_ = s.sessions.Delete(session.ID)
			s.logger.WarnWithFields("session ingest failed", []logger.Field{logger.Session(session.ID), logger.Error(err)})
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

// replaceVideo handles POST /api/v1/sessions/{id}/video
func (s *Server) replaceVideo(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req VideoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Video) == "" {
		writeError(w, common.NewConfigError("video", "must not be empty"))
		return
	}

	if err := s.pipeline.Ingest(r.Context(), session, req.Video, s.language(req.Language)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// ask handles POST /api/v1/sessions/{id}/questions
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req QuestionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if s.options.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.QueryTimeout)
		defer cancel()
	}

	answer, err := session.Ask(ctx, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formatter.NewAnswerOutput(answer, req.ShowContext))
}

// history handles GET /api/v1/sessions/{id}/history
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	turns := session.History()
	if turns == nil {
		turns = []common.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, &HistoryResponse{
		ID:      session.ID,
		VideoID: session.VideoID(),
		Turns:   turns,
	})
}

// deleteSession handles DELETE /api/v1/sessions/{id}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// notes handles POST /api/v1/notes
func (s *Server) notes(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Video) == "" {
		writeError(w, common.NewConfigError("video", "must not be empty"))
		return
	}

	result, err := s.pipeline.NotesFor(r.Context(), req.Video, s.language(req.Language))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formatter.NewNotesOutput(result))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*rag.Session, bool) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return session, true
}

func (s *Server) language(requested string) string {
	if requested != "" {
		return requested
	}
	return s.options.Language
}

func sessionResponse(session *rag.Session) *SessionResponse {
	return &SessionResponse{
		ID:       session.ID,
		VideoID:  session.VideoID(),
		Segments: session.Index().Size(),
	}
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero value.
func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return common.NewConfigError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrSessionNotReady):
		return http.StatusConflict
	case common.IsNotFoundError(err), common.IsTranscriptUnavailableError(err):
		return http.StatusNotFound
	case common.IsConfigError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case common.IsEmbeddingError(err), common.IsGenerationError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), &ErrorResponse{Error: err.Error()})
}
