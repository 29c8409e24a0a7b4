package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/quiz"
	httperrors "github.com/gokatarajesh/gotit/pkg/http/errors"
)

// submissionPath is where participants are sent when a handoff is unusable.
const submissionPath = "/"

type StartRequest struct {
	HandoffToken string `json:"handoffToken"`
	Participant  string `json:"participant"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

// HTTPHandlers provides REST endpoints for quiz sessions.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// Start handles POST /v1/sessions
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.HandoffToken == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "handoffToken is required", "handoffToken")
		return
	}

	sess, err := h.service.Start(r.Context(), req.HandoffToken, req.Participant)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, NewView(sess))
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Get(r.Context(), id)
	h.respond(w, sess, err)
}

// Answer handles POST /v1/sessions/{id}/answer
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Answer == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "answer is required", "answer")
		return
	}

	sess, err := h.service.Answer(r.Context(), id, req.Answer)
	h.respond(w, sess, err)
}

// Advance handles POST /v1/sessions/{id}/advance
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Advance(r.Context(), id)
	h.respond(w, sess, err)
}

// Retreat handles POST /v1/sessions/{id}/retreat
func (h *HTTPHandlers) Retreat(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Retreat(r.Context(), id)
	h.respond(w, sess, err)
}

// ToggleRow handles POST /v1/sessions/{id}/results/{index}/toggle
func (h *HTTPHandlers) ToggleRow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidIndex, "index must be an integer")
		return
	}
	sess, err := h.service.ToggleRow(r.Context(), id, index)
	h.respond(w, sess, err)
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *HTTPHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Reset(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, NewView(sess))
}

func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respond(w http.ResponseWriter, sess *Session, err error) {
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, NewView(sess))
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrMalformedQuizData):
		httperrors.RespondRedirect(w, http.StatusUnprocessableEntity, httperrors.ErrCodeMalformedQuizData,
			"Quiz data is missing or invalid, please submit the transcript again", submissionPath)
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrBusy):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionBusy, "Session is being updated, try again")
	default:
		h.logger.Error().Err(err).Msg("session request failed")
		httperrors.RespondInternalError(w, "Internal server error")
	}
}
