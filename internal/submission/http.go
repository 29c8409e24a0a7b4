package submission

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/generation"
	httperrors "github.com/gokatarajesh/gotit/pkg/http/errors"
)

// HTTPHandlers provides the quiz creation endpoint.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "submission_http").Logger(),
	}
}

// Create handles POST /v1/quizzes
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxBodyBytes())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.RespondError(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodeTranscriptTooLong, "Request body is too large")
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	res, err := h.service.Submit(r.Context(), req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			httperrors.RespondValidationError(w, verr.Code, verr.Message, verr.Field)
		case errors.Is(err, generation.ErrGenerationFailed):
			httperrors.RespondBadGateway(w, httperrors.ErrCodeGenerationFailed, "Could not generate a quiz from this transcript, please try again")
		default:
			h.logger.Error().Err(err).Msg("quiz submission failed")
			httperrors.RespondInternalError(w, "Internal server error")
		}
		return
	}

	httperrors.RespondJSON(w, http.StatusCreated, res)
}
