package notify

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/gotit/pkg/http/errors"
)

// NotifyRequest is the body of POST /v1/notifications.
type NotifyRequest struct {
	HostEmail        string `json:"hostEmail"`
	ParticipantEmail string `json:"participantEmail"`
	QuizTitle        string `json:"quizTitle"`
	Success          bool   `json:"success"`
}

// HTTPHandlers exposes the notification gateway as a proxy endpoint.
type HTTPHandlers struct {
	notifier Notifier
	logger   zerolog.Logger
}

func NewHTTPHandlers(notifier Notifier, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		notifier: notifier,
		logger:   logger.With().Str("component", "notify_http").Logger(),
	}
}

// Send handles POST /v1/notifications
func (h *HTTPHandlers) Send(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	host, err := mail.ParseAddress(req.HostEmail)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidEmail, "hostEmail must be a valid email address", "hostEmail")
		return
	}

	err = h.notifier.Notify(r.Context(), Notification{
		Recipient:   host.Address,
		Participant: req.ParticipantEmail,
		QuizTitle:   req.QuizTitle,
		Outcome:     OutcomeFromSuccess(req.Success),
	})
	if err != nil {
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeNotificationFailed, "Failed to send email")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
