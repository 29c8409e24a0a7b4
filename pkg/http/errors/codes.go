package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeValidationFailed  = "validation_failed"
	ErrCodeMissingField      = "missing_field"
	ErrCodeInvalidEmail      = "invalid_email"
	ErrCodeTranscriptTooLong = "transcript_too_long"

	// Resource errors
	ErrCodeNotFound        = "not_found"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeSessionBusy     = "session_busy"

	// Quiz flow errors
	ErrCodeMalformedQuizData  = "malformed_quiz_data"
	ErrCodeGenerationFailed   = "generation_failed"
	ErrCodeNotificationFailed = "notification_failed"
	ErrCodeInvalidHandoff     = "invalid_handoff_token"
	ErrCodeInvalidIndex       = "invalid_index"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
