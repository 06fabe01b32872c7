package server

import "net/http"

// Stable error codes carried in every failure envelope so clients can
// branch without parsing messages.
const (
	codeValidation = "validation_error"
	codeAuth       = "auth_error"
	codeThrottled  = "throttled"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

func statusForCode(code string) int {
	switch code {
	case codeValidation:
		return http.StatusBadRequest
	case codeAuth:
		return http.StatusUnauthorized
	case codeThrottled:
		return http.StatusTooManyRequests
	case codeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, code, msg string) {
	writeJSON(w, statusForCode(code), map[string]any{
		"success": false,
		"code":    code,
		"error":   msg,
	})
}

// writeThrottled adds the retry hint required for throttled responses.
func writeThrottled(w http.ResponseWriter, retryAfterSeconds int) {
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"success":    false,
		"code":       codeThrottled,
		"error":      "rate limit exceeded",
		"retryAfter": retryAfterSeconds,
	})
}
