package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Removed   *int     `json:"removed,omitempty"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// writeError maps err onto a status code and error body. Each domain error
// gets its own status and message; anything else is logged and reported as
// a plain 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *domain.PartialClearError
	switch {
	case errors.As(err, &partial):
		removed := partial.Removed
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{
			Code:      "partial_clear",
			Message:   "some reservations could not be removed",
			Removed:   &removed,
			FailedIDs: partial.Failed,
		}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorBody("slot_taken", "slot already taken"))
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Warn("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store_unavailable", "reservation store unavailable, try again later"))
	case errors.Is(err, domain.ErrNotConfigured):
		writeJSON(w, http.StatusNotImplemented, errorBody("not_configured", unwrapMessage(err)))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody("forbidden", "a valid access key is required"))
	default:
		s.log.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: message}}
}

// validationBody returns an errorResponse for a domain validation failure.
// The message is the part after the wrapped sentinel.
func validationBody(err error) errorResponse {
	return errorBody("validation_error", unwrapMessage(err))
}

// requestBody returns an errorResponse for a request rejected before
// reaching the service layer (missing or malformed body).
func requestBody(message string) errorResponse {
	return errorBody("validation_error", message)
}

// unwrapMessage strips the operation prefixes from a wrapped error.
// e.g. "service.ReservationService.Reserve: validation error: name is required" → "name is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotConfigured} {
		marker := sentinel.Error() + ": "
		if i := strings.LastIndex(msg, marker); i >= 0 && len(msg) > i+len(marker) {
			return msg[i+len(marker):]
		}
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
