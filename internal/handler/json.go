package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON body into dst and validates it, writing the error
// response itself when it returns false. Unknown fields are rejected. A body
// cut off by the size limit is answered with 413.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("body_too_large", "request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "could not read request body"))
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed JSON body"))
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		msg := err.Error()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg = describe(verrs)
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return false
	}
	return true
}

// describe turns validator errors into "name is required; time is required".
func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, field+" must be at most "+fe.Param()+" characters")
		case "oneof":
			parts = append(parts, field+" must be one of "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
