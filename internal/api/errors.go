package api

import (
	"errors"
	"net/http"

	"agroeye/internal/model"
)

type errorType string

const (
	errorTypeValidation errorType = "validation"
	errorTypeNotFound   errorType = "not_found"
	errorTypeMethod     errorType = "method_not_allowed"
	errorTypeInternal   errorType = "internal"
)

// apiError is the body of every non-2xx response.
type apiError struct {
	Type      errorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
}

func newAPIError(err error) *apiError {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return &apiError{Type: errorTypeValidation, Message: err.Error(), Code: http.StatusBadRequest}
	case errors.Is(err, model.ErrNotFound):
		return &apiError{Type: errorTypeNotFound, Message: err.Error(), Code: http.StatusNotFound}
	default:
		return &apiError{Type: errorTypeInternal, Message: "internal error", Code: http.StatusInternalServerError}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := newAPIError(err)
	apiErr.RequestID = requestIDFrom(r)
	if apiErr.Code >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("request failed", "request_id", apiErr.RequestID, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, apiErr.Code, apiErr)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, &apiError{
		Type:      errorTypeNotFound,
		Message:   "no route for " + r.URL.Path,
		Code:      http.StatusNotFound,
		RequestID: requestIDFrom(r),
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, &apiError{
		Type:      errorTypeMethod,
		Message:   r.Method + " not allowed on " + r.URL.Path,
		Code:      http.StatusMethodNotAllowed,
		RequestID: requestIDFrom(r),
	})
}
