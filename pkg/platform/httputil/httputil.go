// Package httputil writes JSON responses and maps coded domain errors onto
// HTTP statuses. Handlers never inspect error text; only codes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "civicdesk/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Retryable   bool   `json:"retryable,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded domain error to a status and JSON body. Internal
// errors omit the description so infrastructure details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code), Retryable: dErrors.Transient(err)}

	var de *dErrors.Error
	if errors.As(err, &de) && code != dErrors.CodeInternal {
		body.Description = de.Message()
	}

	WriteJSON(w, statusFor(code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDuplicateNumber:
		return http.StatusConflict
	case dErrors.CodeUnknownModule, dErrors.CodeEntityCreation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeConcurrencyTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
