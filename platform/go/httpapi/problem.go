package httpapi

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails is an RFC 7807 error payload.
type ProblemDetails struct {
	Type   *string              `json:"type,omitempty"`
	Title  string               `json:"title"`
	Status int                  `json:"status"`
	Detail *string              `json:"detail,omitempty"`
	Errors *map[string][]string `json:"errors,omitempty"`
}

// NewProblem builds a ProblemDetails with the optional fields set when non-empty.
func NewProblem(title, detail, problemType string, status int, fieldErrors map[string][]string) ProblemDetails {
	problem := ProblemDetails{
		Title:  title,
		Status: status,
	}

	if detail != "" {
		problem.Detail = &detail
	}
	if problemType != "" {
		problem.Type = &problemType
	}
	if len(fieldErrors) > 0 {
		copied := make(map[string][]string, len(fieldErrors))
		for field, messages := range fieldErrors {
			copied[field] = append([]string(nil), messages...)
		}
		problem.Errors = &copied
	}

	return problem
}

// WriteProblem renders the problem document with the application/problem+json
// content type.
func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// WriteJSON renders an arbitrary JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
