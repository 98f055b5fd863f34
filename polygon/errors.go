package polygon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	RequestID  string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status
	}
	if e.RequestID != "" {
		return fmt.Sprintf("API error %d: %s (request id %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
}

func newAPIError(code int, status string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code, Status: status}

	var payload struct {
		Status    string `json:"status"`
		RequestID string `json:"request_id"`
		Error     string `json:"error"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.RequestID = payload.RequestID
	switch {
	case payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Message != "":
		apiErr.Message = payload.Message
	default:
		apiErr.Message = payload.Status
	}
	return apiErr
}
