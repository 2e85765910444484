package chatsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/docchat/pkg/httpx"
)

// APIError is the server's error response: an HTTP status and a short
// user-facing message. The server writes it with WriteError; the client
// returns it from every call that gets a non-success status.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is matches any *APIError with the same status and message, so
// errors.Is(err, chatsdk.ErrInvalidCredentials) works on decoded responses.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode && t.Message == e.Message
}

// WriteError writes e as a JSON {"message": ...} response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteMessage(w, e.StatusCode, e.Message)
}

// NewAPIError creates an APIError, e.g. for a validation message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

var (
	ErrUserExists          = NewAPIError(http.StatusBadRequest, "User already exists")
	ErrInvalidCredentials  = NewAPIError(http.StatusBadRequest, "Invalid credentials")
	ErrInvalidRequest      = NewAPIError(http.StatusBadRequest, "Invalid request body")
	ErrNoTokenProvided     = NewAPIError(http.StatusUnauthorized, "Unauthorized: No token provided")
	ErrTokenNotValid       = NewAPIError(http.StatusUnauthorized, httpx.MsgInvalidToken)
	ErrNoTokenAuthDenied   = NewAPIError(http.StatusUnauthorized, httpx.MsgNoToken)
	ErrUserNotFound        = NewAPIError(http.StatusNotFound, "User not found")
	ErrNoFileUploaded      = NewAPIError(http.StatusBadRequest, "No file uploaded")
	ErrFileTooLarge        = NewAPIError(http.StatusRequestEntityTooLarge, "File too large")
	ErrDocumentService     = NewAPIError(http.StatusBadGateway, "Document service error")
	ErrDocumentServiceDown = NewAPIError(http.StatusServiceUnavailable, "Document service unavailable")
	ErrServerError         = NewAPIError(http.StatusInternalServerError, "Server error")
)

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not {"message": ...} fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		apiErr.Message = text
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
