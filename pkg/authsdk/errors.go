package authsdk

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an error response is kept on APIError.
const maxErrorBody = 4 << 10

var (
	// ErrIncompleteTokens is returned when a token response carries no
	// complete access/refresh pair in any of the known shapes.
	ErrIncompleteTokens = errors.New("authsdk: response did not contain a complete token pair")

	// ErrNoTokens is returned when an operation needs a token pair and the
	// manager holds none.
	ErrNoTokens = errors.New("authsdk: no tokens available")
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Body is the (truncated) response body, useful for logs
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("authsdk: backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("authsdk: backend returned HTTP %d: %s", e.StatusCode, e.Body)
}

// newAPIError drains up to maxErrorBody bytes of resp into an APIError.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
