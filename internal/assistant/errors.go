package assistant

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials indicates the account id or API token is not configured
var ErrMissingCredentials = errors.New("workers AI credentials are not configured")

// ErrRateLimited indicates the local or remote request budget was exceeded
var ErrRateLimited = errors.New("workers AI rate limit exceeded")

// ErrEmptyResponse indicates the model returned no text
var ErrEmptyResponse = errors.New("workers AI returned an empty response")

// APIError represents a non-2xx response from the Workers AI endpoint
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("workers AI error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("workers AI error: status %d: %s", e.StatusCode, e.Message)
}
