package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ErrNoAPIKey is returned by New when no key is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// ErrDisabled is returned by New when insights are switched off in config.
var ErrDisabled = errors.New("insights disabled")

// Error is a failed or unusable insight for one article.
type Error struct {
	Title  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("insight for %q: %s: %v", e.Title, e.Reason, e.Err)
	}
	return fmt.Sprintf("insight for %q: %s", e.Title, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Reasons are shown to the reader as is.
const (
	reasonEmpty      = "the model sent back an empty answer"
	reasonMalformed  = "the model's answer was not valid JSON"
	reasonIncomplete = "the model's answer was missing "
)

// transportReason says why a request never produced an answer.
func transportReason(err error) string {
	var apiErr genai.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "the model took too long to answer"
	case errors.Is(err, context.Canceled):
		return "the request was cancelled"
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Sprintf("Gemini refused the request (HTTP %d), check GEMINI_API_KEY", apiErr.Code)
		case http.StatusTooManyRequests:
			return "Gemini rate limit reached, try again later"
		default:
			return fmt.Sprintf("Gemini returned HTTP %d", apiErr.Code)
		}
	default:
		return "could not reach Gemini"
	}
}
