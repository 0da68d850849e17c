package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/wiki"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeErr turns client errors into a line for the status bar.
func describeErr(err error) string {
	var (
		de *wiki.DomainError
		ne *wiki.NetworkError
		pe *wiki.ParseError
		ie *insight.Error
	)
	switch {
	case err == nil:
		return ""
	case wiki.IsNotFound(err):
		return MsgNoSuchArticle
	case errors.As(err, &de):
		return de.Info
	case errors.As(err, &ne):
		if ne.StatusCode != 0 {
			return fmt.Sprintf("Wikipedia returned HTTP %d", ne.StatusCode)
		}
		return "Network error, check your connection"
	case errors.As(err, &pe):
		return "Unexpected response from Wikipedia"
	case errors.As(err, &ie):
		return ie.Reason
	case errors.Is(err, insight.ErrNoAPIKey):
		return "set GEMINI_API_KEY to enable insights"
	case errors.Is(err, insight.ErrDisabled):
		return "insights are disabled in config"
	default:
		return err.Error()
	}
}
