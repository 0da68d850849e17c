package wiki

import (
	"errors"
	"fmt"
)

// NetworkError is a transport failure or a non-2xx response.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP error: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DomainError is a well-formed error payload returned by the API,
// for example an unknown page.
type DomainError struct {
	Code string
	Info string
}

func (e *DomainError) Error() string {
	if e.Code == "" {
		return e.Info
	}
	return fmt.Sprintf("%s (%s)", e.Info, e.Code)
}

// ParseError means the response did not have the expected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errMissingField = errors.New("missing field")

// IsNotFound reports whether err is the API telling us the page does not exist.
func IsNotFound(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case "missingtitle", "invalidtitle", "nosuchpageid":
		return true
	}
	return false
}
