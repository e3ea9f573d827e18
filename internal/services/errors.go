package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrFetch         = errors.New("fetch failed")
	ErrParse         = errors.New("parse failed")
	ErrNotify        = errors.New("notification failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker should be one of the exported sentinel errors
// above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// FetchError reports that a page could not be retrieved from a source. It
// matches ErrFetch under errors.Is so callers can tell a failed fetch apart
// from an empty result.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ErrFetch.Error()
	}
	var b strings.Builder
	b.WriteString(ErrFetch.Error())
	if src := strings.TrimSpace(e.Source); src != "" {
		b.WriteString(": ")
		b.WriteString(src)
	}
	if u := strings.TrimSpace(e.URL); u != "" {
		b.WriteString(" ")
		b.WriteString(u)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// StatusCode returns the HTTP status behind the failure, or 0 when the request
// never produced a response.
func (e *FetchError) StatusCode() int {
	var statusErr *HTTPStatusError
	if errors.As(e, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsFetchError reports whether err is, or wraps, a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// HTTPStatusError is returned when a source answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// BlockedError is returned when a source served a consent or challenge page
// instead of content. No attempt is made to get past it.
type BlockedError struct {
	URL    string
	Reason string
}

func (e *BlockedError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "blocked"
	}
	return "blocked: " + strings.TrimSpace(e.Reason)
}
