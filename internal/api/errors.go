// api/errors.go - Typed failures returned by the server-call boundary
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call. UI code switches on it exhaustively.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimited
	KindDuplicate
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindDuplicate:
		return "duplicate"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// duplicateMarker is the phrase the backend uses for an already shared song
const duplicateMarker = "već postavljena"

// Error is a backend rejection or transport failure
type Error struct {
	Kind           Kind
	Status         int
	Message        string
	HoursRemaining float64           // KindRateLimited
	Fields         map[string]string // KindValidation
	Err            error             // transport cause, if any
	// FromServer is set when Message came from a JSON error body. Proxy pages
	// and status text are never shown to the visitor.
	FromServer bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type errorBody struct {
	Message        string   `json:"message"`
	Error          string   `json:"error"`
	HoursRemaining *float64 `json:"hoursRemaining"`
	Errors         []struct {
		Path    []string `json:"path"`
		Field   string   `json:"field"`
		Message string   `json:"message"`
	} `json:"errors"`
}

// classify maps a non-2xx response body onto a Kind
func classify(status int, body []byte) *Error {
	e := &Error{Kind: KindUnknown, Status: status}

	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		e.Message = http.StatusText(status)
		return e
	}

	e.Message = b.Message
	if e.Message == "" {
		e.Message = b.Error
	}
	e.FromServer = e.Message != ""

	switch {
	case b.HoursRemaining != nil:
		e.Kind = KindRateLimited
		e.HoursRemaining = *b.HoursRemaining
	case status == http.StatusConflict || strings.Contains(e.Message, duplicateMarker):
		e.Kind = KindDuplicate
	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) && len(b.Errors) > 0:
		e.Kind = KindValidation
		e.Fields = make(map[string]string, len(b.Errors))
		for _, fe := range b.Errors {
			name := fe.Field
			if name == "" && len(fe.Path) > 0 {
				name = fe.Path[0]
			}
			e.Fields[name] = fe.Message
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindUnknown, Message: op, Err: err}
}
