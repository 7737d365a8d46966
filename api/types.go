package api

import (
	"context"
	"errors"
	"fmt"
)

// KeyTerm represents a glossary entry the backend uses as context
type KeyTerm struct {
	Definition string `json:"definition"`
	Relevance  string `json:"relevance"` // free-form label, e.g. "High"/"Medium"/"Low"
}

// FileUpload represents a file attached to a chat message
type FileUpload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Assistant defines the operations the backend exposes
type Assistant interface {
	// SendMessage submits text and an optional file, returns the assistant reply
	SendMessage(ctx context.Context, text string, file *FileUpload) (string, error)

	// ListKeyTerms fetches the full key-term collection
	ListKeyTerms(ctx context.Context) (map[string]KeyTerm, error)

	// CreateKeyTerm adds a new key term; fails if the term already exists
	CreateKeyTerm(ctx context.Context, term string, kt KeyTerm) error

	// UpdateKeyTerm replaces an existing key term's definition and relevance
	UpdateKeyTerm(ctx context.Context, term string, kt KeyTerm) error

	// DeleteKeyTerm removes a key term
	DeleteKeyTerm(ctx context.Context, term string) error
}

// Config represents backend client configuration
type Config struct {
	BaseURL string
	Timeout int // seconds
}

// TransportError indicates the request never produced an HTTP response
// (network unreachable, timeout, connection reset)
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError indicates the backend answered with a non-2xx status
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
}

// IsServerError reports whether err is a ServerError
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsTransportError reports whether err is a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
