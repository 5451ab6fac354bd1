// Package llm talks to the generative endpoint and turns its free-text
// replies into validated identifier sets. The endpoint is unreliable in two
// independent ways (transport failures and malformed output); the Handler
// absorbs both.
package llm

import (
	"context"
	"errors"
)

// Client is one generative endpoint. Cross-cutting concerns (logging, rate
// limiting) wrap a Client via Middleware rather than living inside it.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ErrEmptyResponse reports a reply with no candidates or no text parts.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// PermanentError marks a failure that will not resolve with retries
// (invalid key, oversized prompt). The retry loop gives up immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
