package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"obfuskeep/internal/cache"
)

// Outcome distinguishes "the model found nothing" from "every attempt
// failed". Both return an empty identifier list; callers that only care
// about the list may ignore the flag, instrumentation must not.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeExhausted
)

func (o Outcome) String() string {
	if o == OutcomeExhausted {
		return "exhausted"
	}
	return "succeeded"
}

// DefaultMaxRetries bounds GenerateWithRetry when the caller passes <= 0.
const DefaultMaxRetries = 3

// Handler drives one generation: response-cache lookup, network call,
// tolerant parsing, cache write. GenerateWithRetry adds the backoff loop
// that callers depend on to never raise.
type Handler struct {
	client Client
	cache  *cache.Store
	logger *log.Logger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

func NewHandler(client Client, store *cache.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		client: client,
		cache:  store,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Generate returns the parsed identifier set for prompt. A response-cache
// hit short-circuits the network call entirely; parse failure is not an
// error (empty list), only transport failure is.
func (h *Handler) Generate(ctx context.Context, prompt string) (Response, error) {
	key := cache.Key([]byte(prompt))
	if raw, ok := h.cache.Get(ctx, key); ok {
		var cached Response
		if err := json.Unmarshal(raw, &cached); err == nil {
			if cached.Identifiers == nil {
				cached.Identifiers = []string{}
			}
			return cached, nil
		}
	}

	text, err := h.client.Generate(ctx, prompt)
	if err != nil {
		return Response{}, err
	}

	resp := ParseIdentifiers(text)
	if blob, err := json.Marshal(resp); err == nil {
		if err := h.cache.Set(ctx, key, blob); err != nil {
			h.logger.Printf("llm: response cache write failed: %v", err)
		}
	}
	return resp, nil
}

// GenerateWithRetry retries transient failures with exponential backoff
// (2^attempt seconds). It never returns an error: exhausting the budget
// logs and yields an empty Response with OutcomeExhausted.
func (h *Handler) GenerateWithRetry(ctx context.Context, prompt string, maxRetries int) (Response, Outcome) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	var last error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := h.Generate(ctx, prompt)
		if err == nil {
			return resp, OutcomeSucceeded
		}
		last = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			break
		}
		select {
		case <-ctx.Done():
			h.logger.Printf("llm: generation canceled: %v", ctx.Err())
			return Response{Identifiers: []string{}}, OutcomeExhausted
		default:
		}
		if attempt < maxRetries-1 {
			wait := time.Duration(1<<attempt) * time.Second
			h.logger.Printf("llm: retry %d/%d after %s: %v", attempt+1, maxRetries, wait, err)
			h.sleep(wait)
		}
	}
	h.logger.Printf("llm: all attempts failed: %v", last)
	return Response{Identifiers: []string{}}, OutcomeExhausted
}
