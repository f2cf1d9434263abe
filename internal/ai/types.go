package ai

import (
	"context"
	"errors"
)

// Request is a single text-in/text-out transformer call: an instruction
// plus one data payload, no structured fields on the wire.
type Request struct {
	System    string // instruction prompt
	Prompt    string // data payload
	Model     string
	MaxTokens int
}

type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Client interface for providers like OpenAI, Anthropic.
type Client interface {
	Name() string
	Do(ctx context.Context, req Request) (Response, error)
}

var (
	ErrRateLimited    = errors.New("rate_limited")
	ErrContentRefused = errors.New("content_refused")
)

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
