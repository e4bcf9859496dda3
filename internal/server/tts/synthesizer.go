// Package tts adapts speech synthesis providers to the voice service.
package tts

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no synthesis provider is set up.
var ErrNotConfigured = errors.New("speech synthesis is not configured")

type Request struct {
	Text         string
	VoiceID      string
	LanguageCode string
}

type Result struct {
	Audio       []byte
	ContentType string
}

// Synthesizer turns text into audio. Implementations must honour ctx
// cancellation.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
}

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Synthesize(context.Context, Request) (*Result, error) {
	return nil, ErrNotConfigured
}
