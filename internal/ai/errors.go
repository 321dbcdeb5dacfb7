package ai

import (
	"errors"

	"github.com/seekerhq/intentcrawl/internal/ai/prompt"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")

	// ErrInvalidResponse aliases the parser sentinel so callers can use
	// errors.Is without importing the prompt package.
	ErrInvalidResponse = prompt.ErrMalformed
)
