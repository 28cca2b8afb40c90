package llm

import "context"

// Noop is the null-object Client used when no provider is configured or
// a feature flag disables the provider. Callers never branch on whether
// the provider exists; they call the interface and handle ErrUnavailable
// through their documented fallbacks.
type Noop struct{}

// GenerateContent always reports the provider as unavailable.
func (Noop) GenerateContent(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// EmbedContent always reports the provider as unavailable.
func (Noop) EmbedContent(context.Context, string) ([]float32, error) {
	return nil, ErrUnavailable
}

// Close is a no-op.
func (Noop) Close() error { return nil }
