package federated

import (
	"context"
	"errors"
)

// StaticProvider returns a fixed assertion. It short-circuits the interactive
// provider flow for local development and tests.
type StaticProvider struct {
	assertion string
}

// NewStaticProvider builds a provider around the given assertion.
func NewStaticProvider(assertion string) (*StaticProvider, error) {
	if assertion == "" {
		return nil, errors.New("static provider: assertion is required")
	}
	return &StaticProvider{assertion: assertion}, nil
}

// Assertion returns the configured assertion.
func (p *StaticProvider) Assertion(_ context.Context) (string, error) {
	return p.assertion, nil
}
