package federated

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p, err := NewStaticProvider("assertion-1")
	require.NoError(t, err)

	got, err := p.Assertion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "assertion-1", got)
}

func TestStaticProviderRequiresAssertion(t *testing.T) {
	_, err := NewStaticProvider("")
	require.Error(t, err)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
