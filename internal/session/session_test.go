package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DeliverToLiveSession(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	var got any
	r.Bind(id, func(payload any) error {
		got = payload
		return nil
	})

	s := NewFix(id)
	ok, err := r.Deliver(s, "hello")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestRegistry_DeliverToUnboundSessionReportsNotOK(t *testing.T) {
	r := NewRegistry()
	s := NewGenerator(uuid.New())

	ok, err := r.Deliver(s, "hello")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_UnbindStopsDelivery(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	r.Bind(id, func(payload any) error { return nil })
	r.Unbind(id)

	ok, _ := r.Deliver(NewFix(id), "x")
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "fix", KindFix.String())
	assert.Equal(t, "generator", KindGenerator.String())
}
