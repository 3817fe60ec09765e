package session

import (
	"context"
	"testing"

	"github.com/atinyakov/codemonkey/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	p := newTestProvider(t, storage.NewMemoryStore())
	ctx := NewContext(context.Background(), p)

	assert.Same(t, p, FromContext(ctx))

	got, ok := Lookup(ctx)
	assert.True(t, ok)
	assert.Same(t, p, got)
}

func TestFromContext_OutsideScopePanics(t *testing.T) {
	assert.PanicsWithValue(t, "session: FromContext called outside of a Provider scope", func() {
		FromContext(context.Background())
	})

	_, ok := Lookup(context.Background())
	assert.False(t, ok)
}
