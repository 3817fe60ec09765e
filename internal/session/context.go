package session

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider installed by NewContext. Calling it outside
// of a provider scope is an integration mistake and panics.
func FromContext(ctx context.Context) *Provider {
	p, ok := ctx.Value(ctxKey{}).(*Provider)
	if !ok || p == nil {
		panic("session: FromContext called outside of a Provider scope")
	}
	return p
}

// Lookup is the non-panicking variant of FromContext.
func Lookup(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Provider)
	return p, ok && p != nil
}
