package tracker

import "context"

type key struct{}

// NewContext returns a context carrying t. The context is the request
// scope: whoever starts handling a request installs a fresh tracker here.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, key{}, t)
}

// FromContext returns the tracker installed by NewContext.
func FromContext(ctx context.Context) (*Tracker, bool) {
	t, ok := ctx.Value(key{}).(*Tracker)
	return t, ok && t != nil
}
