// internal/guard/context.go
//
// Request-context marker for verified admin calls.
//
// Usage
// -----
//
//	// AdminOnly middleware, after Verify succeeds.
//	ctx = guard.WithAdmin(ctx)
//
//	// Privileged handler, before touching the Store.
//	if !guard.IsAdmin(r.Context()) { … }
//
// Notes
// -----
// • The marker holds no token and no identity.  There is only one admin.
// • Oxford commas, two spaces after periods.

package guard

import "context"

// adminKey is unexported to avoid context-key collisions.
type adminKey struct{}

// WithAdmin returns a context recording that the guard authorized the call.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

// IsAdmin reports whether WithAdmin ran for ctx.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey{}).(bool)
	return v
}
