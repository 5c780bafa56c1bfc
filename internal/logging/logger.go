// Package logging holds the logging contract the server components depend
// on, decoupling them from the concrete backend.
package logging

import "context"

// Logger writes structured log records. The variadic args are alternating
// key/value pairs:
//
//	log.Info(ctx, "upload stored", "key", key, "bytes", n)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a derived logger whose records always carry the given
	// key/value pairs.
	With(args ...any) Logger
}
