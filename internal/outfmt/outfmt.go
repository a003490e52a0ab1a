// Package outfmt carries the machine-output mode (--json) through the command
// context.
package outfmt

import (
	"context"
	"encoding/json"
	"io"
)

type Mode struct {
	JSON bool
}

type ctxKey struct{}

func WithMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

func IsJSON(ctx context.Context) bool {
	m, ok := ctx.Value(ctxKey{}).(Mode)
	return ok && m.JSON
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
