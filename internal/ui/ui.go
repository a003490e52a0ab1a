// Package ui handles user-facing console output: colored warnings and status
// lines, carried through the command context.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Color  string // auto|always|never
}

// ParseError reports an invalid --color value. Mapped to a usage error by the
// command layer.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid color mode %q (expected auto, always or never)", e.Value)
}

type UI struct {
	out *termenv.Output
	err *termenv.Output
}

func New(opts Options) (*UI, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var profile termenv.Profile
	switch opts.Color {
	case "", "auto":
		profile = termenv.EnvColorProfile()
	case "always":
		profile = termenv.ANSI
	case "never":
		profile = termenv.Ascii
	default:
		return nil, &ParseError{Value: opts.Color}
	}

	return &UI{
		out: termenv.NewOutput(stdout, termenv.WithProfile(profile)),
		err: termenv.NewOutput(stderr, termenv.WithProfile(profile)),
	}, nil
}

// Printf writes plain output to stdout.
func (u *UI) Printf(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Successf writes a green status line to stdout.
func (u *UI) Successf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(u.out, u.out.String(msg).Foreground(u.out.Color("2")).String())
}

// Warnf writes a yellow warning line to stderr. Warnings never change the
// exit status.
func (u *UI) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(u.err, u.err.String(msg).Foreground(u.err.Color("3")).String())
}

// Errorf writes a red error line to stderr.
func (u *UI) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(u.err, u.err.String(msg).Foreground(u.err.Color("1")).String())
}

// Out exposes the stdout writer for table output.
func (u *UI) Out() io.Writer { return u.out }

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the context's UI, or a plain uncolored one writing to
// the process streams when none was attached (tests, library use).
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(ctxKey{}).(*UI); ok && u != nil {
		return u
	}
	u, _ := New(Options{Color: "never"})
	return u
}
