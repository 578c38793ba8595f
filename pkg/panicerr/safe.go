package panicerr

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Safe runs fn and turns a panic into an error carrying the recovered value
// and its stack.
func Safe(fn func() error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = fn()
	})
	if r := catcher.Recovered(); r != nil {
		return fmt.Errorf("recovered panic: %w", r.AsError())
	}
	return err
}

// SafeContext is Safe for functions that take a context.
func SafeContext(ctx context.Context, fn func(context.Context) error) error {
	return Safe(func() error { return fn(ctx) })
}
