package panicerr

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
)

// Group runs long-lived named workers that share a context. The first worker
// to fail or panic cancels the others.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu   sync.Mutex
	errs []error
}

func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel}
}

// Context is cancelled once any worker fails or Wait returns.
func (g *Group) Context() context.Context {
	return g.ctx
}

func (g *Group) Go(name string, fn func(context.Context) error) {
	g.wg.Go(func() {
		err := SafeContext(g.ctx, fn)
		if err == nil || errors.Is(err, context.Canceled) {
			slog.Debug("worker stopped", "worker", name)
			return
		}
		slog.Error("worker failed", "worker", name, "error", err)
		g.mu.Lock()
		g.errs = append(g.errs, err)
		g.mu.Unlock()
		g.cancel()
	})
}

// Wait blocks until every worker returns and joins their errors.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
