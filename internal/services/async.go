package services

import (
	"context"

	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"github.com/dmitrijs2005/nodekeeper/internal/txqueue"
)

// AsyncRegistry submits registry mutations to a serial queue and reports
// the outcome through a completion handler, called exactly once per call.
// Reads go straight to the RegistryService.
type AsyncRegistry struct {
	*RegistryService
	queue *txqueue.Queue
}

func NewAsyncRegistry(reg *RegistryService, queue *txqueue.Queue) *AsyncRegistry {
	return &AsyncRegistry{RegistryService: reg, queue: queue}
}

func (a *AsyncRegistry) CreateAsync(ctx context.Context, address, protocolType, port string, done txqueue.Completion) {
	a.queue.Submit(ctx, "create", func(ctx context.Context) error {
		return a.Create(ctx, address, protocolType, port)
	}, done)
}

func (a *AsyncRegistry) CreateDefaultsAsync(ctx context.Context, done txqueue.Completion) {
	a.queue.Submit(ctx, "create_defaults", a.CreateDefaults, done)
}

// EnsureDefaultsAsync checks defaultServerStatus on the worker, so the check
// and the bootstrap are ordered against every other queued mutation.
func (a *AsyncRegistry) EnsureDefaultsAsync(ctx context.Context, done txqueue.Completion) {
	a.queue.Submit(ctx, "ensure_defaults", func(ctx context.Context) error {
		_, err := a.EnsureDefaults(ctx)
		return err
	}, done)
}

func (a *AsyncRegistry) DeleteAsync(ctx context.Context, rec models.ServerRecord, done txqueue.Completion) {
	a.queue.Submit(ctx, "delete", func(ctx context.Context) error {
		return a.Delete(ctx, rec)
	}, done)
}

func (a *AsyncRegistry) UpdateAsync(ctx context.Context, rec models.ServerRecord, newProtocolType, newAddress, newPort string, done txqueue.Completion) {
	a.queue.Submit(ctx, "update", func(ctx context.Context) error {
		return a.Update(ctx, rec, newProtocolType, newAddress, newPort)
	}, done)
}

// Wait runs fn with a completion handler and blocks until it fires or ctx
// is done.
func Wait(ctx context.Context, fn func(done txqueue.Completion)) error {
	ch := make(chan error, 1)
	fn(func(err error) { ch <- err })

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
