package hook

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Dispatcher fans a Request out to every subscribed hook in the background
// so the frame loop never waits on a hook.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the hooks known to manager.
func NewDispatcher(manager *Manager, executor *Executor, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		logger:   logger.Named("hooks"),
	}
}

// Dispatch starts every hook subscribed to req.Event and returns at once.
// It returns the number of hooks started.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) int {
	if d == nil || d.manager == nil {
		return 0
	}

	hooks := d.manager.For(req.Event)
	for _, h := range hooks {
		d.wg.Add(1)
		go func(h *Hook) {
			defer d.wg.Done()
			d.run(ctx, h, req)
		}(h)
	}
	return len(hooks)
}

func (d *Dispatcher) run(ctx context.Context, h *Hook, req Request) {
	log := d.logger.With(zap.String("hook", h.Manifest.Name), zap.String("photo_id", req.PhotoID))

	resp, err := d.executor.Execute(ctx, h, &req)
	if err != nil {
		log.Warn("hook failed", zap.Error(err))
		return
	}
	if !resp.Success {
		log.Warn("hook reported failure", zap.String("error", resp.Error))
		return
	}
	log.Debug("hook finished")
}

// Wait blocks until all dispatched hooks have returned.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
