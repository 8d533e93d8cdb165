package workflow

import (
	"context"
	"sync"
)

// inflight tracks the latest fetch of one kind. Starting a new fetch cancels the
// previous one and makes its result stale.
type inflight struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func (f *inflight) begin(ctx context.Context) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	f.gen++
	f.cancel = cancel

	return ctx, f.gen
}

// end releases the fetch and reports whether it is still the latest one.
func (f *inflight) end(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		return false
	}

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	return true
}

// abort cancels whatever is running and invalidates its result.
func (f *inflight) abort() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}
