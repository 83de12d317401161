package catalog

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is searched.
const DefaultDebounce = 500 * time.Millisecond

// SearchFunc runs one search. The context is cancelled when a newer query
// supersedes it. It should not publish results itself; deliver does that.
type SearchFunc func(ctx context.Context, query string) (SearchResult, error)

// Debouncer coalesces bursts of query input into a single search. Each Submit
// restarts the quiet-period timer. When a search starts, any search still in
// flight is cancelled, and results from superseded generations are dropped
// before they reach the deliver callback.
type Debouncer struct {
	delay   time.Duration
	search  SearchFunc
	deliver func(SearchResult, error)

	deliverMu sync.Mutex

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	cancel     context.CancelFunc
	parent     context.Context
	wg         sync.WaitGroup
}

// NewDebouncer builds a debouncer; deliver receives only the newest result.
func NewDebouncer(parent context.Context, delay time.Duration, search SearchFunc, deliver func(SearchResult, error)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if parent == nil {
		parent = context.Background()
	}
	return &Debouncer{delay: delay, search: search, deliver: deliver, parent: parent}
}

// Submit schedules a search for query, superseding any pending one.
func (d *Debouncer) Submit(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	gen := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, query) })
}

func (d *Debouncer) fire(gen uint64, query string) {
	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	res, err := d.search(ctx, query)
	cancel()

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	d.mu.Lock()
	current := gen == d.generation
	d.mu.Unlock()
	if current && d.deliver != nil {
		d.deliver(res, err)
	}
}

// Stop cancels any pending timer and in-flight search, then waits for
// running searches to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
