package sheet

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a lookup is issued.
const DefaultDebounce = 800 * time.Millisecond

// LookupFunc resolves the aggregates of a (partial) student name.
type LookupFunc func(ctx context.Context, name string) (Aggregates, error)

// LookupResult is delivered for the latest query only.
type LookupResult struct {
	Name       string     `json:"name"`
	Aggregates Aggregates `json:"aggregates"`
	Trend      [4]float64 `json:"trend"`
	Err        error      `json:"-"`
}

// Lookup debounces free-text trend lookups: a query runs only after a quiet period with no
// newer query, a newer query cancels any lookup still in flight, and results of superseded
// or canceled lookups are discarded.
type Lookup struct {
	quiet   time.Duration
	fn      LookupFunc
	results chan LookupResult

	ctx  context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	closed   bool
}

// NewLookup starts a debounced lookup bound to ctx; canceling ctx has the effect of Close
// for lookups in flight.
func NewLookup(ctx context.Context, quiet time.Duration, fn LookupFunc) *Lookup {
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	ctx, stop := context.WithCancel(ctx)
	return &Lookup{
		quiet:   quiet,
		fn:      fn,
		results: make(chan LookupResult, 1),
		ctx:     ctx,
		stop:    stop,
	}
}

// Results delivers the outcome of the latest query. It is closed by Close.
func (l *Lookup) Results() <-chan LookupResult {
	return l.results
}

// Submit schedules a lookup of name, superseding every earlier query.
func (l *Lookup) Submit(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.seq++
	l.supersede()
	seq := l.seq
	name = strings.TrimSpace(name)
	l.timer = time.AfterFunc(l.quiet, func() { l.run(seq, name) })
}

// Close cancels pending and in-flight lookups and closes Results.
func (l *Lookup) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.supersede()
	l.stop()
	close(l.results)
}

// supersede stops the pending timer and cancels the in-flight call. Callers hold mu.
func (l *Lookup) supersede() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
}

func (l *Lookup) run(seq uint64, name string) {
	l.mu.Lock()
	if l.closed || seq != l.seq {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(l.ctx)
	l.inflight = cancel
	l.mu.Unlock()

	aggs, err := l.fn(ctx, name)

	l.mu.Lock()
	defer l.mu.Unlock()
	canceled := ctx.Err() != nil
	cancel()
	if l.closed || seq != l.seq || canceled {
		return
	}
	l.inflight = nil
	l.deliver(LookupResult{Name: name, Aggregates: aggs, Trend: aggs.Trend(), Err: err})
}

// deliver replaces an unread result with r. Callers hold mu.
func (l *Lookup) deliver(r LookupResult) {
	select {
	case l.results <- r:
	default:
		select {
		case <-l.results:
		default:
		}
		l.results <- r
	}
}
