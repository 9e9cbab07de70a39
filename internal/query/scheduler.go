package query

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/store"
	"github.com/gamepanel/user-service/shared/logger"
	"github.com/gamepanel/user-service/shared/metrics"
	"golang.org/x/sync/errgroup"
)

// Failure records one sub-query that was replaced by its empty default.
type Failure struct {
	Capability  capability.Capability
	Store       string
	Description string
	Timeout     bool
	Err         error
}

// report collects the failures of one aggregation request.
type report struct {
	mu       sync.Mutex
	failures []Failure
}

func (r *report) add(f Failure) {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
}

// capabilities returns the distinct failed capabilities in sorted order.
func (r *report) capabilities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[capability.Capability]struct{}, len(r.failures))
	out := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		if _, ok := seen[f.Capability]; ok {
			continue
		}
		seen[f.Capability] = struct{}{}
		out = append(out, string(f.Capability))
	}
	sort.Strings(out)
	return out
}

// phase runs isolated sub-queries against one store concurrently. A phase
// settles once every task has finished; a failing task never cancels its
// siblings. Concurrency against the store is bounded by the store's pool.
type phase struct {
	ctx    context.Context
	store  string
	log    *logger.Logger
	report *report
	group  errgroup.Group
}

func newPhase(ctx context.Context, storeName string, log *logger.Logger, r *report) *phase {
	return &phase{ctx: ctx, store: storeName, log: log, report: r}
}

// wait blocks until every task started on p has finished.
func (p *phase) wait() {
	_ = p.group.Wait()
}

// chain runs fn as one task of p. fn receives its own sub-phase so that a
// follow-up query can wait on the queries it depends on without holding up
// unrelated siblings. The task ends once the sub-phase has settled.
func (p *phase) chain(fn func(sub *phase)) {
	p.group.Go(func() error {
		sub := newPhase(p.ctx, p.store, p.log, p.report)
		fn(sub)
		sub.wait()
		return nil
	})
}

// isolate runs fn as one task of p and stores its value in dst. On error the
// failure is logged and recorded, and dst receives fallback instead. This is
// the only place sub-query errors are handled.
func isolate[T any](p *phase, dst *T, c capability.Capability, fallback T, fn func(ctx context.Context) (T, error)) {
	p.group.Go(func() error {
		v, err := fn(p.ctx)
		if err != nil {
			p.fail(c, err)
			*dst = fallback
			return nil
		}
		metrics.RecordSubquery(p.store, string(c), metrics.OutcomeOK)
		*dst = v
		return nil
	})
}

func (p *phase) fail(c capability.Capability, err error) {
	f := Failure{Capability: c, Store: p.store, Err: err}
	kv := []interface{}{"capability", string(c), "store", p.store, "error", err}

	var qErr *store.QueryError
	if errors.As(err, &qErr) {
		f.Description = qErr.Description
		f.Timeout = qErr.Timeout
		kv = append(kv, "query", qErr.SQL, "args", qErr.Args, "description", qErr.Description, "timeout", qErr.Timeout)
	}
	p.report.add(f)

	switch {
	case p.ctx.Err() != nil:
		metrics.RecordSubquery(p.store, string(c), metrics.OutcomeCanceled)
		p.log.Debug("sub-query abandoned", kv...)
	case f.Timeout:
		metrics.RecordSubquery(p.store, string(c), metrics.OutcomeTimeout)
		p.log.Warn("sub-query timed out", kv...)
	default:
		metrics.RecordSubquery(p.store, string(c), metrics.OutcomeFailed)
		p.log.Warn("sub-query failed", kv...)
	}
}
