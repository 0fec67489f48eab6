package lifecycle

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/armature-dev/armature/framework/component"
)

// ── Records ──────────────────────────────────────────────────────────────────

// record tracks one live instance's teardown callbacks. Only instances
// exposing OnDestroy or OnRequestEnd are recorded; init-only instances
// need no bookkeeping after their hook has run.
type record struct {
	instance   any
	destroy    func() error
	requestEnd func() error
}

// ── Registry ─────────────────────────────────────────────────────────────────

// Registry invokes lifecycle hooks on instances and performs ordered
// cleanup. Hook errors are logged, never propagated: a broken hook must
// not abort resolution or block teardown of sibling instances.
//
// Records live in three buckets — singleton, transient, and per-request —
// and are released in the order requests, then transients, then
// singletons at shutdown, so shorter-lived components can rely on
// singletons outliving them.
type Registry struct {
	mu         sync.Mutex
	log        *slog.Logger
	singletons []*record
	transients []*record
	requests   map[string][]*record
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger hook failures are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates an empty lifecycle registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:      slog.Default(),
		requests: make(map[string][]*record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ── Hook application ─────────────────────────────────────────────────────────

// Apply runs the post-construction hooks on instance — OnInit for every
// scope, plus OnRequestStart for request-scoped instances — and records
// its teardown callbacks in the bucket for scope. requestID is only
// meaningful for request scope.
func (r *Registry) Apply(instance any, scope component.Scope, requestID string) {
	if init, ok := instance.(Initializable); ok {
		r.invoke("OnInit", instance, init.OnInit)
	}
	if scope == component.ScopeRequest {
		if starter, ok := instance.(RequestStartable); ok {
			r.invoke("OnRequestStart", instance, func() error {
				return starter.OnRequestStart(requestID)
			})
		}
	}

	rec := &record{instance: instance}
	if d, ok := instance.(Destroyable); ok {
		rec.destroy = d.OnDestroy
	}
	if scope == component.ScopeRequest {
		if e, ok := instance.(RequestEndable); ok {
			rec.requestEnd = e.OnRequestEnd
		}
	}
	if rec.destroy == nil && rec.requestEnd == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch scope {
	case component.ScopeSingleton:
		r.singletons = append(r.singletons, rec)
	case component.ScopeTransient:
		r.transients = append(r.transients, rec)
	case component.ScopeRequest:
		r.requests[requestID] = append(r.requests[requestID], rec)
	}
}

// ── Cleanup ──────────────────────────────────────────────────────────────────

// CleanupRequest tears down every instance recorded under requestID:
// OnRequestEnd then OnDestroy, per instance, then the bucket is deleted.
// Calling it again for the same id is a no-op.
func (r *Registry) CleanupRequest(requestID string) {
	r.mu.Lock()
	bucket := r.requests[requestID]
	delete(r.requests, requestID)
	r.mu.Unlock()

	for _, rec := range bucket {
		if rec.requestEnd != nil {
			r.invoke("OnRequestEnd", rec.instance, rec.requestEnd)
		}
		if rec.destroy != nil {
			r.invoke("OnDestroy", rec.instance, rec.destroy)
		}
	}
}

// CleanupTransient destroys every tracked transient instance and clears
// the bucket. Transients are otherwise unbounded, so callers run this
// periodically.
func (r *Registry) CleanupTransient() {
	r.mu.Lock()
	bucket := r.transients
	r.transients = nil
	r.mu.Unlock()

	for _, rec := range bucket {
		if rec.destroy != nil {
			r.invoke("OnDestroy", rec.instance, rec.destroy)
		}
	}
}

// Shutdown tears everything down: every active request bucket, then all
// transients, then all singletons. The order is deliberate — request- and
// transient-scoped components may use singletons during their own
// teardown. Singletons are destroyed in reverse registration order, so
// dependents go before the things they depend on.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.requests))
	for id := range r.requests {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.CleanupRequest(id)
	}
	r.CleanupTransient()

	r.mu.Lock()
	bucket := r.singletons
	r.singletons = nil
	r.mu.Unlock()

	for i := len(bucket) - 1; i >= 0; i-- {
		if bucket[i].destroy != nil {
			r.invoke("OnDestroy", bucket[i].instance, bucket[i].destroy)
		}
	}
}

// ── Diagnostics ──────────────────────────────────────────────────────────────

// Stats is a snapshot of tracked lifecycle records.
type Stats struct {
	Singletons     int
	Transients     int
	ActiveRequests int
	RequestRecords int
}

// Stats returns current record counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{
		Singletons:     len(r.singletons),
		Transients:     len(r.transients),
		ActiveRequests: len(r.requests),
	}
	for _, bucket := range r.requests {
		s.RequestRecords += len(bucket)
	}
	return s
}

// invoke runs one hook, logging a failure instead of returning it.
func (r *Registry) invoke(hook string, instance any, fn func() error) {
	if err := fn(); err != nil {
		r.log.Error("lifecycle hook failed",
			"hook", hook,
			"component", fmt.Sprintf("%T", instance),
			"error", err)
	}
}
