package container

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/armature-dev/armature/framework/component"
)

// ── Collaborator interfaces ──────────────────────────────────────────────────

// Definitions is the read side of the component registry the container
// consults for auto-registration and error diagnostics.
type Definitions interface {
	Definition(token component.Token) (component.Definition, bool)
	Category(token component.Token) (component.Category, bool)
}

// Lifecycle receives every instance the container produces and caches.
// Apply must never fail the caller; hook errors are the registry's to log.
type Lifecycle interface {
	Apply(instance any, scope component.Scope, requestID string)
}

// ── Container ────────────────────────────────────────────────────────────────

// Container is the dependency-resolution engine: a provider table, a
// singleton cache, per-request instance caches, and the pending table for
// deferred resolution. There is no ambient instance — construct one
// explicitly and pass it to whatever needs resolution.
//
// All state is mutex-guarded, but construction runs outside the lock, so
// two goroutines racing to first-construct the same singleton may both run
// the constructor; the first to store wins and the loser's instance is
// discarded without entering the lifecycle registry. Singleton
// construction is not transactionally exclusive.
type Container struct {
	mu sync.RWMutex

	log       *slog.Logger
	defs      Definitions
	lifecycle Lifecycle
	newID     func() string

	// token → provider
	providers map[component.Token]Provider

	// token → cached singleton instance
	singletons map[component.Token]any

	// requestID → token → cached instance
	requests map[string]map[component.Token]any

	// token → deferred-resolution bookkeeping
	pending map[component.Token]*pendingResolution

	deferred   bool
	retryDelay time.Duration

	// cumulative counters
	resolutions uint64
	failures    uint64
	retries     uint64
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for retry and pending-resolution events.
func WithLogger(log *slog.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDefinitions attaches the component registry consulted for
// auto-registration and unresolved-provider diagnostics.
func WithDefinitions(defs Definitions) Option {
	return func(c *Container) { c.defs = defs }
}

// WithLifecycle attaches the lifecycle registry that receives every cached
// instance.
func WithLifecycle(lc Lifecycle) Option {
	return func(c *Container) { c.lifecycle = lc }
}

// WithRetryDelay sets the initial deferred-resolution backoff delay. The
// delay doubles on each subsequent attempt.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Container) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithRequestIDGenerator replaces the generator used when a request-scoped
// token is resolved without a request id.
func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Container) {
		if fn != nil {
			c.newID = fn
		}
	}
}

const (
	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 2 * time.Second

	// deferredMaxAttempts is the retry budget after the initial failure.
	deferredMaxAttempts = 3
)

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		log:        slog.Default(),
		newID:      uuid.NewString,
		providers:  make(map[component.Token]Provider),
		singletons: make(map[component.Token]any),
		requests:   make(map[string]map[component.Token]any),
		pending:    make(map[component.Token]*pendingResolution),
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ─────────────────────────────────────────────────────────────

// Register inserts or overwrites the provider for token. Overwriting drops
// any cached singleton for the token so the next resolution uses the new
// provider, and clears any pending deferred resolution — a late
// registration rescues earlier failed attempts.
func (c *Container) Register(token component.Token, p Provider) error {
	if token == "" {
		return fmt.Errorf("container: empty token")
	}
	if err := p.validate(token); err != nil {
		return err
	}
	c.mu.Lock()
	c.providers[token] = p
	delete(c.singletons, token)
	delete(c.pending, token)
	c.mu.Unlock()
	return nil
}

// Registered reports whether token has a provider.
func (c *Container) Registered(token component.Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[token]
	return ok
}

// provider returns the registered provider for token.
func (c *Container) provider(token component.Token) (Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.providers[token]
	return p, ok
}

// ── Cache management ─────────────────────────────────────────────────────────

// ClearRequestInstances deletes the instance cache for a request id. This
// is eviction only — it does not run destroy hooks. Callers tearing down a
// request must invoke the lifecycle registry's request cleanup first, then
// evict here.
func (c *Container) ClearRequestInstances(requestID string) {
	c.mu.Lock()
	delete(c.requests, requestID)
	c.mu.Unlock()
}

// Reset clears the provider table, both instance caches, and the pending
// table. Lifecycle records are untouched; teardown of live instances
// remains the lifecycle registry's job.
func (c *Container) Reset() {
	c.mu.Lock()
	c.providers = make(map[component.Token]Provider)
	c.singletons = make(map[component.Token]any)
	c.requests = make(map[string]map[component.Token]any)
	c.pending = make(map[component.Token]*pendingResolution)
	c.mu.Unlock()
}

// SetDeferredResolution toggles deferred retry of initialization-order
// failures. When disabled, such failures surface immediately.
func (c *Container) SetDeferredResolution(enabled bool) {
	c.mu.Lock()
	c.deferred = enabled
	c.mu.Unlock()
}

func (c *Container) deferredEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deferred
}

// ── Diagnostics ──────────────────────────────────────────────────────────────

// Stats is a point-in-time snapshot of container state.
type Stats struct {
	Providers        int
	Singletons       int
	ActiveRequests   int
	RequestInstances int
	Pending          int

	Resolutions uint64
	Failures    uint64
	Retries     uint64
}

// Stats returns a snapshot of table sizes and cumulative counters.
func (c *Container) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		Providers:      len(c.providers),
		Singletons:     len(c.singletons),
		ActiveRequests: len(c.requests),
		Pending:        len(c.pending),
		Resolutions:    c.resolutions,
		Failures:       c.failures,
		Retries:        c.retries,
	}
	for _, instances := range c.requests {
		s.RequestInstances += len(instances)
	}
	return s
}

func (c *Container) countResolution() {
	c.mu.Lock()
	c.resolutions++
	c.mu.Unlock()
}

func (c *Container) countFailure() {
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
}

func (c *Container) countRetry() {
	c.mu.Lock()
	c.retries++
	c.mu.Unlock()
}

// ── Generic helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that resolves token and type-asserts the
// result.
//
//	greeter, err := container.Resolve[*Greeter](c, "greeter")
func Resolve[T any](c *Container, token component.Token) (T, error) {
	instance, err := c.Resolve(token)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", token, instance, zero)
	}
	return typed, nil
}

// ResolveForRequest is the request-scoped variant of Resolve.
func ResolveForRequest[T any](c *Container, token component.Token, requestID string) (T, error) {
	instance, err := c.ResolveForRequest(token, requestID)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", token, instance, zero)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Intended for wiring
// code that runs at startup, where a failure is fatal anyway.
func MustResolve[T any](c *Container, token component.Token) T {
	v, err := Resolve[T](c, token)
	if err != nil {
		panic(err)
	}
	return v
}
