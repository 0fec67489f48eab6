// Package container provides the dependency-resolution engine: a provider
// table, per-scope instance caches, cycle detection, and deferred retry of
// resolutions that fail because of registration ordering.
//
// # Overview
//
// A Container maps tokens to providers and builds instances on demand. A
// provider carries one production strategy — a precomputed value, a
// zero-argument factory, or a constructor plus an explicit list of
// dependency tokens — and a scope that decides how the result is cached.
// Dependency lists are declared, not reflected: the container never
// inspects constructor signatures.
//
// There is no ambient container. Construct one, pass it around, and build
// a fresh one per test case.
//
// # Scopes
//
//	singleton — constructed once, cached until Reset
//	transient — constructed on every resolution, never cached
//	request   — constructed once per request id, cached until the
//	            request's instances are cleared
//
// # Registering and resolving
//
//	c := container.New()
//
//	c.Register("config", container.Value(cfg))
//
//	c.Register("clock", container.Factory(component.ScopeSingleton,
//	    func() (any, error) { return NewClock(), nil }))
//
//	c.Register("greeter", container.Construct(component.ScopeSingleton,
//	    func(deps ...any) (any, error) {
//	        return NewGreeter(deps[0].(*Clock)), nil
//	    },
//	    "clock",
//	))
//
//	greeter, err := container.Resolve[*Greeter](c, "greeter")
//
// Request-scoped components share instances per request id:
//
//	a, _ := c.ResolveForRequest("session", rid)
//	b, _ := c.ResolveForRequest("session", rid) // same instance as a
//
// Resolving a request-scoped token without an id generates a fresh id for
// that call, which makes the behavior effectively transient across calls.
//
// # Cycle detection
//
// Each top-level resolution carries its own stack of in-flight tokens.
// Reaching a token already on the stack fails immediately with
// CircularDependencyError naming the chain, and the stack unwinds cleanly
// — a later unrelated resolution is unaffected.
//
// # Auto-registration
//
// When a token has no provider but the attached component registry holds a
// constructible definition for it, the container registers a provider from
// that definition on the spot and proceeds. Tokens that are declared but
// not constructible produce an UnresolvedProviderError whose message and
// dependency report say exactly what is missing.
//
// # Deferred resolution
//
// With SetDeferredResolution(true), a resolution that fails because a
// declared name is not yet registered is retried with backoff instead of
// surfacing immediately: the call blocks, waits, and re-resolves, up to
// three retries with doubling delays. A registration arriving in the
// meantime rescues the token. When the budget is spent the caller gets
// DeferredExhaustedError wrapping the last cause, and subsequent attempts
// fail fast until the token is registered or the container is reset.
// ResolvePending sweeps the pending table once, logging rather than
// returning failures; PendingResolutions exposes the table for
// diagnostics.
//
// # Lifecycle and concurrency
//
// Every instance the container caches (and every transient it hands out)
// is passed to the attached lifecycle registry, which runs init hooks and
// records teardown callbacks. Construction happens outside the container
// lock; two goroutines racing to first-construct a singleton may both run
// the constructor, and the loser's instance is discarded without entering
// the lifecycle registry.
package container
