package container

import (
	"fmt"

	"github.com/armature-dev/armature/framework/component"
)

// ── Providers ────────────────────────────────────────────────────────────────

// Provider is the registered recipe for producing an instance: a scope
// plus exactly one production strategy. Strategy precedence when more than
// one is set: Value, then Factory, then New.
//
// Caching applies uniformly by token for every strategy — a factory
// registered as a singleton is invoked once and its result cached, a value
// registered as request-scoped is cached per request id (a no-op in
// practice, since the value never changes, but the shape is uniform).
type Provider struct {
	// Scope is the lifetime policy. Must be one of the three recognized
	// scopes; Register rejects anything else.
	Scope component.Scope

	// Value is a precomputed instance, returned as-is.
	Value any

	// Factory produces an instance with no arguments.
	Factory func() (any, error)

	// New constructs an instance from resolved dependencies. Deps lists
	// the dependency tokens in constructor-argument order.
	New  component.Constructor
	Deps []component.Token
}

// validate checks that the provider has a recognized scope and at least
// one production strategy.
func (p Provider) validate(token component.Token) error {
	if !p.Scope.Valid() {
		return &UnsupportedScopeError{Token: token, Scope: p.Scope}
	}
	if p.Value == nil && p.Factory == nil && p.New == nil {
		return fmt.Errorf("container: provider for [%s] has no production strategy", token)
	}
	return nil
}

// ── Constructors ─────────────────────────────────────────────────────────────

// Value returns a singleton provider for a precomputed instance.
//
//	c.Register("config", container.Value(cfg))
func Value(v any) Provider {
	return Provider{Scope: component.ScopeSingleton, Value: v}
}

// Factory returns a provider that produces instances by calling fn.
//
//	c.Register("conn", container.Factory(component.ScopeTransient, func() (any, error) {
//	    return dial(addr)
//	}))
func Factory(scope component.Scope, fn func() (any, error)) Provider {
	return Provider{Scope: scope, Factory: fn}
}

// Construct returns a provider that resolves deps in order and hands them
// to ctor.
//
//	c.Register("greeter", container.Construct(component.ScopeSingleton,
//	    func(deps ...any) (any, error) {
//	        return NewGreeter(deps[0].(*Logger)), nil
//	    },
//	    "logger",
//	))
func Construct(scope component.Scope, ctor component.Constructor, deps ...component.Token) Provider {
	return Provider{Scope: scope, New: ctor, Deps: deps}
}
