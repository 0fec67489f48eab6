package container

import (
	"fmt"
	"slices"

	"github.com/armature-dev/armature/framework/component"
)

// ── Resolution state ─────────────────────────────────────────────────────────

// resolution is the per-top-level-call state: the stack of tokens
// currently being resolved on this call path (for cycle detection) and the
// request id propagated to nested resolutions. It is local to one call, so
// concurrent top-level resolutions cannot corrupt each other's cycle
// detection.
type resolution struct {
	stack     []component.Token
	requestID string
}

func (r *resolution) push(t component.Token) { r.stack = append(r.stack, t) }
func (r *resolution) pop()                   { r.stack = r.stack[:len(r.stack)-1] }

// cycle builds the error chain from the first occurrence of t on the stack
// back around to t.
func (r *resolution) cycle(t component.Token) *CircularDependencyError {
	idx := slices.Index(r.stack, t)
	chain := append(append([]component.Token(nil), r.stack[idx:]...), t)
	return &CircularDependencyError{Chain: chain}
}

// ── Public entry points ──────────────────────────────────────────────────────

// Resolve resolves token with no request id. A request-scoped token
// resolved this way gets a freshly generated id per call — effectively
// transient behavior. Callers that want instance sharing within one
// request must use ResolveForRequest with a stable id.
func (c *Container) Resolve(token component.Token) (any, error) {
	return c.resolveTop(token, "")
}

// ResolveForRequest resolves token within the request identified by
// requestID. The id scopes the request cache and is handed to
// OnRequestStart hooks.
func (c *Container) ResolveForRequest(token component.Token, requestID string) (any, error) {
	return c.resolveTop(token, requestID)
}

func (c *Container) resolveTop(token component.Token, requestID string) (any, error) {
	c.countResolution()
	r := &resolution{requestID: requestID}

	v, err := c.resolve(token, r)
	if err == nil {
		c.clearPending(token)
		return v, nil
	}
	if c.deferredEnabled() && isInitializationOrder(err) {
		return c.deferRetry(token, r, err)
	}
	c.countFailure()
	return nil, err
}

// ── The algorithm ────────────────────────────────────────────────────────────

// resolve is one step of the depth-first traversal: cycle check, provider
// lookup (with auto-registration fallback), then scope dispatch. The stack
// entry is popped on every exit path, so a failed resolution leaves no
// state behind.
func (c *Container) resolve(token component.Token, r *resolution) (any, error) {
	if slices.Contains(r.stack, token) {
		return nil, r.cycle(token)
	}
	r.push(token)
	defer r.pop()

	p, ok := c.provider(token)
	if !ok {
		var err error
		p, ok, err = c.autoRegister(token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, c.unresolvedError(token)
		}
	}

	switch p.Scope {
	case component.ScopeSingleton:
		return c.resolveSingleton(token, p, r)
	case component.ScopeTransient:
		instance, err := c.produce(token, p, r)
		if err != nil {
			return nil, err
		}
		c.applyLifecycle(instance, component.ScopeTransient, "")
		return instance, nil
	case component.ScopeRequest:
		return c.resolveRequest(token, p, r)
	default:
		return nil, &UnsupportedScopeError{Token: token, Scope: p.Scope}
	}
}

func (c *Container) resolveSingleton(token component.Token, p Provider, r *resolution) (any, error) {
	c.mu.RLock()
	cached, ok := c.singletons[token]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	instance, err := c.produce(token, p, r)
	if err != nil {
		return nil, err
	}

	// First store wins. A racing loser's instance is discarded and never
	// enters the lifecycle registry.
	c.mu.Lock()
	if existing, ok := c.singletons[token]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.singletons[token] = instance
	c.mu.Unlock()

	c.applyLifecycle(instance, component.ScopeSingleton, "")
	return instance, nil
}

func (c *Container) resolveRequest(token component.Token, p Provider, r *resolution) (any, error) {
	if r.requestID == "" {
		// No id supplied: generate one for this top-level call. Every nested
		// resolution shares it; nothing outside this call ever sees it.
		r.requestID = c.newID()
	}
	rid := r.requestID

	c.mu.RLock()
	cached, ok := c.requests[rid][token]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	instance, err := c.produce(token, p, r)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.requests[rid][token]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	if c.requests[rid] == nil {
		c.requests[rid] = make(map[component.Token]any)
	}
	c.requests[rid][token] = instance
	c.mu.Unlock()

	c.applyLifecycle(instance, component.ScopeRequest, rid)
	return instance, nil
}

// produce dispatches on the provider strategy: value as-is, factory with
// no arguments, or constructor with recursively resolved dependencies in
// declaration order. Dependency failures propagate unchanged.
func (c *Container) produce(token component.Token, p Provider, r *resolution) (any, error) {
	switch {
	case p.Value != nil:
		return p.Value, nil
	case p.Factory != nil:
		instance, err := p.Factory()
		if err != nil {
			return nil, fmt.Errorf("container: factory for [%s] failed: %w", token, err)
		}
		return instance, nil
	default:
		args := make([]any, len(p.Deps))
		for i, dep := range p.Deps {
			v, err := c.resolve(dep, r)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		instance, err := p.New(args...)
		if err != nil {
			return nil, fmt.Errorf("container: constructing [%s] failed: %w", token, err)
		}
		return instance, nil
	}
}

func (c *Container) applyLifecycle(instance any, scope component.Scope, requestID string) {
	if c.lifecycle != nil {
		c.lifecycle.Apply(instance, scope, requestID)
	}
}

// ── Auto-registration & diagnostics ──────────────────────────────────────────

// autoRegister tries to supply a provider for an unregistered token from
// its definition in the component registry. Only constructible definitions
// qualify; a nil-constructor declaration stays unresolved until something
// registers a value for it.
func (c *Container) autoRegister(token component.Token) (Provider, bool, error) {
	if c.defs == nil {
		return Provider{}, false, nil
	}
	def, ok := c.defs.Definition(token)
	if !ok || def.New == nil {
		return Provider{}, false, nil
	}
	p := Provider{Scope: def.Scope, New: def.New, Deps: def.Deps}
	if err := c.Register(token, p); err != nil {
		return Provider{}, false, err
	}
	c.log.Debug("auto-registered provider from component registry",
		"token", token, "category", def.Category, "scope", def.Scope)
	return p, true, nil
}

// unresolvedError builds the diagnostic error for a token with no
// provider: whether the token is declared in a category, and for each of
// its declared dependencies whether that dependency has a provider of its
// own. The detail matters — it is what distinguishes an ordering problem
// from a genuinely missing registration.
func (c *Container) unresolvedError(token component.Token) *UnresolvedProviderError {
	e := &UnresolvedProviderError{Token: token}
	if c.defs == nil {
		return e
	}
	if cat, ok := c.defs.Category(token); ok {
		e.Declared = true
		e.Category = cat
	}
	if def, ok := c.defs.Definition(token); ok {
		for _, dep := range def.Deps {
			e.Deps = append(e.Deps, DependencyStatus{Token: dep, Registered: c.Registered(dep)})
		}
	}
	return e
}
