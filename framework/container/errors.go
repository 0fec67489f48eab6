package container

import (
	"errors"
	"fmt"
	"strings"

	"github.com/armature-dev/armature/framework/component"
)

// ── Sentinels ────────────────────────────────────────────────────────────────

// Sentinel errors for errors.Is matching. The errors actually returned are
// the typed errors below, which carry the diagnostic detail.
var (
	ErrCircularDependency = errors.New("circular dependency")
	ErrUnresolvedProvider = errors.New("unresolved provider")
	ErrUnsupportedScope   = errors.New("unsupported scope")
	ErrDeferredExhausted  = errors.New("deferred resolution exhausted")
)

// ── CircularDependencyError ──────────────────────────────────────────────────

// CircularDependencyError reports that a token was reached while already
// being resolved on the current call path. Chain holds the path from the
// first occurrence to the repeat, e.g. ServiceA -> ServiceB -> ServiceA.
type CircularDependencyError struct {
	Chain []component.Token
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		parts[i] = string(t)
	}
	return "container: circular dependency detected: " + strings.Join(parts, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// ── UnresolvedProviderError ──────────────────────────────────────────────────

// DependencyStatus records, for one declared dependency of an unresolved
// token, whether that dependency itself has a registered provider.
type DependencyStatus struct {
	Token      component.Token
	Registered bool
}

// UnresolvedProviderError reports that no provider was found for a token
// and auto-registration could not supply one. Declared is true when the
// token appears in a component category (a declaration exists but no
// provider has been registered yet — typically an ordering problem).
// Deps carries the registration status of each declared dependency.
type UnresolvedProviderError struct {
	Token    component.Token
	Declared bool
	Category component.Category
	Deps     []DependencyStatus
}

func (e *UnresolvedProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "container: no provider registered for [%s]", e.Token)
	if e.Declared {
		fmt.Fprintf(&b, ": declared as %s but not yet registered", e.Category)
	} else {
		b.WriteString(": token is not declared in any component category")
	}
	for _, d := range e.Deps {
		status := "registered"
		if !d.Registered {
			status = "missing"
		}
		fmt.Fprintf(&b, "; dependency [%s] is %s", d.Token, status)
	}
	return b.String()
}

func (e *UnresolvedProviderError) Is(target error) bool {
	return target == ErrUnresolvedProvider
}

// ── UnsupportedScopeError ────────────────────────────────────────────────────

// UnsupportedScopeError reports a provider whose scope is outside the
// three recognized values. Always a misconfiguration, never retried.
type UnsupportedScopeError struct {
	Token component.Token
	Scope component.Scope
}

func (e *UnsupportedScopeError) Error() string {
	return fmt.Sprintf("container: unsupported scope %q for [%s]: expected singleton, transient, or request",
		e.Scope, e.Token)
}

func (e *UnsupportedScopeError) Is(target error) bool {
	return target == ErrUnsupportedScope
}

// ── DeferredExhaustedError ───────────────────────────────────────────────────

// DeferredExhaustedError is the escalation after the deferred-resolution
// retry budget is spent. Cause is the error from the last failed attempt.
type DeferredExhaustedError struct {
	Token    component.Token
	Attempts int
	Cause    error
}

func (e *DeferredExhaustedError) Error() string {
	return fmt.Sprintf("container: could not resolve [%s] after %d attempts: %v",
		e.Token, e.Attempts, e.Cause)
}

func (e *DeferredExhaustedError) Unwrap() error { return e.Cause }

func (e *DeferredExhaustedError) Is(target error) bool {
	return target == ErrDeferredExhausted
}

// ── Retry classification ─────────────────────────────────────────────────────

// initializationMarkers are message fragments that indicate a reference to
// a name that is declared but not yet visible — the class of failure worth
// retrying under deferred resolution. This is a heuristic over the error
// text, not a structural guarantee.
var initializationMarkers = []string{
	"not yet registered",
	"not yet initialized",
	"not yet defined",
	"before initialization",
	"forward reference",
}

// isInitializationOrder reports whether err looks like an
// initialization-order failure. Circular dependencies, unsupported scopes,
// and already-exhausted retries are never retryable, whatever their text.
func isInitializationOrder(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircularDependency) ||
		errors.Is(err, ErrUnsupportedScope) ||
		errors.Is(err, ErrDeferredExhausted) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range initializationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
