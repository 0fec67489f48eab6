package container_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/framework/component"
	"github.com/armature-dev/armature/framework/container"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type testLogger struct{ name string }

type testGreeter struct{ log *testLogger }

// fakeLifecycle records every Apply call the container makes.
type fakeLifecycle struct {
	mu    sync.Mutex
	calls []appliedInstance
}

type appliedInstance struct {
	instance  any
	scope     component.Scope
	requestID string
}

func (f *fakeLifecycle) Apply(instance any, scope component.Scope, requestID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, appliedInstance{instance, scope, requestID})
}

func (f *fakeLifecycle) applied() []appliedInstance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]appliedInstance(nil), f.calls...)
}

func register(t *testing.T, c *container.Container, token component.Token, p container.Provider) {
	t.Helper()
	require.NoError(t, c.Register(token, p))
}

// ── Scope semantics ──────────────────────────────────────────────────────────

func TestResolve_Singleton_SameInstanceEveryTime(t *testing.T) {
	c := container.New()
	built := 0
	register(t, c, "svc", container.Factory(component.ScopeSingleton, func() (any, error) {
		built++
		return &testLogger{name: "svc"}, nil
	}))

	first, err := c.Resolve("svc")
	require.NoError(t, err)
	second, err := c.Resolve("svc")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, built)
}

func TestResolve_Transient_DistinctInstanceEveryTime(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Factory(component.ScopeTransient, func() (any, error) {
		return &testLogger{}, nil
	}))

	first, err := c.Resolve("svc")
	require.NoError(t, err)
	second, err := c.Resolve("svc")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestResolve_Transient_DistinctEvenWithinOneRequest(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Factory(component.ScopeTransient, func() (any, error) {
		return &testLogger{}, nil
	}))

	first, err := c.ResolveForRequest("svc", "req-1")
	require.NoError(t, err)
	second, err := c.ResolveForRequest("svc", "req-1")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestResolveForRequest_SameID_SharesInstance(t *testing.T) {
	c := container.New()
	register(t, c, "session", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))

	first, err := c.ResolveForRequest("session", "req-1")
	require.NoError(t, err)
	second, err := c.ResolveForRequest("session", "req-1")
	require.NoError(t, err)
	other, err := c.ResolveForRequest("session", "req-2")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestResolve_RequestScopeWithoutID_EffectivelyTransient(t *testing.T) {
	c := container.New()
	register(t, c, "session", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))

	first, err := c.Resolve("session")
	require.NoError(t, err)
	second, err := c.Resolve("session")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestResolve_GeneratedRequestID_SharedWithinOneCall(t *testing.T) {
	type outer struct{ inner *testLogger }

	c := container.New()
	register(t, c, "inner", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))
	register(t, c, "outer", container.Construct(component.ScopeRequest,
		func(deps ...any) (any, error) {
			return &outer{inner: deps[0].(*testLogger)}, nil
		},
		"inner",
	))

	// With an explicit id the nested instance is the one cached for that id.
	o, err := container.ResolveForRequest[*outer](c, "outer", "req-1")
	require.NoError(t, err)
	inner, err := c.ResolveForRequest("inner", "req-1")
	require.NoError(t, err)
	assert.Same(t, inner, o.inner)

	// Without an id, each top-level call gets its own generated id.
	first, err := container.Resolve[*outer](c, "outer")
	require.NoError(t, err)
	second, err := container.Resolve[*outer](c, "outer")
	require.NoError(t, err)
	assert.NotSame(t, first.inner, second.inner)
}

// ── Strategies ───────────────────────────────────────────────────────────────

func TestResolve_ValueProvider_ReturnsValueAsIs(t *testing.T) {
	c := container.New()
	logger := &testLogger{name: "fixed"}
	register(t, c, "logger", container.Value(logger))

	got, err := c.Resolve("logger")
	require.NoError(t, err)
	assert.Same(t, logger, got)
}

func TestResolve_FactoryError_IsWrappedWithToken(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	register(t, c, "svc", container.Factory(component.ScopeSingleton, func() (any, error) {
		return nil, boom
	}))

	_, err := c.Resolve("svc")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "factory for [svc]")
}

func TestResolve_ConstructorError_IsWrappedWithToken(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	register(t, c, "svc", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return nil, boom }))

	_, err := c.Resolve("svc")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "constructing [svc]")
}

func TestResolve_Constructor_ReceivesDepsInDeclarationOrder(t *testing.T) {
	c := container.New()
	register(t, c, "a", container.Value("first"))
	register(t, c, "b", container.Value("second"))
	register(t, c, "c", container.Value("third"))

	var got []any
	register(t, c, "svc", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) {
			got = append([]any(nil), deps...)
			return struct{}{}, nil
		},
		"a", "b", "c",
	))

	_, err := c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, []any{"first", "second", "third"}, got)
}

func TestResolve_InjectedSingletonIsReferenceEqual(t *testing.T) {
	c := container.New()
	register(t, c, "logger", container.Value(&testLogger{name: "shared"}))
	register(t, c, "greeter", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) {
			return &testGreeter{log: deps[0].(*testLogger)}, nil
		},
		"logger",
	))

	greeter, err := container.Resolve[*testGreeter](c, "greeter")
	require.NoError(t, err)
	logger, err := container.Resolve[*testLogger](c, "logger")
	require.NoError(t, err)

	assert.Same(t, logger, greeter.log)
}

// ── Cycle detection ──────────────────────────────────────────────────────────

func TestResolve_CircularDependency_FailsWithChain(t *testing.T) {
	c := container.New()
	register(t, c, "ServiceA", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "ServiceB"))
	register(t, c, "ServiceB", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "ServiceA"))

	_, err := c.Resolve("ServiceA")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "ServiceA -> ServiceB -> ServiceA")
}

func TestResolve_SelfDependency_FailsWithChain(t *testing.T) {
	c := container.New()
	register(t, c, "narcissist", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "narcissist"))

	_, err := c.Resolve("narcissist")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "narcissist -> narcissist")
}

func TestResolve_AfterCircularFailure_UnrelatedResolutionSucceeds(t *testing.T) {
	c := container.New()
	register(t, c, "ServiceA", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "ServiceB"))
	register(t, c, "ServiceB", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "ServiceA"))
	register(t, c, "healthy", container.Value("ok"))

	_, err := c.Resolve("ServiceA")
	require.Error(t, err)

	// The failed resolution must leave no stack state behind.
	got, err := c.Resolve("healthy")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

// ── Registration ─────────────────────────────────────────────────────────────

func TestRegister_RejectsUnsupportedScope(t *testing.T) {
	c := container.New()

	err := c.Register("svc", container.Factory("pooled", func() (any, error) {
		return struct{}{}, nil
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrUnsupportedScope)
	assert.Contains(t, err.Error(), `unsupported scope "pooled"`)
}

func TestRegister_RejectsEmptyTokenAndMissingStrategy(t *testing.T) {
	c := container.New()

	assert.Error(t, c.Register("", container.Value("x")))
	assert.Error(t, c.Register("svc", container.Provider{Scope: component.ScopeSingleton}))
}

func TestRegister_Overwrite_DropsCachedSingleton(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Value("old"))

	got, err := c.Resolve("svc")
	require.NoError(t, err)
	require.Equal(t, "old", got)

	register(t, c, "svc", container.Value("new"))

	got, err = c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

// ── Unresolved providers & auto-registration ─────────────────────────────────

func TestResolve_UnknownToken_FailsWithUnresolvedProvider(t *testing.T) {
	c := container.New()

	_, err := c.Resolve("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrUnresolvedProvider)
	assert.Contains(t, err.Error(), "not declared in any component category")
}

func TestResolve_AutoRegistersFromComponentRegistry(t *testing.T) {
	reg := component.NewRegistry()
	require.NoError(t, reg.Define(component.Definition{
		Token:    "greeter",
		Category: component.CategoryService,
		Scope:    component.ScopeSingleton,
		New: func(deps ...any) (any, error) {
			return &testGreeter{}, nil
		},
	}))

	c := container.New(container.WithDefinitions(reg))
	require.False(t, c.Registered("greeter"))

	got, err := c.Resolve("greeter")
	require.NoError(t, err)
	assert.IsType(t, &testGreeter{}, got)
	assert.True(t, c.Registered("greeter"))
}

func TestResolve_DeclaredButNotConstructible_ReportsDiagnostics(t *testing.T) {
	reg := component.NewRegistry()
	require.NoError(t, reg.Define(component.Definition{
		Token:    "report-service",
		Category: component.CategoryService,
		Scope:    component.ScopeSingleton,
		Deps:     []component.Token{"clock", "mailer"},
	}))

	c := container.New(container.WithDefinitions(reg))
	register(t, c, "clock", container.Value("tick"))

	_, err := c.Resolve("report-service")
	require.Error(t, err)

	var unresolved *container.UnresolvedProviderError
	require.ErrorAs(t, err, &unresolved)
	assert.True(t, unresolved.Declared)
	assert.Equal(t, component.CategoryService, unresolved.Category)
	require.Len(t, unresolved.Deps, 2)
	assert.True(t, unresolved.Deps[0].Registered)
	assert.False(t, unresolved.Deps[1].Registered)

	msg := err.Error()
	assert.Contains(t, msg, "declared as service but not yet registered")
	assert.Contains(t, msg, "dependency [clock] is registered")
	assert.Contains(t, msg, "dependency [mailer] is missing")
}

func TestResolve_MissingDependency_PropagatesDependencyError(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Construct(component.ScopeSingleton,
		func(deps ...any) (any, error) { return struct{}{}, nil }, "absent"))

	_, err := c.Resolve("svc")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrUnresolvedProvider)
	assert.Contains(t, err.Error(), "[absent]")
}

// ── Cache management ─────────────────────────────────────────────────────────

func TestClearRequestInstances_EvictsOnlyThatRequest(t *testing.T) {
	c := container.New()
	register(t, c, "session", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))

	first, err := c.ResolveForRequest("session", "req-1")
	require.NoError(t, err)
	kept, err := c.ResolveForRequest("session", "req-2")
	require.NoError(t, err)

	c.ClearRequestInstances("req-1")

	replaced, err := c.ResolveForRequest("session", "req-1")
	require.NoError(t, err)
	stillKept, err := c.ResolveForRequest("session", "req-2")
	require.NoError(t, err)

	assert.NotSame(t, first, replaced)
	assert.Same(t, kept, stillKept)
}

func TestReset_ClearsProvidersAndCaches(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Value("x"))
	_, err := c.Resolve("svc")
	require.NoError(t, err)

	c.Reset()

	_, err = c.Resolve("svc")
	assert.ErrorIs(t, err, container.ErrUnresolvedProvider)

	s := c.Stats()
	assert.Zero(t, s.Providers)
	assert.Zero(t, s.Singletons)
}

// ── Lifecycle hand-off ───────────────────────────────────────────────────────

func TestResolve_HandsCachedInstancesToLifecycle(t *testing.T) {
	lc := &fakeLifecycle{}
	c := container.New(container.WithLifecycle(lc))

	register(t, c, "single", container.Factory(component.ScopeSingleton, func() (any, error) {
		return &testLogger{name: "single"}, nil
	}))
	register(t, c, "fleeting", container.Factory(component.ScopeTransient, func() (any, error) {
		return &testLogger{name: "fleeting"}, nil
	}))
	register(t, c, "session", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{name: "session"}, nil
	}))

	_, err := c.Resolve("single")
	require.NoError(t, err)
	_, err = c.Resolve("single") // cached — no second Apply
	require.NoError(t, err)
	_, err = c.Resolve("fleeting")
	require.NoError(t, err)
	_, err = c.ResolveForRequest("session", "req-9")
	require.NoError(t, err)

	calls := lc.applied()
	require.Len(t, calls, 3)
	assert.Equal(t, component.ScopeSingleton, calls[0].scope)
	assert.Equal(t, component.ScopeTransient, calls[1].scope)
	assert.Equal(t, component.ScopeRequest, calls[2].scope)
	assert.Equal(t, "req-9", calls[2].requestID)
}

// ── Concurrency ──────────────────────────────────────────────────────────────

func TestResolve_ConcurrentSingletonResolution_AllSeeOneInstance(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Factory(component.ScopeSingleton, func() (any, error) {
		return &testLogger{}, nil
	}))

	const goroutines = 16
	results := make([]any, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			v, err := c.Resolve("svc")
			if err == nil {
				results[i] = v
			}
		}()
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.NotNil(t, results[i])
		assert.Same(t, results[0], results[i])
	}
}

// ── Generic helpers & diagnostics ────────────────────────────────────────────

func TestResolveGeneric_TypeMismatch_Errors(t *testing.T) {
	c := container.New()
	register(t, c, "svc", container.Value("a string"))

	_, err := container.Resolve[*testLogger](c, "svc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolved to string")
}

func TestMustResolve_PanicsOnFailure(t *testing.T) {
	c := container.New()

	assert.Panics(t, func() {
		container.MustResolve[*testLogger](c, "ghost")
	})
}

func TestStats_TracksTablesAndCounters(t *testing.T) {
	c := container.New()
	register(t, c, "a", container.Value("a"))
	register(t, c, "b", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))

	_, err := c.Resolve("a")
	require.NoError(t, err)
	_, err = c.ResolveForRequest("b", "req-1")
	require.NoError(t, err)
	_, err = c.Resolve("ghost")
	require.Error(t, err)

	s := c.Stats()
	assert.Equal(t, 2, s.Providers)
	assert.Equal(t, 1, s.Singletons)
	assert.Equal(t, 1, s.ActiveRequests)
	assert.Equal(t, 1, s.RequestInstances)
	assert.Equal(t, uint64(3), s.Resolutions)
	assert.Equal(t, uint64(1), s.Failures)
}

func TestResolve_CustomRequestIDGenerator(t *testing.T) {
	var n int
	c := container.New(container.WithRequestIDGenerator(func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}))
	register(t, c, "session", container.Factory(component.ScopeRequest, func() (any, error) {
		return &testLogger{}, nil
	}))

	_, err := c.Resolve("session")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
