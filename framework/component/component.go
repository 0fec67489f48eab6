package component

// ── Tokens ───────────────────────────────────────────────────────────────────

// Token identifies a requestable component. Tokens are compared by string
// equality and must be unique within a provider table.
//
//	const TokenMailer = component.Token("mailer")
type Token string

func (t Token) String() string { return string(t) }

// ── Scopes ───────────────────────────────────────────────────────────────────

// Scope is the lifetime policy of a component.
type Scope string

const (
	// ScopeSingleton: one instance per container, constructed lazily on
	// first resolution and cached until Reset.
	ScopeSingleton Scope = "singleton"

	// ScopeTransient: a fresh instance on every resolution, never cached.
	ScopeTransient Scope = "transient"

	// ScopeRequest: one instance per request id, cached until the request's
	// instances are cleared.
	ScopeRequest Scope = "request"
)

// Valid reports whether s is one of the three recognized scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeSingleton, ScopeTransient, ScopeRequest:
		return true
	}
	return false
}

func (s Scope) String() string { return string(s) }

// ── Categories ───────────────────────────────────────────────────────────────

// Category classifies a declared component for registration ordering.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryService       Category = "service"
	CategoryProcessor     Category = "processor"
	CategoryController    Category = "controller"
	CategoryApplication   Category = "application-root"
)

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	switch c {
	case CategoryConfiguration, CategoryService, CategoryProcessor,
		CategoryController, CategoryApplication:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ScanOrder returns the fixed registration order: configuration sources
// first (so they can supply values to everything after them), then
// services, processors, controllers, and finally the application root.
func ScanOrder() []Category {
	return []Category{
		CategoryConfiguration,
		CategoryService,
		CategoryProcessor,
		CategoryController,
		CategoryApplication,
	}
}

// ── Routes ───────────────────────────────────────────────────────────────────

// Route describes one HTTP route declared by a controller: method, path
// pattern, and the name of the controller handler that serves it. The
// transport layer is responsible for turning descriptors into real routes.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// ── Construction ─────────────────────────────────────────────────────────────

// Constructor builds a component instance from its resolved dependencies.
// Dependencies arrive in the order they were declared.
type Constructor func(deps ...any) (any, error)

// ConfigSource is implemented by configuration components that produce
// values for other components to depend on. Each entry of the returned map
// is registered as a value provider under its token.
type ConfigSource interface {
	ConfigValues() map[Token]any
}
