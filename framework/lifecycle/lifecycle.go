package lifecycle

// Lifecycle capability interfaces. A component opts in by implementing
// whichever hooks it needs; the registry detects them by type assertion.

// Initializable is called once, immediately after construction, for every
// scope.
type Initializable interface {
	OnInit() error
}

// Destroyable is called at teardown: request end for request-scoped
// instances, transient sweep or shutdown for the rest.
type Destroyable interface {
	OnDestroy() error
}

// RequestStartable is called for request-scoped instances only,
// immediately after construction and before first use.
type RequestStartable interface {
	OnRequestStart(requestID string) error
}

// RequestEndable is called for request-scoped instances only, when their
// request is torn down, before OnDestroy.
type RequestEndable interface {
	OnRequestEnd() error
}
