package routing

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/armature-dev/armature/framework/component"
	armhttp "github.com/armature-dev/armature/framework/http"
)

// Router wraps chi.Router with the framework's route helpers.
type Router struct {
	mux chi.Router
}

// New creates an empty Router. Attach middleware before registering the
// first route — chi rejects later Use calls.
func New() *Router {
	return &Router{mux: chi.NewRouter()}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Handle registers a handler for an arbitrary HTTP method.
func (r *Router) Handle(method, pattern string, h http.HandlerFunc) {
	r.mux.MethodFunc(method, pattern, h)
}

// Method registers a plain http.Handler for a specific method — useful
// for handlers that arrive as values, like the metrics endpoint.
func (r *Router) Method(method, pattern string, h http.Handler) {
	r.mux.Method(method, pattern, h)
}

// ── Groups & prefixes ────────────────────────────────────────────────────────

// Group creates an inline group whose middleware applies only to the
// routes registered inside fn.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router under a URL prefix.
//
//	router.Prefix("/api", func(r *routing.Router) {
//	    r.Get("/users", listUsers)
//	})
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Controllers ──────────────────────────────────────────────────────────────

// NamedHandlers is implemented by controllers that expose their handlers
// by name, binding declared route descriptors to real functions.
type NamedHandlers interface {
	HTTPHandler(name string) http.HandlerFunc
}

// ControllerResolver produces the controller instance serving a request.
type ControllerResolver func(token component.Token, requestID string) (any, error)

// Controller mounts a controller's declared routes. The controller is
// resolved per request with that request's id, so request-scoped
// controllers get a fresh instance per request while singletons are
// shared across all of them.
func (r *Router) Controller(token component.Token, routes []component.Route, resolve ControllerResolver) error {
	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		if !knownMethods[method] {
			return fmt.Errorf("routing: [%s] route %q: unknown method %q", token, route.Path, route.Method)
		}
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("routing: [%s] route %q must start with /", token, route.Path)
		}
		r.mux.MethodFunc(method, route.Path, dispatch(token, route.Handler, resolve))
	}
	return nil
}

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// dispatch resolves the controller for the current request and forwards
// to its named handler. Resolution detail is the resolver's to log; the
// client only sees which step failed.
func dispatch(token component.Token, handler string, resolve ControllerResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		instance, err := resolve(token, RequestIDFromContext(req.Context()))
		if err != nil {
			armhttp.NewResponse(w).ServerError(fmt.Sprintf("could not resolve controller [%s]", token))
			return
		}
		named, ok := instance.(NamedHandlers)
		if !ok {
			armhttp.NewResponse(w).ServerError(fmt.Sprintf("controller [%s] does not expose named handlers", token))
			return
		}
		h := named.HTTPHandler(handler)
		if h == nil {
			armhttp.NewResponse(w).ServerError(fmt.Sprintf("controller [%s] has no handler %q", token, handler))
			return
		}
		h(w, req)
	}
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL parameter bound by the route pattern.
//
//	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
//	    id := routing.Param(req, "id")
//	    ...
//	})
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be handed to an
// http.Server directly.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
