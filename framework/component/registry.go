package component

import (
	"fmt"
	"sync"
)

// ── Registry ─────────────────────────────────────────────────────────────────

// Registry records declared components by category, their definitions, the
// routes attached to controllers, and the single application root. It is
// purely additive bookkeeping: populated during startup, read thereafter.
// All methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	categories map[Category][]Token // insertion order preserved
	membership map[Token]Category
	defs       map[Token]Definition
	routes     map[Token][]Route
	appRoot    Token
	hasRoot    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[Category][]Token),
		membership: make(map[Token]Category),
		defs:       make(map[Token]Definition),
		routes:     make(map[Token][]Route),
	}
}

// Add records token under a category. Re-adding a token to the same
// category is a no-op; adding it to a different category is an error.
func (r *Registry) Add(category Category, token Token) error {
	if !category.Valid() {
		return fmt.Errorf("component: unknown category %q", category)
	}
	if err := validToken(token); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(category, token)
}

// add must be called with mu held.
func (r *Registry) add(category Category, token Token) error {
	if existing, ok := r.membership[token]; ok {
		if existing == category {
			return nil
		}
		return fmt.Errorf("component: [%s] already declared as %s, cannot redeclare as %s",
			token, existing, category)
	}
	r.membership[token] = category
	r.categories[category] = append(r.categories[category], token)
	if category == CategoryApplication {
		r.appRoot = token
		r.hasRoot = true
	}
	return nil
}

// Define records a full definition. Re-defining a token overwrites the
// previous definition and replaces its route list, so that a repeated scan
// does not accumulate duplicate routes. The category, once declared, is
// fixed.
func (r *Registry) Define(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.add(def.Category, def.Token); err != nil {
		return err
	}
	r.defs[def.Token] = def
	if def.Category == CategoryController {
		r.routes[def.Token] = append([]Route(nil), def.Routes...)
	}
	return nil
}

// RecordRoute appends a route descriptor to a controller's route list.
func (r *Registry) RecordRoute(controller Token, route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[controller] = append(r.routes[controller], route)
}

// SetApplicationRoot records the application root token. Last write wins.
func (r *Registry) SetApplicationRoot(token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appRoot = token
	r.hasRoot = true
}

// ── Reads ────────────────────────────────────────────────────────────────────

// Definition returns the recorded definition for token.
func (r *Registry) Definition(token Token) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[token]
	return def, ok
}

// Category returns the category a token was declared under.
func (r *Registry) Category(token Token) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.membership[token]
	return cat, ok
}

// Declared reports whether the token appears in any category.
func (r *Registry) Declared(token Token) bool {
	_, ok := r.Category(token)
	return ok
}

// Tokens returns the tokens declared under a category, in declaration order.
func (r *Registry) Tokens(category Category) []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Token(nil), r.categories[category]...)
}

// Routes returns the route descriptors recorded for a controller, in
// declaration order.
func (r *Registry) Routes(controller Token) []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Route(nil), r.routes[controller]...)
}

// ApplicationRoot returns the application root token, if one was declared.
func (r *Registry) ApplicationRoot() (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appRoot, r.hasRoot
}

// Len returns the total number of declared tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.membership)
}
