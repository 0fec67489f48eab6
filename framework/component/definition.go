package component

import (
	"fmt"
	"strings"
)

// ── Definitions ──────────────────────────────────────────────────────────────

// Definition is the declarative fact sheet for one component: its token,
// category, scope, the ordered list of constructor-dependency tokens, the
// constructor itself, and (for controllers) the routes it declares.
//
//	component.Definition{
//	    Token:    "greeting-service",
//	    Category: component.CategoryService,
//	    Scope:    component.ScopeSingleton,
//	    Deps:     []component.Token{"clock"},
//	    New: func(deps ...any) (any, error) {
//	        return app.NewGreetingService(deps[0].(*app.Clock)), nil
//	    },
//	}
type Definition struct {
	Token    Token
	Category Category
	Scope    Scope
	Deps     []Token
	New      Constructor
	Routes   []Route
}

// Validate checks the definition is well formed. A nil constructor is
// allowed: it declares a token that some other component (typically a
// configuration source) will supply later.
func (d Definition) Validate() error {
	if err := validToken(d.Token); err != nil {
		return err
	}
	if !d.Category.Valid() {
		return fmt.Errorf("component: definition [%s]: unknown category %q", d.Token, d.Category)
	}
	if !d.Scope.Valid() {
		return fmt.Errorf("component: definition [%s]: unknown scope %q", d.Token, d.Scope)
	}
	for _, dep := range d.Deps {
		if err := validToken(dep); err != nil {
			return fmt.Errorf("component: definition [%s]: %w", d.Token, err)
		}
	}
	if len(d.Routes) > 0 && d.Category != CategoryController {
		return fmt.Errorf("component: definition [%s]: routes declared on a %s", d.Token, d.Category)
	}
	for _, rt := range d.Routes {
		if rt.Method == "" || rt.Path == "" || rt.Handler == "" {
			return fmt.Errorf("component: definition [%s]: incomplete route %+v", d.Token, rt)
		}
	}
	return nil
}

const tokenExtraRunes = "-_./"

func validToken(t Token) error {
	if t == "" {
		return fmt.Errorf("component: empty token")
	}
	for _, r := range t {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(tokenExtraRunes, r):
		default:
			return fmt.Errorf("component: token %q contains invalid character %q", t, r)
		}
	}
	return nil
}

// ── Modules ──────────────────────────────────────────────────────────────────

// Module is a named, ordered list of definitions — the unit an application
// hands to the scanner.
type Module struct {
	Name        string
	Definitions []Definition
}
