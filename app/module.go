// Package app is the demo application: a small greetings API that
// exercises every component category and scope the framework offers.
//
// The component graph:
//
//	settings (configuration) ──▶ greeting.salutation, app.motd
//	clock (service, singleton)
//	visit-log (service, singleton)      ← clock, logger
//	greeter (service, singleton)        ← greeting.salutation, visit-log
//	name-formatter (processor, singleton)
//	card-press (service, transient)     ← clock, logger
//	audit-trail (service, request)      ← clock, logger
//	greetings-controller (controller, request) ← greeter, name-formatter,
//	                                             audit-trail, card-press, visit-log
//	demo-app (application root)         ← app.motd, logger, greeter, visit-log
package app

import (
	"log/slog"

	armature "github.com/armature-dev/armature/framework/app"
	"github.com/armature-dev/armature/framework/component"
)

// Tokens for every component the demo declares, plus the configuration
// values its settings source produces.
const (
	TokenSettings   component.Token = "settings"
	TokenClock      component.Token = "clock"
	TokenVisitLog   component.Token = "visit-log"
	TokenGreeter    component.Token = "greeter"
	TokenFormatter  component.Token = "name-formatter"
	TokenCardPress  component.Token = "card-press"
	TokenAuditTrail component.Token = "audit-trail"
	TokenController component.Token = "greetings-controller"
	TokenRoot       component.Token = "demo-app"

	TokenSalutation component.Token = "greeting.salutation"
	TokenMOTD       component.Token = "app.motd"
)

// Module declares the demo's components for the scanner.
func Module() component.Module {
	return component.Module{
		Name: "greetings-demo",
		Definitions: []component.Definition{
			{
				Token:    TokenSettings,
				Category: component.CategoryConfiguration,
				Scope:    component.ScopeSingleton,
				New: func(deps ...any) (any, error) {
					return NewSettings(), nil
				},
			},
			{
				Token:    TokenClock,
				Category: component.CategoryService,
				Scope:    component.ScopeSingleton,
				New: func(deps ...any) (any, error) {
					return NewClock(), nil
				},
			},
			{
				Token:    TokenVisitLog,
				Category: component.CategoryService,
				Scope:    component.ScopeSingleton,
				Deps:     []component.Token{TokenClock, armature.TokenLogger},
				New: func(deps ...any) (any, error) {
					return NewVisitLog(deps[0].(*Clock), deps[1].(*slog.Logger)), nil
				},
			},
			{
				Token:    TokenGreeter,
				Category: component.CategoryService,
				Scope:    component.ScopeSingleton,
				Deps:     []component.Token{TokenSalutation, TokenVisitLog},
				New: func(deps ...any) (any, error) {
					return NewGreeter(deps[0].(string), deps[1].(*VisitLog)), nil
				},
			},
			{
				Token:    TokenFormatter,
				Category: component.CategoryProcessor,
				Scope:    component.ScopeSingleton,
				New: func(deps ...any) (any, error) {
					return NewNameFormatter(), nil
				},
			},
			{
				Token:    TokenCardPress,
				Category: component.CategoryService,
				Scope:    component.ScopeTransient,
				Deps:     []component.Token{TokenClock, armature.TokenLogger},
				New: func(deps ...any) (any, error) {
					return NewCardPress(deps[0].(*Clock), deps[1].(*slog.Logger)), nil
				},
			},
			{
				Token:    TokenAuditTrail,
				Category: component.CategoryService,
				Scope:    component.ScopeRequest,
				Deps:     []component.Token{TokenClock, armature.TokenLogger},
				New: func(deps ...any) (any, error) {
					return NewAuditTrail(deps[0].(*Clock), deps[1].(*slog.Logger)), nil
				},
			},
			{
				Token:    TokenController,
				Category: component.CategoryController,
				Scope:    component.ScopeRequest,
				Deps: []component.Token{
					TokenGreeter, TokenFormatter, TokenAuditTrail, TokenCardPress, TokenVisitLog,
				},
				New: func(deps ...any) (any, error) {
					return NewGreetingsController(
						deps[0].(*Greeter),
						deps[1].(*NameFormatter),
						deps[2].(*AuditTrail),
						deps[3].(*CardPress),
						deps[4].(*VisitLog),
					), nil
				},
				Routes: []component.Route{
					{Method: "GET", Path: "/greetings/{name}", Handler: "Show"},
					{Method: "POST", Path: "/greetings", Handler: "Create"},
					{Method: "GET", Path: "/visits", Handler: "Visits"},
				},
			},
			{
				Token:    TokenRoot,
				Category: component.CategoryApplication,
				Scope:    component.ScopeSingleton,
				Deps:     []component.Token{TokenMOTD, armature.TokenLogger, TokenGreeter, TokenVisitLog},
				New: func(deps ...any) (any, error) {
					return NewDemoApp(
						deps[0].(string),
						deps[1].(*slog.Logger),
						deps[2].(*Greeter),
						deps[3].(*VisitLog),
					), nil
				},
			},
		},
	}
}
