// Package component defines the shared vocabulary of the framework:
// tokens, scopes, categories, route descriptors, component definitions,
// and the registry that records what an application has declared.
//
// Nothing in this package constructs instances. A Definition is a fact
// sheet — "this token names a service, it is a singleton, it depends on
// these tokens, and here is its constructor" — and the Registry is the
// bookkeeping that the scanner and the container read at startup.
//
// # Declaring components
//
//	mod := component.Module{
//	    Name: "billing",
//	    Definitions: []component.Definition{
//	        {
//	            Token:    "invoice-store",
//	            Category: component.CategoryService,
//	            Scope:    component.ScopeSingleton,
//	            New: func(deps ...any) (any, error) {
//	                return billing.NewInvoiceStore(), nil
//	            },
//	        },
//	        {
//	            Token:    "invoice-controller",
//	            Category: component.CategoryController,
//	            Scope:    component.ScopeRequest,
//	            Deps:     []component.Token{"invoice-store"},
//	            New: func(deps ...any) (any, error) {
//	                return billing.NewInvoiceController(deps[0].(*billing.InvoiceStore)), nil
//	            },
//	            Routes: []component.Route{
//	                {Method: "GET", Path: "/invoices/{id}", Handler: "Show"},
//	            },
//	        },
//	    },
//	}
//
// Categories exist for ordering: configuration sources are registered and
// instantiated before everything else so that the values they produce are
// available as dependencies, and the application root is registered last.
// ScanOrder returns that order.
package component
