// Package lifecycle manages component lifecycle hooks and ordered teardown.
//
// Components opt into lifecycle participation by implementing any of four
// interfaces:
//
//	Initializable     — OnInit() error, runs once after construction
//	Destroyable       — OnDestroy() error, runs at cleanup or shutdown
//	RequestStartable  — OnRequestStart(requestID string) error, request scope only
//	RequestEndable    — OnRequestEnd() error, runs when the request ends
//
// The Registry records every instance handed to Apply that has teardown
// work, bucketed by scope. Cleanup entry points release those records:
//
//	reg.CleanupRequest("req-42") // OnRequestEnd then OnDestroy, per instance
//	reg.CleanupTransient()       // OnDestroy on accumulated transients
//	reg.Shutdown()               // requests, transients, then singletons
//
// Singletons are destroyed in reverse registration order. Hook errors are
// logged and swallowed: one misbehaving component must not prevent the
// rest of the application from starting or stopping.
package lifecycle
