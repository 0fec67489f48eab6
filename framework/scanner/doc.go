// Package scanner turns declared component modules into live container
// registrations, in a deterministic order.
//
// Components declare what they are; the Scanner decides when they are
// registered. The order is fixed — configuration, services, processors,
// controllers, application root — so configuration values exist before
// anything that consumes them, and the application root is wired last,
// when everything it composes is already available.
//
//	sc := scanner.New(registry, engine)
//	sc.Add(app.Module())
//	if err := sc.Scan(); err != nil {
//	    log.Fatal(err)
//	}
//
// Scanning is eager for singletons: every one is resolved before Scan
// returns, so construction and OnInit failures abort startup with a
// precise error instead of surfacing mid-traffic. Anything left pending
// by ordering quirks gets one final mop-up pass at the end of the scan.
package scanner
