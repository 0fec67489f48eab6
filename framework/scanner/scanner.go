package scanner

import (
	"fmt"
	"log/slog"

	"github.com/armature-dev/armature/framework/component"
	"github.com/armature-dev/armature/framework/container"
)

// ── Scanner ──────────────────────────────────────────────────────────────────

// Scanner walks declared component modules and registers them with the
// resolution engine in a fixed category order: configuration sources
// first, then services, processors, controllers, and the application
// root. Singletons are resolved eagerly as they are registered, so a
// component that cannot start fails the scan instead of the first request
// that happens to need it.
type Scanner struct {
	log      *slog.Logger
	registry *component.Registry
	engine   *container.Container
	modules  []component.Module
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger scan progress is reported to.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Scanner that records definitions in registry and
// registers providers with engine.
func New(registry *component.Registry, engine *container.Container, opts ...Option) *Scanner {
	s := &Scanner{
		log:      slog.Default(),
		registry: registry,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add queues modules for the next Scan. Modules are processed in the
// order they were added.
func (s *Scanner) Add(mods ...component.Module) {
	s.modules = append(s.modules, mods...)
}

// ── Scanning ─────────────────────────────────────────────────────────────────

// Scan records every queued definition, registers a provider for each
// constructible one in category order, then bootstraps: configuration
// sources are instantiated and their values registered, and every
// singleton is resolved eagerly. Re-invoking Scan re-registers
// everything, overwriting prior providers and rebuilding singletons;
// redefined controllers get their route lists replaced rather than
// accumulated.
func (s *Scanner) Scan() error {
	// Phase 0: every definition lands in the component registry before
	// anything else happens, so the engine's auto-registration and the
	// later phases see the full picture.
	for _, mod := range s.modules {
		for _, def := range mod.Definitions {
			if err := s.registry.Define(def); err != nil {
				return fmt.Errorf("scanner: defining [%s] from module %s: %w", def.Token, mod.Name, err)
			}
		}
	}

	// Phase 1: register providers. Nothing is constructed yet, so a
	// component may freely depend on tokens from later categories.
	registered := 0
	for _, category := range component.ScanOrder() {
		for _, token := range s.registry.Tokens(category) {
			def, ok := s.registry.Definition(token)
			if !ok || def.New == nil {
				// Declared but not constructible: stays unresolved until
				// something registers a provider for it explicitly.
				continue
			}
			if err := s.engine.Register(token, container.Construct(def.Scope, def.New, def.Deps...)); err != nil {
				return fmt.Errorf("scanner: registering [%s]: %w", token, err)
			}
			registered++
			s.log.Debug("registered component",
				"token", token, "category", category, "scope", def.Scope)
		}
	}

	// Phase 2: bootstrap. Configuration sources run first so their values
	// exist before any consumer is constructed; then singletons are
	// resolved eagerly, category by category, so startup failures surface
	// here instead of on first use.
	values := 0
	for _, category := range component.ScanOrder() {
		for _, token := range s.registry.Tokens(category) {
			def, ok := s.registry.Definition(token)
			if !ok || def.New == nil {
				continue
			}
			switch {
			case category == component.CategoryConfiguration:
				n, err := s.loadConfiguration(token)
				if err != nil {
					return err
				}
				values += n
			case def.Scope == component.ScopeSingleton:
				if _, err := s.engine.Resolve(token); err != nil {
					return fmt.Errorf("scanner: bootstrapping [%s]: %w", token, err)
				}
			}
		}
	}

	s.engine.ResolvePending()
	s.log.Info("component scan complete",
		"declared", s.registry.Len(), "registered", registered, "values", values)
	return nil
}

// loadConfiguration instantiates a configuration source immediately —
// whatever its declared scope — and registers each of its produced values
// as a singleton value provider, so later categories can depend on them
// by token.
func (s *Scanner) loadConfiguration(token component.Token) (int, error) {
	instance, err := s.engine.Resolve(token)
	if err != nil {
		return 0, fmt.Errorf("scanner: loading configuration source [%s]: %w", token, err)
	}

	source, ok := instance.(component.ConfigSource)
	if !ok {
		return 0, nil
	}

	n := 0
	for valueToken, value := range source.ConfigValues() {
		if err := s.engine.Register(valueToken, container.Value(value)); err != nil {
			return n, fmt.Errorf("scanner: registering value [%s] from [%s]: %w", valueToken, token, err)
		}
		n++
		s.log.Debug("registered configuration value", "token", valueToken, "source", token)
	}
	return n, nil
}
