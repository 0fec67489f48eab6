package app

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ── VisitLog (service, singleton) ────────────────────────────────────────────

// Visit is one recorded greeting.
type Visit struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// VisitLog remembers everyone who has been greeted since boot.
type VisitLog struct {
	mu     sync.Mutex
	clock  *Clock
	log    *slog.Logger
	visits []Visit
}

func NewVisitLog(clock *Clock, log *slog.Logger) *VisitLog {
	return &VisitLog{clock: clock, log: log}
}

func (v *VisitLog) OnInit() error {
	v.log.Info("visit log ready")
	return nil
}

func (v *VisitLog) OnDestroy() error {
	v.log.Info("visit log closed", "visits", v.Count())
	return nil
}

func (v *VisitLog) Record(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visits = append(v.visits, Visit{Name: name, At: v.clock.Now()})
}

func (v *VisitLog) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visits)
}

// Recent returns the latest n visits, newest first.
func (v *VisitLog) Recent(n int) []Visit {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n > len(v.visits) {
		n = len(v.visits)
	}
	out := make([]Visit, 0, n)
	for i := len(v.visits) - 1; i >= len(v.visits)-n; i-- {
		out = append(out, v.visits[i])
	}
	return out
}

// ── Greeter (service, singleton) ─────────────────────────────────────────────

// Greeter builds greeting lines and records each one in the visit log. The
// salutation comes from the settings source via its value token.
type Greeter struct {
	salutation string
	visits     *VisitLog
}

func NewGreeter(salutation string, visits *VisitLog) *Greeter {
	return &Greeter{salutation: salutation, visits: visits}
}

func (g *Greeter) Greet(name string) string {
	g.visits.Record(name)
	return fmt.Sprintf("%s, %s!", g.salutation, name)
}

// ── NameFormatter (processor, singleton) ─────────────────────────────────────

// NameFormatter normalizes raw visitor names: whitespace collapsed, each
// word capitalized.
type NameFormatter struct{}

func NewNameFormatter() *NameFormatter { return &NameFormatter{} }

func (f *NameFormatter) Format(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ── CardPress (service, transient) ───────────────────────────────────────────

// Card is a pressed greeting card.
type Card struct {
	Message   string    `json:"message"`
	Note      string    `json:"note,omitempty"`
	PressedAt time.Time `json:"pressed_at"`
}

// CardPress stamps greeting cards. Transient: every resolution gets a
// fresh press, reclaimed by the periodic sweep.
type CardPress struct {
	clock   *Clock
	log     *slog.Logger
	pressed int
}

func NewCardPress(clock *Clock, log *slog.Logger) *CardPress {
	return &CardPress{clock: clock, log: log}
}

func (p *CardPress) Press(message, note string) Card {
	p.pressed++
	return Card{Message: message, Note: note, PressedAt: p.clock.Now()}
}

func (p *CardPress) OnDestroy() error {
	p.log.Debug("card press scrapped", "pressed", p.pressed)
	return nil
}

// ── AuditTrail (service, request-scoped) ─────────────────────────────────────

// AuditTrail collects what happened during one request and flushes it as a
// single log line when the request ends.
type AuditTrail struct {
	clock     *Clock
	log       *slog.Logger
	requestID string
	started   time.Time
	entries   []string
}

func NewAuditTrail(clock *Clock, log *slog.Logger) *AuditTrail {
	return &AuditTrail{clock: clock, log: log}
}

func (a *AuditTrail) OnInit() error { return nil }

func (a *AuditTrail) OnRequestStart(requestID string) error {
	a.requestID = requestID
	a.started = a.clock.Now()
	return nil
}

func (a *AuditTrail) Note(event string) {
	a.entries = append(a.entries, event)
}

func (a *AuditTrail) OnRequestEnd() error {
	a.log.Info("audit trail",
		"request_id", a.requestID,
		"events", strings.Join(a.entries, "; "),
		"duration", a.clock.Now().Sub(a.started))
	return nil
}

func (a *AuditTrail) OnDestroy() error {
	a.entries = nil
	return nil
}
