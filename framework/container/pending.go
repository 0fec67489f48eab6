package container

import (
	"slices"
	"strings"
	"time"

	"github.com/armature-dev/armature/framework/component"
)

// ── Pending records ──────────────────────────────────────────────────────────

// pendingResolution tracks one token through the deferred-resolution state
// machine. attempts counts failed retries; the record survives between
// top-level calls, so the retry budget is shared across them.
type pendingResolution struct {
	token    component.Token
	attempts int
	lastErr  error
	deps     []component.Token
	since    time.Time
}

// PendingResolution is a diagnostic snapshot of one pending record.
type PendingResolution struct {
	Token     component.Token
	Attempts  int
	LastError string
	Deps      []component.Token
	Since     time.Time
}

// ── Deferred retry ───────────────────────────────────────────────────────────

// deferRetry runs the bounded-retry state machine for a token whose
// resolution failed with an initialization-order error. The caller blocks:
// each retry waits out a backoff delay (doubling per attempt) and re-runs
// the resolution. Once the budget of deferredMaxAttempts retries is spent,
// the failure escalates to DeferredExhaustedError wrapping the last cause;
// the record then stays in place, failing fast on later calls, until a
// registration rescues the token or Reset clears the table.
func (c *Container) deferRetry(token component.Token, r *resolution, cause error) (any, error) {
	rec := c.pend(token, cause)

	for {
		c.mu.Lock()
		if rec.attempts >= deferredMaxAttempts {
			attempts, lastErr := rec.attempts, rec.lastErr
			c.mu.Unlock()
			c.countFailure()
			return nil, &DeferredExhaustedError{Token: token, Attempts: attempts, Cause: lastErr}
		}
		rec.attempts++
		attempt := rec.attempts
		c.mu.Unlock()

		delay := c.backoff(attempt)
		c.log.Debug("deferring resolution", "token", token, "attempt", attempt, "delay", delay)
		c.countRetry()
		time.Sleep(delay)

		v, err := c.resolve(token, r)
		if err == nil {
			c.clearPending(token)
			c.log.Debug("deferred resolution succeeded", "token", token, "attempt", attempt)
			return v, nil
		}

		c.mu.Lock()
		rec.lastErr = err
		c.mu.Unlock()

		if !isInitializationOrder(err) {
			c.countFailure()
			return nil, err
		}
	}
}

// pend returns the pending record for token, creating it on first failure.
func (c *Container) pend(token component.Token, cause error) *pendingResolution {
	deps := c.declaredDeps(token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if rec, ok := c.pending[token]; ok {
		rec.lastErr = cause
		return rec
	}
	rec := &pendingResolution{
		token:   token,
		lastErr: cause,
		deps:    deps,
		since:   time.Now(),
	}
	c.pending[token] = rec
	return rec
}

// declaredDeps returns the dependency tokens declared for token — from the
// registered provider if one exists, otherwise from its definition.
func (c *Container) declaredDeps(token component.Token) []component.Token {
	if p, ok := c.provider(token); ok && len(p.Deps) > 0 {
		return append([]component.Token(nil), p.Deps...)
	}
	if c.defs != nil {
		if def, ok := c.defs.Definition(token); ok {
			return append([]component.Token(nil), def.Deps...)
		}
	}
	return nil
}

func (c *Container) clearPending(token component.Token) {
	c.mu.Lock()
	delete(c.pending, token)
	c.mu.Unlock()
}

// backoff returns the delay before retry number attempt: the configured
// initial delay doubled per attempt, capped at maxRetryDelay.
func (c *Container) backoff(attempt int) time.Duration {
	d := c.retryDelay << (attempt - 1)
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// ── Mop-up & diagnostics ─────────────────────────────────────────────────────

// ResolvePending attempts one resolution of every currently pending token.
// Successes clear their records; failures are logged and recorded, never
// returned. Retry budgets are left untouched — this is a mop-up sweep, not
// another round of the state machine.
func (c *Container) ResolvePending() {
	c.mu.RLock()
	tokens := make([]component.Token, 0, len(c.pending))
	for t := range c.pending {
		tokens = append(tokens, t)
	}
	c.mu.RUnlock()

	for _, token := range tokens {
		c.countResolution()
		if _, err := c.resolve(token, &resolution{}); err != nil {
			c.mu.Lock()
			if rec, ok := c.pending[token]; ok {
				rec.lastErr = err
			}
			c.mu.Unlock()
			c.log.Warn("pending resolution still failing", "token", token, "error", err)
			continue
		}
		c.clearPending(token)
		c.log.Info("pending resolution recovered", "token", token)
	}
}

// PendingResolutions returns a snapshot of the deferred-resolution table,
// sorted by token.
func (c *Container) PendingResolutions() []PendingResolution {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PendingResolution, 0, len(c.pending))
	for _, rec := range c.pending {
		pr := PendingResolution{
			Token:    rec.token,
			Attempts: rec.attempts,
			Deps:     append([]component.Token(nil), rec.deps...),
			Since:    rec.since,
		}
		if rec.lastErr != nil {
			pr.LastError = rec.lastErr.Error()
		}
		out = append(out, pr)
	}
	slices.SortFunc(out, func(a, b PendingResolution) int {
		return strings.Compare(string(a.Token), string(b.Token))
	})
	return out
}
