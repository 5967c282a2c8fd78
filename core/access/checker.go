package access

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

// IdentityProvider resolves the current authenticated principal.
// A (nil, nil) return means the request is unauthenticated; an error means
// resolution itself failed and the caller must fail closed.
type IdentityProvider interface {
	GetIdentity(ctx context.Context) (*Principal, error)
	Logout(ctx context.Context) error
}

// Checker evaluates access for the current principal. Identity resolution is
// bounded by a timeout so a stuck lookup resolves to a denial instead of
// leaving callers pending forever.
type Checker struct {
	identity IdentityProvider
	timeout  time.Duration
	logger   core.Logger
}

func NewChecker(identity IdentityProvider, timeout time.Duration, logger core.Logger) *Checker {
	return &Checker{
		identity: identity,
		timeout:  timeout,
		logger:   logger,
	}
}

// Can resolves the principal and evaluates (resource, action) against policy.
// It never returns an error: unauthenticated requests deny with
// ReasonNotAuthenticated, and identity faults (lookup error, timeout, panic)
// deny with ReasonEvaluationFault.
func (c *Checker) Can(ctx context.Context, resource, action string, rec ...*Record) Decision {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		principal *Principal
		err       error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: errors.Errorf("identity lookup panic: %v", r)}
			}
		}()
		p, err := c.identity.GetIdentity(ctx)
		ch <- result{principal: p, err: err}
	}()

	select {
	case <-ctx.Done():
		c.logError("access: identity resolution timed out", ctx.Err())
		return Deny(ReasonEvaluationFault)
	case res := <-ch:
		if res.err != nil {
			c.logError("access: identity resolution failed", res.err)
			return Deny(ReasonEvaluationFault)
		}
		return Evaluate(res.principal, resource, action, rec...)
	}
}

func (c *Checker) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Error(msg, err)
	}
}
