// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"

	"github.com/pwsia/deployec2/core/remotecommand"
)

// retryPolicy is the fixed-delay, bounded policy shared by the dispatch and
// completion loops. All target hosts share one budget.
type retryPolicy struct {
	attempts int
	delay    time.Duration
	clock    clock.Clock
}

// call runs fn until it succeeds or the budget is spent. Failures carrying
// the expected code are not logged. It returns the number of attempts made.
func (p retryPolicy) call(ctx context.Context, logger loggo.Logger, op, expectedCode string, fn func() error) (int, error) {
	var attempts int
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			attempts++
			return fn()
		},
		NotifyFunc: func(err error, attempt int) {
			if remotecommand.ErrorCode(err) == expectedCode {
				return
			}
			logger.Warningf("%s failed (attempt %d of %d): %v", op, attempt, p.attempts, err)
		},
		Attempts: p.attempts,
		Delay:    p.delay,
		Clock:    p.clock,
		Stop:     ctx.Done(),
	})
	if err == nil {
		return attempts, nil
	}
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}
	return attempts, errors.Trace(err)
}

// wait sleeps for d or until the context is done.
func wait(ctx context.Context, clk clock.Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-clk.After(d):
	}
}

// exhausted releases the lifecycle hold and builds the error returned by a
// stage that gave up.
func exhausted(ctx context.Context, g *guard, logger loggo.Logger, stage Stage, attempts int, err error) error {
	code := remotecommand.ErrorCode(err)
	logger.Errorf("abort %s, too many errors (last error code %q): %v", stage, code, err)
	g.Release(ctx)
	return &ExhaustedError{
		Stage:    stage,
		Attempts: attempts,
		Code:     code,
		Err:      err,
	}
}
