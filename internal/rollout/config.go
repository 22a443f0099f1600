// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxAttempts bounds both the dispatch and the completion retry
	// loops.
	DefaultMaxAttempts = 15

	// DefaultRetryDelay is the pause between two failed attempts.
	DefaultRetryDelay = 10 * time.Second

	// DefaultSettleDelay lets a just launched host finish booting before
	// commands target it. Only applied in production.
	DefaultSettleDelay = time.Minute

	// DefaultIndexDelay gives the command service time to index a command
	// before its completion is queried.
	DefaultIndexDelay = 3 * time.Second

	// DefaultScriptPath is the restart script run on every target host.
	DefaultScriptPath = "/opt/work/restart.sh"

	// DefaultDeleteStateFlag makes the restart script drop the host's local
	// database so that it is restored from its replica.
	DefaultDeleteStateFlag = "--delete-db"
)

// Config holds the dependencies and tunables of an Orchestrator.
type Config struct {
	Commands CommandService
	Fleet    FleetManager

	// Production enables the warm pool filter, the settle delay and the
	// delete-state flag.
	Production bool

	ScriptPath      string
	DeleteStateFlag string

	MaxAttempts int
	RetryDelay  time.Duration
	SettleDelay time.Duration
	IndexDelay  time.Duration

	Clock   clock.Clock
	Logger  loggo.Logger
	Metrics *Collector
	Tracer  trace.Tracer
}

// Validate ensures that the config values are valid.
func (c Config) Validate() error {
	if c.Commands == nil {
		return errors.NotValidf("missing Commands")
	}
	if c.Fleet == nil {
		return errors.NotValidf("missing Fleet")
	}
	if c.ScriptPath == "" {
		return errors.NotValidf("empty ScriptPath")
	}
	if c.Production && c.DeleteStateFlag == "" {
		return errors.NotValidf("empty DeleteStateFlag in production")
	}
	if c.MaxAttempts <= 0 {
		return errors.NotValidf("MaxAttempts %d", c.MaxAttempts)
	}
	if c.RetryDelay <= 0 {
		return errors.NotValidf("RetryDelay %v", c.RetryDelay)
	}
	if c.SettleDelay < 0 {
		return errors.NotValidf("negative SettleDelay")
	}
	if c.IndexDelay < 0 {
		return errors.NotValidf("negative IndexDelay")
	}
	if c.Clock == nil {
		return errors.NotValidf("missing Clock")
	}
	if c.Metrics == nil {
		return errors.NotValidf("missing Metrics")
	}
	if c.Tracer == nil {
		return errors.NotValidf("missing Tracer")
	}
	return nil
}
