// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

// invocationWriter prefixes every message with the invocation ID.
type invocationWriter struct {
	id     string
	writer loggo.Writer
}

func (w invocationWriter) Write(entry loggo.Entry) {
	entry.Message = fmt.Sprintf("[%s] %s", w.id, entry.Message)
	w.writer.Write(entry)
}

// newLoggingContext returns a logging context dedicated to one invocation,
// configured with spec and writing to out.
func newLoggingContext(id, spec string, out io.Writer) (*loggo.Context, error) {
	loggingContext := loggo.NewContext(loggo.INFO)
	if err := loggingContext.AddWriter("default", invocationWriter{
		id:     id,
		writer: loggo.NewSimpleWriter(out, loggo.DefaultFormatter),
	}); err != nil {
		return nil, errors.Trace(err)
	}
	if err := loggingContext.ConfigureLoggers(spec); err != nil {
		return nil, errors.Annotatef(err, "configuring loggers with %q", spec)
	}
	return loggingContext, nil
}
