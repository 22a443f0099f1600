// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command deployec2 restarts the application on the instances of an Auto
// Scaling group when a lifecycle notification arrives.
//
// Without arguments it serves AWS Lambda invocations. With --event it handles
// the notification stored in the named file once and exits, which is how CI
// exercises it against a local AWS endpoint.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("deployec2.cmd")

func main() {
	os.Exit(Main(os.Args, NewHandler(), os.Stdout))
}

// Main runs the command with the given arguments and returns its exit code.
func Main(args []string, handler *Handler, stdout io.Writer) int {
	flags := gnuflag.NewFlagSet(args[0], gnuflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var eventFile string
	flags.StringVar(&eventFile, "event", "", "handle the notification in this file once instead of serving Lambda")
	if err := flags.Parse(true, args[1:]); err != nil {
		logger.Errorf("%v", err)
		return 2
	}
	if flags.NArg() != 0 {
		logger.Errorf("unrecognized args: %q", flags.Args())
		return 2
	}

	if eventFile == "" {
		lambda.Start(handler.Handle)
		return 0
	}

	payload, err := os.ReadFile(eventFile)
	if err != nil {
		logger.Errorf("reading event: %v", err)
		return 1
	}
	ok, err := handler.Handle(context.Background(), payload)
	if err := handler.Close(context.Background()); err != nil {
		logger.Warningf("flushing spans: %v", err)
	}
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	fmt.Fprintln(stdout, ok)
	return 0
}
