// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bytes"
	"os"
	"path/filepath"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type mainSuite struct {
	baseSuite
}

var _ = gc.Suite(&mainSuite{})

func (s *mainSuite) TestRunEventFile(c *gc.C) {
	path := filepath.Join(c.MkDir(), "event.json")
	err := os.WriteFile(path, notificationPayload(c, "WarmPool"), 0644)
	c.Assert(err, jc.ErrorIsNil)

	var stdout bytes.Buffer
	code := Main([]string{"deployec2", "--event", path}, s.handler, &stdout)
	c.Check(code, gc.Equals, 0)
	c.Check(stdout.String(), gc.Equals, "true\n")
	c.Check(s.services.completed, gc.HasLen, 2)
}

func (s *mainSuite) TestRunMissingEventFile(c *gc.C) {
	var stdout bytes.Buffer
	code := Main([]string{"deployec2", "--event", filepath.Join(c.MkDir(), "missing.json")}, s.handler, &stdout)
	c.Check(code, gc.Equals, 1)
	c.Check(stdout.String(), gc.Equals, "")
}

func (s *mainSuite) TestRunFailedRollout(c *gc.C) {
	path := filepath.Join(c.MkDir(), "event.json")
	err := os.WriteFile(path, []byte("not json"), 0644)
	c.Assert(err, jc.ErrorIsNil)

	var stdout bytes.Buffer
	code := Main([]string{"deployec2", "--event", path}, s.handler, &stdout)
	c.Check(code, gc.Equals, 1)
}

func (s *mainSuite) TestUnknownFlag(c *gc.C) {
	code := Main([]string{"deployec2", "--bogus"}, s.handler, &bytes.Buffer{})
	c.Check(code, gc.Equals, 2)
}

func (s *mainSuite) TestExtraArgs(c *gc.C) {
	code := Main([]string{"deployec2", "--event", "a.json", "b.json"}, s.handler, &bytes.Buffer{})
	c.Check(code, gc.Equals, 2)
}
