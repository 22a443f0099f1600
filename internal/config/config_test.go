// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/pwsia/deployec2/internal/provider/ec2"
	"github.com/pwsia/deployec2/internal/rollout"
)

type configSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&configSuite{})

func (s *configSuite) TestDefault(c *gc.C) {
	cfg := Default()
	c.Check(cfg.Production, jc.IsTrue)
	c.Check(cfg.ScriptPath, gc.Equals, rollout.DefaultScriptPath)
	c.Check(cfg.DeleteStateFlag, gc.Equals, "--delete-db")
	c.Check(cfg.DocumentName, gc.Equals, ec2.DefaultDocumentName)
	c.Check(cfg.MaxAttempts, gc.Equals, 15)
	c.Check(cfg.RetryDelay, gc.Equals, 10*time.Second)
	c.Check(cfg.SettleDelay, gc.Equals, time.Minute)
	c.Check(cfg.IndexDelay, gc.Equals, 3*time.Second)
	c.Check(cfg.Validate(), jc.ErrorIsNil)
}

func (s *configSuite) TestLoadProductionWithoutCI(c *gc.C) {
	cfg, err := Load()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Production, jc.IsTrue)
	c.Check(cfg.LoggingConfig, gc.Equals, DefaultLoggingConfig)
}

func (s *configSuite) TestLoadCIIsNotProduction(c *gc.C) {
	s.PatchEnvironment(EnvCI, "true")

	cfg, err := Load()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Production, jc.IsFalse)
}

func (s *configSuite) TestLoadEmptyCIIsProduction(c *gc.C) {
	s.PatchEnvironment(EnvCI, "")

	cfg, err := Load()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.Production, jc.IsTrue)
}

func (s *configSuite) TestLoadEnvironmentOverrides(c *gc.C) {
	s.PatchEnvironment(EnvRegion, "eu-west-1")
	s.PatchEnvironment(EnvEndpoint, "http://localhost:4566")
	s.PatchEnvironment(EnvAccessKeyID, "test")
	s.PatchEnvironment(EnvSecretAccessKey, "secret")
	s.PatchEnvironment(EnvLoggingConfig, "<root>=DEBUG")
	s.PatchEnvironment(EnvOTLPEndpoint, "localhost:4317")
	s.PatchEnvironment(EnvPushgatewayURL, "http://localhost:9091")

	cfg, err := Load()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.ClientConfig(), jc.DeepEquals, ec2.ClientConfig{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	c.Check(cfg.LoggingConfig, gc.Equals, "<root>=DEBUG")
	c.Check(cfg.OTLPEndpoint, gc.Equals, "localhost:4317")
	c.Check(cfg.PushgatewayURL, gc.Equals, "http://localhost:9091")
}

func (s *configSuite) TestLoadFile(c *gc.C) {
	path := filepath.Join(c.MkDir(), "deployec2.yaml")
	err := os.WriteFile(path, []byte(`
script-path: /srv/app/restart.sh
max-attempts: 3
retry-delay: 2s
settle-delay: 0s
wait-timeout: 30s
region: us-east-2
`[1:]), 0644)
	c.Assert(err, jc.ErrorIsNil)
	s.PatchEnvironment(EnvConfigFile, path)
	s.PatchEnvironment(EnvRegion, "eu-west-1")

	cfg, err := Load()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(cfg.ScriptPath, gc.Equals, "/srv/app/restart.sh")
	c.Check(cfg.DeleteStateFlag, gc.Equals, rollout.DefaultDeleteStateFlag)
	c.Check(cfg.MaxAttempts, gc.Equals, 3)
	c.Check(cfg.RetryDelay, gc.Equals, 2*time.Second)
	c.Check(cfg.SettleDelay, gc.Equals, time.Duration(0))
	c.Check(cfg.IndexDelay, gc.Equals, rollout.DefaultIndexDelay)
	c.Check(cfg.CommandConfig(), jc.DeepEquals, ec2.CommandConfig{
		DocumentName: ec2.DefaultDocumentName,
		MaxWait:      30 * time.Second,
	})
	// The environment wins over the file.
	c.Check(cfg.Region, gc.Equals, "eu-west-1")
}

func (s *configSuite) TestLoadMissingFile(c *gc.C) {
	s.PatchEnvironment(EnvConfigFile, filepath.Join(c.MkDir(), "missing.yaml"))

	_, err := Load()
	c.Assert(err, gc.ErrorMatches, "reading config file: .*")
}

func (s *configSuite) TestLoadInvalidFile(c *gc.C) {
	path := filepath.Join(c.MkDir(), "deployec2.yaml")
	err := os.WriteFile(path, []byte("max-attempts: many\n"), 0644)
	c.Assert(err, jc.ErrorIsNil)
	s.PatchEnvironment(EnvConfigFile, path)

	_, err = Load()
	c.Assert(err, gc.ErrorMatches, `parsing ".*deployec2.yaml": (.|\n)*cannot unmarshal(.|\n)*`)
}

func (s *configSuite) TestLoadValidates(c *gc.C) {
	path := filepath.Join(c.MkDir(), "deployec2.yaml")
	err := os.WriteFile(path, []byte("max-attempts: 0\n"), 0644)
	c.Assert(err, jc.ErrorIsNil)
	s.PatchEnvironment(EnvConfigFile, path)

	_, err = Load()
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	c.Assert(err, gc.ErrorMatches, "max-attempts 0 not valid")
}

func (s *configSuite) TestValidate(c *gc.C) {
	tests := []struct {
		about  string
		patch  func(*Config)
		errMsg string
	}{{
		about:  "empty script",
		patch:  func(cfg *Config) { cfg.ScriptPath = "" },
		errMsg: "empty script-path not valid",
	}, {
		about:  "empty flag in production",
		patch:  func(cfg *Config) { cfg.DeleteStateFlag = "" },
		errMsg: "empty delete-state-flag not valid",
	}, {
		about: "empty flag outside production",
		patch: func(cfg *Config) {
			cfg.Production = false
			cfg.DeleteStateFlag = ""
		},
	}, {
		about:  "empty document",
		patch:  func(cfg *Config) { cfg.DocumentName = "" },
		errMsg: "empty document-name not valid",
	}, {
		about:  "negative retry delay",
		patch:  func(cfg *Config) { cfg.RetryDelay = -time.Second },
		errMsg: "retry-delay -1s not valid",
	}, {
		about:  "negative settle delay",
		patch:  func(cfg *Config) { cfg.SettleDelay = -time.Second },
		errMsg: "negative delay not valid",
	}, {
		about:  "zero wait timeout",
		patch:  func(cfg *Config) { cfg.WaitTimeout = 0 },
		errMsg: "wait-timeout 0s not valid",
	}, {
		about:  "access key without secret",
		patch:  func(cfg *Config) { cfg.AccessKeyID = "test" },
		errMsg: "partial static credentials not valid",
	}}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.about)
		cfg := Default()
		test.patch(&cfg)
		err := cfg.Validate()
		if test.errMsg == "" {
			c.Check(err, jc.ErrorIsNil)
			continue
		}
		c.Check(err, jc.ErrorIs, errors.NotValid)
		c.Check(err, gc.ErrorMatches, test.errMsg)
	}
}
