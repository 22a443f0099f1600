// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config loads the settings of a deployec2 invocation from an
// optional YAML file and the environment.
package config

import (
	"os"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/pwsia/deployec2/internal/provider/ec2"
	"github.com/pwsia/deployec2/internal/rollout"
)

const (
	// EnvConfigFile names the YAML file to read, if any.
	EnvConfigFile = "DEPLOYEC2_CONFIG"

	// EnvCI is set by CI and local runs. When it is unset or empty the
	// invocation is considered to run in production.
	EnvCI = "CI"

	EnvLoggingConfig   = "DEPLOYEC2_LOGGING_CONFIG"
	EnvRegion          = "AWS_REGION"
	EnvEndpoint        = "DEPLOYEC2_AWS_ENDPOINT"
	EnvAccessKeyID     = "DEPLOYEC2_AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "DEPLOYEC2_AWS_SECRET_ACCESS_KEY"
	EnvOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvPushgatewayURL  = "DEPLOYEC2_PUSHGATEWAY_URL"

	// DefaultLoggingConfig is the loggo configuration used when none is set.
	DefaultLoggingConfig = "<root>=INFO"
)

// Config holds the settings of one invocation.
type Config struct {
	Production bool `yaml:"-"`

	ScriptPath      string        `yaml:"script-path"`
	DeleteStateFlag string        `yaml:"delete-state-flag"`
	DocumentName    string        `yaml:"document-name"`
	MaxAttempts     int           `yaml:"max-attempts"`
	RetryDelay      time.Duration `yaml:"retry-delay"`
	SettleDelay     time.Duration `yaml:"settle-delay"`
	IndexDelay      time.Duration `yaml:"index-delay"`
	WaitTimeout     time.Duration `yaml:"wait-timeout"`

	LoggingConfig string `yaml:"logging-config"`

	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`

	OTLPEndpoint   string `yaml:"otlp-endpoint"`
	OTLPInsecure   bool   `yaml:"otlp-insecure"`
	PushgatewayURL string `yaml:"pushgateway-url"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Production:      true,
		ScriptPath:      rollout.DefaultScriptPath,
		DeleteStateFlag: rollout.DefaultDeleteStateFlag,
		DocumentName:    ec2.DefaultDocumentName,
		MaxAttempts:     rollout.DefaultMaxAttempts,
		RetryDelay:      rollout.DefaultRetryDelay,
		SettleDelay:     rollout.DefaultSettleDelay,
		IndexDelay:      rollout.DefaultIndexDelay,
		WaitTimeout:     ec2.DefaultMaxWait,
		LoggingConfig:   DefaultLoggingConfig,
	}
}

// Load builds the config from the defaults, the file named by
// DEPLOYEC2_CONFIG and then the environment, in that order of precedence.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Annotate(err, "reading config file")
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, errors.Annotatef(err, "parsing %q", path)
		}
	}

	cfg.Production = os.Getenv(EnvCI) == ""

	overrides := []struct {
		env    string
		target *string
	}{
		{EnvLoggingConfig, &cfg.LoggingConfig},
		{EnvRegion, &cfg.Region},
		{EnvEndpoint, &cfg.Endpoint},
		{EnvAccessKeyID, &cfg.AccessKeyID},
		{EnvSecretAccessKey, &cfg.SecretAccessKey},
		{EnvOTLPEndpoint, &cfg.OTLPEndpoint},
		{EnvPushgatewayURL, &cfg.PushgatewayURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// Parse reads YAML settings on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// Validate ensures that the config values are valid.
func (c Config) Validate() error {
	if c.ScriptPath == "" {
		return errors.NotValidf("empty script-path")
	}
	if c.Production && c.DeleteStateFlag == "" {
		return errors.NotValidf("empty delete-state-flag")
	}
	if c.DocumentName == "" {
		return errors.NotValidf("empty document-name")
	}
	if c.MaxAttempts <= 0 {
		return errors.NotValidf("max-attempts %d", c.MaxAttempts)
	}
	if c.RetryDelay <= 0 {
		return errors.NotValidf("retry-delay %v", c.RetryDelay)
	}
	if c.SettleDelay < 0 || c.IndexDelay < 0 {
		return errors.NotValidf("negative delay")
	}
	if c.WaitTimeout <= 0 {
		return errors.NotValidf("wait-timeout %v", c.WaitTimeout)
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.NotValidf("partial static credentials")
	}
	return nil
}

// ClientConfig returns the AWS client settings.
func (c Config) ClientConfig() ec2.ClientConfig {
	return ec2.ClientConfig{
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	}
}

// CommandConfig returns the SSM command service settings.
func (c Config) CommandConfig() ec2.CommandConfig {
	return ec2.CommandConfig{
		DocumentName: c.DocumentName,
		MaxWait:      c.WaitTimeout,
	}
}
