// Package config loads the tsqlrunner project configuration.
//
// The configuration lives in tsqlrunner.yaml at the project root and decides
// where the tSQLt distribution and the test definitions are found, how scripts
// are split and how the connection string is resolved.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
	"gopkg.in/yaml.v3"
)

// ErrConnectionNotConfigured is returned when the connection string variable is
// unset or blank and the connection policy requires it.
var ErrConnectionNotConfigured = errors.New("connection string is not configured")

type (
	// ConnectionPolicy decides what happens when the connection string
	// environment variable is unset or blank.
	ConnectionPolicy string

	// Framework locates the vendored tSQLt distribution.
	Framework struct {
		// Dir is the folder, relative to the project root, holding the distribution
		Dir string `yaml:"dir,omitempty"`

		// Prepare is the server preparation script inside Dir
		Prepare string `yaml:"prepare,omitempty"`

		// Install is the framework installation script inside Dir
		Install string `yaml:"install,omitempty"`
	}

	// Tests describes how test definition files are discovered.
	Tests struct {
		// Dir is searched recursively for test definition files
		Dir string `yaml:"dir,omitempty"`

		// Pattern is matched case-insensitively against file base names
		Pattern string `yaml:"pattern,omitempty"`

		// Class restricts the run to a single test class when set
		Class string `yaml:"class,omitempty"`
	}

	// Script controls how script files are split into batches.
	Script struct {
		// Trailing is "flush" or "drop" for content after the last GO
		Trailing string `yaml:"trailing,omitempty"`
	}

	// Connection controls how the connection string is resolved.
	Connection struct {
		// Env is the environment variable holding the connection string
		Env string `yaml:"env,omitempty"`

		// Policy is "required" (fail when Env is blank) or "fallback"
		Policy ConnectionPolicy `yaml:"policy,omitempty"`

		// Fallback is used by the fallback policy; defaults to a local development server
		Fallback string `yaml:"fallback,omitempty"`
	}

	// Config represents the project configuration.
	Config struct {
		Framework  Framework  `yaml:"framework"`
		Tests      Tests      `yaml:"tests"`
		Script     Script     `yaml:"script"`
		Connection Connection `yaml:"connection"`
	}
)

const (
	// PolicyRequired fails with ErrConnectionNotConfigured when the variable is blank
	PolicyRequired ConnectionPolicy = "required"

	// PolicyFallback uses Connection.Fallback when the variable is blank
	PolicyFallback ConnectionPolicy = "fallback"
)

// Default returns a configuration with every value set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a configuration from the provided io.Reader.
//
// Missing values are filled with their defaults and the result is validated.
//
// Example:
//
//	yamlData := `
//	tests:
//	  dir: tests
//	connection:
//	  policy: fallback
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Searching %s for %s\n", cfg.Tests.Dir, cfg.Tests.Pattern)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Connection.Policy {
	case PolicyRequired, PolicyFallback:
	default:
		return errors.Errorf("unknown connection policy: %q (expected %s or %s)",
			c.Connection.Policy, PolicyRequired, PolicyFallback)
	}

	if _, err := c.TrailingPolicy(); err != nil {
		return err
	}

	return nil
}

// TrailingPolicy returns the configured policy for content after the last GO.
func (c *Config) TrailingPolicy() (script.TrailingPolicy, error) {
	return script.ParseTrailingPolicy(c.Script.Trailing)
}

// Resolve returns the connection string according to the policy. getenv is
// usually os.Getenv.
//
// Example:
//
//	dsn, err := cfg.Connection.Resolve(os.Getenv)
//	if errors.Is(err, config.ErrConnectionNotConfigured) {
//		log.Fatal("set the connection string variable or use the fallback policy")
//	}
func (c Connection) Resolve(getenv func(string) string) (string, error) {
	name := c.Env
	if name == "" {
		name = consts.DefaultConnectionEnvVar
	}

	if dsn := strings.TrimSpace(getenv(name)); dsn != "" {
		return dsn, nil
	}

	if c.Policy == PolicyFallback {
		if c.Fallback != "" {
			return c.Fallback, nil
		}
		return consts.DefaultFallbackConnectionString, nil
	}

	return "", errors.Wrapf(ErrConnectionNotConfigured, "environment variable `%s` is not set", name)
}

func (c *Config) applyDefaults() {
	if c.Framework.Dir == "" {
		c.Framework.Dir = consts.DefaultFrameworkDir
	}
	if c.Framework.Prepare == "" {
		c.Framework.Prepare = consts.DefaultPrepareScript
	}
	if c.Framework.Install == "" {
		c.Framework.Install = consts.DefaultFrameworkScript
	}
	if c.Tests.Dir == "" {
		c.Tests.Dir = consts.DefaultTestsDir
	}
	if c.Tests.Pattern == "" {
		c.Tests.Pattern = consts.DefaultTestPattern
	}
	if c.Script.Trailing == "" {
		c.Script.Trailing = script.FlushTrailing.String()
	}
	if c.Connection.Env == "" {
		c.Connection.Env = consts.DefaultConnectionEnvVar
	}
	if c.Connection.Policy == "" {
		c.Connection.Policy = PolicyRequired
	}
	c.Connection.Policy = ConnectionPolicy(strings.ToLower(string(c.Connection.Policy)))
}
