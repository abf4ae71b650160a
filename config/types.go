package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/grovetools/pulse/errors"
	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultInterval is the polling period when none is configured.
	DefaultInterval = time.Second

	// TransportHTTP posts each report as a separate request.
	TransportHTTP = "http"
	// TransportWebSocket writes reports to a long-lived websocket connection.
	TransportWebSocket = "websocket"
)

// EditorConfig configures how pulse attaches to the editor.
type EditorConfig struct {
	// Address is the Neovim RPC address (unix socket path or host:port).
	// Defaults to $NVIM, which Neovim exports to its child processes.
	Address string `yaml:"address,omitempty" toml:"address,omitempty" json:"address,omitempty" jsonschema:"description=Neovim RPC address (socket path or host:port)"`
}

// Config is the pulse configuration loaded from pulse.yml or pulse.toml.
type Config struct {
	Version   string       `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`
	Target    string       `yaml:"target,omitempty" toml:"target,omitempty" json:"target,omitempty" jsonschema:"description=Collector URL reports are sent to"`
	Token     string       `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty" jsonschema:"description=Bearer token sent with every report"`
	Transport string       `yaml:"transport,omitempty" toml:"transport,omitempty" json:"transport,omitempty" jsonschema:"description=Report transport; inferred from the target scheme when empty,enum=http,enum=websocket"`
	Interval  string       `yaml:"interval,omitempty" toml:"interval,omitempty" json:"interval,omitempty" jsonschema:"description=Polling period as a Go duration (default 1s)"`
	Timeout   string       `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Optional per-report timeout as a Go duration; empty means none"`
	Exclude   []string     `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty" jsonschema:"description=Additional gitignore-style patterns that are never reported"`
	Editor    EditorConfig `yaml:"editor,omitempty" toml:"editor,omitempty" json:"editor,omitempty" jsonschema:"description=Editor connection settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`

	// Sources lists the files merged into this config, lowest precedence first.
	Sources []string `yaml:"-" toml:"-" json:"-" jsonschema:"-"`
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Interval == "" {
		c.Interval = DefaultInterval.String()
	}
	if c.Transport == "" {
		c.Transport = inferTransport(c.Target)
	}
}

func inferTransport(target string) string {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		return TransportWebSocket
	}
	return TransportHTTP
}

// Validate performs semantic validation that the schema cannot express.
func (c *Config) Validate() error {
	if c.Target != "" {
		u, err := url.Parse(c.Target)
		if err != nil || u.Host == "" {
			return errors.ConfigInvalid(fmt.Sprintf("target %q is not an absolute URL", c.Target)).
				WithDetail("field", "target")
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unsupported target scheme %q", u.Scheme)).
				WithDetail("field", "target")
		}
	}

	if d, err := parseDuration(c.Interval); err != nil || (c.Interval != "" && d <= 0) {
		return errors.ConfigInvalid(fmt.Sprintf("interval %q must be a positive duration", c.Interval)).
			WithDetail("field", "interval")
	}

	if d, err := parseDuration(c.Timeout); err != nil || d < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("timeout %q must be a non-negative duration", c.Timeout)).
			WithDetail("field", "timeout")
	}

	for _, pattern := range c.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return errors.ConfigInvalid("exclude patterns cannot be empty").WithDetail("field", "exclude")
		}
	}

	return nil
}

// PollInterval returns the parsed polling period.
func (c *Config) PollInterval() time.Duration {
	d, err := parseDuration(c.Interval)
	if err != nil || d <= 0 {
		return DefaultInterval
	}
	return d
}

// ReportTimeout returns the parsed per-report timeout, zero meaning none.
func (c *Config) ReportTimeout() time.Duration {
	d, _ := parseDuration(c.Timeout)
	return d
}

// HasCredentials reports whether both a target and a token are configured.
func (c *Config) HasCredentials() bool {
	return c.Target != "" && c.Token != ""
}

// CheckCredentials returns a MISSING_CREDENTIALS error naming the first
// missing field.
func (c *Config) CheckCredentials() error {
	if c.Target == "" {
		return errors.MissingCredentials("target")
	}
	if c.Token == "" {
		return errors.MissingCredentials("token")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cpy := *c
	if cpy.Token != "" {
		cpy.Token = "********"
	}
	return &cpy
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded pulse.yml into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
