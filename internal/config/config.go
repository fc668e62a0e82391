// Package config loads the daemon configuration: built-in defaults, then an
// optional YAML file, then command line overrides applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/sweeney/ir-remote/internal/decoder"
	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/logic"
)

// Config holds the daemon configuration.
type Config struct {
	Chip        string                 `yaml:"chip"`
	Pin         int                    `yaml:"pin"`
	PollMs      int64                  `yaml:"poll_ms"`
	HeartbeatMs int64                  `yaml:"heartbeat_ms"`
	Broker      string                 `yaml:"broker"`
	ClientID    string                 `yaml:"client_id"`
	HTTP        string                 `yaml:"http"`
	LogLevel    string                 `yaml:"log_level"`
	Buttons     map[string]Fingerprint `yaml:"buttons,omitempty"`
}

// Fingerprint is a calibration value. In YAML it may be written as an
// integer or as a quoted string such as "0x269E0D37".
type Fingerprint uint32

// UnmarshalYAML accepts integers and numeric strings in any base.
func (f *Fingerprint) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n uint32
	if err := unmarshal(&n); err == nil {
		*f = Fingerprint(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid fingerprint %q", s)
	}
	*f = Fingerprint(v)
	return nil
}

// MarshalYAML writes the fingerprint in hex.
func (f Fingerprint) MarshalYAML() (interface{}, error) {
	return logic.FormatFingerprint(uint32(f)), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chip:        gpio.DefaultChip,
		Pin:         gpio.DefaultPin,
		PollMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://localhost:1883",
		ClientID:    "ir-remote",
		HTTP:        ":80",
		LogLevel:    "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := yaml.NewDecoder(file).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file %q: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Chip == "" {
		return errors.New("chip must be set")
	}
	if c.Pin < 0 {
		return fmt.Errorf("pin must be >= 0, got %d", c.Pin)
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be > 0, got %d", c.PollMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must be >= 0, got %d", c.HeartbeatMs)
	}
	if c.Broker == "" {
		return errors.New("broker must be set")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("buttons: %w", err)
	}
	return nil
}

// Poll returns the main loop interval.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

// Heartbeat returns the heartbeat interval; zero disables heartbeats.
func (c *Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}

// Level returns the configured log level, or info when it does not parse.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Table returns the calibration table. Without a buttons section the table of
// the development remote is used.
func (c *Config) Table() (decoder.Table, error) {
	if len(c.Buttons) == 0 {
		return decoder.DefaultTable(), nil
	}
	byName := make(map[string]uint32, len(c.Buttons))
	for name, fp := range c.Buttons {
		byName[name] = uint32(fp)
	}
	return decoder.NewTable(byName)
}

// Dump renders the configuration as YAML, with the effective calibration
// table written out.
func (c *Config) Dump() ([]byte, error) {
	out := *c
	if len(out.Buttons) == 0 {
		out.Buttons = make(map[string]Fingerprint)
		for fp, b := range decoder.DefaultTable() {
			out.Buttons[string(b)] = Fingerprint(fp)
		}
	}
	return yaml.Marshal(&out)
}
