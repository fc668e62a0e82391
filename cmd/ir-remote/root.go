package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/ir-remote/internal/config"
)

// flags holds command line values. They override the config file only when
// given explicitly.
type flags struct {
	configFile string
	chip       string
	pin        int
	poll       time.Duration
	heartbeat  time.Duration
	broker     string
	clientID   string
	httpAddr   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	def := config.Default()

	root := &cobra.Command{
		Use:   "ir-remote",
		Short: "IR remote receiver daemon",
		Long: `ir-remote watches a demodulating IR receiver on a GPIO line, fingerprints
each burst, and publishes button presses (with auto-repeat while held) to MQTT.

Configuration is read from --config (YAML) and can be overridden by flags.
Use "ir-remote learn" to record fingerprints for a new remote.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&f.chip, "chip", def.Chip, "GPIO chip name")
	pf.IntVar(&f.pin, "pin", def.Pin, "GPIO line offset of the IR receiver")
	pf.DurationVar(&f.poll, "poll", def.Poll(), "decoder polling interval")
	pf.DurationVar(&f.heartbeat, "heartbeat", def.Heartbeat(), "heartbeat interval (0 to disable)")
	pf.StringVar(&f.broker, "broker", def.Broker, "MQTT broker address")
	pf.StringVar(&f.clientID, "client-id", def.ClientID, "MQTT client ID")
	pf.StringVar(&f.httpAddr, "http", def.HTTP, "HTTP status address (empty to disable)")
	pf.StringVar(&f.logLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newLearnCmd(f), newConfigCmd(f))
	return root
}

func newConfigCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			data, err := cfg.Dump()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// loadConfig reads the config file, applies explicit flags, validates the
// result and sets the log level.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("chip") {
		cfg.Chip = f.chip
	}
	if changed("pin") {
		cfg.Pin = f.pin
	}
	if changed("poll") {
		cfg.PollMs = f.poll.Milliseconds()
	}
	if changed("heartbeat") {
		cfg.HeartbeatMs = f.heartbeat.Milliseconds()
	}
	if changed("broker") {
		cfg.Broker = f.broker
	}
	if changed("client-id") {
		cfg.ClientID = f.clientID
	}
	if changed("http") {
		cfg.HTTP = f.httpAddr
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logrus.SetLevel(cfg.Level())
	return cfg, nil
}
