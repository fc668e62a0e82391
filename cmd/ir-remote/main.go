// Command ir-remote captures IR remote control bursts on a GPIO line, turns
// them into button events with auto-repeat, and publishes them to MQTT.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}
