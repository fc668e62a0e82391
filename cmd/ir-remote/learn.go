package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/ir-remote/internal/capture"
	"github.com/sweeney/ir-remote/internal/decoder"
	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/logic"
)

func newLearnCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "Print the fingerprint of every captured burst",
		Long: `learn prints one line per capture, known or not, so a new remote can be
calibrated: press each button a few times and copy the stable fingerprint
into the buttons section of the config file. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return fmt.Errorf("load buttons: %w", err)
			}

			receiver := capture.NewReceiver(cfg.Pin)
			watcher, err := gpio.NewRealWatcher(cfg.Chip, cfg.Pin, receiver.HandleEdge)
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer watcher.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "listening on %s line %d, press buttons (Ctrl+C to stop)\n", cfg.Chip, cfg.Pin)

			ticker := time.NewTicker(cfg.Poll())
			defer ticker.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			dec := decoder.New(receiver, table, gpio.Monotonic)
			return learnLoop(dec, out, ticker.C, sigCh)
		},
	}
}

// learnLoop prints each capture until a signal arrives, then the statistics.
func learnLoop(dec *decoder.Decoder, out io.Writer, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case <-sig:
			fmt.Fprintf(out, "\n%s\n", dec.Stats().Long())
			return nil

		case <-tick:
			s, res := dec.Poll()
			switch res {
			case decoder.ResultDecoded:
				fmt.Fprintf(out, "%s  samples=%-3d  %s\n", logic.FormatFingerprint(s.Fingerprint), s.Samples, s.Button)
			case decoder.ResultUnknown:
				fmt.Fprintf(out, "%s  samples=%-3d  (unknown)\n", logic.FormatFingerprint(s.Fingerprint), s.Samples)
			}
		}
	}
}
