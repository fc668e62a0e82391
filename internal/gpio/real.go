//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher watches a line on actual hardware using the GPIO character device.
type RealWatcher struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewRealWatcher requests the line as a pulled-up input with both edges
// reported to handler. IR receiver modules idle high and pull low on a mark.
func NewRealWatcher(chipName string, pin int, handler EdgeHandler) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("ir-remote"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithMonotonicEventClock,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			handler(evt.Timestamp)
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request IR pin %d: %w", pin, err)
	}

	return &RealWatcher{
		chip: chip,
		line: line,
		pin:  pin,
	}, nil
}

// Pin returns the line offset being watched.
func (w *RealWatcher) Pin() int {
	return w.pin
}

// Close releases GPIO resources.
// Reconfigures the line to a plain pulled-up input without edge detection
// before closing, so no further events are queued during shutdown.
func (w *RealWatcher) Close() error {
	var errs []error

	if w.line != nil {
		if err := w.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithoutEdges); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure IR pin: %w", err))
		}
		if err := w.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close IR pin: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
