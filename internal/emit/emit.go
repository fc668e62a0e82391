// Package emit hands finalized button events to their consumers.
package emit

import (
	"github.com/sirupsen/logrus"

	"github.com/sweeney/ir-remote/internal/logic"
)

// Sink consumes button events.
type Sink interface {
	Send(event logic.ButtonEvent) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(event logic.ButtonEvent) error

// Send calls f(event).
func (f SinkFunc) Send(event logic.ButtonEvent) error {
	return f(event)
}

type namedSink struct {
	name string
	sink Sink
}

// Emitter delivers each event to every registered sink in registration order.
// A failing sink is logged and does not stop delivery to the others.
type Emitter struct {
	sinks  []namedSink
	log    *logrus.Entry
	failed int
}

// New creates an Emitter without sinks.
func New() *Emitter {
	return &Emitter{log: logrus.WithField("component", "emit")}
}

// Add registers a sink under a name used in log messages.
func (e *Emitter) Add(name string, sink Sink) {
	e.sinks = append(e.sinks, namedSink{name: name, sink: sink})
}

// Emit delivers the event. A nil event means nothing was classified this
// cycle and is ignored.
func (e *Emitter) Emit(event *logic.ButtonEvent) {
	if event == nil {
		return
	}

	e.log.WithFields(logrus.Fields{
		"button": event.Button,
		"held":   event.Held,
		"firing": event.Firing,
	}).Info("button")

	for _, s := range e.sinks {
		if err := s.sink.Send(*event); err != nil {
			e.failed++
			e.log.WithError(err).WithField("sink", s.name).Warn("failed to deliver event")
		}
	}
}

// Failures returns the number of failed sink deliveries.
func (e *Emitter) Failures() int {
	return e.failed
}
