package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/ir-remote/internal/capture"
	"github.com/sweeney/ir-remote/internal/config"
	"github.com/sweeney/ir-remote/internal/decoder"
	"github.com/sweeney/ir-remote/internal/emit"
	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/mqtt"
	"github.com/sweeney/ir-remote/internal/status"
	"github.com/sweeney/ir-remote/internal/web"
)

func run(cfg *config.Config) error {
	table, err := cfg.Table()
	if err != nil {
		return fmt.Errorf("load buttons: %w", err)
	}

	// Capture starts as soon as the line is requested.
	receiver := capture.NewReceiver(cfg.Pin)
	watcher, err := gpio.NewRealWatcher(cfg.Chip, cfg.Pin, receiver.HandleEdge)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.Chip,
		Pin:         cfg.Pin,
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		Broker:      cfg.Broker,
		HTTPPort:    cfg.HTTP,
		Buttons:     len(table),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logrus.WithError(err).Warn("failed to publish startup event")
	} else {
		logrus.Info("published startup event")
	}

	hub := web.NewHub()
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logrus.Infof("http status server listening on %s", cfg.HTTP)
	}

	emitter := emit.New()
	emitter.Add("mqtt", emit.SinkFunc(publisher.Publish))
	emitter.Add("status", trackerSink(tracker))
	emitter.Add("web", hub)

	dec := decoder.New(receiver, table, gpio.Monotonic)

	logrus.WithFields(logrus.Fields{
		"chip":      cfg.Chip,
		"pin":       cfg.Pin,
		"poll":      cfg.Poll(),
		"broker":    cfg.Broker,
		"heartbeat": cfg.Heartbeat(),
		"buttons":   len(table),
	}).Info("started")

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := newLoop(dec, emitter, publisher, publisher, tracker, cfg.Heartbeat(), time.Now)
	return runLoop(l, ticker.C, sigCh)
}

func trackerSink(tracker *status.Tracker) emit.Sink {
	return emit.SinkFunc(func(ev logic.ButtonEvent) error {
		tracker.RecordEvent(ev)
		return nil
	})
}

// loop is the state owned by the main loop goroutine.
type loop struct {
	dec        *decoder.Decoder
	classifier *logic.Classifier
	emitter    *emit.Emitter
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  *logic.Heartbeat
	interval   time.Duration
	now        func() time.Time
}

func newLoop(dec *decoder.Decoder, emitter *emit.Emitter, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time) *loop {
	return &loop{
		dec:        dec,
		classifier: logic.NewClassifier(logic.DefaultRepeatConfig()),
		emitter:    emitter,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  logic.NewHeartbeat(now()),
		interval:   heartbeat,
		now:        now,
	}
}

func runLoop(l *loop, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			l.shutdown(s)
			return nil

		case <-tick:
			l.step()
		}
	}
}

// step runs one poll: at most one decode, classification and emission,
// followed by heartbeat and status bookkeeping.
func (l *loop) step() {
	t := l.now()

	if sig, ok := l.dec.Decode(); ok {
		if ev := l.classifier.Classify(sig); ev != nil {
			ev.Timestamp = t
			l.emitter.Emit(ev)
		}
	}

	if hb := l.heartbeat.Check(t, l.interval, l.classifier.EventCountsSnapshot()); hb != nil {
		stats := l.dec.Stats()
		logrus.WithFields(logrus.Fields{
			"uptime":  hb.Uptime.Truncate(time.Second),
			"presses": hb.Counts.Presses,
			"repeats": hb.Counts.Repeats,
		}).Infof("heartbeat: %s", stats.Long())

		hbEvent := mqtt.SystemEvent{
			Timestamp: hb.Timestamp,
			Event:     "HEARTBEAT",
			Retained:  true,
		}
		if l.tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				l.tracker.SetNetwork(net)
			}
			l.updateTracker()
			hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			logrus.WithError(err).Warn("heartbeat publish error")
		}
	}

	// Update status tracker for HTTP consumers
	if l.tracker != nil {
		l.updateTracker()
	}
}

func (l *loop) updateTracker() {
	l.tracker.Update(l.classifier.EventCountsSnapshot(), l.dec.Stats())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) shutdown(s os.Signal) {
	logrus.Infof("received %v, shutting down", s)
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		l.updateTracker()
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		logrus.WithError(err).Warn("failed to publish shutdown event")
	} else {
		logrus.Info("published shutdown event")
	}
	logrus.Infof("decoder: %s", l.dec.Stats().Long())
}
