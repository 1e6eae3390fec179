// Command alsd periodically measures ambient light through a charge-time
// sensor and republishes each reading on an MQTT topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lisas/alsd/internal/config"
	"github.com/lisas/alsd/internal/device"
	"github.com/lisas/alsd/internal/logging"
	"github.com/lisas/alsd/internal/measure"
	"github.com/lisas/alsd/internal/mqtt"
	"github.com/lisas/alsd/internal/status"
	"github.com/lisas/alsd/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to alsd.json (default: search ., user config dir, /etc)")
	devicePath := flag.String("device", "", "Sensor character device path")
	rate := flag.Int("rate", 0, "Inter-measurement spacing in milliseconds")
	broker := flag.String("broker", "", "MQTT broker address")
	topic := flag.String("topic", "", "MQTT topic for measurements")
	backend := flag.String("backend", "", "Sensor backend: chardev|gpio")
	gpioChip := flag.String("gpio-chip", "", "GPIO chip for the gpio backend")
	gpioPin := flag.Int("gpio-pin", 0, "BCM pin number for the gpio backend")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")
	printValue := flag.Bool("print-value", false, "Take one measurement, print it, and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	verbose := flag.Bool("verbose", false, "Enable info logging")

	flag.Parse()

	log := logging.Setup(*debug, *verbose, logging.IsService())

	overrides := map[string]any{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			overrides["device"] = *devicePath
		case "rate":
			overrides["rate"] = *rate
		case "broker":
			overrides["mqtt.broker"] = *broker
		case "topic":
			overrides["mqtt.topic"] = *topic
		case "backend":
			overrides["backend"] = *backend
		case "gpio-chip":
			overrides["gpio.chip"] = *gpioChip
		case "gpio-pin":
			overrides["gpio.pin"] = *gpioPin
		case "http":
			overrides["http"] = *httpAddr
		}
	})

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, *printValue, log); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

// openPort selects the sensor backend from configuration. A failure here is
// startup-fatal: a missing or unreadable device is not retried.
func openPort(cfg *config.Config) (device.Port, error) {
	switch cfg.Backend {
	case config.BackendGPIO:
		return device.NewGPIOPort(cfg.GPIO.Chip, cfg.GPIO.Pin, cfg.GPIOTimeout())
	default:
		return device.OpenCharDev(cfg.Device)
	}
}

func run(cfg *config.Config, printValue bool, log zerolog.Logger) error {
	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("using configuration")
	}

	port, err := openPort(cfg)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer port.Close()

	// Print-value mode: one settle + read, no MQTT.
	if printValue {
		time.Sleep(measure.SettleDelay)
		m, err := port.Measure()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		if m.Undetectable {
			fmt.Println("undetectable")
		} else {
			fmt.Println(m.Value)
		}
		return nil
	}

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.Topic)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	period := measure.Period(cfg.RateDuration())

	tracker := status.NewTracker(time.Now(), status.Config{
		Device:   cfg.Device,
		Backend:  cfg.Backend,
		RateMs:   int64(cfg.Rate),
		PeriodMs: period.Milliseconds(),
		Broker:   cfg.MQTT.Broker,
		Topic:    cfg.MQTT.Topic,
		HTTPAddr: cfg.HTTP,
	})

	// Publish startup event with a full status snapshot.
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP).Msg("http status server listening")
	}

	log.Info().
		Str("broker", cfg.MQTT.Broker).
		Str("topic", cfg.MQTT.Topic).
		Str("backend", cfg.Backend).
		Dur("period", period).
		Msg("started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// The stop signal is honored at the idle boundary between cycles; a cycle
	// stuck in a multi-second dark read finishes first.
	reason := make(chan string, 1)
	go func() {
		s := <-sigCh
		log.Info().Str("signal", s.String()).Msg("shutting down on termination signal")
		reason <- signalName(s)
		cancel()
	}()

	cycle := measure.NewCycle(port, publisher, log)
	sched := measure.NewScheduler(period, func() measure.Result {
		res := cycle.Run()
		tracker.Record(res)
		tracker.SetMQTTConnected(publisher.IsConnected())
		return res
	}, log)

	state := &measure.State{}
	sched.Run(ctx, state)

	why := ""
	select {
	case why = <-reason:
	default:
	}
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap = tracker.Snapshot()
	shutdown := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     why,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", why),
	}
	if err := publisher.PublishSystem(shutdown); err != nil {
		log.Warn().Err(err).Msg("failed to publish shutdown event")
	}

	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
