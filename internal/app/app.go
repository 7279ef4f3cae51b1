// v2
// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ssacity/api/internal/breaker"
	"ssacity/api/internal/city"
	"ssacity/api/internal/config"
	httpserver "ssacity/api/internal/http"
	"ssacity/api/internal/metrics"
	"ssacity/api/internal/rng"
	"ssacity/api/internal/seed"
	"ssacity/api/internal/simulator"
	"ssacity/api/internal/telemetry"
	"ssacity/api/internal/updater"
)

// ServiceName is reported in logs and on the banner route.
const ServiceName = "ssacity-api"

// Version is overridden at link time.
var Version = "dev"

// component is a background loop that runs until its context ends.
type component struct {
	name string
	run  func(ctx context.Context) error
}

type componentResult struct {
	name string
	err  error
}

// Application wires configuration, logging, the simulators, telemetry and
// the HTTP server, and owns graceful shutdown.
type Application struct {
	cfg        config.Config
	logger     *zap.Logger
	logFile    *os.File
	server     *http.Server
	health     *httpserver.HealthState
	sim        *simulator.Simulator
	metrics    *metrics.Metrics
	fanout     *telemetry.Fanout
	commands   *telemetry.CommandConsumer
	components []component
}

// New builds a fully wired instance. Optional sinks that cannot be reached
// at startup are logged and left out.
func New(cfg config.Config) (*Application, error) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return nil, errors.New("listen address cannot be empty")
	}
	logPath := filepath.Clean(cfg.LogFilePath)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := newLogger(os.Stdout, lf, cfg.LogLevel, ServiceName)

	tables, err := seed.Load(cfg.SeedPath)
	if err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("load seed tables: %w", err)
	}

	src := rng.New(cfg.Seed)
	sim, err := simulator.New(tables, simulator.Options{
		Random: src,
		Logger: logger.With(zap.String("component", "simulator")),
	})
	if err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("simulator init: %w", err)
	}
	cityview := city.New(tables, src, nil)
	m := metrics.New()

	a := &Application{
		cfg:     cfg,
		logger:  logger,
		logFile: lf,
		health:  httpserver.NewHealthState(),
		sim:     sim,
		metrics: m,
	}

	a.fanout = telemetry.NewFanout(logger.With(zap.String("component", "telemetry")), m, a.buildSinks()...)

	tickLogger := logger.With(zap.String("component", "updater"))
	upd, err := updater.New(sim, cfg.TickInterval, a.fanout, m, tickLogger)
	if err != nil {
		_ = a.fanout.Close()
		_ = lf.Close()
		return nil, fmt.Errorf("updater init: %w", err)
	}
	a.components = append(a.components, component{name: "updater", run: upd.Run})

	if cfg.KafkaEnabled() && cfg.CommandTopic != "" {
		a.commands = telemetry.NewCommandConsumer(
			cfg.KafkaBrokers, cfg.CommandTopic, cfg.CommandGroupID,
			sim, m, logger.With(zap.String("component", "command_consumer")),
		)
		a.components = append(a.components, component{name: "command_consumer", run: a.commands.Run})
	}

	handlers := &httpserver.Handlers{
		Log:     logger.With(zap.String("component", "http")),
		Bins:    sim,
		City:    cityview,
		State:   a.health,
		Service: ServiceName,
		Version: Version,
	}
	a.server = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           httpserver.NewHandler(handlers, m),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPWriteTimeout,
	}

	logger.Info("app_configured",
		zap.Int64("seed", src.Seed()),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Int("telemetry_sinks", a.fanout.Len()),
		zap.Bool("command_consumer", a.commands != nil),
	)
	return a, nil
}

func (a *Application) buildSinks() []telemetry.Sink {
	cfg := a.cfg
	log := a.logger.With(zap.String("component", "telemetry"))
	var sinks []telemetry.Sink

	if cfg.KafkaEnabled() && cfg.TelemetryTopic != "" {
		brk := breaker.New("kafka", breaker.Config{
			MaxFailures:      cfg.BreakerMaxFailures,
			ResetTimeout:     cfg.BreakerResetTimeout,
			SuccessesToClose: cfg.BreakerSuccessesToClose,
			AttemptTimeout:   cfg.BreakerAttemptTimeout,
		}, log, telemetry.KafkaProbe(cfg.KafkaBrokers))
		brk.OnStateChange(a.metrics.SetBreakerState)
		sinks = append(sinks, telemetry.NewKafkaSink(cfg.KafkaBrokers, cfg.TelemetryTopic, brk))
		log.Info("telemetry_sink_enabled",
			zap.String("sink", "kafka"),
			zap.String("brokers", strings.Join(cfg.KafkaBrokers, ",")),
			zap.String("topic", cfg.TelemetryTopic),
		)
	}

	if cfg.MQTTBroker != "" {
		sink, err := telemetry.NewMQTTSink(telemetry.MQTTConfig{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		})
		if err != nil {
			log.Warn("telemetry_sink_unavailable", zap.String("sink", "mqtt"), zap.Error(err))
		} else {
			sinks = append(sinks, sink)
			log.Info("telemetry_sink_enabled", zap.String("sink", "mqtt"), zap.String("broker", cfg.MQTTBroker))
		}
	}

	if cfg.RedisAddr != "" {
		sinks = append(sinks, telemetry.NewRedisStreamSink(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisStream, cfg.RedisMaxLen))
		log.Info("telemetry_sink_enabled", zap.String("sink", "redis"), zap.String("stream", cfg.RedisStream))
	}
	return sinks
}

// Logger exposes the configured logger.
func (a *Application) Logger() *zap.Logger {
	return a.logger
}

// Run blocks until ctx is cancelled or a component stops on its own. It
// manages readiness and graceful shutdown of every component.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpCh := make(chan error, 1)
	go func() {
		a.health.SetReady(true)
		a.logger.Info("http_server_listen", zap.String("address", a.cfg.ListenAddress))
		httpCh <- a.server.ListenAndServe()
	}()

	results := make(chan componentResult, len(a.components))
	for _, c := range a.components {
		go func() {
			results <- componentResult{name: c.name, err: c.run(ctx)}
		}()
	}
	pending := len(a.components)

	var runErr error
	for {
		select {
		case err := <-httpCh:
			httpCh = nil
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http_server_error", zap.Error(err))
				runErr = err
			} else {
				a.logger.Info("server_closed")
			}
			cancel()
		case res := <-results:
			pending--
			if res.err != nil && !errors.Is(res.err, context.Canceled) {
				a.logger.Error("component_error", zap.String("component", res.name), zap.Error(res.err))
				if runErr == nil {
					runErr = fmt.Errorf("%s: %w", res.name, res.err)
				}
			} else {
				a.logger.Info("component_stopped", zap.String("component", res.name))
			}
			cancel()
		case <-ctx.Done():
			a.logger.Info("shutdown_signal")
			a.health.SetReady(false)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("server_shutdown_failed", zap.Error(err))
				if runErr == nil {
					runErr = fmt.Errorf("shutdown: %w", err)
				}
			}
			shutdownCancel()

			if httpCh != nil {
				if err := <-httpCh; err != nil && !errors.Is(err, http.ErrServerClosed) && runErr == nil {
					runErr = err
				}
			}
			for ; pending > 0; pending-- {
				res := <-results
				if res.err != nil && !errors.Is(res.err, context.Canceled) {
					a.logger.Error("component_shutdown_error", zap.String("component", res.name), zap.Error(res.err))
					if runErr == nil {
						runErr = fmt.Errorf("%s: %w", res.name, res.err)
					}
				}
			}
			if runErr != nil {
				return runErr
			}
			a.logger.Info("shutdown_complete")
			return nil
		}
	}
}

// Close releases sinks, the command consumer and the log file.
func (a *Application) Close() error {
	var errs []error
	if a.fanout != nil {
		if err := a.fanout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close telemetry: %w", err))
		}
		a.fanout = nil
	}
	if a.commands != nil {
		if err := a.commands.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close command consumer: %w", err))
		}
		a.commands = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		a.logFile = nil
	}
	return errors.Join(errs...)
}
