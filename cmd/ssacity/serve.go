// v1
// cmd/ssacity/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ssacity/api/internal/app"
	"ssacity/api/internal/config"
)

var (
	serveListen string
	serveSeed   int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API with the sensor updater",
	RunE: func(cmd *cobra.Command, args []string) error {
		bootstrap, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("bootstrap logger: %w", err)
		}
		defer func() { _ = bootstrap.Sync() }()

		cfg, err := config.Load()
		if err != nil {
			bootstrap.Error("config_load_failed", zap.Error(err))
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddress = serveListen
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = serveSeed
		}

		application, err := app.New(cfg)
		if err != nil {
			bootstrap.Error("app_init_failed", zap.Error(err))
			return err
		}
		defer func() {
			if cerr := application.Close(); cerr != nil {
				bootstrap.Error("app_close_failed", zap.Error(cerr))
			}
		}()

		logger := application.Logger()
		logger.Info("service_boot",
			zap.String("version", app.Version),
			zap.String("listen_address", cfg.ListenAddress),
			zap.String("log_path", cfg.LogFilePath),
			zap.String("properties_path", cfg.PropertiesPath),
			zap.Duration("tick_interval", cfg.TickInterval),
			zap.String("kafka_brokers", strings.Join(cfg.KafkaBrokers, ",")),
			zap.String("mqtt_broker", cfg.MQTTBroker),
			zap.String("redis_addr", cfg.RedisAddr),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := application.Run(ctx); err != nil {
			logger.Error("service_terminated", zap.Error(err))
			return err
		}
		logger.Info("service_stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address, overrides SSACITY_LISTEN_ADDRESS")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "Random seed, overrides SSACITY_SEED (0 = time based)")
}
