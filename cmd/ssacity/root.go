// v1
// cmd/ssacity/root.go
package main

import (
	"github.com/spf13/cobra"

	"ssacity/api/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "ssacity",
	Short:         "Smart city waste telemetry API",
	Long:          "Serves simulated smart bin, zone and city region telemetry over HTTP and optionally streams it to Kafka, MQTT and Redis.",
	Version:       app.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd, checkCmd, exportCmd)
}
