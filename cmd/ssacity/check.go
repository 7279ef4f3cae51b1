// v1
// cmd/ssacity/check.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ssacity/api/internal/client"
)

var (
	targetURL     string
	targetTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe /health of a running instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 4*targetTimeout)
		defer cancel()

		h, err := client.New(targetURL, targetTimeout).Health(ctx)
		if err != nil {
			return err
		}
		if !h.Healthy() {
			return fmt.Errorf("%s reported status %q", targetURL, h.Status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s healthy: ticks=%d timestamp=%s\n",
			targetURL, h.Ticks, h.Timestamp.Format(time.RFC3339))
		return nil
	},
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&targetURL, "url", "http://localhost:8000", "Base URL of the running API")
	cmd.Flags().DurationVar(&targetTimeout, "timeout", 5*time.Second, "Per-request timeout")
}

func init() {
	addTargetFlags(checkCmd)
}
