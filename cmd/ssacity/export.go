// v1
// cmd/ssacity/export.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ssacity/api/internal/client"
	"ssacity/api/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch bins and zone analytics from a running instance into an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 8*targetTimeout)
		defer cancel()

		c := client.New(targetURL, targetTimeout)
		bins, err := c.Bins(ctx)
		if err != nil {
			return err
		}
		zones, err := c.ZoneAnalytics(ctx)
		if err != nil {
			return err
		}
		data, err := export.Workbook(bins, zones)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("ssacity_bins_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bins and %d zones to %s\n", len(bins), len(zones), out)
		return nil
	},
}

func init() {
	addTargetFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default ssacity_bins_<timestamp>.xlsx)")
}
