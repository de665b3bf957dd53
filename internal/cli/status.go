package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/slotwatchhq/slotwatch/internal/core/config"
	"github.com/slotwatchhq/slotwatch/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running slotwatch instance",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/status", cfg.Server.Port))
	if err != nil {
		slog.Error("failed to reach slotwatch", "port", cfg.Server.Port, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var report health.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("failed to decode status response", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")
	_, _ = fmt.Fprintf(w, "running\t%v\n", report.Running)
	_, _ = fmt.Fprintf(w, "subscribers\t%d\n", report.Subscribers)
	_, _ = fmt.Fprintf(w, "last status\t%s\n", report.LastStatus)
	_, _ = fmt.Fprintf(w, "breaker failures\t%d/%d\n", report.Breaker.Failures, report.Breaker.Threshold)
	_, _ = fmt.Fprintf(w, "breaker open\t%v\n", report.Breaker.Open)
	_, _ = fmt.Fprintf(w, "last action\t%s\n", report.Breaker.LastAction)
	_ = w.Flush()
}
