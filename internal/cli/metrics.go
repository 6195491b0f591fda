package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/reseau/internal/observability"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display counters from the event log",
	Long: `Display aggregated metrics derived from the event log.

Metrics include the number of sessions, people and relationships added or
deleted, relationships by type, history entries purged by person deletions
and deletions that were cancelled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (the event log may be disabled)")
		}

		since := strings.TrimSpace(metricsSince)
		if since == "" {
			since = "7d"
		}
		sinceTime, err := observability.ParseSince(since)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Sessions:", metrics.Sessions)
		fmt.Fprintf(out, "  %-24s %d\n", "People added:", metrics.PeopleAdded)
		fmt.Fprintf(out, "  %-24s %d\n", "People deleted:", metrics.PeopleDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Relationships added:", metrics.RelationshipsAdded)
		fmt.Fprintf(out, "  %-24s %d\n", "Relationships deleted:", metrics.RelationshipsDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "History entries purged:", metrics.HistoryPurged)
		fmt.Fprintf(out, "  %-24s %d\n", "Deletions cancelled:", metrics.DeletionsCancelled)

		if len(metrics.RelationshipsByType) > 0 {
			fmt.Fprintln(out, "\n  Relationships by type:")
			for _, relType := range slices.Sorted(maps.Keys(metrics.RelationshipsByType)) {
				fmt.Fprintf(out, "    %-20s %d\n", relType+":", metrics.RelationshipsByType[relType])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
