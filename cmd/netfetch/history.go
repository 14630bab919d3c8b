package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vertextoedge/netfetch/internal/adapter/sqlite"
	"github.com/vertextoedge/netfetch/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded task executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		if status != "" && !domain.ValidTaskStatus(status) {
			return fmt.Errorf("unknown status %q", status)
		}

		store, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close() //nolint:errcheck

		tasks, err := store.ListTasks(domain.TaskFilter{Status: status, Kind: kind, Limit: limit})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSTATUS\tSIZE\tSTARTED\tDURATION\tURL")
		for _, t := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				shortID(t.ID), t.Kind, describeStatus(t), describeSize(t),
				humanize.Time(t.StartedAt), t.Duration().Round(time.Millisecond), t.URL)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().String("status", "", "only show tasks with this status")
	historyCmd.Flags().String("kind", "", "only show tasks of this kind (text, json, binary)")
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of rows")
	rootCmd.AddCommand(historyCmd)
}

func describeStatus(t *domain.TaskRecord) string {
	if t.Status == domain.TaskStatusFailed && t.LastError != "" {
		return t.Status + ": " + t.LastError
	}
	return t.Status
}

func describeSize(t *domain.TaskRecord) string {
	size := humanize.IBytes(uint64(t.BytesDownloaded))
	if t.TotalBytes >= 0 && t.TotalBytes != t.BytesDownloaded {
		size += "/" + humanize.IBytes(uint64(t.TotalBytes))
	}
	if t.ResumedFrom > 0 {
		size += " (resumed)"
	}
	return size
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
