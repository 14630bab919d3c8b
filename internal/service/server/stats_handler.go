package server

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/port"
)

// StatsHandler handles statistics requests
type StatsHandler struct {
	store   port.Store
	runtime TaskRuntime
	disk    port.DiskReporter
	logger  *zap.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(store port.Store, rt TaskRuntime, disk port.DiskReporter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		store:   store,
		runtime: rt,
		disk:    disk,
		logger:  logger,
	}
}

// HandleStats returns history counts, active tasks and disk usage
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats()
	if err != nil {
		h.logger.Error("failed to get history stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get history stats")
		return
	}

	response := map[string]interface{}{
		"running":          stats.RunningCount,
		"completed":        stats.CompletedCount,
		"failed":           stats.FailedCount,
		"cancelled":        stats.CancelledCount,
		"bytes_downloaded": stats.TotalBytes,
		"downloaded_human": humanize.IBytes(uint64(max(stats.TotalBytes, 0))),
		"active":           len(h.runtime.Active()),
	}

	if h.disk != nil {
		usage, err := h.disk.GetDiskUsage()
		if err != nil {
			h.logger.Debug("disk usage unavailable", zap.Error(err))
		} else {
			response["disk_free"] = usage.Free
			response["disk_free_human"] = humanize.IBytes(usage.Free)
			response["disk_used_pct"] = usage.UsedPct
		}
	}

	writeJSON(w, http.StatusOK, response)
}
