package app

import (
	"context"
	"fmt"
	"time"

	"vreport/internal/data/history"
	"vreport/internal/shared/util"
)

var historyProbe = history.ListOptions{Limit: 1}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	snap := s.app.Snapshot()
	loadedAt, lastErr := s.app.LastReload()
	switch {
	case lastErr != nil:
		status.Status = "degraded"
		status.Components["results"] = fmt.Sprintf("reload failed: %v", lastErr)
	case loadedAt.IsZero():
		status.Status = "degraded"
		status.Components["results"] = "not loaded"
	default:
		status.Components["results"] = fmt.Sprintf("ok (%d records, version %d)", len(snap.Report.Results), snap.Version)
	}

	if s.app.history != nil {
		if _, err := s.app.history.ListRuns(ctx, historyProbe); err != nil {
			status.Status = "degraded"
			status.Components["history"] = fmt.Sprintf("error: %v", err)
		} else {
			status.Components["history"] = "ok"
		}
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	status.Components["heap_mb"] = fmt.Sprintf("%d", util.HeapAllocMB())
	return status
}
