package prom

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/helpcomp/camt-harmonizer/httperror"
)

type healthResponse struct {
	Status  string `json:"status"`
	LastRun string `json:"last_run,omitempty"`
}

// HealthHandler reports 503 when the last run failed.
func HealthHandler(stats *RunStats) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		lastRun, err := stats.LastRun()
		if err != nil {
			httperror.Send(w, req, http.StatusServiceUnavailable, fmt.Sprintf("last run failed: %s", err))
			return
		}

		resp := healthResponse{Status: "ok"}
		if !lastRun.IsZero() {
			resp.LastRun = lastRun.Format(time.RFC3339)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
