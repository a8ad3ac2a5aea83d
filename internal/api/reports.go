package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/model"
	"github.com/erazemk/solskiinventar/internal/store"
)

// ReportsHandler serves the dashboard and usage report.
type ReportsHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

// Dashboard handles GET /api/reports/dashboard.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := store.DashboardStats(r.Context(), h.DB, h.Now())
	if err != nil {
		storeError(w, err, "failed to compute dashboard stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Usage handles GET /api/reports/usage.
func (h *ReportsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	report, err := store.ItemUsageReport(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to build usage report")
		return
	}
	if report == nil {
		report = []model.ItemUsage{}
	}
	jsonResponse(w, http.StatusOK, report)
}
