package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSweep(t *testing.T) {
	m := New()

	m.RecordSweep(3, nil)
	m.RecordSweep(0, nil)
	m.RecordSweep(0, errors.New("db down"))

	if got := testutil.ToFloat64(m.OverdueMarked); got != 3 {
		t.Errorf("expected 3 overdue marked, got %v", got)
	}
	if got := testutil.ToFloat64(m.SweepRuns.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Borrowings.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "solskiinventar_borrowings_total 1") {
		t.Errorf("borrowings counter missing from output:\n%s", body)
	}
}
