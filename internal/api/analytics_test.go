package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gradepilot/gradepilot/internal/core"
)

func seededAnalyticsServer(t *testing.T) *Server {
	t.Helper()
	srv, st := newTestServer(t, &stubGrader{})
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedStore(t, st,
		storedRecord("g1", "Ada Lovelace", "c1", "a1", 45, base),
		storedRecord("g2", "Ada Lovelace", "c1", "a2", 72, base.Add(time.Hour)),
		storedRecord("g3", "Grace Hopper", "c1", "a1", 95, base.Add(2*time.Hour)),
		storedRecord("g4", "Grace Hopper", "c2", "a3", 88, base.Add(3*time.Hour)),
	)
	return srv
}

func TestDistributionEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/distribution?course_id=c1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var dist core.Distribution
	decodeBody(t, rec, &dist)
	if dist.TotalGraded != 3 {
		t.Errorf("expected 3 graded, got %d", dist.TotalGraded)
	}
	if dist.Buckets["0-50"] != 1 || dist.Buckets["71-85"] != 1 || dist.Buckets["86-100"] != 1 {
		t.Errorf("unexpected buckets: %v", dist.Buckets)
	}
}

func TestStudentHistoryEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/students/Ada%20Lovelace/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var hist core.StudentHistory
	decodeBody(t, rec, &hist)
	if hist.StudentName != "Ada Lovelace" || hist.TotalAssignments != 2 {
		t.Errorf("unexpected history: %+v", hist)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/students/Nobody/history", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown student: expected 404, got %d", rec.Code)
	}
}

func TestSearchStudentsEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/students/search?q=grace", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Matches []string `json:"matches"`
	}
	decodeBody(t, rec, &body)
	if len(body.Matches) != 1 || body.Matches[0] != "Grace Hopper" {
		t.Errorf("unexpected matches: %v", body.Matches)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/students/search", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing q: expected 422, got %d", rec.Code)
	}
}

func TestStudentSummariesEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/students", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Students []core.StudentSummary `json:"students"`
		Total    int                   `json:"total"`
	}
	decodeBody(t, rec, &body)
	if body.Total != 2 || body.Students[0].StudentName != "Grace Hopper" {
		t.Errorf("expected Grace Hopper first, got %+v", body.Students)
	}
}

func TestCourseStatsEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/courses/c1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats core.CourseStats
	decodeBody(t, rec, &stats)
	if stats.CourseID != "c1" || stats.TotalGraded != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTrendsEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/trends?student_name=Ada%20Lovelace", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report core.TrendReport
	decodeBody(t, rec, &report)
	if report.TotalDataPoints != 2 || report.OverallTrend != core.TrendInsufficientData {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestCompareEndpoint(t *testing.T) {
	srv := seededAnalyticsServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/compare?courses=c1,c2,ghost", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Comparison []core.ComparisonEntry `json:"comparison"`
	}
	decodeBody(t, rec, &body)
	if len(body.Comparison) != 2 {
		t.Errorf("expected 2 entries, got %+v", body.Comparison)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/compare?assignments=a1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("assignments compare: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/compare", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no params: expected 422, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/compare?courses=c1&assignments=a1", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("both params: expected 422, got %d", rec.Code)
	}
}
