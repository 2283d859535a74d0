package core

import (
	"testing"
	"time"
)

func mkRecord(student, courseID, courseName, assignmentID, title string, grade int, ts time.Time) GradeRecord {
	return GradeRecord{
		ID:              "rec-" + student + "-" + assignmentID,
		CourseID:        courseID,
		CourseName:      courseName,
		AssignmentID:    assignmentID,
		AssignmentTitle: title,
		StudentName:     student,
		AssignedGrade:   grade,
		Confidence:      ConfidenceHigh,
		Method:          MethodHybridAverage,
		Timestamp:       ts,
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	dist := ComputeDistribution(nil)

	if dist.TotalGraded != 0 || dist.AverageGrade != 0 {
		t.Fatalf("empty distribution should be zeroed, got %+v", dist)
	}
	for _, name := range []string{"0-50", "51-70", "71-85", "86-100"} {
		if count, ok := dist.Buckets[name]; !ok || count != 0 {
			t.Fatalf("bucket %s should exist with zero count, got %d (present=%v)", name, count, ok)
		}
	}
}

func TestComputeDistributionBuckets(t *testing.T) {
	now := time.Now()
	records := []GradeRecord{
		mkRecord("a", "c1", "Math", "a1", "HW1", 50, now),
		mkRecord("b", "c1", "Math", "a1", "HW1", 51, now),
		mkRecord("c", "c1", "Math", "a1", "HW1", 70, now),
		mkRecord("d", "c1", "Math", "a1", "HW1", 71, now),
		mkRecord("e", "c1", "Math", "a1", "HW1", 85, now),
		mkRecord("f", "c1", "Math", "a1", "HW1", 86, now),
	}

	dist := ComputeDistribution(records)

	want := map[string]int{"0-50": 1, "51-70": 2, "71-85": 2, "86-100": 1}
	for name, count := range want {
		if dist.Buckets[name] != count {
			t.Fatalf("bucket %s: got %d, want %d", name, dist.Buckets[name], count)
		}
	}
	if dist.TotalGraded != 6 {
		t.Fatalf("expected 6 graded, got %d", dist.TotalGraded)
	}
	if dist.AverageGrade != 68.83 {
		t.Fatalf("expected average 68.83, got %v", dist.AverageGrade)
	}
}

func TestComputeStudentHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 80, base),
		mkRecord("Ada", "c1", "Math", "a2", "HW2", 90, base.Add(24*time.Hour)),
		mkRecord("Ada", "c2", "Physics", "a3", "Lab1", 70, base.Add(48*time.Hour)),
	}

	hist := ComputeStudentHistory("Ada", records)

	if hist.TotalAssignments != 3 {
		t.Fatalf("expected 3 assignments, got %d", hist.TotalAssignments)
	}
	if hist.AverageGrade != 80 {
		t.Fatalf("expected average 80, got %v", hist.AverageGrade)
	}
	if hist.Grades[0].AssignmentID != "a3" {
		t.Fatalf("grades should be newest first, got %s", hist.Grades[0].AssignmentID)
	}
	if len(hist.Courses) != 2 || hist.Courses[0] != "Math" || hist.Courses[1] != "Physics" {
		t.Fatalf("unexpected courses %v", hist.Courses)
	}
	if hist.CourseAverages["Math"] != 85 || hist.CourseAverages["Physics"] != 70 {
		t.Fatalf("unexpected course averages %v", hist.CourseAverages)
	}
	if len(hist.PerformanceTrend) != 3 || hist.PerformanceTrend[0].Assignment != "Lab1" {
		t.Fatalf("unexpected trend %v", hist.PerformanceTrend)
	}
}

func TestComputeStudentHistoryTrendCap(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var records []GradeRecord
	for i := 0; i < 14; i++ {
		records = append(records, mkRecord("Ada", "c1", "Math", "a", "HW", 75, base.Add(time.Duration(i)*time.Hour)))
	}

	hist := ComputeStudentHistory("Ada", records)
	if len(hist.PerformanceTrend) != 10 {
		t.Fatalf("trend should cap at 10 entries, got %d", len(hist.PerformanceTrend))
	}
}

func TestComputeStudentHistoryEmpty(t *testing.T) {
	hist := ComputeStudentHistory("Nobody", nil)

	if hist.StudentName != "Nobody" {
		t.Fatalf("unexpected name %s", hist.StudentName)
	}
	if hist.Grades == nil || hist.Courses == nil || hist.PerformanceTrend == nil {
		t.Fatal("empty history should use empty slices, not nil")
	}
}

func TestComputeCourseStats(t *testing.T) {
	now := time.Now()
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 60, now),
		mkRecord("Bob", "c1", "Math", "a1", "HW1", 80, now),
		mkRecord("Ada", "c1", "Math", "a2", "HW2", 90, now),
		mkRecord("Bob", "c1", "Math", "a2", "HW2", 100, now),
	}

	stats := ComputeCourseStats("c1", records)

	if stats.CourseName != "Math" {
		t.Fatalf("expected course name Math, got %s", stats.CourseName)
	}
	if stats.TotalAssignments != 2 || stats.TotalGraded != 4 {
		t.Fatalf("unexpected totals: %d assignments, %d graded", stats.TotalAssignments, stats.TotalGraded)
	}
	if stats.OverallAverage != 82.5 {
		t.Fatalf("expected overall average 82.5, got %v", stats.OverallAverage)
	}
	// Sorted by average descending: HW2 (95) before HW1 (70).
	if stats.Assignments[0].AssignmentID != "a2" {
		t.Fatalf("expected a2 first, got %s", stats.Assignments[0].AssignmentID)
	}
	hw1 := stats.Assignments[1]
	if hw1.MinGrade != 60 || hw1.MaxGrade != 80 || hw1.SubmissionsCount != 2 {
		t.Fatalf("unexpected HW1 stats %+v", hw1)
	}
	if hw1.StdDeviation != 10 {
		t.Fatalf("expected HW1 std deviation 10, got %v", hw1.StdDeviation)
	}
}

func TestComputeCourseStatsEmpty(t *testing.T) {
	stats := ComputeCourseStats("ghost", nil)
	if stats.CourseName != "Unknown" || stats.TotalGraded != 0 {
		t.Fatalf("unexpected empty stats %+v", stats)
	}
}

func TestComputeStudentSummaries(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 90, base),
		mkRecord("Ada", "c2", "Physics", "a2", "Lab1", 70, base.Add(time.Hour)),
		mkRecord("Bob", "c1", "Math", "a1", "HW1", 95, base),
	}

	summaries := ComputeStudentSummaries(records)

	if len(summaries) != 2 {
		t.Fatalf("expected 2 students, got %d", len(summaries))
	}
	// Sorted by average descending: Bob (95) before Ada (80).
	if summaries[0].StudentName != "Bob" {
		t.Fatalf("expected Bob first, got %s", summaries[0].StudentName)
	}
	ada := summaries[1]
	if ada.AverageGrade != 80 || ada.HighestGrade != 90 || ada.LowestGrade != 70 {
		t.Fatalf("unexpected Ada summary %+v", ada)
	}
	if len(ada.Courses) != 2 {
		t.Fatalf("expected 2 courses for Ada, got %v", ada.Courses)
	}
	if ada.RecentPerformance.Assignment != "Lab1" || ada.RecentPerformance.Grade != 70 {
		t.Fatalf("recent performance should come from newest record, got %+v", ada.RecentPerformance)
	}
}

func TestComputeTrendReport(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mk := func(grades ...int) []GradeRecord {
		var records []GradeRecord
		for i, g := range grades {
			records = append(records, mkRecord("Ada", "c1", "Math", "a", "HW", g, base.Add(time.Duration(i)*time.Hour)))
		}
		return records
	}

	tests := []struct {
		name   string
		grades []int
		want   string
	}{
		{"no data", nil, TrendNoData},
		{"too few points", []int{80, 85}, TrendInsufficientData},
		{"improving", []int{50, 55, 60, 70, 80, 90}, TrendImproving},
		{"declining", []int{90, 80, 70, 60, 55, 50}, TrendDeclining},
		{"stable", []int{75, 74, 76, 75, 74, 76}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ComputeTrendReport(mk(tt.grades...))
			if report.OverallTrend != tt.want {
				t.Fatalf("expected trend %s, got %s", tt.want, report.OverallTrend)
			}
			if report.TotalDataPoints != len(tt.grades) {
				t.Fatalf("expected %d data points, got %d", len(tt.grades), report.TotalDataPoints)
			}
		})
	}
}

func TestComputeTrendReportChronological(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a2", "HW2", 90, base.Add(time.Hour)),
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 80, base),
	}

	report := ComputeTrendReport(records)
	if report.TrendData[0].Assignment != "HW1" {
		t.Fatalf("trend data should be oldest first, got %s", report.TrendData[0].Assignment)
	}
}

func TestCompareCourses(t *testing.T) {
	now := time.Now()
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 80, now),
		mkRecord("Bob", "c1", "Math", "a1", "HW1", 90, now),
		mkRecord("Ada", "c2", "Physics", "a2", "Lab1", 60, now),
	}

	entries := CompareCourses([]string{"c1", "c2", "missing"}, records)

	if len(entries) != 2 {
		t.Fatalf("courses with no records should be skipped, got %d entries", len(entries))
	}
	if entries[0].CourseID != "c1" || entries[0].AverageGrade != 85 || entries[0].TotalGraded != 2 {
		t.Fatalf("unexpected c1 entry %+v", entries[0])
	}
	if entries[1].CourseName != "Physics" {
		t.Fatalf("unexpected c2 entry %+v", entries[1])
	}
}

func TestCompareAssignments(t *testing.T) {
	now := time.Now()
	records := []GradeRecord{
		mkRecord("Ada", "c1", "Math", "a1", "HW1", 70, now),
		mkRecord("Bob", "c1", "Math", "a1", "HW1", 80, now),
	}

	entries := CompareAssignments([]string{"a1", "ghost"}, records)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].AssignmentTitle != "HW1" || entries[0].AverageGrade != 75 {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestGradeFilterMatches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := mkRecord("Ada", "c1", "Math", "a1", "HW1", 80, base)

	tests := []struct {
		name   string
		filter GradeFilter
		want   bool
	}{
		{"zero filter matches all", GradeFilter{}, true},
		{"matching course", GradeFilter{CourseID: "c1"}, true},
		{"wrong course", GradeFilter{CourseID: "c2"}, false},
		{"matching student", GradeFilter{StudentName: "Ada"}, true},
		{"wrong assignment", GradeFilter{AssignmentID: "a9"}, false},
		{"since before record", GradeFilter{Since: base.Add(-time.Hour)}, true},
		{"since after record", GradeFilter{Since: base.Add(time.Hour)}, false},
		{"combined", GradeFilter{CourseID: "c1", StudentName: "Ada"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(&rec); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
