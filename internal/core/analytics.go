package core

import (
	"math"
	"sort"
	"time"
)

// Distribution is a four-bucket grade histogram.
type Distribution struct {
	Buckets      map[string]int `json:"distribution"`
	TotalGraded  int            `json:"total_graded"`
	AverageGrade float64        `json:"average_grade"`
}

// TrendPoint is one grade observation on a timeline.
type TrendPoint struct {
	Assignment string    `json:"assignment"`
	Grade      int       `json:"grade"`
	Date       time.Time `json:"date"`
}

// StudentHistory summarizes every grade a student has received.
type StudentHistory struct {
	StudentName      string             `json:"student_name"`
	Grades           []GradeRecord      `json:"grades"`
	AverageGrade     float64            `json:"average_grade"`
	TotalAssignments int                `json:"total_assignments"`
	Courses          []string           `json:"courses"`
	PerformanceTrend []TrendPoint       `json:"performance_trend"`
	CourseAverages   map[string]float64 `json:"course_averages"`
}

// AssignmentStats aggregates the grades of one assignment.
type AssignmentStats struct {
	AssignmentID     string  `json:"assignment_id"`
	AssignmentTitle  string  `json:"assignment_title"`
	AverageGrade     float64 `json:"average_grade"`
	MinGrade         int     `json:"min_grade"`
	MaxGrade         int     `json:"max_grade"`
	SubmissionsCount int     `json:"submissions_count"`
	StdDeviation     float64 `json:"std_deviation"`
}

// CourseStats is the assignment-wise breakdown of one course.
type CourseStats struct {
	CourseID         string            `json:"course_id"`
	CourseName       string            `json:"course_name"`
	TotalAssignments int               `json:"total_assignments"`
	TotalGraded      int               `json:"total_graded"`
	OverallAverage   float64           `json:"overall_average"`
	Assignments      []AssignmentStats `json:"assignments"`
}

// RecentPerformance is a student's most recently recorded grade.
type RecentPerformance struct {
	Grade      int    `json:"grade"`
	Assignment string `json:"assignment"`
}

// StudentSummary aggregates one student's performance across assignments.
type StudentSummary struct {
	StudentName       string            `json:"student_name"`
	AverageGrade      float64           `json:"average_grade"`
	TotalAssignments  int               `json:"total_assignments"`
	HighestGrade      int               `json:"highest_grade"`
	LowestGrade       int               `json:"lowest_grade"`
	Courses           []string          `json:"courses"`
	RecentPerformance RecentPerformance `json:"recent_performance"`
}

// ComparisonEntry is one course or assignment in a side-by-side comparison.
type ComparisonEntry struct {
	CourseID        string  `json:"course_id,omitempty"`
	CourseName      string  `json:"course_name,omitempty"`
	AssignmentID    string  `json:"assignment_id,omitempty"`
	AssignmentTitle string  `json:"assignment_title,omitempty"`
	AverageGrade    float64 `json:"average_grade"`
	TotalGraded     int     `json:"total_graded"`
}

// Trend direction labels.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
	TrendNoData           = "no_data"
)

// TrendReport is a chronological grade series with an overall direction.
type TrendReport struct {
	TrendData       []TrendPoint `json:"trend_data"`
	OverallTrend    string       `json:"overall_trend"`
	TotalDataPoints int          `json:"total_data_points"`
}

// distribution bucket boundaries, upper bound inclusive
var bucketNames = []string{"0-50", "51-70", "71-85", "86-100"}

func bucketFor(grade int) string {
	switch {
	case grade <= 50:
		return "0-50"
	case grade <= 70:
		return "51-70"
	case grade <= 85:
		return "71-85"
	default:
		return "86-100"
	}
}

// ComputeDistribution buckets records into a histogram. Empty input yields
// all-zero buckets, not a nil map.
func ComputeDistribution(records []GradeRecord) Distribution {
	buckets := make(map[string]int, len(bucketNames))
	for _, name := range bucketNames {
		buckets[name] = 0
	}

	total := 0
	for _, rec := range records {
		buckets[bucketFor(rec.AssignedGrade)]++
		total += rec.AssignedGrade
	}

	dist := Distribution{Buckets: buckets, TotalGraded: len(records)}
	if len(records) > 0 {
		dist.AverageGrade = round2(float64(total) / float64(len(records)))
	}
	return dist
}

// ComputeStudentHistory builds the full performance history for one student
// from their records. Records are returned newest first and the trend covers
// the ten most recent assignments.
func ComputeStudentHistory(studentName string, records []GradeRecord) StudentHistory {
	hist := StudentHistory{
		StudentName:      studentName,
		Grades:           []GradeRecord{},
		Courses:          []string{},
		PerformanceTrend: []TrendPoint{},
		CourseAverages:   map[string]float64{},
	}
	if len(records) == 0 {
		return hist
	}

	sorted := make([]GradeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	total := 0
	courseGrades := map[string][]int{}
	for _, rec := range sorted {
		total += rec.AssignedGrade
		courseGrades[rec.CourseName] = append(courseGrades[rec.CourseName], rec.AssignedGrade)
	}

	hist.Grades = sorted
	hist.TotalAssignments = len(sorted)
	hist.AverageGrade = round2(float64(total) / float64(len(sorted)))

	for course, grades := range courseGrades {
		hist.Courses = append(hist.Courses, course)
		sum := 0
		for _, g := range grades {
			sum += g
		}
		hist.CourseAverages[course] = round2(float64(sum) / float64(len(grades)))
	}
	sort.Strings(hist.Courses)

	trendLen := len(sorted)
	if trendLen > 10 {
		trendLen = 10
	}
	for _, rec := range sorted[:trendLen] {
		hist.PerformanceTrend = append(hist.PerformanceTrend, TrendPoint{
			Assignment: rec.AssignmentTitle,
			Grade:      rec.AssignedGrade,
			Date:       rec.Timestamp,
		})
	}
	return hist
}

// ComputeCourseStats aggregates a course's records per assignment, sorted by
// average grade descending.
func ComputeCourseStats(courseID string, records []GradeRecord) CourseStats {
	stats := CourseStats{
		CourseID:    courseID,
		CourseName:  "Unknown",
		Assignments: []AssignmentStats{},
	}
	if len(records) == 0 {
		return stats
	}
	stats.CourseName = records[0].CourseName

	type group struct {
		title  string
		grades []int
	}
	groups := map[string]*group{}
	order := []string{}
	totalSum := 0
	for _, rec := range records {
		g, ok := groups[rec.AssignmentID]
		if !ok {
			g = &group{title: rec.AssignmentTitle}
			groups[rec.AssignmentID] = g
			order = append(order, rec.AssignmentID)
		}
		g.grades = append(g.grades, rec.AssignedGrade)
		totalSum += rec.AssignedGrade
	}

	for _, id := range order {
		g := groups[id]
		sum, minG, maxG := 0, g.grades[0], g.grades[0]
		for _, grade := range g.grades {
			sum += grade
			if grade < minG {
				minG = grade
			}
			if grade > maxG {
				maxG = grade
			}
		}
		mean := float64(sum) / float64(len(g.grades))
		variance := 0.0
		for _, grade := range g.grades {
			d := float64(grade) - mean
			variance += d * d
		}
		variance /= float64(len(g.grades))

		stats.Assignments = append(stats.Assignments, AssignmentStats{
			AssignmentID:     id,
			AssignmentTitle:  g.title,
			AverageGrade:     round2(mean),
			MinGrade:         minG,
			MaxGrade:         maxG,
			SubmissionsCount: len(g.grades),
			StdDeviation:     round2(math.Sqrt(variance)),
		})
	}
	sort.Slice(stats.Assignments, func(i, j int) bool {
		return stats.Assignments[i].AverageGrade > stats.Assignments[j].AverageGrade
	})

	stats.TotalAssignments = len(stats.Assignments)
	stats.TotalGraded = len(records)
	stats.OverallAverage = round2(float64(totalSum) / float64(len(records)))
	return stats
}

// ComputeStudentSummaries aggregates records per student, sorted by average
// grade descending. The recent performance of each student comes from their
// newest record.
func ComputeStudentSummaries(records []GradeRecord) []StudentSummary {
	type acc struct {
		grades  []int
		courses map[string]bool
		recent  GradeRecord
	}
	byStudent := map[string]*acc{}
	order := []string{}
	for _, rec := range records {
		a, ok := byStudent[rec.StudentName]
		if !ok {
			a = &acc{courses: map[string]bool{}, recent: rec}
			byStudent[rec.StudentName] = a
			order = append(order, rec.StudentName)
		}
		a.grades = append(a.grades, rec.AssignedGrade)
		a.courses[rec.CourseName] = true
		if rec.Timestamp.After(a.recent.Timestamp) {
			a.recent = rec
		}
	}

	summaries := make([]StudentSummary, 0, len(order))
	for _, name := range order {
		a := byStudent[name]
		sum, minG, maxG := 0, a.grades[0], a.grades[0]
		for _, g := range a.grades {
			sum += g
			if g < minG {
				minG = g
			}
			if g > maxG {
				maxG = g
			}
		}
		courses := make([]string, 0, len(a.courses))
		for c := range a.courses {
			courses = append(courses, c)
		}
		sort.Strings(courses)

		summaries = append(summaries, StudentSummary{
			StudentName:      name,
			AverageGrade:     round2(float64(sum) / float64(len(a.grades))),
			TotalAssignments: len(a.grades),
			HighestGrade:     maxG,
			LowestGrade:      minG,
			Courses:          courses,
			RecentPerformance: RecentPerformance{
				Grade:      a.recent.AssignedGrade,
				Assignment: a.recent.AssignmentTitle,
			},
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].AverageGrade > summaries[j].AverageGrade
	})
	return summaries
}

// ComputeTrendReport orders records chronologically and labels the overall
// direction by comparing the first and last thirds of the series. Fewer than
// three records cannot show a direction.
func ComputeTrendReport(records []GradeRecord) TrendReport {
	if len(records) == 0 {
		return TrendReport{TrendData: []TrendPoint{}, OverallTrend: TrendNoData}
	}

	sorted := make([]GradeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	points := make([]TrendPoint, 0, len(sorted))
	for _, rec := range sorted {
		points = append(points, TrendPoint{
			Assignment: rec.AssignmentTitle,
			Grade:      rec.AssignedGrade,
			Date:       rec.Timestamp,
		})
	}

	report := TrendReport{
		TrendData:       points,
		OverallTrend:    TrendInsufficientData,
		TotalDataPoints: len(points),
	}
	if len(sorted) < 3 {
		return report
	}

	third := len(sorted) / 3
	firstAvg, lastAvg := 0.0, 0.0
	for _, rec := range sorted[:third] {
		firstAvg += float64(rec.AssignedGrade)
	}
	for _, rec := range sorted[len(sorted)-third:] {
		lastAvg += float64(rec.AssignedGrade)
	}
	firstAvg /= float64(third)
	lastAvg /= float64(third)

	switch {
	case lastAvg > firstAvg+5:
		report.OverallTrend = TrendImproving
	case lastAvg < firstAvg-5:
		report.OverallTrend = TrendDeclining
	default:
		report.OverallTrend = TrendStable
	}
	return report
}

// CompareCourses builds one comparison entry per requested course, skipping
// courses with no records.
func CompareCourses(courseIDs []string, records []GradeRecord) []ComparisonEntry {
	entries := []ComparisonEntry{}
	for _, id := range courseIDs {
		sum, count, name := 0, 0, ""
		for _, rec := range records {
			if rec.CourseID != id {
				continue
			}
			if count == 0 {
				name = rec.CourseName
			}
			sum += rec.AssignedGrade
			count++
		}
		if count == 0 {
			continue
		}
		entries = append(entries, ComparisonEntry{
			CourseID:     id,
			CourseName:   name,
			AverageGrade: round2(float64(sum) / float64(count)),
			TotalGraded:  count,
		})
	}
	return entries
}

// CompareAssignments builds one comparison entry per requested assignment,
// skipping assignments with no records.
func CompareAssignments(assignmentIDs []string, records []GradeRecord) []ComparisonEntry {
	entries := []ComparisonEntry{}
	for _, id := range assignmentIDs {
		sum, count, title := 0, 0, ""
		for _, rec := range records {
			if rec.AssignmentID != id {
				continue
			}
			if count == 0 {
				title = rec.AssignmentTitle
			}
			sum += rec.AssignedGrade
			count++
		}
		if count == 0 {
			continue
		}
		entries = append(entries, ComparisonEntry{
			AssignmentID:    id,
			AssignmentTitle: title,
			AverageGrade:    round2(float64(sum) / float64(count)),
			TotalGraded:     count,
		})
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
