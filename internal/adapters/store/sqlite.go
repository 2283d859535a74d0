package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gradepilot/gradepilot/internal/core"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore implements core.GradeStore with SQLite storage.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) the grade database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// WAL mode for concurrent readers during grading bursts.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{dbPath: dbPath, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		// Table doesn't exist yet, run initial migration
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// SaveGrade implements core.GradeStore. Records are append-only, so a
// duplicate ID is an error.
func (s *SQLiteStore) SaveGrade(ctx context.Context, rec *core.GradeRecord) error {
	if rec.ID == "" {
		return core.ErrValidation(core.CodeMissingField, "grade record has no id")
	}
	if !core.ValidGrade(rec.AssignedGrade) {
		return core.ErrValidation(core.CodeInvalidGrade, "grade outside 0-100 scale")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grades (
			id, course_id, course_name, assignment_id, assignment_title,
			submission_id, student_name, assigned_grade, confidence,
			grading_method, feedback, grade_justification, remarks, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CourseID, rec.CourseName, rec.AssignmentID, rec.AssignmentTitle,
		rec.SubmissionID, rec.StudentName, rec.AssignedGrade, string(rec.Confidence),
		string(rec.Method), rec.Feedback, rec.Justification, rec.Remarks,
		rec.Timestamp.UTC().UnixNano(),
	)
	if err != nil {
		return core.ErrStorage("inserting grade record").WithCause(err)
	}
	return nil
}

// ListGrades implements core.GradeStore. Results come back newest first.
func (s *SQLiteStore) ListGrades(ctx context.Context, filter core.GradeFilter) ([]core.GradeRecord, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, course_id, course_name, assignment_id, assignment_title,
		       submission_id, student_name, assigned_grade, confidence,
		       grading_method, feedback, grade_justification, remarks, timestamp
		FROM grades`)

	var clauses []string
	var args []any
	if filter.CourseID != "" {
		clauses = append(clauses, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.AssignmentID != "" {
		clauses = append(clauses, "assignment_id = ?")
		args = append(args, filter.AssignmentID)
	}
	if filter.StudentName != "" {
		clauses = append(clauses, "student_name = ?")
		args = append(args, filter.StudentName)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().UnixNano())
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY timestamp DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, core.ErrStorage("querying grades").WithCause(err)
	}
	defer rows.Close()

	records := []core.GradeRecord{}
	for rows.Next() {
		var rec core.GradeRecord
		var confidence, method string
		var ts int64
		if err := rows.Scan(
			&rec.ID, &rec.CourseID, &rec.CourseName, &rec.AssignmentID, &rec.AssignmentTitle,
			&rec.SubmissionID, &rec.StudentName, &rec.AssignedGrade, &confidence,
			&method, &rec.Feedback, &rec.Justification, &rec.Remarks, &ts,
		); err != nil {
			return nil, core.ErrStorage("scanning grade record").WithCause(err)
		}
		rec.Confidence = core.Confidence(confidence)
		rec.Method = core.Method(method)
		rec.Timestamp = time.Unix(0, ts).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, core.ErrStorage("iterating grade records").WithCause(err)
	}
	return records, nil
}

// CountGrades implements core.GradeStore.
func (s *SQLiteStore) CountGrades(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM grades").Scan(&count); err != nil {
		return 0, core.ErrStorage("counting grades").WithCause(err)
	}
	return count, nil
}

// Backend implements core.GradeStore.
func (s *SQLiteStore) Backend() string {
	return "sqlite"
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
