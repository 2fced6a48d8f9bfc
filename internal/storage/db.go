package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"uetingest/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS professor (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  academic_rank TEXT,
  degree TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS course (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  credit INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS administrative_class (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  advisor_id INTEGER,
  FOREIGN KEY(advisor_id) REFERENCES professor(id)
);

CREATE TABLE IF NOT EXISTS course_class (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL,
  semester_id TEXT NOT NULL,
  course_id INTEGER NOT NULL,
  professor_id INTEGER NOT NULL,
  suggested_class_id INTEGER,
  UNIQUE(code, semester_id),
  FOREIGN KEY(course_id) REFERENCES course(id),
  FOREIGN KEY(professor_id) REFERENCES professor(id),
  FOREIGN KEY(suggested_class_id) REFERENCES administrative_class(id)
);

CREATE TABLE IF NOT EXISTS course_class_schedule (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  course_class_id INTEGER NOT NULL,
  day_of_week TEXT NOT NULL,
  lesson_range TEXT NOT NULL,
  session_type TEXT NOT NULL,
  group_identifier TEXT,
  location TEXT,
  FOREIGN KEY(course_class_id) REFERENCES course_class(id)
);

CREATE TABLE IF NOT EXISTS student (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  gender TEXT,
  birthday TEXT,
  email TEXT,
  administrative_class_id INTEGER,
  FOREIGN KEY(administrative_class_id) REFERENCES administrative_class(id)
);
CREATE INDEX IF NOT EXISTS idx_student_code ON student(code);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  job TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ingest_rows (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  source TEXT NOT NULL,
  sourceRef TEXT NOT NULL,
  rawLine TEXT NOT NULL,
  status TEXT NOT NULL,
  reason TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// EnsureProfessor inserts the professor if absent and returns its id. A
// conflicting concurrent insert is treated as "already exists": the insert
// ignores the conflict and the row is re-read.
func (d *DB) EnsureProfessor(name string, academicRank, degree *string) (int64, error) {
	if id, err := d.GetProfessorIDByName(name); err != nil {
		return 0, err
	} else if id != nil {
		return *id, nil
	}

	_, err := d.conn.Exec(`
INSERT INTO professor (name, academic_rank, degree) VALUES (?, ?, ?)
ON CONFLICT(name) DO NOTHING
`, name, academicRank, degree)
	if err != nil {
		return 0, err
	}

	id, err := d.GetProfessorIDByName(name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("failed to ensure professor: %s", name)
	}
	return *id, nil
}

func (d *DB) GetProfessorIDByName(name string) (*int64, error) {
	var id int64
	err := d.conn.QueryRow(`SELECT id FROM professor WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (d *DB) GetProfessorByName(name string) (*internal.ProfessorRow, error) {
	var row internal.ProfessorRow
	err := d.conn.QueryRow(`
SELECT id, name, academic_rank, degree FROM professor WHERE name = ?
`, name).Scan(&row.ID, &row.Name, &row.AcademicRank, &row.Degree)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) UpsertCourse(code, name string, credit int) error {
	_, err := d.conn.Exec(`
INSERT INTO course (code, name, credit) VALUES (?, ?, ?)
ON CONFLICT(code) DO UPDATE SET name = excluded.name, credit = excluded.credit
`, code, name, credit)
	return err
}

func (d *DB) GetCourseByCode(code string) (*internal.CourseRow, error) {
	var row internal.CourseRow
	err := d.conn.QueryRow(`SELECT id, code, name, credit FROM course WHERE code = ?`, code).
		Scan(&row.ID, &row.Code, &row.Name, &row.Credit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetAdministrativeClassIDByName(name string) (*int64, error) {
	var id int64
	err := d.conn.QueryRow(`SELECT id FROM administrative_class WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// EnsureAdministrativeClass inserts the class with only a name if absent and
// returns its id. Advisor and other attributes are populated by later passes.
func (d *DB) EnsureAdministrativeClass(name string) (int64, error) {
	_, err := d.conn.Exec(`
INSERT INTO administrative_class (name) VALUES (?)
ON CONFLICT(name) DO NOTHING
`, name)
	if err != nil {
		return 0, err
	}

	id, err := d.GetAdministrativeClassIDByName(name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("failed to ensure administrative class: %s", name)
	}
	return *id, nil
}

// SetClassAdvisor points the class at the advisor. Returns false when no
// class row carries that name.
func (d *DB) SetClassAdvisor(className string, advisorID int64) (bool, error) {
	result, err := d.conn.Exec(`
UPDATE administrative_class SET advisor_id = ? WHERE name = ?
`, advisorID, className)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertCourseSection inserts or updates the section keyed on
// UNIQUE(code, semester_id). On conflict the professor and suggested-class
// references are overwritten with the latest values (last write wins).
func (d *DB) UpsertCourseSection(code, semesterID string, courseID, professorID int64, suggestedClassID *int64) (int64, error) {
	_, err := d.conn.Exec(`
INSERT INTO course_class (code, semester_id, course_id, professor_id, suggested_class_id)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(code, semester_id) DO UPDATE SET
  professor_id = excluded.professor_id,
  suggested_class_id = excluded.suggested_class_id
`, code, semesterID, courseID, professorID, suggestedClassID)
	if err != nil {
		return 0, err
	}

	section, err := d.GetSectionByKey(code, semesterID)
	if err != nil {
		return 0, err
	}
	if section == nil {
		return 0, fmt.Errorf("failed to upsert course_class: code=%s semester=%s", code, semesterID)
	}
	return section.ID, nil
}

func (d *DB) GetSectionByKey(code, semesterID string) (*internal.SectionRow, error) {
	var row internal.SectionRow
	err := d.conn.QueryRow(`
SELECT id, code, semester_id, course_id, professor_id, suggested_class_id
FROM course_class WHERE code = ? AND semester_id = ?
`, code, semesterID).Scan(&row.ID, &row.Code, &row.SemesterID, &row.CourseID, &row.ProfessorID, &row.SuggestedClassID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// InsertSchedule always creates a fresh row; schedule rows have no natural
// dedup key and repeated ingestion runs duplicate them.
func (d *DB) InsertSchedule(sectionID int64, dayOfWeek string, periods []int, sessionType, groupIdentifier, location string) error {
	lessonJSON, _ := json.Marshal(periods)
	_, err := d.conn.Exec(`
INSERT INTO course_class_schedule (course_class_id, day_of_week, lesson_range, session_type, group_identifier, location)
VALUES (?, ?, ?, ?, ?, ?)
`, sectionID, dayOfWeek, string(lessonJSON), sessionType, groupIdentifier, location)
	return err
}

func (d *DB) CountSchedulesForSection(sectionID int64) (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM course_class_schedule WHERE course_class_id = ?`, sectionID).Scan(&count)
	return count, err
}

func (d *DB) InsertStudent(code, name, gender string, birthday *time.Time, email string, classID int64) error {
	var birthdayStr *string
	if birthday != nil {
		s := birthday.Format("2006-01-02")
		birthdayStr = &s
	}
	_, err := d.conn.Exec(`
INSERT INTO student (code, name, gender, birthday, email, administrative_class_id)
VALUES (?, ?, ?, ?, ?, ?)
`, code, name, gender, birthdayStr, email, classID)
	return err
}

func (d *DB) CountStudentsByCode(code string) (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM student WHERE code = ?`, code).Scan(&count)
	return count, err
}

func (d *DB) InsertRun(traceID, job string, counts map[string]int) (int64, error) {
	countsJSON, _ := json.Marshal(counts)
	result, err := d.conn.Exec(`INSERT INTO runs (traceId, job, countsJson) VALUES (?, ?, ?)`, traceID, job, string(countsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertRowOutcome(runID int64, outcome internal.RowOutcome) error {
	_, err := d.conn.Exec(`
INSERT INTO ingest_rows (runId, lineNo, source, sourceRef, rawLine, status, reason)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, runID, outcome.LineNo, string(outcome.Source), outcome.SourceRef, outcome.RawLine, string(outcome.Status), outcome.Reason)
	return err
}

func (d *DB) GetReportRows(runID int64) ([]internal.ReportRow, error) {
	rows, err := d.conn.Query(`
SELECT lineNo, source, sourceRef, rawLine, status, reason
FROM ingest_rows WHERE runId = ?
ORDER BY
  CASE status WHEN 'skipped' THEN 1 ELSE 2 END,
  lineNo ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportRow
	for rows.Next() {
		var row internal.ReportRow
		var reason sql.NullString
		if err := rows.Scan(&row.LineNo, &row.Source, &row.SourceRef, &row.RawLine, &row.Status, &reason); err != nil {
			return nil, err
		}
		row.Reason = reason.String
		out = append(out, row)
	}

	return out, rows.Err()
}
