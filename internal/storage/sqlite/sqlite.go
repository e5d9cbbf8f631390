// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk — no network, no
// separate server process — which keeps it a drop-in alternative to the
// jsonfile backend for installations that outgrow a flat file.
//
// The driver import below is for its side effect: its init() registers
// the "sqlite3" driver with database/sql. We also reference the package
// directly to translate constraint-violation errors.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahmedkhan/student-portal/internal/config"
	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB, which is a connection pool managed by
// database/sql and safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the
// students table if it does not already exist, and returns a
// ready-to-use *SQLite.
//
// rowid keeps insertion order for listing. roll_no carries both the
// uniqueness and the case-insensitive matching rules via a NOCASE
// unique index, so the database enforces the same semantics the
// jsonfile backend implements by hand.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Idempotent schema setup — safe to run on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			roll_no    TEXT NOT NULL,
			name       TEXT NOT NULL,
			department TEXT NOT NULL,
			email      TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_students_roll_no
			ON students (roll_no COLLATE NOCASE);
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row. A unique-index violation on roll_no
// is translated to storage.ErrDuplicateRollNo so handlers never have to
// know which backend they are talking to.
//
// Placeholders (?) keep user input out of the SQL text — the driver
// sends values separately, so input is never parsed as SQL syntax.
func (s *SQLite) CreateStudent(student types.Student) error {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (roll_no, name, department, email) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(student.RollNo, student.Name, student.Department, student.Email)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return storage.ErrDuplicateRollNo
		}
		return fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return nil
}

// GetStudents returns all rows in insertion (rowid) order.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT roll_no, name, department, email FROM students ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so an empty table encodes
	// to [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.RollNo,
			&student.Name,
			&student.Department,
			&student.Email,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// GetStudentByRollNo fetches one row by roll number. The NOCASE index
// makes the comparison case-insensitive on the database side.
func (s *SQLite) GetStudentByRollNo(rollNo string) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT roll_no, name, department, email FROM students WHERE roll_no = ? COLLATE NOCASE LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByRollNo: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student
	err = stmt.QueryRow(rollNo).Scan(
		&student.RollNo,
		&student.Name,
		&student.Department,
		&student.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByRollNo: scan: %w", err)
	}

	return student, nil
}

// UpdateStudentEmail changes only the email column of the matching row
// and returns the updated record as stored.
func (s *SQLite) UpdateStudentEmail(rollNo string, email string) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE students SET email = ? WHERE roll_no = ? COLLATE NOCASE",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentEmail: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(email, rollNo)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentEmail: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentEmail: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, storage.ErrStudentNotFound
	}

	// Re-fetch so the caller sees exactly what is stored.
	return s.GetStudentByRollNo(rollNo)
}
