// Package storage defines the Storage interface — the contract every
// record-store backend must satisfy — plus the sentinel errors those
// backends report.
//
// Handlers depend only on this interface, never on a concrete backend.
// Switching the backend (jsonfile ↔ sqlite) is one line in main.go, and
// tests can run any handler against a throwaway store in a temp dir.
package storage

import (
	"errors"

	"github.com/ahmedkhan/student-portal/internal/types"
)

// Sentinel errors shared by all backends. Callers branch on these with
// errors.Is; everything else is treated as an internal failure.
var (
	// ErrStudentNotFound is returned when no record matches the
	// requested roll number.
	ErrStudentNotFound = errors.New("student not found")

	// ErrDuplicateRollNo is returned by CreateStudent when a record
	// with the same roll number (compared case-insensitively) already
	// exists. Roll numbers are unique across the collection.
	ErrDuplicateRollNo = errors.New("roll number already exists")
)

// Storage is the record-store contract.
// Any concrete type implementing all of these methods satisfies the
// interface implicitly — no "implements" keyword in Go.
//
// Records form an ordered sequence: list order is insertion order, and
// there is no delete operation.
type Storage interface {
	// CreateStudent appends a new record to the collection.
	// Returns ErrDuplicateRollNo if the roll number is already taken.
	CreateStudent(student types.Student) error

	// GetStudents returns every record in insertion order.
	// Returns an empty slice (not nil) when there are no records.
	GetStudents() ([]types.Student, error)

	// GetStudentByRollNo returns the record with the given roll number,
	// matched case-insensitively, or ErrStudentNotFound.
	GetStudentByRollNo(rollNo string) (types.Student, error)

	// UpdateStudentEmail changes the email — and only the email — of
	// the record with the given roll number, and returns the updated
	// record. Returns ErrStudentNotFound if no record matches.
	UpdateStudentEmail(rollNo string, email string) (types.Student, error)
}
