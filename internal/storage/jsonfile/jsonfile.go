// Package jsonfile implements storage.Storage on top of a single JSON
// file holding one array of student objects.
//
// The file is the sole source of truth: every operation reads the whole
// array, and every write rewrites the whole file. That is obviously not
// a database, but for a small record collection it is simple, human-
// readable, and trivially inspectable with any text editor.
//
// Two failure modes get distinct treatment on read:
//
//   - missing file   → empty collection, nil error (first run)
//   - malformed JSON → an error the caller can surface; a corrupt data
//     file must never be silently read as "no students"
//
// Writes go through a temp file followed by os.Rename, so a crash
// mid-write leaves the previous file intact. A mutex serializes all
// operations; without it two concurrent adds could each read the old
// array and the second save would drop the first record.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ahmedkhan/student-portal/internal/config"
	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/types"
)

// Store is the JSON-file implementation of storage.Storage.
// Safe for concurrent use; mu guards the read-modify-write cycle.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store for the file at cfg.Storage.Path, creating the
// parent directory and initialising the file to an empty array when it
// does not exist yet.
func New(cfg *config.Config) (*Store, error) {
	path := cfg.Storage.Path

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonfile.New: create data dir: %w", err)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("jsonfile.New: initialise data file: %w", err)
		}
	}

	return &Store{path: path}, nil
}

// load reads and decodes the whole data file. Callers must hold mu.
func (s *Store) load() ([]types.Student, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		// The file can vanish after New (deleted by hand); treat that
		// the same as first run.
		return []types.Student{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}

	// An empty or whitespace-only file decodes to no records rather
	// than a JSON syntax error.
	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Student{}, nil
	}

	var students []types.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}
	if students == nil {
		// JSON "null" decodes to a nil slice; normalise to empty.
		students = []types.Student{}
	}

	return students, nil
}

// save rewrites the whole data file atomically. Callers must hold mu.
func (s *Store) save(students []types.Student) error {
	data, err := json.MarshalIndent(students, "", "    ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode records: %w", err)
	}
	data = append(data, '\n')

	// Write to a sibling temp file, then rename over the real one.
	// Rename is atomic on the same filesystem, so readers see either
	// the old array or the new one, never a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: rename %s: %w", tmp, err)
	}

	return nil
}

// CreateStudent appends the record after checking the roll number is
// not already taken. The whole load-append-save cycle runs under the
// lock so concurrent adds cannot lose each other's writes.
func (s *Store) CreateStudent(student types.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range students {
		if strings.EqualFold(existing.RollNo, student.RollNo) {
			return storage.ErrDuplicateRollNo
		}
	}

	students = append(students, student)
	return s.save(students)
}

// GetStudents returns every record in insertion order.
func (s *Store) GetStudents() ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// GetStudentByRollNo scans the collection for the first record whose
// roll number matches, ignoring case.
func (s *Store) GetStudentByRollNo(rollNo string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load()
	if err != nil {
		return types.Student{}, err
	}

	for _, student := range students {
		if strings.EqualFold(student.RollNo, rollNo) {
			return student, nil
		}
	}

	return types.Student{}, storage.ErrStudentNotFound
}

// UpdateStudentEmail rewrites the matching record with the new email,
// leaving every other field — and the record's position — untouched.
func (s *Store) UpdateStudentEmail(rollNo string, email string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load()
	if err != nil {
		return types.Student{}, err
	}

	for i := range students {
		if strings.EqualFold(students[i].RollNo, rollNo) {
			students[i].Email = email
			if err := s.save(students); err != nil {
				return types.Student{}, err
			}
			return students[i], nil
		}
	}

	return types.Student{}, storage.ErrStudentNotFound
}
