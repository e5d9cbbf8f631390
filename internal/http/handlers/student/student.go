// Package student contains the JSON API handlers for the Student
// resource.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// The router expects handlers with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// which has no room for dependencies. Each exported function here is a
// factory: it accepts the storage dependency and returns a handler that
// closes over it. The factory runs once at route registration; the
// returned handler runs on every request.
//
//	router.HandleFunc("POST /api/students", student.New(store))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/types"
	"github.com/ahmedkhan/student-portal/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// One validator instance for the package; it caches struct metadata and
// is safe for concurrent use.
var validate = validator.New()

// updateEmailRequest is the body accepted by UpdateEmail.
type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// New handles POST /api/students.
// Creates a student from the JSON request body.
//
// Request body:
//
//	{ "name": "Ali Hassan", "roll_no": "CS103", "department": "Computer Science", "email": "ali@x.com" }
//
// Responses:
//
//	201 Created      — the stored record
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — roll number already exists
//	500 Internal     — storage error
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		err := json.NewDecoder(r.Body).Decode(&student)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		if err := store.CreateStudent(student); err != nil {
			if errors.Is(err, storage.ErrDuplicateRollNo) {
				response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
				return
			}
			slog.Error("error creating student",
				slog.String("roll_no", student.RollNo),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.String("roll_no", student.RollNo))
		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// GetByRollNo handles GET /api/students/{rollNo}.
// Fetches a single student by roll number (case-insensitive).
//
// Responses:
//
//	200 OK         — the record
//	404 Not Found  — no student with that roll number
//	500 Internal   — storage error
func GetByRollNo(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rollNo := r.PathValue("rollNo")
		slog.Info("getting a student", slog.String("roll_no", rollNo))

		student, err := store.GetStudentByRollNo(rollNo)
		if err != nil {
			if errors.Is(err, storage.ErrStudentNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
				return
			}
			slog.Error("error getting student",
				slog.String("roll_no", rollNo),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students.
// Returns all students as a JSON array, [] when there are none.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// UpdateEmail handles PATCH /api/students/{rollNo}/email.
// The email is the only mutable field of a record, so the update
// surface is exactly that narrow.
//
// Request body:
//
//	{ "email": "new@x.com" }
//
// Responses:
//
//	200 OK           — the updated record
//	400 Bad Request  — empty body, malformed JSON, or invalid email
//	404 Not Found    — no student with that roll number
//	500 Internal     — storage error
func UpdateEmail(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rollNo := r.PathValue("rollNo")
		slog.Info("updating student email", slog.String("roll_no", rollNo))

		var req updateEmailRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		updated, err := store.UpdateStudentEmail(rollNo, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrStudentNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
				return
			}
			slog.Error("error updating student email",
				slog.String("roll_no", rollNo),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student email updated", slog.String("roll_no", rollNo))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}
