// Package web contains the HTML page handlers: the welcome page, the
// add-student form, the students table with roll-number search, and the
// search page. Pages are rendered from templates embedded into the
// binary, so the server ships as a single executable.
//
// The handlers follow the same closure/factory pattern as the JSON API
// package: each exported function takes its dependencies and returns an
// http.HandlerFunc that closes over them.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/types"
	"github.com/go-playground/validator/v10"
)

//go:embed templates/*.html
var templateFS embed.FS

// Parsed once at startup; template.Must panics on a bad template, which
// is the right failure mode for assets compiled into the binary.
// addOne turns the zero-based range index into the 1-based row number
// shown in the students table.
var templates = template.Must(
	template.New("").Funcs(template.FuncMap{
		"addOne": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html"),
)

var validate = validator.New()

// flash kinds drive the banner colour in the templates.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// addPage is the data for add.html: a flash message plus the submitted
// values, so a rejected form comes back pre-filled.
type addPage struct {
	Flash   string
	Kind    string
	Student types.Student
}

// studentsPage is the data for students.html. When Query is set the
// page shows a single search result (or "Student not found") instead of
// the full table. LoadError is set when the record store itself failed,
// which renders as an explicit error banner rather than an empty table.
type studentsPage struct {
	Flash     string
	Kind      string
	Students  []types.Student
	Query     string
	Student   *types.Student
	LoadError string
}

// searchPage is the data for search.html.
type searchPage struct {
	Flash   string
	Kind    string
	Query   string
	Student *types.Student
}

// render writes an HTML page with the given status code.
func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		// Too late to change the status; the page may be truncated.
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()))
	}
}

// Home handles GET /{$} — the static welcome page with navigation.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "index.html", nil)
	}
}

// AddForm handles GET /add — the empty add-student form.
func AddForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "add.html", addPage{})
	}
}

// AddSubmit handles POST /add.
//
// Form fields: name, roll_no, department, email. All are required and
// the email must look like an email; a duplicate roll number is
// rejected. On any rejection the form is re-rendered with a message and
// the submitted values; on success the client is redirected to
// /students with a confirmation banner.
func AddSubmit(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render(w, http.StatusBadRequest, "add.html", addPage{
				Flash: "Could not read the submitted form.",
				Kind:  flashError,
			})
			return
		}

		student := types.Student{
			Name:       strings.TrimSpace(r.PostFormValue("name")),
			RollNo:     strings.TrimSpace(r.PostFormValue("roll_no")),
			Department: strings.TrimSpace(r.PostFormValue("department")),
			Email:      strings.TrimSpace(r.PostFormValue("email")),
		}

		if err := validate.Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			render(w, http.StatusBadRequest, "add.html", addPage{
				Flash:   formErrorMessage(validateErrs),
				Kind:    flashError,
				Student: student,
			})
			return
		}

		if err := store.CreateStudent(student); err != nil {
			if errors.Is(err, storage.ErrDuplicateRollNo) {
				render(w, http.StatusConflict, "add.html", addPage{
					Flash:   fmt.Sprintf("Roll number %s already exists!", student.RollNo),
					Kind:    flashError,
					Student: student,
				})
				return
			}
			slog.Error("error adding student",
				slog.String("roll_no", student.RollNo),
				slog.String("error", err.Error()))
			render(w, http.StatusInternalServerError, "add.html", addPage{
				Flash:   "Error adding student: " + err.Error(),
				Kind:    flashError,
				Student: student,
			})
			return
		}

		slog.Info("student added", slog.String("roll_no", student.RollNo))
		http.Redirect(w, r, "/students?added="+url.QueryEscape(student.Name),
			http.StatusSeeOther)
	}
}

// List handles GET /students.
//
// Without parameters it renders the full table. With ?roll_no=X it
// renders the single matching record, or "Student not found" when no
// record matches. The ?added=NAME parameter (set by the add redirect)
// shows a confirmation banner above the table.
func List(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := studentsPage{}

		if added := r.URL.Query().Get("added"); added != "" {
			page.Flash = fmt.Sprintf("Student %s added successfully!", added)
			page.Kind = flashSuccess
		}

		if rollNo := strings.TrimSpace(r.URL.Query().Get("roll_no")); rollNo != "" {
			page.Query = rollNo

			student, err := store.GetStudentByRollNo(rollNo)
			switch {
			case err == nil:
				page.Student = &student
				render(w, http.StatusOK, "students.html", page)
			case errors.Is(err, storage.ErrStudentNotFound):
				render(w, http.StatusOK, "students.html", page)
			default:
				slog.Error("error searching students",
					slog.String("roll_no", rollNo),
					slog.String("error", err.Error()))
				page.LoadError = "Error loading students: " + err.Error()
				render(w, http.StatusInternalServerError, "students.html", page)
			}
			return
		}

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error loading students", slog.String("error", err.Error()))
			page.LoadError = "Error loading students: " + err.Error()
			render(w, http.StatusInternalServerError, "students.html", page)
			return
		}

		page.Students = students
		render(w, http.StatusOK, "students.html", page)
	}
}

// SearchForm handles GET /search — the empty search form.
func SearchForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "search.html", searchPage{})
	}
}

// SearchSubmit handles POST /search.
// Looks up the submitted roll number and renders the record, or a
// not-found message with the form again.
func SearchSubmit(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render(w, http.StatusBadRequest, "search.html", searchPage{
				Flash: "Could not read the submitted form.",
				Kind:  flashError,
			})
			return
		}

		rollNo := strings.TrimSpace(r.PostFormValue("roll_no"))
		if rollNo == "" {
			render(w, http.StatusBadRequest, "search.html", searchPage{
				Flash: "Please enter a roll number!",
				Kind:  flashError,
			})
			return
		}

		student, err := store.GetStudentByRollNo(rollNo)
		switch {
		case err == nil:
			render(w, http.StatusOK, "search.html", searchPage{
				Flash:   "Student found!",
				Kind:    flashSuccess,
				Query:   rollNo,
				Student: &student,
			})
		case errors.Is(err, storage.ErrStudentNotFound):
			render(w, http.StatusOK, "search.html", searchPage{
				Flash: fmt.Sprintf("Student with roll number %s not found!", rollNo),
				Kind:  flashError,
				Query: rollNo,
			})
		default:
			slog.Error("error searching student",
				slog.String("roll_no", rollNo),
				slog.String("error", err.Error()))
			render(w, http.StatusInternalServerError, "search.html", searchPage{
				Flash: "Error searching students: " + err.Error(),
				Kind:  flashError,
				Query: rollNo,
			})
		}
	}
}

// NotFound is the catch-all handler for paths no other route matched.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusNotFound, "notfound.html", nil)
	}
}

// Favicon handles GET /favicon.ico so browser requests don't fall
// through to the 404 page.
func Favicon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// formErrorMessage folds validator errors into the single message the
// form page shows. Missing fields take precedence over a bad email, so
// an empty form reads "All fields are required!" rather than listing
// every rule it broke.
func formErrorMessage(errs validator.ValidationErrors) string {
	for _, e := range errs {
		if e.ActualTag() == "required" {
			return "All fields are required!"
		}
	}
	for _, e := range errs {
		if e.ActualTag() == "email" {
			return "Invalid email format!"
		}
	}
	return "Invalid form input!"
}
