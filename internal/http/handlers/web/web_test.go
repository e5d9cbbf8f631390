package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmedkhan/student-portal/internal/config"
	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/storage/jsonfile"
	"github.com/ahmedkhan/student-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the HTML routes against a throwaway jsonfile
// store, mirroring the route table in main.
func newTestRouter(t *testing.T) (*http.ServeMux, *jsonfile.Store, string) {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "students.json")
	cfg := &config.Config{
		Env: "dev",
		Storage: config.Storage{
			Driver: config.DriverJSONFile,
			Path:   dataPath,
		},
	}
	store, err := jsonfile.New(cfg)
	require.NoError(t, err)

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", Home())
	router.HandleFunc("GET /add", AddForm())
	router.HandleFunc("POST /add", AddSubmit(store))
	router.HandleFunc("GET /students", List(store))
	router.HandleFunc("GET /search", SearchForm())
	router.HandleFunc("POST /search", SearchSubmit(store))
	router.HandleFunc("GET /favicon.ico", Favicon())
	router.HandleFunc("/", NotFound())
	return router, store, dataPath
}

func get(router *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(router *http.ServeMux, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func mustAdd(t *testing.T, store storage.Storage, s types.Student) {
	t.Helper()
	require.NoError(t, store.CreateStudent(s))
}

func TestHomePage(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := get(router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student Information Portal")
	assert.Contains(t, rec.Body.String(), `href="/students"`)
}

func TestNotFoundPage(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := get(router, "/no-such-page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 - Page Not Found")
}

func TestAddFormRendered(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := get(router, "/add")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="roll_no"`)
}

func TestAddStudentRedirectsAndLists(t *testing.T) {
	router, store, _ := newTestRouter(t)

	rec := postForm(router, "/add", url.Values{
		"name":       {"Ali"},
		"roll_no":    {"101"},
		"department": {"CS"},
		"email":      {"ali@x.com"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/students?added=")

	// Exactly one record landed in the store.
	students, err := store.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "101", students[0].RollNo)

	// Following the redirect shows the confirmation and the record.
	rec = get(router, rec.Header().Get("Location"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "added successfully")
	assert.Contains(t, rec.Body.String(), "ali@x.com")
}

func TestAddStudentMissingFields(t *testing.T) {
	router, store, _ := newTestRouter(t)

	rec := postForm(router, "/add", url.Values{"name": {"Ali"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required!")

	students, err := store.GetStudents()
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestAddStudentInvalidEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postForm(router, "/add", url.Values{
		"name":       {"Ali"},
		"roll_no":    {"101"},
		"department": {"CS"},
		"email":      {"not-an-email"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email format!")
	// The rejected form comes back pre-filled.
	assert.Contains(t, rec.Body.String(), `value="101"`)
}

func TestAddStudentDuplicateRollNo(t *testing.T) {
	router, store, _ := newTestRouter(t)
	mustAdd(t, store, types.Student{
		Name: "Ali", RollNo: "101", Department: "CS", Email: "ali@x.com",
	})

	rec := postForm(router, "/add", url.Values{
		"name":       {"Other"},
		"roll_no":    {"101"},
		"department": {"EE"},
		"email":      {"other@x.com"},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Roll number 101 already exists!")
}

func TestStudentsTable(t *testing.T) {
	router, store, _ := newTestRouter(t)

	// Empty collection renders the empty message, not an error.
	rec := get(router, "/students")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No student records found.")

	mustAdd(t, store, types.Student{
		Name: "Ali", RollNo: "101", Department: "CS", Email: "ali@x.com",
	})
	mustAdd(t, store, types.Student{
		Name: "Sara", RollNo: "102", Department: "EE", Email: "sara@x.com",
	})

	rec = get(router, "/students")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ali@x.com")
	assert.Contains(t, rec.Body.String(), "sara@x.com")
	assert.Contains(t, rec.Body.String(), "Total students: 2")
}

func TestStudentsRollNoSearch(t *testing.T) {
	router, store, _ := newTestRouter(t)
	mustAdd(t, store, types.Student{
		Name: "Ali", RollNo: "101", Department: "CS", Email: "ali@x.com",
	})

	rec := get(router, "/students?roll_no=101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ali@x.com")
	assert.NotContains(t, rec.Body.String(), "Student not found")

	rec = get(router, "/students?roll_no=999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student not found")
}

func TestStudentsLoadErrorIsVisible(t *testing.T) {
	router, _, dataPath := newTestRouter(t)
	require.NoError(t, os.WriteFile(dataPath, []byte("not json"), 0o644))

	rec := get(router, "/students")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error loading students")
}

func TestSearchFlow(t *testing.T) {
	router, store, _ := newTestRouter(t)
	mustAdd(t, store, types.Student{
		Name: "Ali", RollNo: "CS101", Department: "CS", Email: "ali@x.com",
	})

	rec := get(router, "/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="roll_no"`)

	// Roll numbers match case-insensitively.
	rec = postForm(router, "/search", url.Values{"roll_no": {"cs101"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student found!")
	assert.Contains(t, rec.Body.String(), "ali@x.com")

	rec = postForm(router, "/search", url.Values{"roll_no": {"CS999"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student with roll number CS999 not found!")

	rec = postForm(router, "/search", url.Values{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a roll number!")
}

func TestFavicon(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := get(router, "/favicon.ico")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
