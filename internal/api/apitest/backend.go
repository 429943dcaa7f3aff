// Package apitest provides an in-memory stand-in for the task management API
// and a memory token store, for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tgienger/taskdeck/internal/models"
)

// Request is a request the backend received
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type account struct {
	user     models.User
	password string
}

// Backend serves the REST endpoints over httptest. Failures can be injected
// per method and path.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	projects []models.Project
	tasks    []models.Task
	requests []Request
	failures map[string]failure
	nextID   int64
}

type failure struct {
	status int
	detail string
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		accounts: make(map[string]*account),
		failures: make(map[string]failure),
		nextID:   1,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

// TokenFor is the access token issued to email on login
func TokenFor(email string) string { return "token-" + email }

func (b *Backend) AddUser(email, password, fullName string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := models.User{ID: b.id(), Email: email, FullName: fullName}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

func (b *Backend) AddProject(p models.Project) models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.id()
	}
	b.projects = append(b.projects, p)
	return p
}

func (b *Backend) AddTask(t models.Task) models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == 0 {
		t.ID = b.id()
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	b.tasks = append(b.tasks, t)
	return t
}

// Fail makes every request matching method and path answer status with detail
func (b *Backend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, detail: detail}
}

// Requests returns a copy of the received requests
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestsTo returns the received requests matching method and path
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) Projects() []models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Project(nil), b.projects...)
}

func (b *Backend) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Task(nil), b.tasks...)
}

func (b *Backend) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})

	if f, ok := b.failures[r.Method+" "+r.URL.Path]; ok {
		writeDetail(w, f.status, f.detail)
		return
	}

	switch {
	case r.URL.Path == "/api/auth/login" && r.Method == http.MethodPost:
		b.login(w, body)
		return
	case r.URL.Path == "/api/auth/register" && r.Method == http.MethodPost:
		b.register(w, body)
		return
	}

	user := b.authenticate(r)
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	switch {
	case r.URL.Path == "/api/users/me" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, user)
	case r.URL.Path == "/api/projects/":
		b.projectCollection(w, r, body)
	case strings.HasPrefix(r.URL.Path, "/api/projects/"):
		b.projectItem(w, r, body)
	case r.URL.Path == "/api/tasks/":
		b.taskCollection(w, r, body)
	case strings.HasPrefix(r.URL.Path, "/api/tasks/"):
		b.taskItem(w, r, body)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (b *Backend) login(w http.ResponseWriter, body []byte) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	acc, ok := b.accounts[form.Get("username")]
	if !ok || acc.password != form.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": TokenFor(acc.user.Email),
		"token_type":   "bearer",
	})
}

func (b *Backend) register(w http.ResponseWriter, body []byte) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if _, exists := b.accounts[in.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := models.User{ID: b.id(), Email: in.Email, FullName: in.FullName}
	b.accounts[in.Email] = &account{user: u, password: in.Password}
	writeJSON(w, http.StatusCreated, u)
}

func (b *Backend) authenticate(r *http.Request) *models.User {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil
	}
	for _, acc := range b.accounts {
		if TokenFor(acc.user.Email) == token {
			u := acc.user
			return &u
		}
	}
	return nil
}

func (b *Backend) projectCollection(w http.ResponseWriter, r *http.Request, body []byte) {
	switch r.Method {
	case http.MethodGet:
		out := b.projects
		if out == nil {
			out = []models.Project{}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var in models.ProjectInput
		if err := json.Unmarshal(body, &in); err != nil || in.Name == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "name is required")
			return
		}
		p := models.Project{ID: b.id(), Name: in.Name, Description: in.Description}
		b.projects = append(b.projects, p)
		writeJSON(w, http.StatusCreated, p)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (b *Backend) projectItem(w http.ResponseWriter, r *http.Request, body []byte) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/projects/"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	idx := -1
	for i, p := range b.projects {
		if p.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, b.projects[idx])
	case http.MethodPatch:
		if err := overlay(&b.projects[idx], body); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, b.projects[idx])
	case http.MethodDelete:
		b.projects = append(b.projects[:idx], b.projects[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (b *Backend) taskCollection(w http.ResponseWriter, r *http.Request, body []byte) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		out := []models.Task{}
		for _, t := range b.tasks {
			if s := q.Get("status"); s != "" && string(t.Status) != s {
				continue
			}
			if p := q.Get("priority"); p != "" && string(t.Priority) != p {
				continue
			}
			if pid := q.Get("project_id"); pid != "" && (t.ProjectID == nil || strconv.FormatInt(*t.ProjectID, 10) != pid) {
				continue
			}
			out = append(out, t)
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var in models.TaskInput
		if err := json.Unmarshal(body, &in); err != nil || in.Title == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "title is required")
			return
		}
		t := models.Task{
			ID:             b.id(),
			Title:          in.Title,
			Description:    in.Description,
			Status:         in.Status,
			Priority:       in.Priority,
			ProjectID:      in.ProjectID,
			DueDate:        in.DueDate,
			AssignedUserID: in.AssignedUserID,
		}
		b.tasks = append(b.tasks, t)
		writeJSON(w, http.StatusCreated, t)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (b *Backend) taskItem(w http.ResponseWriter, r *http.Request, body []byte) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	idx := -1
	for i, t := range b.tasks {
		if t.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, b.tasks[idx])
	case http.MethodPatch:
		if err := overlay(&b.tasks[idx], body); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, b.tasks[idx])
	case http.MethodDelete:
		b.tasks = append(b.tasks[:idx], b.tasks[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

// overlay applies a partial JSON document to dst
func overlay(dst any, patch []byte) error {
	current, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(current, &fields); err != nil {
		return err
	}
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return fmt.Errorf("invalid patch: %w", err)
	}
	for k, v := range changes {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
