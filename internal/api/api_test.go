package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/api/apitest"
	"github.com/tgienger/taskdeck/internal/models"
)

func newServices(t *testing.T, token string) (*api.Services, *apitest.Backend, *apitest.TokenStore) {
	t.Helper()
	backend := apitest.NewBackend(t)
	tokens := apitest.NewTokenStore(token)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(backend.URL()+"/", nil, tokens, log)
	return api.NewServices(client), backend, tokens
}

func TestLoginIsFormEncodedAndStoresToken(t *testing.T) {
	svc, backend, tokens := newServices(t, "")
	backend.AddUser("alice@example.com", "secret", "Alice")

	resp, err := svc.Auth.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken != apitest.TokenFor("alice@example.com") {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
	if got := tokens.Token(); got != resp.AccessToken {
		t.Errorf("stored token = %q, want %q", got, resp.AccessToken)
	}

	reqs := backend.RequestsTo(http.MethodPost, "/api/auth/login")
	if len(reqs) != 1 {
		t.Fatalf("login requests = %d, want 1", len(reqs))
	}
	if ct := reqs[0].Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", ct)
	}
	form, _ := url.ParseQuery(string(reqs[0].Body))
	if form.Get("username") != "alice@example.com" || form.Get("password") != "secret" {
		t.Errorf("form = %v", form)
	}
}

func TestLoginFailureStoresNothing(t *testing.T) {
	svc, backend, tokens := newServices(t, "")
	backend.AddUser("alice@example.com", "secret", "Alice")

	_, err := svc.Auth.Login(context.Background(), "alice@example.com", "wrong")
	if !api.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("Login() error = %v, want 401", err)
	}
	if tokens.Token() != "" {
		t.Error("token stored after failed login")
	}
}

func TestRequestsCarryHeaders(t *testing.T) {
	svc, backend, _ := newServices(t, apitest.TokenFor("bob@example.com"))
	backend.AddUser("bob@example.com", "pw", "Bob")

	user, err := svc.Auth.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Errorf("user = %+v", user)
	}

	req := backend.RequestsTo(http.MethodGet, "/api/users/me")[0]
	if got := req.Header.Get("Authorization"); got != "Bearer "+apitest.TokenFor("bob@example.com") {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	svc, backend, _ := newServices(t, "")

	_, err := svc.Projects.List(context.Background())
	if !api.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("List() error = %v, want 401", err)
	}
	if got := backend.Requests()[0].Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want none", got)
	}
}

func TestRegisterDetail(t *testing.T) {
	svc, backend, tokens := newServices(t, "")
	backend.AddUser("taken@example.com", "pw", "Taken")

	_, err := svc.Auth.Register(context.Background(), "taken@example.com", "pw", "Again")
	if got := api.Detail(err); got != "Email already registered" {
		t.Errorf("Detail() = %q", got)
	}

	user, err := svc.Auth.Register(context.Background(), "new@example.com", "pw", "New")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.FullName != "New" {
		t.Errorf("user = %+v", user)
	}
	if tokens.Token() != "" {
		t.Error("Register() must not log in")
	}

	var body map[string]string
	reqs := backend.RequestsTo(http.MethodPost, "/api/auth/register")
	json.Unmarshal(reqs[1].Body, &body)
	if body["full_name"] != "New" || body["email"] != "new@example.com" {
		t.Errorf("register body = %v", body)
	}
}

func TestErrorCarriesStatusAndBody(t *testing.T) {
	svc, backend, _ := newServices(t, apitest.TokenFor("a@example.com"))
	backend.AddUser("a@example.com", "pw", "A")
	backend.Fail(http.MethodGet, "/api/projects/", http.StatusInternalServerError, "")

	_, err := svc.Projects.List(context.Background())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("List() error = %v, want *api.Error 500", err)
	}
	if len(apiErr.Body) == 0 {
		t.Error("Error.Body should carry the response body")
	}
}

func TestTaskListFilterQuery(t *testing.T) {
	svc, backend, _ := newServices(t, apitest.TokenFor("a@example.com"))
	backend.AddUser("a@example.com", "pw", "A")
	pid := int64(3)
	backend.AddTask(models.Task{ID: 10, Title: "match", Status: models.StatusDone, ProjectID: &pid})
	backend.AddTask(models.Task{ID: 11, Title: "other", Status: models.StatusTodo, ProjectID: &pid})

	tasks, err := svc.Tasks.List(context.Background(), models.TaskFilter{Status: models.StatusDone, ProjectID: &pid})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 10 {
		t.Errorf("tasks = %+v", tasks)
	}

	q := backend.RequestsTo(http.MethodGet, "/api/tasks/")[0].Query
	if q.Get("status") != "DONE" || q.Get("project_id") != "3" || q.Has("priority") {
		t.Errorf("query = %v", q)
	}
}

func TestProjectCRUD(t *testing.T) {
	ctx := context.Background()
	svc, backend, _ := newServices(t, apitest.TokenFor("a@example.com"))
	backend.AddUser("a@example.com", "pw", "A")

	created, err := svc.Projects.Create(ctx, models.ProjectInput{Name: "Alpha"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "Beta"
	updated, err := svc.Projects.Update(ctx, created.ID, models.ProjectPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Beta" {
		t.Errorf("updated = %+v", updated)
	}
	patch := backend.RequestsTo(http.MethodPatch, "/api/projects/1")
	if len(patch) != 1 || string(patch[0].Body) != `{"name":"Beta"}` {
		t.Errorf("patch requests = %+v", patch)
	}

	if _, err := svc.Projects.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Projects.Get(ctx, created.ID); !api.IsStatus(err, http.StatusNotFound) {
		t.Errorf("Get() after delete error = %v, want 404", err)
	}
}

func TestTaskCreateBody(t *testing.T) {
	svc, backend, _ := newServices(t, apitest.TokenFor("a@example.com"))
	backend.AddUser("a@example.com", "pw", "A")

	in := models.NewTaskInput()
	in.Title = "Draft release notes"
	in.Priority = models.PriorityHigh
	if _, err := svc.Tasks.Create(context.Background(), in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := backend.RequestsTo(http.MethodPost, "/api/tasks/")[0]
	if got, want := string(req.Body), `{"title":"Draft release notes","status":"TODO","priority":"HIGH"}`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := api.TokenExpiry(signed)
	if !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry() = %v, %v; want %v, true", got, ok, exp)
	}
	if _, ok := api.TokenExpiry("opaque-token"); ok {
		t.Error("TokenExpiry() of a non-JWT should be false")
	}
}
