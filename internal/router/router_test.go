package router

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		path     string
		wantName Name
		wantID   string
	}{
		{"/", Login, ""},
		{"", Login, ""},
		{"/register", Register, ""},
		{"/dashboard", Dashboard, ""},
		{"/projects", ProjectList, ""},
		{"/projects/", ProjectList, ""},
		{"/projects/new", ProjectNew, ""},
		{"/projects/7", ProjectDetail, "7"},
		{"/projects/edit/7", ProjectEdit, "7"},
		{"/tasks", TaskList, ""},
		{"/tasks/new?project_id=3", TaskNew, ""},
		{"/tasks/abc", TaskDetail, "abc"},
		{"/tasks/edit/12", TaskEdit, "12"},
		{"/tasks/edit", TaskDetail, "edit"},
		{"/tasks/1/comments", Unknown, ""},
		{"/settings", Unknown, ""},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			r := Parse(test.path)
			if r.Name != test.wantName || r.ID != test.wantID {
				t.Errorf("Parse(%q) = {%v %q}, want {%v %q}", test.path, r.Name, r.ID, test.wantName, test.wantID)
			}
		})
	}

	if got := Parse("/tasks/new?project_id=3").Query.Get("project_id"); got != "3" {
		t.Errorf("project_id query = %q, want 3", got)
	}
}

func TestGuard(t *testing.T) {
	anon := Auth{}
	authed := Auth{IsAuthenticated: true}
	loading := Auth{Loading: true}

	tests := []struct {
		name string
		path string
		auth Auth
		want Decision
	}{
		{"loading defers every decision", "/dashboard", loading, Decision{Pending: true}},
		{"loading defers unknown paths too", "/nowhere", loading, Decision{Pending: true}},
		{"anonymous on protected path goes to login", "/tasks/3", anon, Decision{Redirect: "/"}},
		{"anonymous may see login", "/", anon, Decision{}},
		{"anonymous may see register", "/register", anon, Decision{}},
		{"authenticated on login goes home", "/", authed, Decision{Redirect: "/dashboard"}},
		{"authenticated on register goes home", "/register", authed, Decision{Redirect: "/dashboard"}},
		{"authenticated may see protected", "/projects/edit/2", authed, Decision{}},
		{"unknown path goes to login when authenticated", "/nowhere", authed, Decision{Redirect: "/"}},
		{"unknown path goes to login when anonymous", "/nowhere", anon, Decision{Redirect: "/"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Guard(Parse(test.path), test.auth)
			if got != test.want {
				t.Errorf("Guard(%q, %+v) = %+v, want %+v", test.path, test.auth, got, test.want)
			}
		})
	}
}
