// Package router maps navigation paths to screens and decides whether the
// current session may reach them.
package router

import (
	"net/url"
	"strings"
)

// Well-known paths
const (
	PathLogin     = "/"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathProjects  = "/projects"
	PathTasks     = "/tasks"
)

// Name identifies a screen
type Name int

const (
	Unknown Name = iota
	Login
	Register
	Dashboard
	ProjectList
	ProjectNew
	ProjectEdit
	ProjectDetail
	TaskList
	TaskNew
	TaskEdit
	TaskDetail
)

// Route is a parsed navigation target
type Route struct {
	Name Name
	Path string
	// ID is the raw {id} segment; screens validate it
	ID    string
	Query url.Values
}

// Parse resolves a path such as "/tasks/new?project_id=3"
func Parse(raw string) Route {
	u, err := url.Parse(raw)
	if err != nil {
		return Route{Name: Unknown, Path: raw}
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	r := Route{Path: path, Query: u.Query()}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case path == "/":
		r.Name = Login
	case path == PathRegister:
		r.Name = Register
	case path == PathDashboard:
		r.Name = Dashboard
	case len(segs) >= 1 && (segs[0] == "projects" || segs[0] == "tasks"):
		r.Name, r.ID = resource(segs)
	}
	return r
}

func resource(segs []string) (Name, string) {
	list, create, edit, detail := ProjectList, ProjectNew, ProjectEdit, ProjectDetail
	if segs[0] == "tasks" {
		list, create, edit, detail = TaskList, TaskNew, TaskEdit, TaskDetail
	}
	switch {
	case len(segs) == 1:
		return list, ""
	case len(segs) == 2 && segs[1] == "new":
		return create, ""
	case len(segs) == 2:
		return detail, segs[1]
	case len(segs) == 3 && segs[1] == "edit":
		return edit, segs[2]
	}
	return Unknown, ""
}

// Protected reports whether the route requires an authenticated session
func (n Name) Protected() bool {
	switch n {
	case Unknown, Login, Register:
		return false
	}
	return true
}

// AnonymousOnly reports whether the route is an entry screen for signed-out users
func (n Name) AnonymousOnly() bool {
	return n == Login || n == Register
}

// Auth is the part of the session state the guard looks at
type Auth struct {
	IsAuthenticated bool
	Loading         bool
}

// Decision is the outcome of guarding a route
type Decision struct {
	// Pending means the session is still loading and no decision is made
	Pending bool
	// Redirect is the path to go to instead, empty when access is allowed
	Redirect string
}

func (d Decision) Allowed() bool {
	return !d.Pending && d.Redirect == ""
}

// Guard decides whether r is reachable. The attempted destination is not
// remembered across a redirect.
func Guard(r Route, auth Auth) Decision {
	if auth.Loading {
		return Decision{Pending: true}
	}
	switch {
	case r.Name == Unknown:
		return Decision{Redirect: PathLogin}
	case r.Name.Protected() && !auth.IsAuthenticated:
		return Decision{Redirect: PathLogin}
	case r.Name.AnonymousOnly() && auth.IsAuthenticated:
		return Decision{Redirect: PathDashboard}
	}
	return Decision{}
}
