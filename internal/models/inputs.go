package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ProjectInput is the body of a project create request
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProjectPatch carries only the project fields that changed
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}

// Diff returns the fields of in that differ from orig
func (in ProjectInput) Diff(orig Project) ProjectPatch {
	var p ProjectPatch
	if in.Name != orig.Name {
		p.Name = &in.Name
	}
	if in.Description != orig.Description {
		p.Description = &in.Description
	}
	return p
}

// TaskInput is the body of a task create request. Unset optionals are omitted.
type TaskInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	ProjectID      *int64     `json:"project_id,omitempty"`
	DueDate        *Timestamp `json:"due_date,omitempty"`
	AssignedUserID *int64     `json:"assigned_user_id,omitempty"`
}

// NewTaskInput returns a task with the default status and priority
func NewTaskInput() TaskInput {
	return TaskInput{Status: StatusTodo, Priority: PriorityMedium}
}

// TaskInputFrom seeds an input from an existing task
func TaskInputFrom(t Task) TaskInput {
	return TaskInput{
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		ProjectID:      t.ProjectID,
		DueDate:        t.DueDate,
		AssignedUserID: t.AssignedUserID,
	}
}

// TaskPatch carries only the task fields that changed. The Clear flags send an
// explicit null for optional references.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *Status
	Priority       *Priority
	ProjectID      *int64
	DueDate        *Timestamp
	AssignedUserID *int64

	ClearProject  bool
	ClearDueDate  bool
	ClearAssignee bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.ProjectID == nil && p.DueDate == nil && p.AssignedUserID == nil &&
		!p.ClearProject && !p.ClearDueDate && !p.ClearAssignee
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	switch {
	case p.ProjectID != nil:
		body["project_id"] = *p.ProjectID
	case p.ClearProject:
		body["project_id"] = nil
	}
	switch {
	case p.DueDate != nil:
		body["due_date"] = *p.DueDate
	case p.ClearDueDate:
		body["due_date"] = nil
	}
	switch {
	case p.AssignedUserID != nil:
		body["assigned_user_id"] = *p.AssignedUserID
	case p.ClearAssignee:
		body["assigned_user_id"] = nil
	}
	return json.Marshal(body)
}

// Diff returns the fields of in that differ from orig
func (in TaskInput) Diff(orig Task) TaskPatch {
	var p TaskPatch
	if in.Title != orig.Title {
		p.Title = &in.Title
	}
	if in.Description != orig.Description {
		p.Description = &in.Description
	}
	if in.Status != orig.Status {
		p.Status = &in.Status
	}
	if in.Priority != orig.Priority {
		p.Priority = &in.Priority
	}
	if !sameID(in.ProjectID, orig.ProjectID) {
		if in.ProjectID == nil {
			p.ClearProject = true
		} else {
			p.ProjectID = in.ProjectID
		}
	}
	if !sameTime(in.DueDate, orig.DueDate) {
		if in.DueDate == nil {
			p.ClearDueDate = true
		} else {
			p.DueDate = in.DueDate
		}
	}
	if !sameID(in.AssignedUserID, orig.AssignedUserID) {
		if in.AssignedUserID == nil {
			p.ClearAssignee = true
		} else {
			p.AssignedUserID = in.AssignedUserID
		}
	}
	return p
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *Timestamp) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b.Time)
}

// TaskFilter narrows a task listing on the server. Zero members are unset.
type TaskFilter struct {
	Status    Status
	Priority  Priority
	ProjectID *int64
}

// Active reports whether any member is set
func (f TaskFilter) Active() bool {
	return f.Status != "" || f.Priority != "" || f.ProjectID != nil
}

// Values encodes the filter as query parameters
func (f TaskFilter) Values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.ProjectID != nil {
		q.Set("project_id", strconv.FormatInt(*f.ProjectID, 10))
	}
	return q
}
