package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tgienger/taskdeck/internal/models"
)

// TaskService maps the task endpoints one to one
type TaskService struct {
	client *Client
}

func NewTaskService(client *Client) *TaskService {
	return &TaskService{client: client}
}

func taskPath(id int64) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}

// List returns tasks matching filter. Unset filter members are not sent.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.client.Do(ctx, http.MethodGet, "/api/tasks/", filter.Values(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	if err := s.client.Do(ctx, http.MethodGet, taskPath(id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var t models.Task
	if err := s.client.Do(ctx, http.MethodPost, "/api/tasks/", nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update sends only the fields set in patch
func (s *TaskService) Update(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	var t models.Task
	if err := s.client.Do(ctx, http.MethodPatch, taskPath(id), nil, patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) (json.RawMessage, error) {
	var ack json.RawMessage
	if err := s.client.Do(ctx, http.MethodDelete, taskPath(id), nil, nil, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}
