package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tgienger/taskdeck/internal/models"
)

// ProjectService maps the project endpoints one to one
type ProjectService struct {
	client *Client
}

func NewProjectService(client *Client) *ProjectService {
	return &ProjectService{client: client}
}

func projectPath(id int64) string {
	return fmt.Sprintf("/api/projects/%d", id)
}

// List returns projects in the order the backend sends them
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.client.Do(ctx, http.MethodGet, "/api/projects/", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	if err := s.client.Do(ctx, http.MethodGet, projectPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var p models.Project
	if err := s.client.Do(ctx, http.MethodPost, "/api/projects/", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update sends only the fields set in patch
func (s *ProjectService) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	var p models.Project
	if err := s.client.Do(ctx, http.MethodPatch, projectPath(id), nil, patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete returns the backend's acknowledgement, usually empty. Whether the
// project's tasks were removed too is up to the backend.
func (s *ProjectService) Delete(ctx context.Context, id int64) (json.RawMessage, error) {
	var ack json.RawMessage
	if err := s.client.Do(ctx, http.MethodDelete, projectPath(id), nil, nil, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}
