package api

// Services bundles the resource services sharing one client
type Services struct {
	Auth     *AuthService
	Projects *ProjectService
	Tasks    *TaskService
}

func NewServices(client *Client) *Services {
	return &Services{
		Auth:     NewAuthService(client),
		Projects: NewProjectService(client),
		Tasks:    NewTaskService(client),
	}
}
