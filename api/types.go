package api

import (
	"context"

	"github.com/rpupo63/portfolio-backend/models"
)

// ProjectStore is the persistence the project endpoints need.
// database.ProjectRepo implements it.
type ProjectStore interface {
	FindAll(ctx context.Context) ([]*models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Authenticator exchanges the admin credential for a token and checks tokens.
// services.AuthService implements it.
type Authenticator interface {
	Login(username, password string) (string, error)
	VerifyToken(token string) (string, error)
}

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	statusHandler  statusHandler
	authHandler    authHandler
	projectHandler projectHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
