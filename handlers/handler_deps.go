package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"teamforge/internal/membership"
	"teamforge/internal/service"
	"teamforge/models"
)

// TeamService defines the operations handlers expect from the team service.
// The concrete implementation is service.Teams.
type TeamService interface {
	CreateProject(ctx context.Context, actor uuid.NullUUID, input membership.ProjectInput) (models.Project, error)
	ListProjects(ctx context.Context, actor uuid.NullUUID) (service.ProjectListing, error)
	GetProjectDetail(ctx context.Context, actor uuid.NullUUID, projectID uuid.UUID) (service.ProjectDetail, error)
	RequestToJoin(ctx context.Context, actor uuid.NullUUID, projectID uuid.UUID) (service.ProjectDetail, error)
	DecideRequest(ctx context.Context, actor uuid.NullUUID, projectID, requestID uuid.UUID, decision membership.Decision) (service.ProjectDetail, error)
	ListMyRequests(ctx context.Context, actor uuid.NullUUID) ([]models.MembershipRequest, error)
	Ping(ctx context.Context) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Teams  TeamService
	Logger *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(teams TeamService, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Teams:  teams,
		Logger: logger,
	}
}

var _ TeamService = (*service.Teams)(nil)
