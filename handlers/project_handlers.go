package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"teamforge/internal/membership"
	"teamforge/internal/service"
	"teamforge/middleware"
	"teamforge/models"
	"teamforge/utils"
)

// CreateProjectRequest defines the expected request body for creating a project.
// Title is required. max_team_size defaults to 5 and is_public to true.
type CreateProjectRequest = membership.ProjectInput

// ProjectSuccessResponse defines the structure for a successful response for a single project.
type ProjectSuccessResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    models.Project `json:"data"`
}

// ProjectListSuccessResponse defines the structure for a successful response when listing projects.
type ProjectListSuccessResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    service.ProjectListing `json:"data"`
}

// ProjectDetailSuccessResponse wraps the project page of one actor.
type ProjectDetailSuccessResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Data    service.ProjectDetail `json:"data"`
}

// CreateProject godoc
// @Summary Create a new project
// @Description Creates a project owned by the signed-in user.
// @Tags projects
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   project body CreateProjectRequest true "Project to create"
// @Success 201 {object} ProjectSuccessResponse "Project created successfully"
// @Failure 400 {object} utils.ErrorResponse "Body is not valid JSON"
// @Failure 401 {object} utils.ErrorResponse "Sign in required"
// @Failure 422 {object} utils.ErrorResponse "Validation failed"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /projects [post]
func (h *ApplicationHandler) CreateProject(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "cannot parse project JSON")
	}

	project, err := h.Teams.CreateProject(c.UserContext(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, "Project created successfully", project)
}

// ListProjects godoc
// @Summary List projects
// @Description Lists every visible project and, for a signed-in user, the projects they own. Newest first.
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} ProjectListSuccessResponse "Projects retrieved successfully"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /projects [get]
func (h *ApplicationHandler) ListProjects(c *fiber.Ctx) error {
	listing, err := h.Teams.ListProjects(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, "Projects retrieved successfully", listing)
}

// GetProject godoc
// @Summary Get a project page
// @Description Returns the project, the caller's role and permitted actions, and the team.
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "Project ID (UUID)"
// @Success 200 {object} ProjectDetailSuccessResponse "Project retrieved successfully"
// @Failure 400 {object} utils.ErrorResponse "Invalid project ID"
// @Failure 404 {object} utils.ErrorResponse "Project not found"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /projects/{id} [get]
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid project ID format")
	}

	detail, err := h.Teams.GetProjectDetail(c.UserContext(), middleware.ActorFrom(c), projectID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, "Project retrieved successfully", detail)
}
