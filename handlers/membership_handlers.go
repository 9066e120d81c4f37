package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"teamforge/internal/membership"
	"teamforge/middleware"
	"teamforge/models"
	"teamforge/utils"
)

// DecisionRequest is the owner's verdict on a join request.
type DecisionRequest struct {
	Decision string `json:"decision" example:"accept" enums:"accept,reject"`
}

// MembershipRequestListResponse wraps the caller's join requests.
type MembershipRequestListResponse struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Data    []models.MembershipRequest `json:"data"`
}

// RequestToJoin godoc
// @Summary Request to join a project
// @Description Files a pending join request for the caller and returns the refreshed project page.
// @Tags membership
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "Project ID (UUID)"
// @Success 201 {object} ProjectDetailSuccessResponse "Join request created"
// @Failure 400 {object} utils.ErrorResponse "Invalid project ID"
// @Failure 401 {object} utils.ErrorResponse "Sign in required"
// @Failure 404 {object} utils.ErrorResponse "Project not found"
// @Failure 409 {object} utils.ErrorResponse "Owner of the project, or a request already exists"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /projects/{id}/join [post]
func (h *ApplicationHandler) RequestToJoin(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid project ID format")
	}

	detail, err := h.Teams.RequestToJoin(c.UserContext(), middleware.ActorFrom(c), projectID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, "Join request created", detail)
}

// DecideRequest godoc
// @Summary Accept or reject a join request
// @Description Lets the project owner decide a pending request. Returns the refreshed project page.
// @Tags membership
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "Project ID (UUID)"
// @Param   requestId path string true "Membership request ID (UUID)"
// @Param   decision body DecisionRequest true "accept or reject"
// @Success 200 {object} ProjectDetailSuccessResponse "Request decided"
// @Failure 400 {object} utils.ErrorResponse "Invalid ID or body"
// @Failure 401 {object} utils.ErrorResponse "Sign in required"
// @Failure 403 {object} utils.ErrorResponse "Caller is not the project owner"
// @Failure 404 {object} utils.ErrorResponse "Project or request not found"
// @Failure 409 {object} utils.ErrorResponse "Request already decided"
// @Failure 422 {object} utils.ErrorResponse "Unknown decision"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /projects/{id}/requests/{requestId}/decision [post]
func (h *ApplicationHandler) DecideRequest(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid project ID format")
	}
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request ID format")
	}
	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "cannot parse decision JSON")
	}

	decision := membership.Decision(utils.SanitizeInput(req.Decision))
	detail, err := h.Teams.DecideRequest(c.UserContext(), middleware.ActorFrom(c), projectID, requestID, decision)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, "Request decided", detail)
}

// ListMyRequests godoc
// @Summary List the caller's join requests
// @Description Lists the caller's membership requests across all projects, newest first.
// @Tags membership
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} MembershipRequestListResponse "Requests retrieved successfully"
// @Failure 401 {object} utils.ErrorResponse "Sign in required"
// @Failure 503 {object} utils.ErrorResponse "Store unavailable, retryable"
// @Router /me/requests [get]
func (h *ApplicationHandler) ListMyRequests(c *fiber.Ctx) error {
	records, err := h.Teams.ListMyRequests(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, "Requests retrieved successfully", records)
}

// Health godoc
// @Summary Liveness and store reachability
// @Tags health
// @Produce  json
// @Success 200 {object} utils.SuccessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /health [get]
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	if err := h.Teams.Ping(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, "API is healthy", fiber.Map{"store": "ok"})
}
