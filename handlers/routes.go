package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the API on router, which is expected to be the /api/v1 group.
func (h *ApplicationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)

	projects := router.Group("/projects")
	projects.Get("", h.ListProjects)
	projects.Post("", h.CreateProject)
	projects.Get("/:id", h.GetProject)
	projects.Post("/:id/join", h.RequestToJoin)
	projects.Post("/:id/requests/:requestId/decision", h.DecideRequest)

	router.Get("/me/requests", h.ListMyRequests)
}
