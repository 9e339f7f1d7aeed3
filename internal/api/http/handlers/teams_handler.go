package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// TeamsHandler manages team administration endpoints.
type TeamsHandler struct {
	service *service.RoutingService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(routingService *service.RoutingService) *TeamsHandler {
	return &TeamsHandler{service: routingService}
}

// Create POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.CreateTeam(c.UserContext(), actor, teamInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// Update PUT /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.service.UpdateTeam(c.UserContext(), actor, c.Params("id"), teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Delete DELETE /teams/:id.
func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteTeam(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	team, err := h.service.GetTeam(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// List GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReassignTicket POST /tickets/:id/reassign.
func (h *TeamsHandler) ReassignTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReassignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TeamID == "" {
		return apperrors.NewValidationError("team_id required", nil)
	}
	ticket, err := h.service.Reassign(c.UserContext(), actor, c.Params("id"), req.TeamID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryIDs: req.CategoryIDs,
		DistrictIDs: req.DistrictIDs,
	}
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		IsFallback:  team.IsFallback,
		CategoryIDs: team.CategoryIDs,
		DistrictIDs: team.DistrictIDs,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}
