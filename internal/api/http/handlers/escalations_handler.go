package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// EscalationsHandler manages escalation endpoints.
type EscalationsHandler struct {
	service *service.EscalationService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalationService *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{service: escalationService}
}

// Request POST /escalations.
func (h *EscalationsHandler) Request(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RequestEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	escalation, err := h.service.Request(c.UserContext(), actor, req.TicketID, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": escalationResponse(escalation)})
}

// Review POST /escalations/:id/review.
func (h *EscalationsHandler) Review(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReviewEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	decision := domain.EscalationStatus(strings.ToUpper(strings.TrimSpace(req.Decision)))

	escalation, err := h.service.Review(c.UserContext(), actor, c.Params("id"), decision, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationResponse(escalation)})
}

// Get GET /escalations/:id.
func (h *EscalationsHandler) Get(c *fiber.Ctx) error {
	escalation, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationResponse(escalation)})
}

// ListPending GET /escalations/pending.
func (h *EscalationsHandler) ListPending(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	escalations, err := h.service.ListPending(c.UserContext(), actor, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationResponses(escalations)})
}

// ListByTicket GET /tickets/:id/escalations.
func (h *EscalationsHandler) ListByTicket(c *fiber.Ctx) error {
	escalations, err := h.service.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationResponses(escalations)})
}

func escalationResponse(escalation *domain.Escalation) dto.EscalationResponse {
	return dto.EscalationResponse{
		ID:             escalation.ID,
		TicketID:       escalation.TicketID,
		RequesterID:    escalation.RequesterID,
		Reason:         escalation.Reason,
		Status:         escalation.Status,
		PreviousStatus: escalation.PreviousStatus,
		ReviewerID:     escalation.ReviewerID,
		ReviewComment:  escalation.ReviewComment,
		CreatedAt:      escalation.CreatedAt,
		ReviewedAt:     escalation.ReviewedAt,
	}
}

func escalationResponses(escalations []domain.Escalation) []dto.EscalationResponse {
	items := make([]dto.EscalationResponse, 0, len(escalations))
	for i := range escalations {
		items = append(items, escalationResponse(&escalations[i]))
	}
	return items
}
