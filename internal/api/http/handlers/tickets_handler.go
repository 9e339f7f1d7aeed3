package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/config"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/repository"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets   *service.TicketService
	feedback  *service.FeedbackService
	proximity config.AnalyticsConfig
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, feedback *service.FeedbackService, proximity config.AnalyticsConfig) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, feedback: feedback, proximity: proximity}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID == "" || req.DistrictID == "" {
		return apperrors.NewValidationError("category_id and district_id required", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		DistrictID:  req.DistrictID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	newStatus := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if newStatus == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.Transition(c.UserContext(), actor, c.Params("id"), newStatus, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	logs, err := h.tickets.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.StatusLogResponse{
			ID:        logs[i].ID,
			OldStatus: logs[i].OldStatus,
			NewStatus: logs[i].NewStatus,
			ActorID:   logs[i].ActorID,
			Comment:   logs[i].Comment,
			CreatedAt: logs[i].CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Follow POST /tickets/:id/follow.
func (h *TicketsHandler) Follow(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.tickets.Follow(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Unfollow DELETE /tickets/:id/follow.
func (h *TicketsHandler) Unfollow(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.tickets.Unfollow(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.tickets.AddComment(c.UserContext(), actor, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.tickets.ListComments(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddPhoto POST /tickets/:id/photos.
func (h *TicketsHandler) AddPhoto(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	photoType := domain.PhotoType(strings.ToUpper(strings.TrimSpace(req.Type)))
	photo, err := h.tickets.AddPhoto(c.UserContext(), actor, c.Params("id"), req.StorageKey, req.MimeType, photoType)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PhotoResponse{
		ID:         photo.ID,
		TicketID:   photo.TicketID,
		UploaderID: photo.UploaderID,
		StorageKey: photo.StorageKey,
		MimeType:   photo.MimeType,
		Type:       photo.Type,
		CreatedAt:  photo.CreatedAt,
	}})
}

// SubmitFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.feedback.Submit(c.UserContext(), actor, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// GetFeedback GET /tickets/:id/feedback.
func (h *TicketsHandler) GetFeedback(c *fiber.Ctx) error {
	feedback, err := h.feedback.GetForTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// Nearby GET /tickets/nearby.
func (h *TicketsHandler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return apperrors.NewValidationError("lat required", nil)
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return apperrors.NewValidationError("lon required", nil)
	}
	radius, err := strconv.ParseFloat(c.Query("radius_m"), 64)
	if err != nil || radius <= 0 {
		return apperrors.NewValidationError("radius_m must be a positive number", nil)
	}
	if max := h.proximity.ProximityMaxRadiusM; max > 0 && radius > max {
		return apperrors.NewValidationError("radius_m exceeds maximum", map[string]any{"max_radius_m": max})
	}
	var categoryID *string
	if val := c.Query("category_id"); val != "" {
		categoryID = &val
	}

	nearby, err := h.tickets.FindNearby(c.UserContext(), lat, lon, radius, categoryID)
	if err != nil {
		return err
	}
	limit := parseInt(c.Query("limit"), h.proximity.ProximityDefaultMatches)
	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}
	items := make([]dto.NearbyTicketResponse, 0, len(nearby))
	for i := range nearby {
		items = append(items, dto.NearbyTicketResponse{
			Ticket:         ticketResponse(&nearby[i].Ticket),
			DistanceMeters: nearby[i].Distance,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if val := c.Query("category_id"); val != "" {
		filter.CategoryID = &val
	}
	if val := c.Query("district_id"); val != "" {
		filter.DistrictID = &val
	}
	if val := c.Query("team_id"); val != "" {
		filter.TeamID = &val
	}
	if val := c.Query("reporter_id"); val != "" {
		filter.ReporterID = &val
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		CategoryID:  ticket.CategoryID,
		Location: dto.LocationResponse{
			Latitude:   ticket.Location.Latitude,
			Longitude:  ticket.Location.Longitude,
			Address:    ticket.Location.Address,
			DistrictID: ticket.Location.DistrictID,
			City:       ticket.Location.City,
		},
		ReporterID:    ticket.ReporterID,
		TeamID:        ticket.TeamID,
		ResolvedAt:    ticket.ResolvedAt,
		PhotoCount:    ticket.PhotoCount,
		CommentCount:  ticket.CommentCount,
		FollowerCount: ticket.FollowerCount,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func feedbackResponse(feedback *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        feedback.ID,
		TicketID:  feedback.TicketID,
		AuthorID:  feedback.AuthorID,
		Rating:    feedback.Rating,
		Comment:   feedback.Comment,
		CreatedAt: feedback.CreatedAt,
	}
}
