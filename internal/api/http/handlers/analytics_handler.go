package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/service"
)

// AnalyticsHandler serves the read-only report endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Dashboard GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	report, err := h.service.Dashboard(c.UserContext(), parseInt(c.Query("days"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Teams GET /analytics/teams.
func (h *AnalyticsHandler) Teams(c *fiber.Ctx) error {
	report, err := h.service.TeamPerformanceReport(c.UserContext(), parseInt(c.Query("days"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Categories GET /analytics/categories.
func (h *AnalyticsHandler) Categories(c *fiber.Ctx) error {
	report, err := h.service.CategoryStatsReport(c.UserContext(), parseInt(c.Query("days"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Neighborhoods GET /analytics/neighborhoods.
func (h *AnalyticsHandler) Neighborhoods(c *fiber.Ctx) error {
	report, err := h.service.NeighborhoodStatsReport(c.UserContext(), parseInt(c.Query("days"), 0), parseInt(c.Query("top"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// FeedbackTrends GET /analytics/feedback.
func (h *AnalyticsHandler) FeedbackTrends(c *fiber.Ctx) error {
	report, err := h.service.FeedbackTrendsReport(c.UserContext(), parseInt(c.Query("days"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
