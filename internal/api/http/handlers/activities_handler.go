package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
)

// ActivitiesHandler serves the activity feed.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// List GET /activities.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	page := parseIntQuery(c.Query("page"), 1)
	pageSize := parseIntQuery(c.Query("page_size"), 20)

	var activityType *domain.ActivityType
	if v := c.Query("type"); v != "" {
		t := domain.ActivityType(v)
		activityType = &t
	}
	var entityType *string
	if v := c.Query("entity_type"); v != "" {
		entityType = &v
	}

	result, err := h.service.List(c.UserContext(), page, pageSize, activityType, entityType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"activities": dto.NewActivityResponses(result.Activities),
		"total":      result.Total,
		"page":       result.Page,
		"page_size":  result.PageSize,
	}})
}

// Stats GET /activities/stats.
func (h *ActivitiesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
