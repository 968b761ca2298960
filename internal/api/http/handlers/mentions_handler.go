package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// MentionsHandler serves the notification bell.
type MentionsHandler struct {
	service *service.MentionService
}

// NewMentionsHandler constructs handler.
func NewMentionsHandler(mentionService *service.MentionService) *MentionsHandler {
	return &MentionsHandler{service: mentionService}
}

// Unread GET /mentions/unread.
func (h *MentionsHandler) Unread(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	mentions, err := h.service.GetUnreadMentions(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUnreadMentionResponses(mentions)})
}

// MarkRead POST /mentions/:id/read.
func (h *MentionsHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.MarkAsRead(c.UserContext(), actor.ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// MarkAllRead POST /mentions/read-all.
func (h *MentionsHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.MarkAllAsRead(c.UserContext(), actor.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}
