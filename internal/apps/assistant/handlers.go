package assistant

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
)

type AssistantHandler struct {
	service *AssistantService
}

func NewAssistantHandler(service *AssistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrPromptRequired), errors.Is(err, ErrPromptTooLong),
		errors.Is(err, ErrInvalidRole), errors.Is(err, ErrGuestRequired),
		errors.Is(err, ErrInvalidTone), errors.Is(err, ErrGameInputNeeded):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "AI assistant is temporarily unavailable"})
	}
	slog.Error(fallback, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: fallback})
}

func (h *AssistantHandler) ThemeChat(c *fiber.Ctx) error {
	var req ThemeChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	resp, err := h.service.ThemeChat(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to get response. Please try again.")
	}
	return c.JSON(resp)
}

func (h *AssistantHandler) ThankYouNote(c *fiber.Ctx) error {
	var req ThankYouNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	resp, err := h.service.ThankYouNote(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to generate thank you note. Please try again.")
	}
	return c.JSON(resp)
}

func (h *AssistantHandler) SuggestGames(c *fiber.Ctx) error {
	var req GameSuggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	resp, err := h.service.SuggestGames(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to generate game suggestions. Please try again.")
	}
	return c.JSON(resp)
}

// unavailable answers every assistant route when no provider is configured.
func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "AI assistant is not configured"})
}
