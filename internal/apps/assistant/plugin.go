package assistant

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
)

type AssistantPlugin struct{}

func New() *AssistantPlugin {
	return &AssistantPlugin{}
}

func (p *AssistantPlugin) ID() string { return "assistant" }

// Models is empty: the assistant keeps no state beyond its in-memory cache.
func (p *AssistantPlugin) Models() []interface{} { return nil }

func (p *AssistantPlugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	group := router.Group("/assistant")
	if deps.Premium != nil {
		group.Use(deps.Premium)
	}

	if deps.LLM == nil {
		group.All("/*", unavailable)
		return
	}

	handler := NewAssistantHandler(NewAssistantService(deps.LLM))
	group.Post("/theme-chat", handler.ThemeChat)
	group.Post("/thank-you-notes", handler.ThankYouNote)
	group.Post("/games", handler.SuggestGames)
}
