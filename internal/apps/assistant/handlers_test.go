package assistant

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
)

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRoutesWithoutProvider(t *testing.T) {
	app := fiber.New()
	New().RegisterRoutes(app.Group("/p"), apps.Deps{})
	assert.Equal(t, fiber.StatusServiceUnavailable, post(t, app, "/p/assistant/games", `{}`))
}

func TestRoutesRequirePremium(t *testing.T) {
	denied := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusPaymentRequired) }
	app := fiber.New()
	New().RegisterRoutes(app.Group("/p"), apps.Deps{LLM: &fakeLLM{}, Premium: denied})
	assert.Equal(t, fiber.StatusPaymentRequired, post(t, app, "/p/assistant/theme-chat", `{"prompt":"hi"}`))
}

func TestRouteStatuses(t *testing.T) {
	fake := &fakeLLM{texts: []string{"Dear Bo"}}
	app := fiber.New()
	New().RegisterRoutes(app.Group("/p"), apps.Deps{LLM: fake})

	assert.Equal(t, fiber.StatusOK, post(t, app, "/p/assistant/thank-you-notes", `{"guestName":"Bo","giftDescription":"bib"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/p/assistant/thank-you-notes", `{"guestName":"Bo"}`))

	fake.textErr = fmt.Errorf("ai text: %w", llm.ErrUnavailable)
	assert.Equal(t, fiber.StatusServiceUnavailable, post(t, app, "/p/assistant/games", `{"guestPreferences":"a","theme":"b"}`))

	fake.textErr = fmt.Errorf("quota")
	assert.Equal(t, fiber.StatusBadGateway, post(t, app, "/p/assistant/theme-chat", `{"prompt":"hi"}`))
}
