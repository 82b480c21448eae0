package planner

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/testutil"
)

type testServer struct {
	app  *fiber.App
	host uuid.UUID
	auth string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testutil.Config()
	plugin := New()
	deps := apps.Deps{DB: testutil.NewDB(t, plugin.Models()...), Config: cfg}

	app := fiber.New()
	api := app.Group("/api")
	plugin.RegisterPublicRoutes(api, deps)
	plugin.RegisterRoutes(api.Group("/p", middleware.JWTProtected(cfg)), deps)

	host := uuid.New()
	return &testServer{app: app, host: host, auth: testutil.BearerToken(t, host, "host@example.com")}
}

func (s *testServer) do(t *testing.T, method, path, body string, authed bool) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", s.auth)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestEventRoutes(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/p/events", "", false)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := s.do(t, http.MethodPost, "/api/p/events", `{"name":""}`, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, ErrNameRequired.Error(), body["error"])

	status, body = s.do(t, http.MethodPost, "/api/p/events",
		`{"name":"Shower","event_date":"2026-06-01T14:00:00Z","budget_total":300}`, true)
	require.Equal(t, fiber.StatusCreated, status)
	id := body["id"].(string)
	token := body["invite_token"].(string)

	status, body = s.do(t, http.MethodGet, "/api/p/events/"+id, "", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Shower", body["name"])
	tasks := body["tasks"].(map[string]interface{})
	assert.EqualValues(t, len(DefaultTasks), tasks["total"])

	status, _ = s.do(t, http.MethodGet, "/api/p/events/not-a-uuid", "", true)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/p/events/"+uuid.NewString(), "", true)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, http.MethodPost, "/api/p/events/"+id+"/registry", `{"title":"Stroller"}`, true)
	require.Equal(t, fiber.StatusCreated, status)
	itemID := body["id"].(string)

	claimPath := "/api/invites/" + token + "/registry/" + itemID + "/claim"
	status, _ = s.do(t, http.MethodPost, claimPath, `{"claimed_by":"Gran"}`, false)
	assert.Equal(t, fiber.StatusOK, status)
	status, body = s.do(t, http.MethodPost, claimPath, `{"claimed_by":"Pop"}`, false)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, ErrAlreadyClaimed.Error(), body["error"])

	status, _ = s.do(t, http.MethodDelete, "/api/p/events/"+id, "", true)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/invites/"+token, "", false)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPublicRSVPRoute(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/p/events", `{"name":"Shower"}`, true)
	require.Equal(t, fiber.StatusCreated, status)
	id := body["id"].(string)
	token := body["invite_token"].(string)

	status, body = s.do(t, http.MethodPost, "/api/invites/"+token+"/rsvp", `{"name":"Lu","status":"going"}`, false)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, GuestGoing, body["status"])

	status, _ = s.do(t, http.MethodPost, "/api/invites/"+token+"/rsvp", `{"name":"Lu","status":"sure"}`, false)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/p/events/"+id+"/guests/summary", "", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
}

func TestEventScopedRoutesStopOnBadInput(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/p/events/not-a-uuid/guests", `{"name":"Lu"}`, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid event ID", body["error"])

	status, body = s.do(t, http.MethodGet, "/api/p/events/not-a-uuid/budget", "", true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid event ID", body["error"])

	// A validly signed token whose subject is not a user id.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testutil.JWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/p/events/"+uuid.NewString()+"/guests", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
