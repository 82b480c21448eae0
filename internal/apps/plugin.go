package apps

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
)

// Deps is what the server hands every plugin when mounting its routes.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	// LLM is nil when no model provider is configured.
	LLM llm.Client
	// Premium rejects callers without an active subscription.
	Premium fiber.Handler
}

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique plugin identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts plugin routes on the given Fiber group.
	// The group is already prefixed with /api/p and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, deps Deps)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, deps Deps)
}

// PublicPlugin extends Plugin with routes reachable without a session, such
// as invitation links shared with guests.
type PublicPlugin interface {
	Plugin

	// RegisterPublicRoutes mounts routes on the bare /api group.
	RegisterPublicRoutes(router fiber.Router, deps Deps)
}
