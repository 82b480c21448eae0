package planner

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
)

type PlannerPlugin struct{}

func New() *PlannerPlugin {
	return &PlannerPlugin{}
}

func (p *PlannerPlugin) ID() string { return "planner" }

func (p *PlannerPlugin) Models() []interface{} {
	return []interface{}{
		&ShowerEvent{},
		&Guest{},
		&Task{},
		&Expense{},
		&RegistryItem{},
	}
}

func (p *PlannerPlugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	handler := NewPlannerHandler(NewPlannerService(deps.DB))

	// Event CRUD
	router.Post("/events", handler.CreateEvent)
	router.Get("/events", handler.ListEvents)
	router.Get("/events/:id", handler.GetEvent)
	router.Put("/events/:id", handler.UpdateEvent)
	router.Delete("/events/:id", handler.DeleteEvent)

	// Guests
	router.Post("/events/:id/guests", handler.AddGuest)
	router.Get("/events/:id/guests", handler.ListGuests)
	router.Get("/events/:id/guests/summary", handler.RSVPSummary)
	router.Put("/events/:id/guests/:guestId", handler.UpdateGuest)
	router.Delete("/events/:id/guests/:guestId", handler.DeleteGuest)

	// Checklist
	router.Post("/events/:id/tasks", handler.AddTask)
	router.Get("/events/:id/tasks", handler.ListTasks)
	router.Post("/events/:id/tasks/:taskId/toggle", handler.ToggleTask)
	router.Delete("/events/:id/tasks/:taskId", handler.DeleteTask)

	// Budget
	router.Post("/events/:id/expenses", handler.AddExpense)
	router.Get("/events/:id/expenses", handler.ListExpenses)
	router.Get("/events/:id/budget", handler.BudgetSummary)
	router.Delete("/events/:id/expenses/:expenseId", handler.DeleteExpense)

	// Registry
	router.Post("/events/:id/registry", handler.AddRegistryItem)
	router.Get("/events/:id/registry", handler.ListRegistry)
	router.Post("/events/:id/registry/:itemId/claim", handler.ClaimRegistryItem)
	router.Delete("/events/:id/registry/:itemId/claim", handler.UnclaimRegistryItem)
	router.Delete("/events/:id/registry/:itemId", handler.DeleteRegistryItem)
}

func (p *PlannerPlugin) RegisterPublicRoutes(router fiber.Router, deps apps.Deps) {
	handler := NewPlannerHandler(NewPlannerService(deps.DB))

	router.Get("/invites/:token", handler.GetInvite)
	router.Post("/invites/:token/rsvp", handler.RSVP)
	router.Post("/invites/:token/registry/:itemId/claim", handler.ClaimFromInvite)
}

func (p *PlannerPlugin) RegisterAdminRoutes(router fiber.Router, deps apps.Deps) {
	handler := NewPlannerHandler(NewPlannerService(deps.DB))

	router.Get("/planner/stats", handler.Stats)
}
