package planner

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/tenant"
)

type PlannerHandler struct {
	service *PlannerService
}

func NewPlannerHandler(service *PlannerService) *PlannerHandler {
	return &PlannerHandler{service: service}
}

// respondError maps service errors to HTTP statuses.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrGuestNotFound),
		errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrExpenseNotFound),
		errors.Is(err, ErrItemNotFound), errors.Is(err, ErrInviteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyClaimed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrInvalidTheme), errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidBudget), errors.Is(err, ErrClaimantRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	slog.Error(fallback, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: fallback})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// hostAndEvent resolves the caller and the :id path param. When ok is false
// the error response has already been written and the handler must stop.
func hostAndEvent(c *fiber.Ctx) (hostID, eventID uuid.UUID, ok bool) {
	hostID, err := tenant.GetUserID(c)
	if err != nil {
		_ = unauthorized(c)
		return uuid.Nil, uuid.Nil, false
	}
	eventID, err = uuid.Parse(c.Params("id"))
	if err != nil {
		_ = badRequest(c, "Invalid event ID")
		return uuid.Nil, uuid.Nil, false
	}
	return hostID, eventID, true
}

func childID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

// --- Events ---

func (h *PlannerHandler) CreateEvent(c *fiber.Ctx) error {
	hostID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	event, err := h.service.CreateEvent(c.UserContext(), hostID, req)
	if err != nil {
		return respondError(c, err, "Failed to create event")
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *PlannerHandler) ListEvents(c *fiber.Ctx) error {
	hostID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	events, err := h.service.ListEvents(c.UserContext(), hostID)
	if err != nil {
		return respondError(c, err, "Failed to fetch events")
	}
	return c.JSON(fiber.Map{"events": events})
}

func (h *PlannerHandler) GetEvent(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	detail, err := h.service.GetEventDetail(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to fetch event")
	}
	return c.JSON(detail)
}

func (h *PlannerHandler) UpdateEvent(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	event, err := h.service.UpdateEvent(c.UserContext(), hostID, eventID, req)
	if err != nil {
		return respondError(c, err, "Failed to update event")
	}
	return c.JSON(event)
}

func (h *PlannerHandler) DeleteEvent(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	if err := h.service.DeleteEvent(c.UserContext(), hostID, eventID); err != nil {
		return respondError(c, err, "Failed to delete event")
	}
	return c.JSON(fiber.Map{"message": "Event deleted"})
}

// --- Guests ---

func (h *PlannerHandler) AddGuest(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	var req AddGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	guest, err := h.service.AddGuest(c.UserContext(), hostID, eventID, req)
	if err != nil {
		return respondError(c, err, "Failed to add guest")
	}
	return c.Status(fiber.StatusCreated).JSON(guest)
}

func (h *PlannerHandler) ListGuests(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	guests, err := h.service.ListGuests(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to fetch guests")
	}
	return c.JSON(fiber.Map{"guests": guests})
}

func (h *PlannerHandler) UpdateGuest(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	guestID, ok := childID(c, "guestId")
	if !ok {
		return badRequest(c, "Invalid guest ID")
	}
	var req UpdateGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	guest, err := h.service.UpdateGuestStatus(c.UserContext(), hostID, eventID, guestID, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update guest")
	}
	return c.JSON(guest)
}

func (h *PlannerHandler) DeleteGuest(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	guestID, ok := childID(c, "guestId")
	if !ok {
		return badRequest(c, "Invalid guest ID")
	}
	if err := h.service.DeleteGuest(c.UserContext(), hostID, eventID, guestID); err != nil {
		return respondError(c, err, "Failed to delete guest")
	}
	return c.JSON(fiber.Map{"message": "Guest removed"})
}

func (h *PlannerHandler) RSVPSummary(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	summary, err := h.service.RSVPSummary(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to summarize RSVPs")
	}
	return c.JSON(summary)
}

// --- Tasks ---

func (h *PlannerHandler) AddTask(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	var req AddTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	task, err := h.service.AddTask(c.UserContext(), hostID, eventID, req)
	if err != nil {
		return respondError(c, err, "Failed to add task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *PlannerHandler) ListTasks(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	tasks, err := h.service.ListTasks(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to fetch tasks")
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (h *PlannerHandler) ToggleTask(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	taskID, ok := childID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	task, err := h.service.ToggleTask(c.UserContext(), hostID, eventID, taskID)
	if err != nil {
		return respondError(c, err, "Failed to toggle task")
	}
	return c.JSON(task)
}

func (h *PlannerHandler) DeleteTask(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	taskID, ok := childID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	if err := h.service.DeleteTask(c.UserContext(), hostID, eventID, taskID); err != nil {
		return respondError(c, err, "Failed to delete task")
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// --- Expenses ---

func (h *PlannerHandler) AddExpense(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	var req AddExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	expense, err := h.service.AddExpense(c.UserContext(), hostID, eventID, req)
	if err != nil {
		return respondError(c, err, "Failed to add expense")
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

func (h *PlannerHandler) ListExpenses(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	expenses, err := h.service.ListExpenses(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to fetch expenses")
	}
	return c.JSON(fiber.Map{"expenses": expenses})
}

func (h *PlannerHandler) DeleteExpense(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	expenseID, ok := childID(c, "expenseId")
	if !ok {
		return badRequest(c, "Invalid expense ID")
	}
	if err := h.service.DeleteExpense(c.UserContext(), hostID, eventID, expenseID); err != nil {
		return respondError(c, err, "Failed to delete expense")
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}

func (h *PlannerHandler) BudgetSummary(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	summary, err := h.service.BudgetSummary(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to summarize budget")
	}
	return c.JSON(summary)
}

// --- Registry ---

func (h *PlannerHandler) AddRegistryItem(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	var req AddRegistryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	item, err := h.service.AddRegistryItem(c.UserContext(), hostID, eventID, req)
	if err != nil {
		return respondError(c, err, "Failed to add registry item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *PlannerHandler) ListRegistry(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	items, err := h.service.ListRegistry(c.UserContext(), hostID, eventID)
	if err != nil {
		return respondError(c, err, "Failed to fetch registry")
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *PlannerHandler) ClaimRegistryItem(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	itemID, ok := childID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}
	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	item, err := h.service.ClaimRegistryItem(c.UserContext(), hostID, eventID, itemID, req.ClaimedBy)
	if err != nil {
		return respondError(c, err, "Failed to claim item")
	}
	return c.JSON(item)
}

func (h *PlannerHandler) UnclaimRegistryItem(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	itemID, ok := childID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}
	item, err := h.service.UnclaimRegistryItem(c.UserContext(), hostID, eventID, itemID)
	if err != nil {
		return respondError(c, err, "Failed to unclaim item")
	}
	return c.JSON(item)
}

func (h *PlannerHandler) DeleteRegistryItem(c *fiber.Ctx) error {
	hostID, eventID, ok := hostAndEvent(c)
	if !ok {
		return nil
	}
	itemID, ok := childID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}
	if err := h.service.DeleteRegistryItem(c.UserContext(), hostID, eventID, itemID); err != nil {
		return respondError(c, err, "Failed to delete registry item")
	}
	return c.JSON(fiber.Map{"message": "Registry item deleted"})
}

// --- Public invitations ---

func (h *PlannerHandler) GetInvite(c *fiber.Ctx) error {
	view, err := h.service.GetInvite(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, err, "Failed to load invitation")
	}
	return c.JSON(view)
}

func (h *PlannerHandler) RSVP(c *fiber.Ctx) error {
	var req RSVPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	guest, err := h.service.RSVP(c.UserContext(), c.Params("token"), req)
	if err != nil {
		return respondError(c, err, "Failed to record RSVP")
	}
	return c.JSON(fiber.Map{"name": guest.Name, "status": guest.Status})
}

func (h *PlannerHandler) ClaimFromInvite(c *fiber.Ctx) error {
	itemID, ok := childID(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}
	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	item, err := h.service.ClaimFromInvite(c.UserContext(), c.Params("token"), itemID, req.ClaimedBy)
	if err != nil {
		return respondError(c, err, "Failed to claim item")
	}
	return c.JSON(item)
}

// --- Admin ---

func (h *PlannerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to load stats")
	}
	return c.JSON(stats)
}
