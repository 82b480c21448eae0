package planner

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/tenant"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrGuestNotFound    = errors.New("guest not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrItemNotFound     = errors.New("registry item not found")
	ErrInviteNotFound   = errors.New("invitation not found")
	ErrAlreadyClaimed   = errors.New("registry item already claimed")
	ErrNameRequired     = errors.New("name is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidStatus    = errors.New("invalid guest status")
	ErrInvalidCategory  = errors.New("invalid expense category")
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrInvalidBudget    = errors.New("budget must not be negative")
	ErrClaimantRequired = errors.New("claimed_by is required")
)

type PlannerService struct {
	db *gorm.DB
}

func NewPlannerService(db *gorm.DB) *PlannerService {
	return &PlannerService{db: db}
}

// --- Events ---

// CreateEvent stores the event with a fresh invite token and the default
// checklist in one transaction.
func (s *PlannerService) CreateEvent(ctx context.Context, hostID uuid.UUID, req CreateEventRequest) (*ShowerEvent, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Theme == "" {
		req.Theme = ThemeClassicBlue
	}
	if !slices.Contains(Themes, req.Theme) {
		return nil, ErrInvalidTheme
	}
	if req.BudgetTotal < 0 {
		return nil, ErrInvalidBudget
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	event := ShowerEvent{
		HostID:      hostID,
		Name:        name,
		EventDate:   req.EventDate.UTC(),
		Location:    strings.TrimSpace(req.Location),
		Theme:       req.Theme,
		BudgetTotal: req.BudgetTotal,
		Notes:       req.Notes,
		InviteToken: token,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		tasks := make([]Task, 0, len(DefaultTasks))
		for _, title := range DefaultTasks {
			tasks = append(tasks, Task{EventID: event.ID, Title: title})
		}
		return tx.Create(&tasks).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("shower event created", "user_id", hostID.String(), "event_id", event.ID.String())
	return &event, nil
}

func (s *PlannerService) ListEvents(ctx context.Context, hostID uuid.UUID) ([]ShowerEvent, error) {
	var events []ShowerEvent
	err := s.db.WithContext(ctx).Scopes(tenant.ForHost(hostID)).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

func (s *PlannerService) GetEvent(ctx context.Context, hostID, eventID uuid.UUID) (*ShowerEvent, error) {
	var event ShowerEvent
	err := s.db.WithContext(ctx).Scopes(tenant.ForHost(hostID)).
		Where("id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventDetail returns the event together with its dashboard counters.
func (s *PlannerService) GetEventDetail(ctx context.Context, hostID, eventID uuid.UUID) (*EventDetail, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	detail := &EventDetail{ShowerEvent: *event}

	if detail.Guests, err = s.rsvpSummary(ctx, event.ID); err != nil {
		return nil, err
	}
	if detail.Budget, err = s.budgetSummary(ctx, event); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&Task{}).Scopes(tenant.ForEvent(event.ID)).Count(&detail.Tasks.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Task{}).Scopes(tenant.ForEvent(event.ID)).Where("is_completed = ?", true).Count(&detail.Tasks.Completed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&RegistryItem{}).Scopes(tenant.ForEvent(event.ID)).Count(&detail.Registry).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *PlannerService) UpdateEvent(ctx context.Context, hostID, eventID uuid.UUID, req UpdateEventRequest) (*ShowerEvent, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = name
	}
	if req.EventDate != nil {
		updates["event_date"] = req.EventDate.UTC()
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Theme != nil {
		if !slices.Contains(Themes, *req.Theme) {
			return nil, ErrInvalidTheme
		}
		updates["theme"] = *req.Theme
	}
	if req.BudgetTotal != nil {
		if *req.BudgetTotal < 0 {
			return nil, ErrInvalidBudget
		}
		updates["budget_total"] = *req.BudgetTotal
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return event, nil
	}

	if err := s.db.WithContext(ctx).Model(event).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return s.GetEvent(ctx, hostID, eventID)
}

// DeleteEvent removes the event and everything attached to it.
func (s *PlannerService) DeleteEvent(ctx context.Context, hostID, eventID uuid.UUID) error {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&Guest{}, &Task{}, &Expense{}, &RegistryItem{}} {
			if err := tx.Scopes(tenant.ForEvent(event.ID)).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(event).Error
	})
}

// --- Guests ---

func (s *PlannerService) AddGuest(ctx context.Context, hostID, eventID uuid.UUID, req AddGuestRequest) (*Guest, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	guest := Guest{
		EventID: event.ID,
		Name:    name,
		Email:   normalizeEmail(req.Email),
		Note:    req.Note,
		Status:  GuestInvited,
	}
	if err := s.db.WithContext(ctx).Create(&guest).Error; err != nil {
		return nil, fmt.Errorf("failed to add guest: %w", err)
	}
	return &guest, nil
}

func (s *PlannerService) ListGuests(ctx context.Context, hostID, eventID uuid.UUID) ([]Guest, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	var guests []Guest
	err = s.db.WithContext(ctx).Scopes(tenant.ForEvent(event.ID)).Order("name ASC").Find(&guests).Error
	return guests, err
}

func (s *PlannerService) UpdateGuestStatus(ctx context.Context, hostID, eventID, guestID uuid.UUID, status string) (*Guest, error) {
	if !slices.Contains(GuestStatuses, status) {
		return nil, ErrInvalidStatus
	}
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Guest{}).Scopes(tenant.ForEvent(event.ID)).
		Where("id = ?", guestID).
		Updates(map[string]interface{}{"status": status, "responded_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrGuestNotFound
	}

	var guest Guest
	if err := s.db.WithContext(ctx).First(&guest, "id = ?", guestID).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (s *PlannerService) DeleteGuest(ctx context.Context, hostID, eventID, guestID uuid.UUID) error {
	return s.deleteChild(ctx, hostID, eventID, guestID, &Guest{}, ErrGuestNotFound)
}

func (s *PlannerService) RSVPSummary(ctx context.Context, hostID, eventID uuid.UUID) (*RSVPSummary, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	summary, err := s.rsvpSummary(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *PlannerService) rsvpSummary(ctx context.Context, eventID uuid.UUID) (RSVPSummary, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&Guest{}).Scopes(tenant.ForEvent(eventID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return RSVPSummary{}, err
	}

	summary := RSVPSummary{ByStatus: make(map[string]int64, len(GuestStatuses))}
	for _, st := range GuestStatuses {
		summary.ByStatus[st] = 0
	}
	for _, r := range rows {
		summary.ByStatus[r.Status] = r.Count
		summary.Total += r.Count
	}
	return summary, nil
}

// --- Tasks ---

func (s *PlannerService) AddTask(ctx context.Context, hostID, eventID uuid.UUID, req AddTaskRequest) (*Task, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	task := Task{EventID: event.ID, Title: title, DueDate: req.DueDate}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}
	return &task, nil
}

func (s *PlannerService) ListTasks(ctx context.Context, hostID, eventID uuid.UUID) ([]Task, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	err = s.db.WithContext(ctx).Scopes(tenant.ForEvent(event.ID)).Order("title ASC").Find(&tasks).Error
	return tasks, err
}

// ToggleTask flips completion in the database so two quick clicks never race.
func (s *PlannerService) ToggleTask(ctx context.Context, hostID, eventID, taskID uuid.UUID) (*Task, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&Task{}).Scopes(tenant.ForEvent(event.ID)).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"is_completed": gorm.Expr("NOT is_completed"),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	var task Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *PlannerService) DeleteTask(ctx context.Context, hostID, eventID, taskID uuid.UUID) error {
	return s.deleteChild(ctx, hostID, eventID, taskID, &Task{}, ErrTaskNotFound)
}

// --- Expenses ---

func (s *PlannerService) AddExpense(ctx context.Context, hostID, eventID uuid.UUID, req AddExpenseRequest) (*Expense, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !slices.Contains(ExpenseCategories, req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	expense := Expense{EventID: event.ID, Title: title, Category: req.Category, Amount: req.Amount, Paid: req.Paid}
	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}
	return &expense, nil
}

func (s *PlannerService) ListExpenses(ctx context.Context, hostID, eventID uuid.UUID) ([]Expense, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	var expenses []Expense
	err = s.db.WithContext(ctx).Scopes(tenant.ForEvent(event.ID)).Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (s *PlannerService) DeleteExpense(ctx context.Context, hostID, eventID, expenseID uuid.UUID) error {
	return s.deleteChild(ctx, hostID, eventID, expenseID, &Expense{}, ErrExpenseNotFound)
}

func (s *PlannerService) BudgetSummary(ctx context.Context, hostID, eventID uuid.UUID) (*BudgetSummary, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	summary, err := s.budgetSummary(ctx, event)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *PlannerService) budgetSummary(ctx context.Context, event *ShowerEvent) (BudgetSummary, error) {
	var rows []struct {
		Category string
		Total    float64
		PaidSum  float64
	}
	err := s.db.WithContext(ctx).Model(&Expense{}).Scopes(tenant.ForEvent(event.ID)).
		Select("category, COALESCE(SUM(amount), 0) AS total, COALESCE(SUM(CASE WHEN paid THEN amount ELSE 0 END), 0) AS paid_sum").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return BudgetSummary{}, err
	}

	summary := BudgetSummary{
		Budget:     event.BudgetTotal,
		ByCategory: make(map[string]float64, len(ExpenseCategories)),
	}
	for _, c := range ExpenseCategories {
		summary.ByCategory[c] = 0
	}
	for _, r := range rows {
		summary.ByCategory[r.Category] = r.Total
		summary.Spent += r.Total
		summary.Paid += r.PaidSum
	}
	summary.Remaining = summary.Budget - summary.Spent
	return summary, nil
}

// --- Registry ---

func (s *PlannerService) AddRegistryItem(ctx context.Context, hostID, eventID uuid.UUID, req AddRegistryItemRequest) (*RegistryItem, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	item := RegistryItem{EventID: event.ID, Title: title, Store: strings.TrimSpace(req.Store), URL: strings.TrimSpace(req.URL)}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add registry item: %w", err)
	}
	return &item, nil
}

func (s *PlannerService) ListRegistry(ctx context.Context, hostID, eventID uuid.UUID) ([]RegistryItem, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	return s.registryFor(ctx, event.ID)
}

func (s *PlannerService) registryFor(ctx context.Context, eventID uuid.UUID) ([]RegistryItem, error) {
	var items []RegistryItem
	err := s.db.WithContext(ctx).Scopes(tenant.ForEvent(eventID)).Order("title ASC").Find(&items).Error
	return items, err
}

func (s *PlannerService) ClaimRegistryItem(ctx context.Context, hostID, eventID, itemID uuid.UUID, claimedBy string) (*RegistryItem, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	return s.claim(ctx, event.ID, itemID, claimedBy)
}

// claim marks the item as taken only if nobody holds it yet. The check and the
// write are one statement.
func (s *PlannerService) claim(ctx context.Context, eventID, itemID uuid.UUID, claimedBy string) (*RegistryItem, error) {
	claimedBy = strings.TrimSpace(claimedBy)
	if claimedBy == "" {
		return nil, ErrClaimantRequired
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&RegistryItem{}).Scopes(tenant.ForEvent(eventID)).
		Where("id = ? AND claimed_by IS NULL", itemID).
		Updates(map[string]interface{}{"claimed_by": claimedBy, "claimed_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}

	var item RegistryItem
	if err := db.Scopes(tenant.ForEvent(eventID)).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyClaimed
	}
	return &item, nil
}

func (s *PlannerService) UnclaimRegistryItem(ctx context.Context, hostID, eventID, itemID uuid.UUID) (*RegistryItem, error) {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	result := db.Model(&RegistryItem{}).Scopes(tenant.ForEvent(event.ID)).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{"claimed_by": nil, "claimed_at": nil})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	var item RegistryItem
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *PlannerService) DeleteRegistryItem(ctx context.Context, hostID, eventID, itemID uuid.UUID) error {
	return s.deleteChild(ctx, hostID, eventID, itemID, &RegistryItem{}, ErrItemNotFound)
}

// --- Public invitations ---

func (s *PlannerService) eventByToken(ctx context.Context, token string) (*ShowerEvent, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInviteNotFound
	}
	var event ShowerEvent
	err := s.db.WithContext(ctx).Where("invite_token = ?", token).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *PlannerService) GetInvite(ctx context.Context, token string) (*InviteView, error) {
	event, err := s.eventByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	items, err := s.registryFor(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &InviteView{
		EventName: event.Name,
		EventDate: event.EventDate,
		Location:  event.Location,
		Theme:     event.Theme,
		Registry:  items,
	}, nil
}

// RSVP records a guest's answer. A guest already on the list with the same
// email is updated; anyone else is added.
func (s *PlannerService) RSVP(ctx context.Context, token string, req RSVPRequest) (*Guest, error) {
	event, err := s.eventByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Status == GuestInvited || !slices.Contains(GuestStatuses, req.Status) {
		return nil, ErrInvalidStatus
	}

	email := normalizeEmail(req.Email)
	now := time.Now().UTC()
	var guest Guest

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if email != "" {
			err := tx.Scopes(tenant.ForEvent(event.ID)).Where("email = ?", email).First(&guest).Error
			if err == nil {
				guest.Status = req.Status
				guest.RespondedAt = &now
				if req.Note != "" {
					guest.Note = req.Note
				}
				return tx.Save(&guest).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		guest = Guest{
			EventID:     event.ID,
			Name:        name,
			Email:       email,
			Status:      req.Status,
			Note:        req.Note,
			RespondedAt: &now,
		}
		return tx.Create(&guest).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record rsvp: %w", err)
	}

	slog.Info("rsvp recorded", "event_id", event.ID.String(), "status", req.Status)
	return &guest, nil
}

func (s *PlannerService) ClaimFromInvite(ctx context.Context, token string, itemID uuid.UUID, claimedBy string) (*RegistryItem, error) {
	event, err := s.eventByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.claim(ctx, event.ID, itemID, claimedBy)
}

// --- Admin ---

func (s *PlannerService) Stats(ctx context.Context) (*PlannerStats, error) {
	db := s.db.WithContext(ctx)
	var stats PlannerStats
	if err := db.Model(&ShowerEvent{}).Count(&stats.Events).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Guest{}).Count(&stats.Guests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Guest{}).Where("status = ?", GuestGoing).Count(&stats.Going).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Expense{}).Count(&stats.Expenses).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *PlannerService) deleteChild(ctx context.Context, hostID, eventID, childID uuid.UUID, model interface{}, notFound error) error {
	event, err := s.GetEvent(ctx, hostID, eventID)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Scopes(tenant.ForEvent(event.ID)).Where("id = ?", childID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func newInviteToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
