package planner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ThemeClassicBlue = "classic_blue"
	ThemeSoftPink    = "soft_pink"
	ThemeNeutral     = "neutral"
	ThemeModern      = "modern"
)

var Themes = []string{ThemeClassicBlue, ThemeSoftPink, ThemeNeutral, ThemeModern}

const (
	GuestInvited  = "invited"
	GuestGoing    = "going"
	GuestMaybe    = "maybe"
	GuestNotGoing = "not_going"
)

var GuestStatuses = []string{GuestInvited, GuestGoing, GuestMaybe, GuestNotGoing}

var ExpenseCategories = []string{"decor", "food", "venue", "gifts", "other"}

// DefaultTasks are created with every new event.
var DefaultTasks = []string{"Send Invitations", "Book Venue", "Order Cake"}

type ShowerEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HostID      uuid.UUID `gorm:"type:uuid;not null;index" json:"host_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	EventDate   time.Time `gorm:"index" json:"event_date"`
	Location    string    `gorm:"size:300" json:"location"`
	Theme       string    `gorm:"size:32;default:'classic_blue'" json:"theme"`
	BudgetTotal float64   `gorm:"default:0" json:"budget_total"`
	Notes       string    `gorm:"type:text" json:"notes"`
	InviteToken string    `gorm:"size:64;uniqueIndex" json:"invite_token"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Guest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Email       string     `gorm:"size:255;index" json:"email,omitempty"`
	Status      string     `gorm:"size:20;default:'invited'" json:"status"`
	Note        string     `gorm:"type:text" json:"note,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Expense struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Category  string    `gorm:"size:20;not null" json:"category"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Paid      bool      `gorm:"default:false" json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}

type RegistryItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Store     string     `gorm:"size:120" json:"store,omitempty"`
	URL       string     `gorm:"type:text" json:"url,omitempty"`
	ClaimedBy *string    `gorm:"size:200" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (e *ShowerEvent) BeforeCreate(tx *gorm.DB) error  { return ensureID(&e.ID) }
func (g *Guest) BeforeCreate(tx *gorm.DB) error        { return ensureID(&g.ID) }
func (t *Task) BeforeCreate(tx *gorm.DB) error         { return ensureID(&t.ID) }
func (e *Expense) BeforeCreate(tx *gorm.DB) error      { return ensureID(&e.ID) }
func (r *RegistryItem) BeforeCreate(tx *gorm.DB) error { return ensureID(&r.ID) }

func ensureID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}

// --- DTOs ---

type CreateEventRequest struct {
	Name        string    `json:"name"`
	EventDate   time.Time `json:"event_date"`
	Location    string    `json:"location"`
	Theme       string    `json:"theme"`
	BudgetTotal float64   `json:"budget_total"`
	Notes       string    `json:"notes"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	EventDate   *time.Time `json:"event_date"`
	Location    *string    `json:"location"`
	Theme       *string    `json:"theme"`
	BudgetTotal *float64   `json:"budget_total"`
	Notes       *string    `json:"notes"`
}

type EventDetail struct {
	ShowerEvent
	Guests   RSVPSummary   `json:"guests"`
	Tasks    TaskProgress  `json:"tasks"`
	Budget   BudgetSummary `json:"budget"`
	Registry int64         `json:"registry_items"`
}

type AddGuestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

type UpdateGuestRequest struct {
	Status string `json:"status"`
}

type RSVPSummary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type AddTaskRequest struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

type TaskProgress struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
}

type AddExpenseRequest struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Paid     bool    `json:"paid"`
}

type BudgetSummary struct {
	Budget     float64            `json:"budget"`
	Spent      float64            `json:"spent"`
	Paid       float64            `json:"paid"`
	Remaining  float64            `json:"remaining"`
	ByCategory map[string]float64 `json:"by_category"`
}

type AddRegistryItemRequest struct {
	Title string `json:"title"`
	Store string `json:"store"`
	URL   string `json:"url"`
}

type ClaimRequest struct {
	ClaimedBy string `json:"claimed_by"`
}

type RSVPRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

type InviteView struct {
	EventName string         `json:"event_name"`
	EventDate time.Time      `json:"event_date"`
	Location  string         `json:"location"`
	Theme     string         `json:"theme"`
	Registry  []RegistryItem `json:"registry"`
}

type PlannerStats struct {
	Events   int64 `json:"events"`
	Guests   int64 `json:"guests"`
	Going    int64 `json:"going"`
	Expenses int64 `json:"expenses"`
}
