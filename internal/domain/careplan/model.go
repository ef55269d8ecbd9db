// Package careplan manages care plans and the goals attached to them.
// Clients can read and acknowledge their own plans; writing them is a
// staff-side activity.
package careplan

import (
	"time"

	"github.com/google/uuid"
)

// Care plan statuses.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Client decisions on a plan.
const (
	DecisionPending  = "pending"
	DecisionAccepted = "accepted"
	DecisionDeclined = "declined"
)

// Goal statuses.
const (
	GoalOpen      = "open"
	GoalAchieved  = "achieved"
	GoalAbandoned = "abandoned"
)

// CarePlan maps to the care_plan table.
type CarePlan struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	Title          string     `db:"title" json:"title"`
	Category       *string    `db:"category" json:"category,omitempty"`
	Description    *string    `db:"description" json:"description,omitempty"`
	StartDate      *time.Time `db:"start_date" json:"start_date,omitempty"`
	ReviewDate     *time.Time `db:"review_date" json:"review_date,omitempty"`
	Status         string     `db:"status" json:"status"`
	Decision       string     `db:"decision" json:"decision"`
	Signature      *string    `db:"signature" json:"signature,omitempty"`
	DeclineReason  *string    `db:"decline_reason" json:"decline_reason,omitempty"`
	AcknowledgedBy *string    `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	Attachments    []string   `db:"attachments" json:"attachments"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Goal maps to the care_plan_goal table.
type Goal struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CarePlanID uuid.UUID  `db:"care_plan_id" json:"care_plan_id"`
	Title      string     `db:"title" json:"title"`
	Detail     *string    `db:"detail" json:"detail,omitempty"`
	TargetDate *time.Time `db:"target_date" json:"target_date,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
