// Package activity covers the day-to-day care record: daily logs, shift
// handovers, and social activities.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Record statuses shared by logs and handovers.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// DailyLog maps to the daily_log table. Mood and the vitals fields are
// optional quick-entry values recorded alongside the narrative notes.
type DailyLog struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ClientID     uuid.UUID `db:"client_id" json:"client_id"`
	LoggedAt     time.Time `db:"logged_at" json:"logged_at"`
	StaffName    string    `db:"staff_name" json:"staff_name"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	Mood         *string   `db:"mood" json:"mood,omitempty"`
	BristolScore *int      `db:"bristol_score" json:"bristol_score,omitempty"`
	HeartRate    *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	HealthNote   *string   `db:"health_note" json:"health_note,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Handover maps to the handover table. HandingOver and TakingOver carry the
// names of the outgoing and incoming staff members.
type Handover struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	Date        time.Time `db:"handover_date" json:"date"`
	TimeOfDay   string    `db:"time_of_day" json:"time_of_day"`
	HandingOver *string   `db:"handing_over" json:"handing_over,omitempty"`
	TakingOver  *string   `db:"taking_over" json:"taking_over,omitempty"`
	Summary     *string   `db:"summary" json:"summary,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Social activity types.
const (
	ActivityFamilyVisit = "family_visit"
	ActivityGame        = "game"
	ActivityHobby       = "hobby"
	ActivitySocial      = "social_engagement"
	ActivityOther       = "other"
)

func validActivityType(t string) bool {
	switch t {
	case ActivityFamilyVisit, ActivityGame, ActivityHobby, ActivitySocial, ActivityOther:
		return true
	}
	return false
}

// SocialActivity maps to the social_activity table. Attachments holds blob
// store identifiers for photos taken during the activity.
type SocialActivity struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ClientID     uuid.UUID `db:"client_id" json:"client_id"`
	Caregiver    string    `db:"caregiver" json:"caregiver"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Date         time.Time `db:"activity_date" json:"date"`
	Attachments  []string  `db:"attachments" json:"attachments"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
