// Package risk manages client risk assessments and positive behaviour
// support plans.
package risk

import (
	"time"

	"github.com/google/uuid"
)

// Risk levels derived from likelihood and impact.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Assessment maps to the risk_assessment table.
type Assessment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ClientID   uuid.UUID  `db:"client_id" json:"client_id"`
	Hazard     string     `db:"hazard" json:"hazard"`
	Category   *string    `db:"category" json:"category,omitempty"`
	Likelihood int        `db:"likelihood" json:"likelihood"`
	Impact     int        `db:"impact" json:"impact"`
	Level      string     `db:"level" json:"level"`
	Mitigation *string    `db:"mitigation" json:"mitigation,omitempty"`
	ReviewDate *time.Time `db:"review_date" json:"review_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// DeriveLevel classifies a likelihood/impact pair (each 1 to 5) by the
// product of the two scores.
func DeriveLevel(likelihood, impact int) string {
	score := likelihood * impact
	switch {
	case score >= 15:
		return LevelHigh
	case score >= 6:
		return LevelMedium
	default:
		return LevelLow
	}
}

// PBSPlan maps to the pbs_plan table.
type PBSPlan struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	Behaviour    string     `db:"behaviour" json:"behaviour"`
	Triggers     *string    `db:"triggers" json:"triggers,omitempty"`
	Prevention   *string    `db:"prevention" json:"prevention,omitempty"`
	Deescalation *string    `db:"deescalation" json:"deescalation,omitempty"`
	ReviewDate   *time.Time `db:"review_date" json:"review_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
