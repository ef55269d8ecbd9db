// Package medication manages prescribed medications and their administration
// history. Stock is a ledger: every given dose moves the counter down by one,
// and reversing or deleting that dose moves it back up. The counter never
// goes below zero.
package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication statuses. Completed means at least one dose has been given.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Medication maps to the medication table.
type Medication struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ClientID       uuid.UUID `db:"client_id" json:"client_id"`
	Name           string    `db:"name" json:"name"`
	Dosage         *string   `db:"dosage" json:"dosage,omitempty"`
	Route          *string   `db:"route" json:"route,omitempty"`
	Frequency      *string   `db:"frequency" json:"frequency,omitempty"`
	TimeOfDay      *string   `db:"time_of_day" json:"time_of_day,omitempty"`
	StockQuantity  int       `db:"stock_quantity" json:"stock_quantity"`
	StockThreshold int       `db:"stock_threshold" json:"stock_threshold"`
	Status         string    `db:"status" json:"status"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	Attachments    []string  `db:"attachments" json:"attachments"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// LowStock is recomputed from current state on every read, never stored.
func (m *Medication) LowStock() bool {
	return m.StockQuantity < m.StockThreshold
}

// AdministrationEvent maps to the medication_event table. History is
// append-only except through the explicit amend and reverse flows, which
// also move stock.
type AdministrationEvent struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	Date         time.Time `db:"event_date" json:"date"`
	TimeOfDay    *string   `db:"time_of_day" json:"time_of_day,omitempty"`
	Given        bool      `db:"given" json:"given"`
	Caregiver    string    `db:"caregiver" json:"caregiver"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AmendRequest carries the mutable fields of an administration event. Only
// a change to Given moves stock.
type AmendRequest struct {
	Date      *time.Time `json:"date,omitempty"`
	TimeOfDay *string    `json:"time_of_day,omitempty"`
	Given     *bool      `json:"given,omitempty"`
	Caregiver *string    `json:"caregiver,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}
