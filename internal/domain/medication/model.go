package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is one entry on a patient's home or hospital medication list.
type Medication struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	Quantity       string    `json:"quantity,omitempty"`
	Instructions   string    `json:"instructions,omitempty"`
	IsCustom       bool      `json:"isCustom"`
	IsDiscontinued bool      `json:"isDiscontinued"`
	IsPRN          bool      `json:"isPRN"`
	AddedAt        time.Time `json:"addedAt"`
}

// List is the pair of medication lists stored with a note.
type List struct {
	HomeMedications     []Medication `json:"homeMedications"`
	HospitalMedications []Medication `json:"hospitalMedications"`
}

// New builds a medication from a user-entered name, categorised by the
// default rule set.
func New(name string, custom bool, now time.Time) Medication {
	return Medication{
		ID:       uuid.New().String(),
		Name:     name,
		Category: Categorize(name),
		IsCustom: custom,
		AddedAt:  now,
	}
}
