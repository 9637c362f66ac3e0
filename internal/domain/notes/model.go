package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinote/clinote/internal/domain/medication"
)

// Note maps to the ros_notes table: a generated review-of-systems note with
// the selections and medication lists it was built from.
type Note struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"-"`
	PatientName   string          `db:"patient_name" json:"patientName"`
	PatientDOB    string          `db:"patient_dob" json:"patientDob"`
	PatientMRN    string          `db:"patient_mrn" json:"patientMrn"`
	Selections    map[string]any  `db:"selections" json:"selections"`
	Medications   medication.List `db:"medications" json:"medications"`
	GeneratedNote string          `db:"generated_note" json:"generatedNote"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}
