package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinote/clinote/internal/domain/medication"
)

var ErrInvalid = errors.New("invalid note")

type Service struct {
	notes Repository
}

func NewService(notes Repository) *Service {
	return &Service{notes: notes}
}

func validate(n *Note) error {
	n.PatientName = strings.TrimSpace(n.PatientName)
	n.PatientDOB = strings.TrimSpace(n.PatientDOB)
	n.PatientMRN = strings.TrimSpace(n.PatientMRN)
	switch {
	case n.PatientName == "":
		return fmt.Errorf("%w: patientName is required", ErrInvalid)
	case n.PatientDOB == "":
		return fmt.Errorf("%w: patientDob is required", ErrInvalid)
	case n.PatientMRN == "":
		return fmt.Errorf("%w: patientMrn is required", ErrInvalid)
	case strings.TrimSpace(n.GeneratedNote) == "":
		return fmt.Errorf("%w: generatedNote is required", ErrInvalid)
	}
	if n.Selections == nil {
		n.Selections = map[string]any{}
	}
	if n.Medications.HomeMedications == nil {
		n.Medications.HomeMedications = []medication.Medication{}
	}
	if n.Medications.HospitalMedications == nil {
		n.Medications.HospitalMedications = []medication.Medication{}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, n *Note) error {
	if n.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if err := validate(n); err != nil {
		return err
	}
	return s.notes.Create(ctx, n)
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Note, error) {
	return s.notes.GetByID(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, n *Note) error {
	if err := validate(n); err != nil {
		return err
	}
	return s.notes.Update(ctx, n)
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.notes.Delete(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*Note, int, error) {
	return s.notes.ListByUser(ctx, userID, limit, offset)
}
