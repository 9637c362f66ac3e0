//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/clinote/clinote/internal/domain/medication"
	"github.com/clinote/clinote/internal/domain/notes"
)

func TestNotes_RoundTrip(t *testing.T) {
	resetTables(t, "ros_notes")
	ctx := context.Background()
	svc := notes.NewService(notes.NewRepoPG(testPool))

	n := &notes.Note{
		UserID:        "user-1",
		PatientName:   "Jane Doe",
		PatientDOB:    "1950-01-01",
		PatientMRN:    "123456",
		Selections:    map[string]any{"cardio": []any{"chest pain"}},
		Medications:   medication.List{HomeMedications: []medication.Medication{{Name: "Metformin", Dosage: "500 mg", Frequency: "BID"}}},
		GeneratedNote: "ROS: chest pain",
	}
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, "user-1", n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(n.Selections, got.Selections); diff != "" {
		t.Errorf("selections mismatch (-want +got):\n%s", diff)
	}
	if len(got.Medications.HomeMedications) != 1 || got.Medications.HomeMedications[0].Name != "Metformin" {
		t.Errorf("unexpected medications %+v", got.Medications)
	}
	if got.Medications.HospitalMedications == nil {
		t.Error("expected empty hospital list, not null")
	}

	if _, err := svc.Get(ctx, "user-2", n.ID); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestNotes_ListNewestFirst(t *testing.T) {
	resetTables(t, "ros_notes")
	ctx := context.Background()
	svc := notes.NewService(notes.NewRepoPG(testPool))

	for _, mrn := range []string{"1", "2", "3"} {
		n := &notes.Note{UserID: "user-1", PatientName: "P", PatientDOB: "2000-01-01", PatientMRN: mrn, GeneratedNote: "note " + mrn}
		if err := svc.Create(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, total, err := svc.List(ctx, "user-1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("expected 2 of 3 notes, got %d of %d", len(items), total)
	}
	if items[0].CreatedAt.Before(items[1].CreatedAt) {
		t.Error("expected newest note first")
	}

	if err := svc.Delete(ctx, "user-1", items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, total, _ = svc.List(ctx, "user-1", 10, 0); total != 2 {
		t.Errorf("expected 2 notes after delete, got %d", total)
	}
}
