package extraction

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
)

// LabExtractor reads lab results from a photographed report.
type LabExtractor interface {
	ExtractLabs(ctx context.Context, img Image) ([]lab.Reading, error)
}

// MedicationExtractor reads a medication list from a photographed
// prescription, pharmacy label or discharge summary.
type MedicationExtractor interface {
	ExtractMedications(ctx context.Context, img Image) ([]medication.Medication, error)
}

// TextMedicationParser turns OCR text into medications.
type TextMedicationParser interface {
	ParseMedications(ctx context.Context, text string) ([]medication.Medication, error)
}

// looseString accepts a JSON string, number or bool. Models are asked for
// strings but do not always comply.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*s = looseString(strconv.FormatBool(flag))
		return nil
	}
	*s = ""
	return nil
}

func (s looseString) String() string { return strings.TrimSpace(string(s)) }

type rawLabValue struct {
	TestName       looseString `json:"testName"`
	Value          looseString `json:"value"`
	Unit           looseString `json:"unit"`
	ReferenceRange looseString `json:"referenceRange"`
	Category       looseString `json:"category"`
	Timestamp      looseString `json:"timestamp"`
}

func (r rawLabValue) reading() lab.Reading {
	return lab.Reading{
		TestName:       r.TestName.String(),
		Value:          r.Value.String(),
		Unit:           r.Unit.String(),
		ReferenceRange: r.ReferenceRange.String(),
		Category:       r.Category.String(),
		Timestamp:      r.Timestamp.String(),
	}
}

type rawMedication struct {
	Name         looseString `json:"name"`
	Dosage       looseString `json:"dosage"`
	Quantity     looseString `json:"quantity"`
	Frequency    looseString `json:"frequency"`
	Instructions looseString `json:"instructions"`
	Notes        looseString `json:"notes"`
}

// medication builds a list entry, multiplying the base dose by quantity and
// defaulting frequency to DIE and quantity to 1.
func (r rawMedication) medication(now time.Time) medication.Medication {
	m := medication.New(r.Name.String(), false, now)
	qty := r.Quantity.String()
	if qty == "" {
		qty = "1"
	}
	freq := r.Frequency.String()
	if freq == "" {
		freq = "DIE"
	}
	m.Dosage = medication.ScaleDose(r.Dosage.String(), qty)
	m.Quantity = qty
	m.Frequency = freq
	m.IsPRN = medication.IsPRN(freq)
	m.Instructions = strings.TrimSpace(strings.Join([]string{r.Instructions.String(), r.Notes.String()}, " "))
	return m
}
