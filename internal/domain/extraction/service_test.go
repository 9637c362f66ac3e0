package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
)

type fakeLabExtractor struct {
	calls int
	fail  map[int]bool
}

func (f *fakeLabExtractor) ExtractLabs(_ context.Context, img Image) ([]lab.Reading, error) {
	i := f.calls
	f.calls++
	if f.fail[i] {
		return nil, errors.New("model overloaded")
	}
	return []lab.Reading{{TestName: "Hemoglobin", Value: string(img.Data), Timestamp: "250601"}}, nil
}

type fakeMedExtractor struct {
	img Image
}

func (f *fakeMedExtractor) ExtractMedications(_ context.Context, img Image) ([]medication.Medication, error) {
	f.img = img
	return []medication.Medication{{Name: "Warfarin"}}, nil
}

func encoded(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestService_ExtractLabs(t *testing.T) {
	svc := NewService(&fakeLabExtractor{}, nil, zerolog.Nop())
	got, err := svc.ExtractLabs(context.Background(), "data:image/png;base64,"+encoded("140"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Value != "140" {
		t.Errorf("unexpected readings %+v", got)
	}
}

func TestService_Unavailable(t *testing.T) {
	svc := NewService(nil, nil, zerolog.Nop())
	ctx := context.Background()
	if _, err := svc.ExtractLabs(ctx, encoded("x")); !errors.Is(err, ErrExtractorUnavailable) {
		t.Errorf("expected ErrExtractorUnavailable, got %v", err)
	}
	if _, err := svc.ExtractLabBatch(ctx, []string{encoded("x")}); !errors.Is(err, ErrExtractorUnavailable) {
		t.Errorf("expected ErrExtractorUnavailable, got %v", err)
	}
	if _, err := svc.ExtractMedications(ctx, encoded("x"), ""); !errors.Is(err, ErrExtractorUnavailable) {
		t.Errorf("expected ErrExtractorUnavailable, got %v", err)
	}
}

func TestService_ExtractLabBatch(t *testing.T) {
	labs := &fakeLabExtractor{fail: map[int]bool{1: true}}
	svc := NewService(labs, nil, zerolog.Nop())

	res, err := svc.ExtractLabBatch(context.Background(), []string{encoded("140"), encoded("120"), "not base64!", encoded("95")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.LabValues) != 2 || res.LabValues[0].Value != "140" || res.LabValues[1].Value != "95" {
		t.Errorf("unexpected values %+v", res.LabValues)
	}
	if len(res.Failed) != 2 || res.Failed[0] != 1 || res.Failed[1] != 2 {
		t.Errorf("expected failures at 1 and 2, got %v", res.Failed)
	}
}

func TestService_ExtractLabBatch_Limits(t *testing.T) {
	svc := NewService(&fakeLabExtractor{}, nil, zerolog.Nop())
	if _, err := svc.ExtractLabBatch(context.Background(), nil); err == nil {
		t.Error("expected error for empty batch")
	}
	many := make([]string, MaxBatchImages+1)
	for i := range many {
		many[i] = encoded("x")
	}
	if _, err := svc.ExtractLabBatch(context.Background(), many); err == nil {
		t.Error("expected error for oversized batch")
	}
}

func TestService_ExtractLabBatch_Cancelled(t *testing.T) {
	svc := NewService(&fakeLabExtractor{}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ExtractLabBatch(ctx, []string{encoded("x")}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestService_ExtractMedications(t *testing.T) {
	meds := &fakeMedExtractor{}
	svc := NewService(nil, meds, zerolog.Nop())
	got, err := svc.ExtractMedications(context.Background(), encoded("label"), "image/webp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || meds.img.MediaType != "image/webp" || string(meds.img.Data) != "label" {
		t.Errorf("unexpected result %+v, image %+v", got, meds.img)
	}
}

func TestService_InvalidImage(t *testing.T) {
	svc := NewService(&fakeLabExtractor{}, &fakeMedExtractor{}, zerolog.Nop())
	if _, err := svc.ExtractLabs(context.Background(), "data:application/pdf;base64,QUJD"); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}
