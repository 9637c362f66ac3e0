package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/domain/medication"
)

type fakeMessager struct {
	text   string
	err    error
	params []anthropic.MessageNewParams
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: f.text}}}, nil
}

func newTestAnthropic(text string) (*AnthropicExtractor, *fakeMessager) {
	m := &fakeMessager{text: text}
	x := NewAnthropicExtractor(m, "", zerolog.Nop())
	x.now = func() time.Time { return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC) }
	return x, m
}

var testImage = Image{MediaType: "image/png", Data: []byte("img"), Base64: "aW1n"}

func TestAnthropicExtractor_ExtractLabs(t *testing.T) {
	x, m := newTestAnthropic("```json\n[{\"testName\":\"Hb\",\"value\":140,\"unit\":\"g/L\",\"category\":\"Hématologie\",\"timestamp\":\"250601 0800\"}]\n```")

	got, err := x.ExtractLabs(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Value != "140" || got[0].Timestamp != "250601 0800" {
		t.Fatalf("unexpected readings %+v", got)
	}

	p := m.params[0]
	if p.MaxTokens != 4096 || string(p.Model) != DefaultAnthropicModel {
		t.Errorf("unexpected params: model=%s max=%d", p.Model, p.MaxTokens)
	}
	blocks := p.Messages[0].Content
	if len(blocks) != 2 || blocks[1].OfImage == nil {
		t.Fatalf("expected text and image blocks, got %d", len(blocks))
	}
	src := blocks[1].OfImage.Source.OfBase64
	if src == nil || src.Data != "aW1n" || string(src.MediaType) != "image/png" {
		t.Errorf("image block not built from upload: %+v", src)
	}
}

func TestAnthropicExtractor_ExtractLabs_Unparseable(t *testing.T) {
	x, _ := newTestAnthropic("I could not read this report.")
	got, err := x.ExtractLabs(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty readings, got %v", got)
	}
}

func TestAnthropicExtractor_TransportError(t *testing.T) {
	x, m := newTestAnthropic("")
	m.err = errors.New("connection reset")
	if _, err := x.ExtractLabs(context.Background(), testImage); err == nil {
		t.Error("expected lab extraction error")
	}
	if _, err := x.ExtractMedications(context.Background(), testImage); err == nil {
		t.Error("expected medication extraction error")
	}
}

func TestAnthropicExtractor_ExtractMedications(t *testing.T) {
	x, m := newTestAnthropic(`Here is the list:
[
 {"name":"Metformin","dosage":"500 mg","quantity":"2","frequency":"BID"},
 {"name":"Apixaban","dosage":"5 mg"},
 {"name":"Tylenol","dosage":"325 mg","quantity":0.5,"frequency":"PRN"},
 {"name":"","dosage":"10 mg"},
 {"name":"Mystery"}
]`)

	got, err := x.ExtractMedications(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 medications, got %d: %+v", len(got), got)
	}
	if got[0].Dosage != "1000 mg" || got[0].Quantity != "2" || got[0].Category != medication.CategoryHypoglycemic {
		t.Errorf("unexpected metformin %+v", got[0])
	}
	if got[1].Frequency != "DIE" || got[1].Quantity != "1" || got[1].Dosage != "5 mg" {
		t.Errorf("expected defaults on apixaban, got %+v", got[1])
	}
	if got[2].Dosage != "162.5 mg" || !got[2].IsPRN {
		t.Errorf("unexpected tylenol %+v", got[2])
	}
	if got[0].ID == "" || got[0].AddedAt.IsZero() {
		t.Error("expected id and addedAt to be set")
	}
	if m.params[0].MaxTokens != 2000 {
		t.Errorf("expected 2000 max tokens, got %d", m.params[0].MaxTokens)
	}
}

func TestAnthropicExtractor_ParseMedications_RequiresFrequency(t *testing.T) {
	x, m := newTestAnthropic(`[{"name":"Allopurinol","dosage":"200 MG","quantity":"1","frequency":"DIE"},{"name":"Metoprolol","dosage":"100 MG"}]`)

	got, err := x.ParseMedications(context.Background(), "- Allopurinol 200 MG DIE\n- Metoprolol 100 MG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Allopurinol" {
		t.Errorf("unexpected medications %+v", got)
	}
	if len(m.params[0].Messages[0].Content) != 1 {
		t.Error("text parsing must not send an image block")
	}
}
