package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
)

const DefaultAnthropicModel = "claude-sonnet-4-20250514"

const labSystemPrompt = `Extract every lab value from the attached laboratory report image.
Each row of the report is one collection time. The leftmost column holds the date as YYMMDD or YYMMDD HHMM. The bottom row is the most recent and rows get older going up.
Emit one object per value, each tied to the date of its row. Do not summarise, merge or deduplicate.

Return a JSON array of objects with the fields:
- testName: the code as printed, e.g. "Hb", "Na", "Plt"
- value: the result as printed
- unit: e.g. "g/L", "mmol/L"
- referenceRange: when printed
- category: the section heading, e.g. "Hématologie", "Biochimie"
- timestamp: the row date, e.g. "250608" or "250608 0800"

timestamp is required on every object. Return only the JSON array.`

const medicationImageSystemPrompt = `You extract medication lists from photos of prescriptions, pharmacy labels and medication lists.

For every medication in the image report:
- name: the medication name, brand when visible, otherwise generic
- dosage: the strength of ONE unit with its unit, e.g. "50 mg". Never multiply it out.
- quantity: how many units are taken per dose as a decimal string, e.g. "2", "0.5", "1.5". Use "1" when not stated.
- frequency: standard abbreviation where possible: DIE, BID, TID, QID, PRN

Examples of quantity: "2 comprimés" is "2", "½ comprimé" is "0.5", "take 2 tablets" is "2", "one capsule" is "1".
Omit any field you cannot read. Return only a JSON array such as
[{"name": "Metformin", "dosage": "500 mg", "quantity": "2", "frequency": "BID"}]
and an empty array when no medication is visible.`

const medicationTextSystemPrompt = `You extract medications from OCR text of medication lists, prescriptions and pharmacy labels.

Rules:
- name: the base generic name only. Drop brand names and release modifiers such as sr, xr, cr, la, mr, er, sa, xl, 24h or retard.
- dosage: the strength of ONE unit with its unit, e.g. "100 MG"
- quantity: units per dose as a decimal string, "1" when not stated
- frequency: required; use DIE, BID, TID, QID or PRN where possible
- keep the language of the source text
- skip lines that are instructions rather than medications, e.g. "Prendre 17 G DIE" or "Appliquez"
- list each generic name and dose once

Example input:
- Allopurinol 200 MG DIE
- Jamp allopurinol 200 MG DIE
- Aa metoprolol sr 100 MG DIE
- Prendre 17 G DIE

Example output:
[{"name": "Allopurinol", "dosage": "200 MG", "quantity": "1", "frequency": "DIE"},
 {"name": "Metoprolol", "dosage": "100 MG", "quantity": "1", "frequency": "DIE"}]

Return only the JSON array.`

// AnthropicMessager is the subset of the Anthropic client used here.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

func NewAnthropicMessager(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

// AnthropicExtractor sends report images, or OCR text, to Claude and parses
// the JSON array it returns.
type AnthropicExtractor struct {
	messages AnthropicMessager
	model    string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAnthropicExtractor(messages AnthropicMessager, model string, logger zerolog.Logger) *AnthropicExtractor {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicExtractor{messages: messages, model: model, logger: logger, now: time.Now}
}

func (a *AnthropicExtractor) complete(ctx context.Context, system string, maxTokens int64, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// ExtractLabs returns every value Claude reads from the report. An answer
// without a parseable JSON array yields no readings.
func (a *AnthropicExtractor) ExtractLabs(ctx context.Context, img Image) ([]lab.Reading, error) {
	text, err := a.complete(ctx, labSystemPrompt, 4096,
		anthropic.NewTextBlock("Extract all laboratory values from this image. Return only the JSON array."),
		anthropic.NewImageBlockBase64(img.MediaType, img.Base64),
	)
	if err != nil {
		return nil, fmt.Errorf("anthropic lab extraction: %w", err)
	}

	var raw []rawLabValue
	if err := decodeJSONArray(text, &raw); err != nil {
		a.logger.Warn().Err(err).Msg("anthropic lab response not parseable")
		return []lab.Reading{}, nil
	}
	out := make([]lab.Reading, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.reading())
	}
	return out, nil
}

// ExtractMedications reads medications from an image. Entries without a
// name and dosage are dropped.
func (a *AnthropicExtractor) ExtractMedications(ctx context.Context, img Image) ([]medication.Medication, error) {
	text, err := a.complete(ctx, medicationImageSystemPrompt, 2000,
		anthropic.NewTextBlock("Extract every medication in this image with its strength, quantity per dose and frequency."),
		anthropic.NewImageBlockBase64(img.MediaType, img.Base64),
	)
	if err != nil {
		return nil, fmt.Errorf("anthropic medication extraction: %w", err)
	}
	return a.medications(text, false), nil
}

// ParseMedications reads medications from OCR text. Entries without a
// name, dosage and frequency are dropped.
func (a *AnthropicExtractor) ParseMedications(ctx context.Context, ocrText string) ([]medication.Medication, error) {
	text, err := a.complete(ctx, medicationTextSystemPrompt, 2000, anthropic.NewTextBlock(ocrText))
	if err != nil {
		return nil, fmt.Errorf("anthropic medication parsing: %w", err)
	}
	return a.medications(text, true), nil
}

func (a *AnthropicExtractor) medications(text string, requireFrequency bool) []medication.Medication {
	var raw []rawMedication
	if err := decodeJSONArray(text, &raw); err != nil {
		a.logger.Warn().Err(err).Msg("anthropic medication response not parseable")
		return []medication.Medication{}
	}
	now := a.now()
	out := make([]medication.Medication, 0, len(raw))
	for _, r := range raw {
		if r.Name.String() == "" || r.Dosage.String() == "" {
			continue
		}
		if requireFrequency && r.Frequency.String() == "" {
			continue
		}
		out = append(out, r.medication(now))
	}
	return out
}
