package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/clinote/clinote/internal/domain/medication"
)

const DefaultGeminiModel = "gemini-2.0-flash"

const geminiMedicationPrompt = `Extract the medications from the text below. Return ONLY a raw JSON array, no markdown and no backticks, of objects shaped as:
{"name": "...", "dosage": "...", "frequency": "...", "instructions": "...", "notes": "..."}

Frequency must use standard notation:
- "once daily", "1 fois par jour", "daily" is DIE
- "twice daily", "2 fois par jour", "bid" is BID
- "three times daily", "3 fois par jour", "tid" is TID
- "four times daily", "4 fois par jour", "qid" is QID
- "as needed", "au besoin", "si nécessaire" is PRN

dosage is the TOTAL dose per intake: multiply the unit strength by the number of units taken.
"100mg 2 capsules" is "200mg", "100mg 1/2 capsule" is "50mg", "500mg 1 tablet" is "500mg".
Do not put the number of tablets or capsules in dosage.

Return an empty array when there is no medication.

Text:
%s`

// ContentGenerator is the subset of the Gemini models API used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (ContentGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client.Models, nil
}

// GeminiParser extracts medications from OCR text with Gemini.
type GeminiParser struct {
	models ContentGenerator
	model  string
	logger zerolog.Logger
	now    func() time.Time
}

func NewGeminiParser(models ContentGenerator, model string, logger zerolog.Logger) *GeminiParser {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiParser{models: models, model: model, logger: logger, now: time.Now}
}

func (g *GeminiParser) ParseMedications(ctx context.Context, text string) ([]medication.Medication, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(geminiMedicationPrompt, text)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini medication parsing: %w", err)
	}

	var raw []rawMedication
	if err := decodeJSONArray(resp.Text(), &raw); err != nil {
		g.logger.Warn().Err(err).Msg("gemini medication response not parseable")
		return []medication.Medication{}, nil
	}
	now := g.now()
	out := make([]medication.Medication, 0, len(raw))
	for _, r := range raw {
		if r.Name.String() == "" {
			continue
		}
		out = append(out, r.medication(now))
	}
	return out, nil
}
