package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
)

// TextDetector runs OCR over an image and returns the full detected text.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// VisionOCR is a TextDetector backed by Google Cloud Vision.
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionOCR creates a Vision client. credentials may be inline service
// account JSON or a path to a key file; when empty, application default
// credentials are used.
func NewVisionOCR(ctx context.Context, credentials string) (*VisionOCR, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, credentialOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &VisionOCR{client: client}, nil
}

func credentialOptions(credentials string) []option.ClientOption {
	credentials = strings.TrimSpace(credentials)
	switch {
	case credentials == "":
		return nil
	case json.Valid([]byte(credentials)):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentials))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(credentials)}
	}
}

func (v *VisionOCR) DetectText(ctx context.Context, image []byte) (string, error) {
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision text detection: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil && r.GetError().GetCode() != 0 {
		return "", fmt.Errorf("vision text detection: %s", r.GetError().GetMessage())
	}
	annotations := r.GetTextAnnotations()
	if len(annotations) == 0 {
		return "", nil
	}
	return annotations[0].GetDescription(), nil
}

func (v *VisionOCR) Close() error {
	return v.client.Close()
}

// OCRLabExtractor reads lab tables by OCR followed by ParseLabTable.
type OCRLabExtractor struct {
	ocr    TextDetector
	logger zerolog.Logger
}

func NewOCRLabExtractor(ocr TextDetector, logger zerolog.Logger) *OCRLabExtractor {
	return &OCRLabExtractor{ocr: ocr, logger: logger}
}

func (x *OCRLabExtractor) ExtractLabs(ctx context.Context, img Image) ([]lab.Reading, error) {
	text, err := x.ocr.DetectText(ctx, img.Data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		x.logger.Info().Msg("no text detected in lab image")
		return []lab.Reading{}, nil
	}
	readings := ParseLabTable(text)
	x.logger.Info().Int("readings", len(readings)).Msg("lab table parsed")
	return readings, nil
}

// OCRMedicationExtractor runs OCR and hands the text to a language model.
type OCRMedicationExtractor struct {
	ocr    TextDetector
	parser TextMedicationParser
	logger zerolog.Logger
}

func NewOCRMedicationExtractor(ocr TextDetector, parser TextMedicationParser, logger zerolog.Logger) *OCRMedicationExtractor {
	return &OCRMedicationExtractor{ocr: ocr, parser: parser, logger: logger}
}

func (x *OCRMedicationExtractor) ExtractMedications(ctx context.Context, img Image) ([]medication.Medication, error) {
	text, err := x.ocr.DetectText(ctx, img.Data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		x.logger.Info().Msg("no text detected in medication image")
		return []medication.Medication{}, nil
	}
	return x.parser.ParseMedications(ctx, text)
}
