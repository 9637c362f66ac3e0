package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/domain/lab"
	"github.com/clinote/clinote/internal/domain/medication"
)

const MaxBatchImages = 10

var ErrExtractorUnavailable = errors.New("extractor unavailable")

// BatchResult is the outcome of a multi-image lab extraction. Failed holds
// the zero-based positions of images that could not be processed.
type BatchResult struct {
	LabValues []lab.Reading `json:"labValues"`
	Failed    []int         `json:"failed"`
}

type Service struct {
	labs   LabExtractor
	meds   MedicationExtractor
	logger zerolog.Logger
}

// NewService wires the configured backends. Either may be nil, in which
// case the matching operations return ErrExtractorUnavailable.
func NewService(labs LabExtractor, meds MedicationExtractor, logger zerolog.Logger) *Service {
	return &Service{labs: labs, meds: meds, logger: logger}
}

func (s *Service) ExtractLabs(ctx context.Context, rawImage string) ([]lab.Reading, error) {
	if s.labs == nil {
		return nil, ErrExtractorUnavailable
	}
	img, err := DecodeImage(rawImage, "")
	if err != nil {
		return nil, err
	}
	start := time.Now()
	readings, err := s.labs.ExtractLabs(ctx, img)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("readings", len(readings)).
		Int("image_bytes", len(img.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("lab values extracted")
	return readings, nil
}

// ExtractLabBatch processes images one at a time. A failed image is logged
// and skipped; the batch only fails when the request itself is invalid or
// the context ends.
func (s *Service) ExtractLabBatch(ctx context.Context, rawImages []string) (*BatchResult, error) {
	if s.labs == nil {
		return nil, ErrExtractorUnavailable
	}
	if len(rawImages) == 0 {
		return nil, fmt.Errorf("images is required")
	}
	if len(rawImages) > MaxBatchImages {
		return nil, fmt.Errorf("at most %d images per batch", MaxBatchImages)
	}

	res := &BatchResult{LabValues: []lab.Reading{}, Failed: []int{}}
	for i, raw := range rawImages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		readings, err := s.ExtractLabs(ctx, raw)
		if err != nil {
			s.logger.Warn().Err(err).Int("image", i).Msg("lab image failed in batch")
			res.Failed = append(res.Failed, i)
			continue
		}
		res.LabValues = append(res.LabValues, readings...)
	}
	return res, nil
}

func (s *Service) ExtractMedications(ctx context.Context, rawImage, mediaType string) ([]medication.Medication, error) {
	if s.meds == nil {
		return nil, ErrExtractorUnavailable
	}
	img, err := DecodeImage(rawImage, mediaType)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	meds, err := s.meds.ExtractMedications(ctx, img)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("medications", len(meds)).
		Dur("elapsed", time.Since(start)).
		Msg("medications extracted")
	return meds, nil
}
