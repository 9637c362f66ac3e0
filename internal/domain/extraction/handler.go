package extraction

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	LabImagePath        = "/extract-lab-values"
	LabBatchPath        = "/extract-lab-values/batch"
	MedicationImagePath = "/medications/extract-from-image"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the image endpoints on api. mw is applied to every
// route, typically the tighter image rate limit.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("", mw...)
	g.POST(LabImagePath, h.ExtractLabValues)
	g.POST(LabBatchPath, h.ExtractLabValuesBatch)
	g.POST(MedicationImagePath, h.ExtractMedications)
}

type labImageRequest struct {
	Image string `json:"image"`
}

type labBatchRequest struct {
	Images []string `json:"images"`
}

type medicationImageRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"mediaType"`
}

func (h *Handler) ExtractLabValues(c echo.Context) error {
	var req labImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Image) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}
	readings, err := h.svc.ExtractLabs(c.Request().Context(), req.Image)
	if err != nil {
		return extractionError(err, "Failed to process lab image")
	}
	return c.JSON(http.StatusOK, map[string]any{"labValues": readings})
}

func (h *Handler) ExtractLabValuesBatch(c echo.Context) error {
	var req labBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Images) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}
	if len(req.Images) > MaxBatchImages {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("at most %d images per batch", MaxBatchImages))
	}
	res, err := h.svc.ExtractLabBatch(c.Request().Context(), req.Images)
	if err != nil {
		return extractionError(err, "Failed to process lab images")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ExtractMedications(c echo.Context) error {
	var req medicationImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Image) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}
	meds, err := h.svc.ExtractMedications(c.Request().Context(), req.Image, req.MediaType)
	if err != nil {
		return extractionError(err, "Failed to process medication image")
	}
	return c.JSON(http.StatusOK, meds)
}

func extractionError(err error, msg string) error {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrExtractorUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "extraction backend is not configured")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
	}
}
