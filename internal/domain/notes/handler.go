package notes

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/domain/medication"
	"github.com/clinote/clinote/internal/platform/auth"
	"github.com/clinote/clinote/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(v1 *echo.Group) {
	g := v1.Group("/notes", auth.RequireRole(auth.RoleClinician))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/compose", h.Compose)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type noteRequest struct {
	PatientName   string          `json:"patientName"`
	PatientDOB    string          `json:"patientDob"`
	PatientMRN    string          `json:"patientMrn"`
	Selections    map[string]any  `json:"selections"`
	Medications   medication.List `json:"medications"`
	GeneratedNote string          `json:"generatedNote"`
}

func (r noteRequest) note(userID string) *Note {
	return &Note{
		UserID:        userID,
		PatientName:   r.PatientName,
		PatientDOB:    r.PatientDOB,
		PatientMRN:    r.PatientMRN,
		Selections:    r.Selections,
		Medications:   r.Medications,
		GeneratedNote: r.GeneratedNote,
	}
}

type composeRequest struct {
	Sections []Section `json:"sections"`
	// Medications, when present, are appended as a final section.
	Medications []medication.Medication `json:"medications,omitempty"`
	Lang        string                  `json:"lang,omitempty"`
}

type composeResponse struct {
	Note string `json:"note"`
}

func noteError(err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "note request failed").SetInternal(err)
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), pg.Limit, pg.Offset)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Create(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n := req.note(auth.UserIDFromContext(c.Request().Context()))
	if err := h.svc.Create(c.Request().Context(), n); err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n := req.note(auth.UserIDFromContext(c.Request().Context()))
	n.ID = id
	if err := h.svc.Update(c.Request().Context(), n); err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id); err != nil {
		return noteError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Compose(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sections := req.Sections
	if len(req.Medications) > 0 {
		title := "Medications"
		if req.Lang == medication.LangFrench {
			title = "Médicaments"
		}
		sections = append(sections, Section{Title: title, Body: medication.FormatForNote(req.Medications, req.Lang)})
	}
	if len(sections) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sections is required")
	}
	return c.JSON(http.StatusOK, composeResponse{Note: Compose(sections)})
}
