package medication

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/platform/auth"
	"github.com/clinote/clinote/internal/platform/middleware"
)

const defaultSearchLimit = 10

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes mounts the formulary lookups under api (/api) and the
// medication list helpers under v1 (/api/v1).
func (h *Handler) RegisterRoutes(api *echo.Group, v1 *echo.Group) {
	lookup := api.Group("/medications", middleware.ETag(5*time.Minute))
	lookup.GET("/search", h.Search)
	lookup.GET("/dosages/:name", h.Dosages)

	meds := v1.Group("/medications")
	meds.GET("/categories", h.ListCategories)
	meds.POST("/categorize", h.Categorize)
	meds.POST("/standardize", h.Standardize)
	meds.POST("/format", h.Format)

	admin := v1.Group("/formulary", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/reload", h.ReloadFormulary)
}

func (h *Handler) Search(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultSearchLimit
	}
	return c.JSON(http.StatusOK, h.catalog.Formulary().Search(c.QueryParam("q"), limit))
}

func (h *Handler) Dosages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Formulary().CommonDosages(c.Param("name")))
}

type categoryInfo struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

func (h *Handler) ListCategories(c echo.Context) error {
	cats := Categories()
	out := make([]categoryInfo, len(cats))
	for i, cat := range cats {
		out[i] = categoryInfo{Category: cat, Priority: CategoryPriority(cat)}
	}
	return c.JSON(http.StatusOK, out)
}

type categorizeRequest struct {
	Names []string `json:"names"`
}

func (h *Handler) Categorize(c echo.Context) error {
	var req categorizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Names) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "names is required")
	}
	out := make([]categoryInfo, len(req.Names))
	for i, name := range req.Names {
		cat := Categorize(name)
		out[i] = categoryInfo{Name: name, Category: cat, Priority: CategoryPriority(cat)}
	}
	return c.JSON(http.StatusOK, out)
}

type standardizeRequest struct {
	Dosage    string `json:"dosage"`
	Quantity  string `json:"quantity"`
	Frequency string `json:"frequency"`
	Lang      string `json:"lang"`
}

type standardizeResponse struct {
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Display   string `json:"display"`
	IsPRN     bool   `json:"isPRN"`
}

// Standardize turns free-text prescription directions into a total dose and
// an abbreviated frequency. Display is the frequency as written, translated
// to the note language when a known phrase is found.
func (h *Handler) Standardize(c echo.Context) error {
	var req standardizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var resp standardizeResponse
	if req.Dosage != "" {
		resp.Dosage = CalculateTotalDosage(req.Dosage, req.Quantity)
	}
	if req.Frequency != "" {
		resp.Frequency = StandardizeFrequency(req.Frequency)
		resp.Display = TranslateFrequency(req.Frequency, req.Lang)
		resp.IsPRN = IsPRN(resp.Frequency)
	}
	return c.JSON(http.StatusOK, resp)
}

type formatRequest struct {
	Medications []Medication `json:"medications"`
	Lang        string       `json:"lang"`
	Sort        bool         `json:"sort"`
}

func (h *Handler) Format(c echo.Context) error {
	var req formatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	meds := req.Medications
	if req.Sort {
		meds = SortByImportance(meds)
	}
	return c.JSON(http.StatusOK, map[string]string{"note": FormatForNote(meds, req.Lang)})
}

func (h *Handler) ReloadFormulary(c echo.Context) error {
	n, err := h.catalog.Reload()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reload formulary").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"entries": n})
}
