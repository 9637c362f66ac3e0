package lab

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	rec *Reconciler
}

func NewHandler(rec *Reconciler) *Handler {
	return &Handler{rec: rec}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/labs")
	g.POST("/reconcile", h.Reconcile)
	g.POST("/format", h.Format)
	g.POST("/trend", h.Trend)
}

type reconcileRequest struct {
	LabValues []Reading `json:"labValues"`
	Previous  []Record  `json:"previous,omitempty"`
}

type recordsResponse struct {
	Records []Record `json:"records"`
	Note    string   `json:"note"`
}

func (h *Handler) Reconcile(c echo.Context) error {
	var req reconcileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	records := h.rec.Reconcile(req.LabValues)
	if len(req.Previous) > 0 {
		records = CarryState(req.Previous, records)
	}
	return c.JSON(http.StatusOK, recordsResponse{Records: records, Note: FormatForNote(records)})
}

type formatRequest struct {
	Records []Record `json:"records"`
}

func (h *Handler) Format(c echo.Context) error {
	var req formatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"note": FormatForNote(req.Records)})
}

type trendRequest struct {
	Records  []Record `json:"records"`
	TestName string   `json:"testName"`
	Action   string   `json:"action"`
}

func (h *Handler) Trend(c echo.Context) error {
	var req trendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.TestName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "testName is required")
	}

	var records []Record
	switch req.Action {
	case "increase":
		records = IncreaseTrend(req.Records, req.TestName)
	case "decrease":
		records = DecreaseTrend(req.Records, req.TestName)
	case "toggle-note":
		records = ToggleShowInNote(req.Records, req.TestName)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "action must be increase, decrease or toggle-note")
	}
	return c.JSON(http.StatusOK, recordsResponse{Records: records, Note: FormatForNote(records)})
}
