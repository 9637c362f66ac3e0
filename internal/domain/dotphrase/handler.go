package dotphrase

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/platform/auth"
	"github.com/clinote/clinote/internal/platform/middleware"
	"github.com/clinote/clinote/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(v1 *echo.Group) {
	g := v1.Group("/dot-phrases", auth.RequireRole(auth.RoleClinician))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/defaults", h.Defaults, middleware.ETag(time.Hour))
	g.POST("/expand", h.Expand)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type phraseRequest struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type expandRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Choices []int  `json:"choices"`
}

type expandResponse struct {
	Text string `json:"text"`
}

func phraseError(err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "dot phrase not found")
	case errors.Is(err, ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "dot phrase request failed").SetInternal(err)
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
	userID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return phraseError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Create(c echo.Context) error {
	var req phraseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := &DotPhrase{
		UserID:   auth.UserIDFromContext(c.Request().Context()),
		Name:     req.Name,
		Content:  req.Content,
		Category: req.Category,
	}
	if err := h.svc.Create(c.Request().Context(), p); err != nil {
		return phraseError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return phraseError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req phraseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := &DotPhrase{
		ID:       id,
		UserID:   auth.UserIDFromContext(c.Request().Context()),
		Name:     req.Name,
		Content:  req.Content,
		Category: req.Category,
	}
	if err := h.svc.Update(c.Request().Context(), p); err != nil {
		return phraseError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id); err != nil {
		return phraseError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Defaults(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Defaults())
}

func (h *Handler) Expand(c echo.Context) error {
	var req expandRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text, err := h.svc.Expand(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), req.Name, req.Content, req.Choices)
	if err != nil {
		return phraseError(err)
	}
	return c.JSON(http.StatusOK, expandResponse{Text: text})
}
