package preferences

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /preferences/:kind/:list where kind is favorites,
// recents or order.
func (h *Handler) RegisterRoutes(v1 *echo.Group) {
	g := v1.Group("/preferences")
	g.GET("/:kind/:list", h.Get)
	g.PUT("/:kind/:list", h.Replace)
	g.POST("/:kind/:list", h.Add)
	g.DELETE("/:kind/:list", h.Delete)
}

type itemsRequest struct {
	Items []string `json:"items"`
}

type itemRequest struct {
	Item string `json:"item"`
}

type itemsResponse struct {
	Items []string `json:"items"`
}

func prefError(err error) error {
	if errors.Is(err, ErrInvalid) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "preference request failed").SetInternal(err)
}

func kindParam(c echo.Context) (Kind, error) {
	k, err := ParseKind(c.Param("kind"))
	if err != nil {
		return "", prefError(err)
	}
	return k, nil
}

func (h *Handler) Get(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), kind, c.Param("list"))
	if err != nil {
		return prefError(err)
	}
	return c.JSON(http.StatusOK, itemsResponse{Items: items})
}

func (h *Handler) Replace(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	var req itemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.Replace(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), kind, c.Param("list"), req.Items)
	if err != nil {
		return prefError(err)
	}
	return c.JSON(http.StatusOK, itemsResponse{Items: items})
}

// Add adds a favourite or records a recent item. The order of a queue is
// only ever replaced as a whole.
func (h *Handler) Add(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)

	var items []string
	switch kind {
	case KindFavorites:
		items, err = h.svc.AddFavorite(ctx, userID, c.Param("list"), req.Item)
	case KindRecents:
		items, err = h.svc.RecordRecent(ctx, userID, c.Param("list"), req.Item)
	default:
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "use PUT to reorder")
	}
	if err != nil {
		return prefError(err)
	}
	return c.JSON(http.StatusOK, itemsResponse{Items: items})
}

// Delete removes one favourite when ?item= is given, otherwise it clears the
// whole list.
func (h *Handler) Delete(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)

	if item := c.QueryParam("item"); item != "" {
		if kind != KindFavorites {
			return echo.NewHTTPError(http.StatusBadRequest, "item removal is only supported for favorites")
		}
		items, err := h.svc.RemoveFavorite(ctx, userID, c.Param("list"), item)
		if err != nil {
			return prefError(err)
		}
		return c.JSON(http.StatusOK, itemsResponse{Items: items})
	}
	if err := h.svc.Clear(ctx, userID, kind, c.Param("list")); err != nil {
		return prefError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
