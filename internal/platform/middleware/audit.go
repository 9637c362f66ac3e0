package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/platform/auth"
)

// AuditEntry records one access to a route that reads or writes patient
// data.
type AuditEntry struct {
	UserID     string
	Resource   string
	ResourceID string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// Audit logs an AuditEntry, tagged type=phi_access, for every request under
// one of the given path prefixes.
func Audit(logger zerolog.Logger, prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			prefix, ok := matchPrefix(req.URL.Path, prefixes)
			if !ok {
				return next(c)
			}

			err := next(c)

			entry := buildAuditEntry(c, prefix)
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					entry.StatusCode = he.Code
				} else {
					entry.StatusCode = http.StatusInternalServerError
				}
			}

			logger.Info().
				Str("type", "phi_access").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", SanitizeLogValue(entry.Path)).
				Str("remote_ip", entry.IPAddress).
				Str("user_agent", SanitizeLogValue(entry.UserAgent)).
				Int("status", entry.StatusCode).
				Time("at", entry.Timestamp).
				Msg("phi_access")

			return err
		}
	}
}

func buildAuditEntry(c echo.Context, prefix string) AuditEntry {
	req := c.Request()
	rid, _ := c.Get("request_id").(string)
	resource, id := splitResource(req.URL.Path, prefix)
	return AuditEntry{
		UserID:     auth.UserIDFromContext(req.Context()),
		Resource:   resource,
		ResourceID: id,
		Action:     httpMethodToAction(req.Method),
		IPAddress:  c.RealIP(),
		UserAgent:  req.UserAgent(),
		Path:       req.URL.Path,
		Method:     req.Method,
		Timestamp:  time.Now().UTC(),
		RequestID:  rid,
		StatusCode: c.Response().Status,
	}
}

func matchPrefix(path string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return p, true
		}
	}
	return "", false
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// splitResource returns the last segment of the matched prefix as the
// resource name and the following segment as its ID when that segment is a
// UUID.
//
//	/api/v1/notes             -> notes, ""
//	/api/v1/notes/<uuid>      -> notes, <uuid>
//	/api/v1/notes/compose     -> notes, ""
func splitResource(path, prefix string) (string, string) {
	trimmed := strings.TrimRight(prefix, "/")
	resource := trimmed[strings.LastIndex(trimmed, "/")+1:]
	rest := strings.Trim(strings.TrimPrefix(path, trimmed), "/")
	seg, _, _ := strings.Cut(rest, "/")
	if _, err := uuid.Parse(seg); err == nil {
		return resource, seg
	}
	return resource, ""
}
