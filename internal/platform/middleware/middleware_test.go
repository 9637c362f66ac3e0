package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/platform/auth"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestID()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if rid := c.Get("request_id").(string); rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	_ = RequestID()(handler)(c)

	if got := rec.Header().Get(RequestIDHeader); got != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", got)
	}
}

func TestRequestID_ReplacesOversizedID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLength+1))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = RequestID()(okHandler)(c)

	if got := rec.Header().Get(RequestIDHeader); len(got) > maxRequestIDLength {
		t.Errorf("oversized request ID was kept: %d bytes", len(got))
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u-1"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-1")

	if err := Logger(logger)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["level"] != "info" || line["request_id"] != "req-1" || line["user_id"] != "u-1" {
		t.Errorf("unexpected log line %v", line)
	}
	if line["status"] != float64(200) {
		t.Errorf("expected status 200, got %v", line["status"])
	}
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		err   error
		level string
	}{
		{echo.NewHTTPError(http.StatusNotFound, "dot phrase not found"), "warn"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		_ = Logger(zerolog.New(&buf))(func(echo.Context) error { return tt.err })(c)

		var line map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %v", err)
		}
		if line["level"] != tt.level {
			t.Errorf("error %v: expected level %s, got %v", tt.err, tt.level, line["level"])
		}
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Recovery(zerolog.New(&buf))(func(c echo.Context) error {
		panic("test panic")
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if !strings.Contains(buf.String(), "test panic") {
		t.Errorf("expected panic value in log, got %s", buf.String())
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ok", nil), httptest.NewRecorder())

	if err := Recovery(zerolog.Nop())(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAudit_LogsNoteAccess(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	id := "3f2a7a52-6c1e-4b8e-9a55-1d2f0c7e9b10"
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notes/"+id, nil)
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u-1"}))
	c := e.NewContext(req, httptest.NewRecorder())

	err := Audit(zerolog.New(&buf), "/api/v1/notes")(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	want := map[string]interface{}{
		"type":        "phi_access",
		"user_id":     "u-1",
		"resource":    "notes",
		"resource_id": id,
		"action":      "delete",
		"status":      float64(204),
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s: got %v, want %v", k, line[k], v)
		}
	}
}

func TestAudit_SkipsOtherPaths(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/notesX", nil), httptest.NewRecorder())

	_ = Audit(zerolog.New(&buf), "/api/v1/notes")(okHandler)(c)
	if buf.Len() != 0 {
		t.Errorf("expected no audit line, got %s", buf.String())
	}
}

func TestSplitResource(t *testing.T) {
	tests := []struct {
		path, resource, id string
	}{
		{"/api/v1/notes", "notes", ""},
		{"/api/v1/notes/compose", "notes", ""},
		{"/api/v1/notes/3f2a7a52-6c1e-4b8e-9a55-1d2f0c7e9b10/extra", "notes", "3f2a7a52-6c1e-4b8e-9a55-1d2f0c7e9b10"},
	}
	for _, tt := range tests {
		r, id := splitResource(tt.path, "/api/v1/notes")
		if r != tt.resource || id != tt.id {
			t.Errorf("splitResource(%q) = %q, %q", tt.path, r, id)
		}
	}
}

func TestErrorHandler_HidesInternalMessages(t *testing.T) {
	tests := []struct {
		name   string
		hide   bool
		err    error
		status int
		msg    string
	}{
		{"client error kept", true, echo.NewHTTPError(http.StatusBadRequest, "No image provided"), 400, "No image provided"},
		{"server error hidden", true, errors.New("pq: connection refused"), 500, "Internal Server Error"},
		{"server error shown in dev", false, errors.New("pq: connection refused"), 500, "pq: connection refused"},
		{"http 503 hidden", true, echo.NewHTTPError(http.StatusServiceUnavailable, "vision client not configured"), 503, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(zerolog.Nop(), tt.hide)(tt.err, c)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestErrorHandler_InternalDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := echo.NewHTTPError(http.StatusInternalServerError, "Failed to extract lab values").
		SetInternal(errors.New("vision: quota exceeded"))
	ErrorHandler(zerolog.Nop(), false)(err, c)

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Failed to extract lab values" || body.Details != "vision: quota exceeded" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestETag_NotModified(t *testing.T) {
	e := echo.New()
	e.Use(ETag(time.Hour))
	e.GET("/api/medications/search", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{"Metformin"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medications/search", nil))
	etag := rec.Header().Get("ETag")
	if rec.Code != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with ETag, got %d %q", rec.Code, etag)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "private, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/medications/search", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestETag_SkipsErrorsAndWrites(t *testing.T) {
	e := echo.New()
	e.Use(ETag(time.Minute))
	e.GET("/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "nope"})
	})
	e.POST("/write", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "yes"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Header().Get("ETag") != "" || rec.Code != http.StatusNotFound {
		t.Errorf("error responses must not carry an ETag: %d %q", rec.Code, rec.Header().Get("ETag"))
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/write", nil))
	if rec.Header().Get("ETag") != "" {
		t.Error("POST responses must not carry an ETag")
	}
}

func TestEtagMatch(t *testing.T) {
	if !etagMatch(`"abc", W/"def"`, `W/"def"`) {
		t.Error("expected list match")
	}
	if !etagMatch(`"def"`, `W/"def"`) {
		t.Error("expected weak comparison match")
	}
	if !etagMatch("*", `W/"x"`) {
		t.Error("expected wildcard match")
	}
	if etagMatch(`"abc"`, `W/"def"`) {
		t.Error("unexpected match")
	}
}
