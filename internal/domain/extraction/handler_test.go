package extraction

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinote/clinote/internal/domain/lab"
)

func newTestHandler(labs LabExtractor, meds MedicationExtractor) (*Handler, *echo.Echo) {
	return NewHandler(NewService(labs, meds, zerolog.Nop())), echo.New()
}

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_ExtractLabValues(t *testing.T) {
	h, e := newTestHandler(&fakeLabExtractor{}, nil)
	c, rec := postJSON(e, `{"image":"data:image/jpeg;base64,`+encoded("140")+`"}`)

	if err := h.ExtractLabValues(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		LabValues []lab.Reading `json:"labValues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.LabValues) != 1 || resp.LabValues[0].Value != "140" {
		t.Errorf("unexpected response %s", rec.Body.String())
	}
}

func TestHandler_ExtractLabValues_Errors(t *testing.T) {
	tests := []struct {
		name string
		labs LabExtractor
		body string
		want int
	}{
		{"missing image", &fakeLabExtractor{}, `{}`, http.StatusBadRequest},
		{"invalid image", &fakeLabExtractor{}, `{"image":"data:text/html;base64,QUJD"}`, http.StatusBadRequest},
		{"no backend", nil, `{"image":"` + encoded("x") + `"}`, http.StatusServiceUnavailable},
		{"backend failure", &fakeLabExtractor{fail: map[int]bool{0: true}}, `{"image":"` + encoded("x") + `"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler(tt.labs, nil)
			c, _ := postJSON(e, tt.body)
			if got := httpStatus(t, h.ExtractLabValues(c)); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestHandler_ExtractLabValues_InternalErrorKeepsCause(t *testing.T) {
	h, e := newTestHandler(&fakeLabExtractor{fail: map[int]bool{0: true}}, nil)
	c, _ := postJSON(e, `{"image":"`+encoded("x")+`"}`)

	var he *echo.HTTPError
	if !errors.As(h.ExtractLabValues(c), &he) {
		t.Fatal("expected HTTP error")
	}
	if he.Message != "Failed to process lab image" || he.Internal == nil {
		t.Errorf("unexpected error %+v", he)
	}
}

func TestHandler_ExtractLabValuesBatch(t *testing.T) {
	h, e := newTestHandler(&fakeLabExtractor{}, nil)
	c, rec := postJSON(e, `{"images":["`+encoded("140")+`","???"]}`)

	if err := h.ExtractLabValuesBatch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.LabValues) != 1 || len(resp.Failed) != 1 || resp.Failed[0] != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandler_ExtractLabValuesBatch_TooMany(t *testing.T) {
	h, e := newTestHandler(&fakeLabExtractor{}, nil)
	images := make([]string, MaxBatchImages+1)
	for i := range images {
		images[i] = encoded("x")
	}
	body, _ := json.Marshal(map[string]any{"images": images})
	c, _ := postJSON(e, string(body))
	if got := httpStatus(t, h.ExtractLabValuesBatch(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_ExtractMedications(t *testing.T) {
	meds := &fakeMedExtractor{}
	h, e := newTestHandler(nil, meds)
	c, rec := postJSON(e, `{"image":"`+encoded("label")+`","mediaType":"image/png"}`)

	if err := h.ExtractMedications(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Errorf("expected a bare array, got %s", rec.Body.String())
	}
	if meds.img.MediaType != "image/png" {
		t.Errorf("expected media type to be forwarded, got %s", meds.img.MediaType)
	}
}

func TestHandler_ExtractMedications_NoImage(t *testing.T) {
	h, e := newTestHandler(nil, &fakeMedExtractor{})
	c, _ := postJSON(e, `{"image":""}`)
	err := h.ExtractMedications(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest || he.Message != "No image provided" {
		t.Errorf("unexpected error %v", err)
	}
}
