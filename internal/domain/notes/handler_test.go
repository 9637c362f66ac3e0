package notes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinote/clinote/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(NewService(newMockNoteRepo())), echo.New()
}

func newRequest(e *echo.Echo, method, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: userID, Roles: []string{auth.RoleClinician}}))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

const noteBody = `{
	"patientName":"Jane Doe","patientDob":"1950-02-01","patientMrn":"MRN123",
	"selections":{"cardio":["chest pain"]},
	"medications":{"homeMedications":[{"id":"1","name":"Warfarin","category":"Antiplatelet/Anticoagulant","dosage":"5 mg","frequency":"DIE"}]},
	"generatedNote":"ROS:\nChest pain"
}`

func TestHandler_CreateGetList(t *testing.T) {
	h, e := newTestHandler()
	c, rec := newRequest(e, http.MethodPost, noteBody, "u1")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created Note
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Medications.HomeMedications) != 1 || created.Medications.HospitalMedications == nil {
		t.Errorf("unexpected medications %+v", created.Medications)
	}

	c, rec = newRequest(e, http.MethodGet, "", "u1")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"patientMrn":"MRN123"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, rec = newRequest(e, http.MethodGet, "", "u2")
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":0`) {
		t.Errorf("expected no notes for another user, got %s", rec.Body.String())
	}
}

func TestHandler_Create_Invalid(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, `{"patientName":"Jane"}`, "u1")
	if got := statusOf(h.Create(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_Delete_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodDelete, "", "u1")
	c.SetParamNames("id")
	c.SetParamValues("3f0e9a52-5f54-4d6a-9d0c-1d3c4b6b3f10")
	if got := statusOf(h.Delete(c)); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestHandler_Compose(t *testing.T) {
	h, e := newTestHandler()
	body := `{"sections":[{"title":"HPI","body":"Douleur thoracique"}],
		"medications":[{"name":"Apixaban","dosage":"5 mg","frequency":"BID"}],"lang":"fr"}`
	c, rec := newRequest(e, http.MethodPost, body, "u1")
	if err := h.Compose(c); err != nil {
		t.Fatalf("compose: %v", err)
	}
	var resp composeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "HPI:\nDouleur thoracique\n\nMédicaments:\n- Apixaban 5 mg BID"
	if resp.Note != want {
		t.Errorf("note =\n%q\nwant\n%q", resp.Note, want)
	}
}

func TestHandler_Compose_Empty(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, `{"sections":[]}`, "u1")
	if got := statusOf(h.Compose(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}
