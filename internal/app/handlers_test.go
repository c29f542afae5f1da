package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/klabast/wb-services/dayoff-planner/internal/storage"
)

// newTestApp pins the reference day to 2024-01-01 so verdicts are stable.
func newTestApp(t *testing.T) *App {
	t.Helper()
	a := New(storage.NewMemory(), zerolog.Nop())
	a.Now = func() CivilDate { return CivilDate{Year: 2024, Month: 1, Day: 1} }
	return a
}

func doJSON(t *testing.T, a *App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	a.Routes().ServeHTTP(w, req)
	return w
}

func TestHandleSchedule(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "GET", "/api/schedule?dayOff=2024-03-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Schedule               Schedule `json:"schedule"`
		DayOffIfSubmittedToday string   `json:"dayOffIfSubmittedToday"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Schedule.SubmitBy.String() != "2024-01-31" {
		t.Errorf("submitBy = %s, want 2024-01-31", resp.Schedule.SubmitBy)
	}
	if resp.Schedule.EarlyReminder.String() != "2024-01-29" {
		t.Errorf("earlyReminder = %s, want 2024-01-29", resp.Schedule.EarlyReminder)
	}
	if resp.Schedule.Verdict != VerdictOk {
		t.Errorf("verdict = %s, want ok", resp.Schedule.Verdict)
	}
	if resp.DayOffIfSubmittedToday != "2024-01-31" {
		t.Errorf("dayOffIfSubmittedToday = %s, want 2024-01-31", resp.DayOffIfSubmittedToday)
	}
}

func TestHandleScheduleBadDate(t *testing.T) {
	a := newTestApp(t)
	if w := doJSON(t, a, "GET", "/api/schedule?dayOff=not-a-date", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleItemAddAndList(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "POST", "/api/items/add", `{"dayOff":"2024-03-01","label":"trip"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var added SavedItem
	if err := json.Unmarshal(w.Body.Bytes(), &added); err != nil {
		t.Fatalf("decoding added item: %v", err)
	}
	if added.ID == "" {
		t.Error("added item should carry an id")
	}

	w = doJSON(t, a, "GET", "/api/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var items []struct {
		SavedItem
		SubmitBy      string `json:"submitBy"`
		EarlyReminder string `json:"earlyReminder"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("listed %d items, want 1", len(items))
	}
	if items[0].SubmitBy != "2024-01-31" || items[0].EarlyReminder != "2024-01-29" {
		t.Errorf("derived dates = %s / %s", items[0].SubmitBy, items[0].EarlyReminder)
	}
}

func TestHandleItemAddRejections(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"past date", `{"dayOff":"2023-12-31"}`, http.StatusUnprocessableEntity},
		{"too soon", `{"dayOff":"2024-01-10"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"dayOff":"garbage"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, a, "POST", "/api/items/add", tt.body); w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	// Rejections must not create items.
	if w := doJSON(t, a, "GET", "/api/items", ""); !strings.HasPrefix(strings.TrimSpace(w.Body.String()), "[]") {
		t.Errorf("store should be empty after rejections, got %s", w.Body.String())
	}
}

func TestHandleItemAddDuplicate(t *testing.T) {
	a := newTestApp(t)

	body := `{"dayOff":"2024-03-01","label":"trip"}`
	if w := doJSON(t, a, "POST", "/api/items/add", body); w.Code != http.StatusOK {
		t.Fatalf("first add failed: %d", w.Code)
	}
	w := doJSON(t, a, "POST", "/api/items/add", body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate add status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "exists") {
		t.Errorf("duplicate response should say exists, got %s", w.Body.String())
	}
}

func TestHandleItemLifecycle(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "POST", "/api/items/add", `{"dayOff":"2024-03-01","label":"trip"}`)
	var added SavedItem
	if err := json.Unmarshal(w.Body.Bytes(), &added); err != nil {
		t.Fatal(err)
	}

	// Fetch one item (the edit-draft flow).
	w = doJSON(t, a, "GET", "/api/items/"+added.ID, "")
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}
	if w := doJSON(t, a, "GET", "/api/items/unknown-id", ""); w.Code != http.StatusNotFound {
		t.Errorf("get unknown status = %d, want 404", w.Code)
	}

	// Toggle, then delete.
	if w := doJSON(t, a, "POST", "/api/items/toggle", `{"id":"`+added.ID+`"}`); w.Code != http.StatusOK {
		t.Errorf("toggle status = %d", w.Code)
	}
	if got, _ := a.Items.Get(added.ID); !got.Submitted {
		t.Error("toggle should mark submitted")
	}
	if w := doJSON(t, a, "POST", "/api/items/delete", `{"id":"`+added.ID+`"}`); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if len(a.Items.List()) != 0 {
		t.Error("item should be gone after delete")
	}
}

func TestHandleItemsClear(t *testing.T) {
	a := newTestApp(t)

	doJSON(t, a, "POST", "/api/items/add", `{"dayOff":"2024-03-01","label":"a"}`)
	doJSON(t, a, "POST", "/api/items/add", `{"dayOff":"2024-04-01","label":"b"}`)

	if w := doJSON(t, a, "POST", "/api/items/clear", ""); w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	if len(a.Items.List()) != 0 {
		t.Error("clear should empty the collection")
	}
}

func TestHandleSettingsRoundTrip(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "POST", "/api/settings", `{"advanceDays":45,"earlyExtraDays":5,"submitByTime":"08:00","earlyTime":"07:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d", w.Code)
	}

	w = doJSON(t, a, "GET", "/api/settings", "")
	var s Settings
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.AdvanceDays != 45 || s.SubmitByTime != "08:00" {
		t.Errorf("settings after save = %+v", s)
	}

	if w := doJSON(t, a, "POST", "/api/settings/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	if got := a.Settings.Load(); got != DefaultSettings() {
		t.Errorf("settings after reset = %+v, want defaults", got)
	}
}

func TestHandleExportDayOff(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "GET", "/api/export/dayoff?date=2024-03-01&label=Ski+week", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := w.Result()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Content-Type = %s, want text/calendar", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "dayoff_Ski_week_2024-03-01.ics") {
		t.Errorf("Content-Disposition = %s", cd)
	}

	body := w.Body.String()
	if !strings.Contains(body, "DTSTART;VALUE=DATE:20240301") {
		t.Error("export should contain the all-day event")
	}
	if !strings.Contains(body, "DTEND;VALUE=DATE:20240302") {
		t.Error("all-day event should end the next day")
	}
}

func TestHandleExportRejectsInvalidDates(t *testing.T) {
	a := newTestApp(t)

	if w := doJSON(t, a, "GET", "/api/export/dayoff?date=2024-01-05", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("too-soon export status = %d, want 422", w.Code)
	}
	if w := doJSON(t, a, "GET", "/api/export/reminders?dayOff=2023-01-01", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("past export status = %d, want 422", w.Code)
	}
}

func TestHandleExportReminders(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "GET", "/api/export/reminders?dayOff=2024-03-01&label=trip", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if got := strings.Count(body, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 events, got %d", got)
	}
	// Early reminder (default settings: 32 days ahead) then deadline.
	if !strings.Contains(body, "DTSTART:20240129T090000") {
		t.Error("missing early reminder start")
	}
	if !strings.Contains(body, "DTSTART:20240131T090000") {
		t.Error("missing deadline start")
	}
	if cd := w.Result().Header.Get("Content-Disposition"); !strings.Contains(cd, "reminders_trip_2024-03-01.ics") {
		t.Errorf("Content-Disposition = %s", cd)
	}
}

func TestGetRoutesRejectPost(t *testing.T) {
	a := newTestApp(t)

	targets := []string{
		"/api/config",
		"/api/schedule?dayOff=2024-03-01",
		"/api/export/dayoff?date=2024-03-01",
		"/api/export/reminders?dayOff=2024-03-01",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			if w := doJSON(t, a, "POST", target, ""); w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", w.Code)
			}
		})
	}
}

func TestHandleConfig(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, "GET", "/api/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		MinNoticeDays int      `json:"minNoticeDays"`
		Defaults      Settings `json:"defaults"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MinNoticeDays != MinNoticeDays {
		t.Errorf("minNoticeDays = %d, want %d", resp.MinNoticeDays, MinNoticeDays)
	}
	if resp.Defaults != DefaultSettings() {
		t.Errorf("defaults = %+v", resp.Defaults)
	}
}
