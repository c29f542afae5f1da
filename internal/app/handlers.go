package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/klabast/wb-services/dayoff-planner/internal/storage"
)

// App wires the stores to the HTTP edge. The route table is the closed
// command set of the planner: add, remove, toggle, clear, export.
type App struct {
	Settings *SettingsStore
	Items    *ItemStore
	Log      zerolog.Logger
	Auth     *Authenticator

	// Now supplies the reference date for validation. Tests pin it.
	Now func() CivilDate
}

// New assembles the application over the given persistence boundary.
func New(kv storage.KV, log zerolog.Logger) *App {
	return &App{
		Settings: NewSettingsStore(kv, log),
		Items:    NewItemStore(kv, log),
		Log:      log,
		Now:      Today,
	}
}

// Routes returns the HTTP route table. Mutating routes go through Basic
// Auth when an auth file is configured.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", a.HandleConfig)
	mux.HandleFunc("/api/schedule", a.HandleSchedule)
	mux.HandleFunc("/api/items", a.HandleItems)
	mux.HandleFunc("/api/items/", a.HandleItemByID)
	mux.HandleFunc("/api/items/add", a.Auth.Require(a.HandleItemAdd))
	mux.HandleFunc("/api/items/delete", a.Auth.Require(a.HandleItemDelete))
	mux.HandleFunc("/api/items/toggle", a.Auth.Require(a.HandleItemToggle))
	mux.HandleFunc("/api/items/clear", a.Auth.Require(a.HandleItemsClear))
	mux.HandleFunc("/api/settings", a.HandleSettings)
	mux.HandleFunc("/api/settings/reset", a.Auth.Require(a.HandleSettingsReset))
	mux.HandleFunc("/api/export/dayoff", a.HandleExportDayOff)
	mux.HandleFunc("/api/export/reminders", a.HandleExportReminders)
	return mux
}

// HandleConfig returns the policy constants and current settings.
func (a *App) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"minNoticeDays": MinNoticeDays,
		"defaults":      DefaultSettings(),
		"settings":      a.Settings.Load(),
	})
}

// HandleSchedule derives the dates and verdict for a candidate day-off date.
// Query param: dayOff (YYYY-MM-DD).
func (a *App) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	dayOff, ok := ParseDate(r.URL.Query().Get("dayOff"))
	if !ok {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	settings := a.Settings.Load()
	today := a.Now()
	sched := ComputeSchedule(dayOff, settings, today)

	a.writeJSON(w, http.StatusOK, map[string]any{
		"schedule":               sched,
		"dayOffLong":             sched.DayOff.Long(),
		"submitByLong":           sched.SubmitBy.Long(),
		"earlyReminderLong":      sched.EarlyReminder.Long(),
		"dayOffIfSubmittedToday": DayOffIfSubmittedOn(today, settings),
	})
}

// itemView is a listed item enriched with its derived dates.
type itemView struct {
	SavedItem
	SubmitBy             CivilDate `json:"submitBy"`
	EarlyReminder        CivilDate `json:"earlyReminder"`
	EarlyReminderElapsed bool      `json:"earlyReminderElapsed"`
}

func (a *App) itemView(it SavedItem, s Settings, today CivilDate) itemView {
	return itemView{
		SavedItem:            it,
		SubmitBy:             SubmitBy(it.DayOff, s),
		EarlyReminder:        EarlyReminder(it.DayOff, s),
		EarlyReminderElapsed: EarlyReminderElapsed(it.DayOff, s, today),
	}
}

// HandleItems lists the saved items in ascending day-off order.
func (a *App) HandleItems(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	settings := a.Settings.Load()
	today := a.Now()

	items := a.Items.List()
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, a.itemView(it, settings, today))
	}
	a.writeJSON(w, http.StatusOK, views)
}

// HandleItemByID returns one saved item, for populating an edit draft.
// URL: /api/items/{id}
func (a *App) HandleItemByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	id := r.URL.Path[len("/api/items/"):]
	if id == "" {
		http.Error(w, ErrInvalidID, http.StatusBadRequest)
		return
	}
	item, ok := a.Items.Get(id)
	if !ok {
		http.Error(w, ErrItemNotFound, http.StatusNotFound)
		return
	}
	a.writeJSON(w, http.StatusOK, a.itemView(item, a.Settings.Load(), a.Now()))
}

// HandleItemAdd validates and saves a new request.
func (a *App) HandleItemAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		DayOff string `json:"dayOff"`
		Label  string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dayOff, ok := ParseDate(req.DayOff)
	if !ok {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	if verdict := Validate(dayOff, a.Now()); verdict != VerdictOk {
		a.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":  "rejected",
			"verdict": verdict,
		})
		return
	}

	item, err := a.Items.Add(dayOff, req.Label)
	if errors.Is(err, ErrDuplicateItem) {
		a.writeJSON(w, http.StatusConflict, map[string]string{"status": "exists"})
		return
	}
	if err != nil {
		a.Log.Error().Err(err).Msg("saving item failed")
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, item)
}

// HandleItemDelete removes an item; an unknown id is still "ok".
func (a *App) HandleItemDelete(w http.ResponseWriter, r *http.Request) {
	a.handleItemMutation(w, r, a.Items.Remove)
}

// HandleItemToggle flips the submitted flag; an unknown id is still "ok".
func (a *App) HandleItemToggle(w http.ResponseWriter, r *http.Request) {
	a.handleItemMutation(w, r, a.Items.ToggleSubmitted)
}

func (a *App) handleItemMutation(w http.ResponseWriter, r *http.Request, op func(string) error) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, ErrInvalidID, http.StatusBadRequest)
		return
	}
	if err := op(req.ID); err != nil {
		a.Log.Error().Err(err).Str("id", req.ID).Msg("item mutation failed")
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	a.writeStatus(w, "ok")
}

// HandleItemsClear empties the collection.
func (a *App) HandleItemsClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := a.Items.Clear(); err != nil {
		a.Log.Error().Err(err).Msg("clearing items failed")
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	a.writeStatus(w, "ok")
}

// HandleSettings reads (GET) or replaces (POST) the policy settings.
func (a *App) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.writeJSON(w, http.StatusOK, a.Settings.Load())
	case http.MethodPost:
		var s Settings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := a.Settings.Save(s); err != nil {
			a.Log.Error().Err(err).Msg("saving settings failed")
			http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
			return
		}
		a.writeJSON(w, http.StatusOK, a.Settings.Load())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSettingsReset restores the defaults.
func (a *App) HandleSettingsReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s, err := a.Settings.Reset()
	if err != nil {
		a.Log.Error().Err(err).Msg("resetting settings failed")
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, s)
}

// HandleExportDayOff downloads a single all-day event for the day off.
// Query params: date (YYYY-MM-DD), label (optional).
func (a *App) HandleExportDayOff(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	date, ok := ParseDate(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	label := r.URL.Query().Get("label")

	if verdict := Validate(date, a.Now()); verdict != VerdictOk {
		a.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":  "rejected",
			"verdict": verdict,
		})
		return
	}

	title := label
	if title == "" {
		title = "Day off"
	}
	payload := BuildEvent(CalendarEvent{
		Title:       title,
		Description: fmt.Sprintf("Day off on %s.", date.Long()),
		Date:        date,
	})
	a.deliverCalendar(w, SuggestFilename(ExportKindDayOff, label, date), payload)
}

// HandleExportReminders downloads the two-event submission-reminder file.
// Query params: dayOff (YYYY-MM-DD), label (optional).
func (a *App) HandleExportReminders(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	dayOff, ok := ParseDate(r.URL.Query().Get("dayOff"))
	if !ok {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	label := r.URL.Query().Get("label")

	if verdict := Validate(dayOff, a.Now()); verdict != VerdictOk {
		a.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":  "rejected",
			"verdict": verdict,
		})
		return
	}

	payload := BuildEvents(PlanReminders(dayOff, a.Settings.Load(), label))
	a.deliverCalendar(w, SuggestFilename(ExportKindReminders, label, dayOff), payload)
}

// deliverCalendar is the delivery sink: filename plus calendar text.
func (a *App) deliverCalendar(w http.ResponseWriter, filename, payload string) {
	w.Header().Set("Content-Type", ICSMimeType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := w.Write([]byte(payload)); err != nil {
		a.Log.Error().Err(err).Msg("writing calendar payload failed")
	}
}
