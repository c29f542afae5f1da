package app

// Verdict classifies a candidate day-off date against the notice policy.
type Verdict string

const (
	// VerdictOk means the date may be saved and exported.
	VerdictOk Verdict = "ok"
	// VerdictPast means the date lies before the reference day.
	VerdictPast Verdict = "past"
	// VerdictTooSoon means the date falls inside the minimum notice window.
	VerdictTooSoon Verdict = "too_soon"
)

// SubmitBy is the submission deadline for the given day-off date.
func SubmitBy(dayOff CivilDate, s Settings) CivilDate {
	return dayOff.AddDays(-s.AdvanceDays)
}

// EarlyReminder is the early-reminder date, earlier than the deadline by
// the configured extra buffer.
func EarlyReminder(dayOff CivilDate, s Settings) CivilDate {
	return dayOff.AddDays(-s.EarlyOffsetDays())
}

// DayOffIfSubmittedOn is the earliest day-off date reachable by submitting
// the paperwork on the given day.
func DayOffIfSubmittedOn(today CivilDate, s Settings) CivilDate {
	return today.AddDays(s.AdvanceDays)
}

// Validate checks a candidate day-off date against today. Past and TooSoon
// are rejections the caller must surface; they are never coerced to a
// nearby valid date.
func Validate(dayOff, today CivilDate) Verdict {
	if dayOff.Before(today) {
		return VerdictPast
	}
	if dayOff.Before(today.AddDays(MinNoticeDays)) {
		return VerdictTooSoon
	}
	return VerdictOk
}

// EarlyReminderElapsed reports whether the early-reminder date already lies
// behind today, so only the submit-by reminder is still actionable.
func EarlyReminderElapsed(dayOff CivilDate, s Settings, today CivilDate) bool {
	return EarlyReminder(dayOff, s).Before(today)
}

// Schedule bundles every derived quantity for one day-off date.
type Schedule struct {
	DayOff               CivilDate `json:"dayOff"`
	SubmitBy             CivilDate `json:"submitBy"`
	EarlyReminder        CivilDate `json:"earlyReminder"`
	Verdict              Verdict   `json:"verdict"`
	EarlyReminderElapsed bool      `json:"earlyReminderElapsed"`
	DaysUntilDayOff      int       `json:"daysUntilDayOff"`
}

// ComputeSchedule derives the full schedule for dayOff as seen from today.
func ComputeSchedule(dayOff CivilDate, s Settings, today CivilDate) Schedule {
	return Schedule{
		DayOff:               dayOff,
		SubmitBy:             SubmitBy(dayOff, s),
		EarlyReminder:        EarlyReminder(dayOff, s),
		Verdict:              Validate(dayOff, today),
		EarlyReminderElapsed: EarlyReminderElapsed(dayOff, s, today),
		DaysUntilDayOff:      DaysBetween(today, dayOff),
	}
}
