package app

import (
	"fmt"
	"strings"
)

// PlanReminders builds the two-event submission-reminder export for one
// day-off date: first the early nudge, then the hard deadline. The order is
// fixed even when the early date has already elapsed. Descriptions carry the
// day-off date and the policy values so the exported file stays
// self-describing without the originating settings.
func PlanReminders(dayOff CivilDate, s Settings, label string) []CalendarEvent {
	subject := strings.TrimSpace(label)
	if subject == "" {
		subject = "Day off"
	}

	early := CalendarEvent{
		Title: fmt.Sprintf("Prepare day-off paperwork: %s", subject),
		Description: fmt.Sprintf(
			"Early reminder for the day off on %s.\nGet the request form ready now.\nPolicy: submit %d days ahead, early reminder %d days ahead.",
			dayOff, s.AdvanceDays, s.EarlyOffsetDays()),
		Date: EarlyReminder(dayOff, s),
		Time: s.EarlyTime,
	}

	deadline := CalendarEvent{
		Title: fmt.Sprintf("Submit stamped day-off form: %s", subject),
		Description: fmt.Sprintf(
			"Last day to hand in the stamped form for the day off on %s.\nPolicy: %d days advance notice.",
			dayOff, s.AdvanceDays),
		Date: SubmitBy(dayOff, s),
		Time: s.SubmitByTime,
	}

	return []CalendarEvent{early, deadline}
}
