package app

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CalendarEvent is the export-only event payload. An empty Time makes an
// all-day event; an "HH:MM" Time makes a one-hour event starting at that
// local clock time. Times are floating: no timezone offset is ever emitted.
type CalendarEvent struct {
	Title       string
	Description string
	Date        CivilDate
	Time        string
}

// BuildEvent builds a calendar document containing a single event.
func BuildEvent(ev CalendarEvent) string {
	return BuildEvents([]CalendarEvent{ev})
}

// BuildEvents builds one VCALENDAR containing a VEVENT per entry. Each event
// gets a fresh UID scoped to this export and a generation timestamp. Lines
// are CRLF-separated.
func BuildEvents(events []CalendarEvent) string {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, fmt.Sprintf("PRODID:%s", ICSProductID))
	writeLine(&b, "CALSCALE:GREGORIAN")

	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, ev := range events {
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:%s@dayoff.winterberg.de", uuid.NewString()))
		writeLine(&b, fmt.Sprintf("DTSTAMP:%s", stamp))
		writeEventTimes(&b, ev)
		writeLine(&b, fmt.Sprintf("SUMMARY:%s", escapeText(ev.Title)))
		writeLine(&b, fmt.Sprintf("DESCRIPTION:%s", escapeText(ev.Description)))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeEventTimes emits the DTSTART/DTEND pair. All-day events span exactly
// one day as bare dates; timed events last one hour as floating date-times.
func writeEventTimes(b *strings.Builder, ev CalendarEvent) {
	hour, minute, ok := parseClock(ev.Time)
	if !ok {
		writeLine(b, fmt.Sprintf("DTSTART;VALUE=DATE:%s", icsDate(ev.Date)))
		writeLine(b, fmt.Sprintf("DTEND;VALUE=DATE:%s", icsDate(ev.Date.AddDays(1))))
		return
	}

	endDate, endHour := ev.Date, hour+1
	if endHour > 23 {
		endHour = 0
		endDate = endDate.AddDays(1)
	}
	writeLine(b, fmt.Sprintf("DTSTART:%s", icsDateTime(ev.Date, hour, minute)))
	writeLine(b, fmt.Sprintf("DTEND:%s", icsDateTime(endDate, endHour, minute)))
}

func icsDate(d CivilDate) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

func icsDateTime(d CivilDate, hour, minute int) string {
	return fmt.Sprintf("%sT%02d%02d00", icsDate(d), hour, minute)
}

// escapeText escapes TEXT property values: backslash first, then newline,
// comma and semicolon.
var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\n", "\\n",
	",", "\\,",
	";", "\\;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w-]`)

// SuggestFilename builds a filesystem-safe download name:
// "{kind}_{label}_{YYYY-MM-DD}.ics", with the label fragment sanitized,
// truncated to 24 characters and omitted entirely when empty.
func SuggestFilename(kind, label string, date CivilDate) string {
	parts := []string{strings.ToLower(kind)}

	label = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(label), "_")
	if len(label) > 24 {
		label = label[:24]
	}
	if label != "" {
		parts = append(parts, label)
	}

	parts = append(parts, date.String())
	return strings.Join(parts, "_") + ICSExtension
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
