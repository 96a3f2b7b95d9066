// Package pattern decodes the meeting-pattern text found in course-schedule
// exports. One field may describe several meeting blocks separated by a
// blank line; each block looks like:
//
//	2025-11-17 - 2025-12-17 | Mon Wed | 9:30 a.m. - 11:00 a.m. | UBCV | Hugh Dempster Pavilion (DMP) | Floor: 1 | Room: 110
//
// Malformed content is data, not a fault: a bad block is dropped without
// affecting its siblings, and the parser never returns an error.
package pattern

import (
	"strings"
	"time"

	"courseical/internal/model"
)

const (
	// fieldSep separates the fields of one block and is reused when
	// composing the location string.
	fieldSep = " | "

	// rangeSep separates the two halves of a date or time range.
	rangeSep = " - "

	// absentMarker is the literal some exports write into empty cells.
	absentMarker = "nan"

	// minFields is the structural minimum for a block:
	// date range, days, time range, campus, building, >=1 detail field.
	minFields = 6

	dateLayout = "2006-01-02"
	timeLayout = "3:04 PM"
)

// Rejection describes a single discarded pattern block. The parser accepts
// what it can and reports the rest here instead of failing.
type Rejection struct {
	Reason string
	Block  string
}

// Rejection reasons. These are diagnostic strings for logging, not an API.
const (
	ReasonTooFewFields  = "fewer than 6 fields"
	ReasonBadDateRange  = "malformed date range"
	ReasonBadTimeRange  = "malformed time range"
	ReasonNoWeekdays    = "no recognized weekday tokens"
	ReasonInvertedRange = "start date after end date"
)

// Parse decodes a meeting-pattern field into zero or more schedules.
// Absent, empty and wholly malformed input all yield an empty slice.
func Parse(text string) []model.Schedule {
	schedules, _ := ParseWithDiagnostics(text)
	return schedules
}

// ParseWithDiagnostics is Parse plus one Rejection per discarded block, so
// callers can log or count what a bad export actually contained.
func ParseWithDiagnostics(text string) ([]model.Schedule, []Rejection) {
	text = strings.TrimSpace(text)
	if text == "" || text == absentMarker {
		return nil, nil
	}

	// Exports produced on Windows carry CRLF line endings.
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		schedules []model.Schedule
		rejected  []Rejection
	)

	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		sched, reason := parseBlock(block)
		if reason != "" {
			rejected = append(rejected, Rejection{Reason: reason, Block: block})
			continue
		}
		schedules = append(schedules, sched)
	}

	return schedules, rejected
}

// parseBlock decodes one block. On failure it returns a non-empty reason
// and the schedule value is meaningless.
func parseBlock(block string) (model.Schedule, string) {
	var sched model.Schedule

	fields := strings.Split(block, fieldSep)
	if len(fields) < minFields {
		return sched, ReasonTooFewFields
	}

	dateRange := strings.TrimSpace(fields[0])
	days := strings.TrimSpace(fields[1])
	timeRange := strings.TrimSpace(fields[2])
	campus := strings.TrimSpace(fields[3])
	building := strings.TrimSpace(fields[4])
	details := fields[5:] // floor, room, and anything the export appends

	startDate, endDate, ok := parseDateRange(dateRange)
	if !ok {
		return sched, ReasonBadDateRange
	}
	if startDate.After(endDate) {
		return sched, ReasonInvertedRange
	}

	startTime, endTime, ok := parseTimeRange(timeRange)
	if !ok {
		return sched, ReasonBadTimeRange
	}

	weekdays := weekdaysIn(days)
	if len(weekdays) == 0 {
		return sched, ReasonNoWeekdays
	}

	sched = model.Schedule{
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
		Weekdays:  weekdays,
		Location:  composeLocation(building, details, campus),
	}
	return sched, ""
}

func parseDateRange(s string) (start, end time.Time, ok bool) {
	parts := strings.Split(s, rangeSep)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseTimeRange(s string) (start, end time.Time, ok bool) {
	parts := strings.Split(s, rangeSep)
	if len(parts) < 2 {
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(timeLayout, normalizeMeridiem(strings.TrimSpace(parts[0])))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(timeLayout, normalizeMeridiem(strings.TrimSpace(parts[1])))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// meridiemReplacer folds the export's period-marker spellings into the
// canonical AM/PM tokens. Longer variants listed first so "a.m." is not
// consumed as "a.m" plus a stray dot.
var meridiemReplacer = strings.NewReplacer(
	"a.m.", "AM",
	"p.m.", "PM",
	"a.m", "AM",
	"p.m", "PM",
)

func normalizeMeridiem(s string) string {
	return meridiemReplacer.Replace(s)
}

// weekdayTokens maps the export's three-letter abbreviations, in the order
// they are scanned for.
var weekdayTokens = []struct {
	abbrev string
	day    time.Weekday
}{
	{"Mon", time.Monday},
	{"Tue", time.Tuesday},
	{"Wed", time.Wednesday},
	{"Thu", time.Thursday},
	{"Fri", time.Friday},
	{"Sat", time.Saturday},
	{"Sun", time.Sunday},
}

// weekdaysIn extracts the weekday set from a days field. Matching is by
// substring, not by whitespace tokens: the export sometimes concatenates
// abbreviations ("TueThu"). Keep the strategy behind this one function so
// it can be swapped without touching callers.
func weekdaysIn(days string) []time.Weekday {
	var out []time.Weekday
	for _, tok := range weekdayTokens {
		if strings.Contains(days, tok.abbrev) {
			out = append(out, tok.day)
		}
	}
	return out
}

// composeLocation joins building, detail fields and campus into a single
// display string, trimming separator artifacts left by blank segments.
func composeLocation(building string, details []string, campus string) string {
	trimmed := make([]string, 0, len(details))
	for _, d := range details {
		trimmed = append(trimmed, strings.TrimSpace(d))
	}

	loc := building + ", " + strings.Join(trimmed, fieldSep) + ", " + campus
	return strings.Trim(loc, ", ")
}
