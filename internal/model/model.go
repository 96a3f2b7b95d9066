package model

import "time"

// CourseRow is one entry from the course-schedule export, already mapped
// from the spreadsheet's named columns. Optional fields are blank strings.
type CourseRow struct {
	CourseListing       string // required; row is skipped when blank
	MeetingPatterns     string // required; raw multi-block pattern text
	Section             string
	Instructor          string
	InstructionalFormat string
}

// Schedule is one decoded meeting-pattern block. Every Schedule produced by
// the parser is fully valid: StartDate <= EndDate, both times parsed, and
// Weekdays non-empty. Dates are date-only values (midnight UTC); times carry
// only a wall-clock component.
type Schedule struct {
	StartDate time.Time
	EndDate   time.Time

	StartTime time.Time
	EndTime   time.Time

	Weekdays []time.Weekday

	// Location is the composed display string:
	// building, detail fields joined with " | ", campus.
	Location string
}

// HasWeekday reports whether d is in the schedule's weekday set.
func (s Schedule) HasWeekday(d time.Weekday) bool {
	for _, w := range s.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// Occurrence is a single concrete class meeting, ready for ICS encoding.
// One Occurrence is created per (schedule, matching date) pair; there is no
// recurrence rule, every meeting is materialized independently.
type Occurrence struct {
	UID string // freshly generated per occurrence, never reused

	// Start / End are timezone-aware instants in the institutional zone.
	Start time.Time
	End   time.Time

	// CreatedAt is the generation timestamp (DTSTAMP).
	CreatedAt time.Time

	Summary     string
	Description string // empty means absent; the writer must not emit it
	Location    string

	Categories []string
}
