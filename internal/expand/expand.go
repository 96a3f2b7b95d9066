// Package expand turns course rows into concrete calendar occurrences.
// Every class meeting is materialized as an independent event; weekday sets
// can change mid-term and date ranges are rarely whole weeks, so per-date
// expansion is more robust than synthesizing recurrence rules.
package expand

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "courseical/internal/log"
	"courseical/internal/model"
	"courseical/internal/pattern"
)

// Categories applied to every generated occurrence.
var Categories = []string{"EDUCATION", "COURSE"}

// ErrNoData is returned when the input table itself is empty. A table with
// rows but no matching meetings is not an error and yields an empty Result.
var ErrNoData = errors.New("expand: no course rows in input")

// Options controls expansion. The zero value is usable: UTC, time.Now and
// random UUIDs.
type Options struct {
	// Location is the institutional timezone every occurrence is
	// localized into. There is no per-row timezone in the export.
	Location *time.Location

	// Now supplies the CreatedAt stamp; injectable for tests.
	Now func() time.Time

	// NewUID supplies per-occurrence unique identifiers.
	NewUID func() string
}

// Result is the full expansion outcome for one input table.
type Result struct {
	Occurrences []model.Occurrence

	// EventsCreated == len(Occurrences); kept as an explicit field for
	// the summary message.
	EventsCreated int

	// CoursesScheduled counts input rows that contributed at least one
	// schedule. Informational only.
	CoursesScheduled int

	// RejectedBlocks counts pattern blocks discarded across all rows.
	RejectedBlocks int
}

// Expand produces one occurrence per (schedule, matching date) pair across
// all rows. Rows with blank required fields are skipped silently; only an
// entirely empty table is reported, as ErrNoData.
func Expand(rows []model.CourseRow, opts Options) (Result, error) {
	var res Result

	if len(rows) == 0 {
		return res, ErrNoData
	}

	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewUID == nil {
		opts.NewUID = uuid.NewString
	}

	for _, row := range rows {
		occ, rejected := expandRow(row, opts)
		res.RejectedBlocks += rejected
		if len(occ) == 0 {
			continue
		}
		res.Occurrences = append(res.Occurrences, occ...)
		res.CoursesScheduled++
	}

	res.EventsCreated = len(res.Occurrences)
	return res, nil
}

// expandRow expands a single course row. It returns the row's occurrences
// and the number of pattern blocks the parser rejected.
func expandRow(row model.CourseRow, opts Options) ([]model.Occurrence, int) {
	listing := strings.TrimSpace(row.CourseListing)
	patterns := strings.TrimSpace(row.MeetingPatterns)

	// Structural precondition, not a reportable error.
	if listing == "" || patterns == "" {
		return nil, 0
	}

	schedules, rejected := pattern.ParseWithDiagnostics(patterns)
	for _, r := range rejected {
		appLog.Debug("pattern block rejected", "course", listing, "reason", r.Reason, "block", r.Block)
	}
	if len(schedules) == 0 {
		return nil, len(rejected)
	}

	summary := listing
	format := strings.TrimSpace(row.InstructionalFormat)
	if format != "" {
		summary += " - " + format
	}
	description := composeDescription(row)

	var out []model.Occurrence
	for _, sched := range schedules {
		for date := sched.StartDate; !date.After(sched.EndDate); date = date.AddDate(0, 0, 1) {
			if !sched.HasWeekday(date.Weekday()) {
				continue
			}
			out = append(out, model.Occurrence{
				UID:         opts.NewUID(),
				Start:       combine(date, sched.StartTime, opts.Location),
				End:         combine(date, sched.EndTime, opts.Location),
				CreatedAt:   opts.Now().In(opts.Location),
				Summary:     summary,
				Description: description,
				Location:    sched.Location,
				Categories:  Categories,
			})
		}
	}
	return out, len(rejected)
}

// composeDescription joins the non-blank optional fields in fixed order.
// Returns "" (meaning: no description at all) when all three are blank.
func composeDescription(row model.CourseRow) string {
	var parts []string
	if s := strings.TrimSpace(row.Section); s != "" {
		parts = append(parts, "Section: "+s)
	}
	if s := strings.TrimSpace(row.Instructor); s != "" {
		parts = append(parts, "Instructor: "+s)
	}
	if s := strings.TrimSpace(row.InstructionalFormat); s != "" {
		parts = append(parts, "Format: "+s)
	}
	return strings.Join(parts, "\n")
}

// combine builds a wall-clock instant in loc from a date-only value and a
// time-only value.
func combine(date, clock time.Time, loc *time.Location) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		loc,
	)
}
