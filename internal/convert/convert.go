// Package convert runs the full pipeline for one uploaded or on-disk
// export: workbook -> course rows -> occurrences -> ICS payload.
package convert

import (
	"io"
	"time"

	"courseical/internal/config"
	"courseical/internal/expand"
	"courseical/internal/ics"
	appLog "courseical/internal/log"
	"courseical/internal/xlsx"
)

// Summary is the human-readable outcome of one conversion. Counts are for
// the status message only, never for control flow.
type Summary struct {
	CoursesFound     int `json:"courses_found"`
	CoursesScheduled int `json:"courses_scheduled"`
	EventsCreated    int `json:"events_created"`
	RejectedBlocks   int `json:"rejected_blocks"`
}

// Convert reads a workbook from r and returns the serialized calendar.
// It returns expand.ErrNoData unchanged when the workbook holds no course
// rows, so callers can show a clear message instead of a stack trace.
func Convert(r io.Reader, cfg *config.Config) ([]byte, Summary, error) {
	var sum Summary

	rows, err := xlsx.ReadCourseRows(r, xlsx.Options{
		SheetName:    cfg.SheetName,
		HeaderRow:    cfg.HeaderRow,
		FirstDataRow: cfg.FirstDataRow,
	})
	if err != nil {
		return nil, sum, err
	}
	sum.CoursesFound = len(rows)

	res, err := expand.Expand(rows, expand.Options{
		Location: resolveLocationOrUTC(cfg.Timezone),
	})
	if err != nil {
		return nil, sum, err
	}
	sum.CoursesScheduled = res.CoursesScheduled
	sum.EventsCreated = res.EventsCreated
	sum.RejectedBlocks = res.RejectedBlocks

	data, err := ics.Bytes(res.Occurrences, ics.Options{
		Name:     cfg.CalendarName,
		Timezone: cfg.Timezone,
	})
	if err != nil {
		return nil, sum, err
	}

	appLog.Info("conversion completed",
		"courses_found", sum.CoursesFound,
		"courses_scheduled", sum.CoursesScheduled,
		"events_created", sum.EventsCreated,
		"rejected_blocks", sum.RejectedBlocks,
	)
	return data, sum, nil
}

// resolveLocationOrUTC loads the configured IANA zone, falling back to UTC
// when the name is unknown on this host.
func resolveLocationOrUTC(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("invalid timezone, falling back to UTC", err, "timezone", name)
		return time.UTC
	}
	return loc
}
