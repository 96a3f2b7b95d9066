// Package ics serializes expanded occurrences into an iCalendar file.
package ics

import (
	"bytes"
	"errors"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	"courseical/internal/model"
)

const prodID = "-//Course Schedule//Course Schedule//EN"

// Options carries the calendar-level metadata.
type Options struct {
	// Name becomes X-WR-CALNAME.
	Name string
	// Timezone becomes X-WR-TIMEZONE (the IANA zone name; event times
	// themselves are written as UTC instants).
	Timezone string
}

// Build assembles a VCALENDAR from the given occurrences. Every occurrence
// becomes an independent VEVENT; no RRULE is ever emitted.
func Build(occurrences []model.Occurrence, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Timezone != "" {
		cal.SetXWRTimezone(opts.Timezone)
	}

	for _, occ := range occurrences {
		ev := cal.AddEvent(occ.UID)
		ev.SetStartAt(occ.Start)
		ev.SetEndAt(occ.End)
		ev.SetDtStampTime(occ.CreatedAt)
		ev.SetSummary(occ.Summary)
		if occ.Description != "" {
			ev.SetDescription(occ.Description)
		}
		if occ.Location != "" {
			ev.SetLocation(occ.Location)
		}
		if len(occ.Categories) > 0 {
			ev.SetProperty(ical.ComponentPropertyCategories, strings.Join(occ.Categories, ","))
		}
	}

	return cal
}

// Write serializes the occurrences to w.
func Write(w io.Writer, occurrences []model.Occurrence, opts Options) error {
	if w == nil {
		return errors.New("ics: nil writer")
	}
	return Build(occurrences, opts).SerializeTo(w)
}

// Bytes is Write into a byte slice.
func Bytes(occurrences []model.Occurrence, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, occurrences, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
