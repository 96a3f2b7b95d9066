// Package xlsx reads course rows out of an institutional schedule export.
// The export is a workbook with a title block above the table, so the
// header row and first data row are configurable rather than assumed.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	appLog "courseical/internal/log"
	"courseical/internal/model"
)

// Column headers the reader looks for. Presence, not position, matters;
// a missing column simply reads as blank.
const (
	colCourseListing       = "Course Listing"
	colMeetingPatterns     = "Meeting Patterns"
	colSection             = "Section"
	colInstructor          = "Instructor"
	colInstructionalFormat = "Instructional Format"
)

// Options selects where the course table lives inside the workbook.
type Options struct {
	// SheetName is the worksheet to read. If it does not exist the
	// reader falls back to the workbook's first sheet.
	SheetName string

	// HeaderRow / FirstDataRow are 1-based row numbers.
	HeaderRow    int
	FirstDataRow int
}

func (o *Options) normalize() {
	if o.HeaderRow <= 0 {
		o.HeaderRow = 3
	}
	if o.FirstDataRow <= o.HeaderRow {
		o.FirstDataRow = o.HeaderRow + 1
	}
}

// ReadCourseRows extracts one CourseRow per table row whose course-listing
// cell is non-blank. An unreadable workbook or a missing header row is an
// error; a table with no usable rows is not (it yields an empty slice).
func ReadCourseRows(r io.Reader, opts Options) ([]model.CourseRow, error) {
	opts.normalize()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(rows) < opts.HeaderRow {
		return nil, fmt.Errorf("xlsx: sheet %q has no header row %d", sheet, opts.HeaderRow)
	}

	cols := headerIndex(rows[opts.HeaderRow-1])
	if _, ok := cols[colCourseListing]; !ok {
		return nil, fmt.Errorf("xlsx: sheet %q header row %d has no %q column", sheet, opts.HeaderRow, colCourseListing)
	}

	var out []model.CourseRow
	for i := opts.FirstDataRow - 1; i < len(rows); i++ {
		row := rows[i]

		listing := cell(row, cols, colCourseListing)
		if listing == "" {
			continue
		}

		out = append(out, model.CourseRow{
			CourseListing:       listing,
			MeetingPatterns:     cell(row, cols, colMeetingPatterns),
			Section:             cell(row, cols, colSection),
			Instructor:          cell(row, cols, colInstructor),
			InstructionalFormat: cell(row, cols, colInstructionalFormat),
		})
	}

	appLog.Info("course table read", "sheet", sheet, "rows", len(out))
	return out, nil
}

// resolveSheet returns the requested sheet when present, otherwise the
// first sheet of the workbook.
func resolveSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("xlsx: workbook has no sheets")
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	if name != "" {
		appLog.Debug("sheet not found, using first sheet", "want", name, "got", sheets[0])
	}
	return sheets[0], nil
}

// headerIndex maps trimmed header text to column index. On duplicate
// headers the first column wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// cell reads the named column from a row, tolerating short rows (GetRows
// trims trailing empty cells).
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
