package pattern

import (
	"testing"
	"time"
)

const wellFormedBlock = "2025-11-17 - 2025-12-17 | Mon Wed | 9:30 a.m. - 11:00 a.m. | UBCV | Hugh Dempster Pavilion (DMP) | Floor: 1 | Room: 110"

func TestParseWellFormedBlock(t *testing.T) {
	schedules := Parse(wellFormedBlock)
	if len(schedules) != 1 {
		t.Fatalf("got %d schedules, want 1", len(schedules))
	}
	s := schedules[0]

	if got, want := s.StartDate.Format("2006-01-02"), "2025-11-17"; got != want {
		t.Errorf("StartDate = %s, want %s", got, want)
	}
	if got, want := s.EndDate.Format("2006-01-02"), "2025-12-17"; got != want {
		t.Errorf("EndDate = %s, want %s", got, want)
	}
	if got, want := s.StartTime.Format("15:04"), "09:30"; got != want {
		t.Errorf("StartTime = %s, want %s", got, want)
	}
	if got, want := s.EndTime.Format("15:04"), "11:00"; got != want {
		t.Errorf("EndTime = %s, want %s", got, want)
	}
	if len(s.Weekdays) != 2 || s.Weekdays[0] != time.Monday || s.Weekdays[1] != time.Wednesday {
		t.Errorf("Weekdays = %v, want [Monday Wednesday]", s.Weekdays)
	}
	if got, want := s.Location, "Hugh Dempster Pavilion (DMP), Floor: 1 | Room: 110, UBCV"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n", "nan"} {
		if got := Parse(in); len(got) != 0 {
			t.Errorf("Parse(%q) = %d schedules, want 0", in, len(got))
		}
	}
}

// A malformed block must not affect its siblings.
func TestBlockIsolation(t *testing.T) {
	text := wellFormedBlock + "\n\n" +
		"not-a-date - 2025-12-17 | Mon | 9:30 a.m. - 11:00 a.m. | UBCV | Building | Room: 1"

	schedules, rejected := ParseWithDiagnostics(text)
	if len(schedules) != 1 {
		t.Fatalf("got %d schedules, want 1", len(schedules))
	}
	if len(rejected) != 1 {
		t.Fatalf("got %d rejections, want 1", len(rejected))
	}
	if rejected[0].Reason != ReasonBadDateRange {
		t.Errorf("rejection reason = %q, want %q", rejected[0].Reason, ReasonBadDateRange)
	}
}

func TestWeekdayExtraction(t *testing.T) {
	tests := []struct {
		days string
		want []time.Weekday
	}{
		{"Mon Wed Fri", []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{"TueThu", []time.Weekday{time.Tuesday, time.Thursday}},
		{"Sat Sun", []time.Weekday{time.Saturday, time.Sunday}},
		{"Mon", []time.Weekday{time.Monday}},
		{"MWF", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := weekdaysIn(tc.days)
		if len(got) != len(tc.want) {
			t.Errorf("weekdaysIn(%q) = %v, want %v", tc.days, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("weekdaysIn(%q) = %v, want %v", tc.days, got, tc.want)
				break
			}
		}
	}
}

// All four period-marker spellings must parse to the same time of day.
func TestMeridiemNormalization(t *testing.T) {
	for _, in := range []string{"9:30 a.m.", "9:30 a.m", "9:30 AM"} {
		start, _, ok := parseTimeRange(in + " - 11:00 p.m.")
		if !ok {
			t.Fatalf("parseTimeRange failed for %q", in)
		}
		if got := start.Format("15:04"); got != "09:30" {
			t.Errorf("start for %q = %s, want 09:30", in, got)
		}
	}

	_, end, ok := parseTimeRange("9:30 a.m. - 11:00 p.m")
	if !ok {
		t.Fatal("parseTimeRange failed for p.m variant")
	}
	if got := end.Format("15:04"); got != "23:00" {
		t.Errorf("end = %s, want 23:00", got)
	}
}

func TestRejectsShortBlocks(t *testing.T) {
	schedules, rejected := ParseWithDiagnostics("2025-11-17 - 2025-12-17 | Mon | 9:30 a.m. - 11:00 a.m. | UBCV | Building")
	if len(schedules) != 0 {
		t.Errorf("got %d schedules, want 0", len(schedules))
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonTooFewFields {
		t.Errorf("rejected = %v, want one %q", rejected, ReasonTooFewFields)
	}
}

func TestRejectsInvertedDateRange(t *testing.T) {
	schedules, rejected := ParseWithDiagnostics("2025-12-17 - 2025-11-17 | Mon | 9:30 a.m. - 11:00 a.m. | UBCV | Building | Room: 1")
	if len(schedules) != 0 {
		t.Errorf("got %d schedules, want 0", len(schedules))
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonInvertedRange {
		t.Errorf("rejected = %v, want one %q", rejected, ReasonInvertedRange)
	}
}

func TestRejectsBadTimeRange(t *testing.T) {
	schedules, rejected := ParseWithDiagnostics("2025-11-17 - 2025-12-17 | Mon | 9:30 - 11:00 | UBCV | Building | Room: 1")
	if len(schedules) != 0 {
		t.Errorf("got %d schedules, want 0", len(schedules))
	}
	if len(rejected) != 1 || rejected[0].Reason != ReasonBadTimeRange {
		t.Errorf("rejected = %v, want one %q", rejected, ReasonBadTimeRange)
	}
}

func TestRejectsUnknownWeekdays(t *testing.T) {
	_, rejected := ParseWithDiagnostics("2025-11-17 - 2025-12-17 | TBA | 9:30 a.m. - 11:00 a.m. | UBCV | Building | Room: 1")
	if len(rejected) != 1 || rejected[0].Reason != ReasonNoWeekdays {
		t.Errorf("rejected = %v, want one %q", rejected, ReasonNoWeekdays)
	}
}

// Whitespace between block delimiters must not affect sibling blocks.
func TestWhitespaceOnlyBlockSkipped(t *testing.T) {
	text := wellFormedBlock + "\n\n   \n\n" + wellFormedBlock
	schedules, rejected := ParseWithDiagnostics(text)
	if len(schedules) != 2 {
		t.Errorf("got %d schedules, want 2", len(schedules))
	}
	if len(rejected) != 0 {
		t.Errorf("got %d rejections, want 0", len(rejected))
	}
}

// Extra fields beyond the minimum six fold into the location detail.
func TestTrailingFieldsFoldIntoLocation(t *testing.T) {
	schedules := Parse(wellFormedBlock + " | Desk: 4")
	if len(schedules) != 1 {
		t.Fatalf("got %d schedules, want 1", len(schedules))
	}
	want := "Hugh Dempster Pavilion (DMP), Floor: 1 | Room: 110 | Desk: 4, UBCV"
	if schedules[0].Location != want {
		t.Errorf("Location = %q, want %q", schedules[0].Location, want)
	}
}

func TestCRLFNormalization(t *testing.T) {
	text := wellFormedBlock + "\r\n\r\n" + wellFormedBlock
	if got := Parse(text); len(got) != 2 {
		t.Errorf("got %d schedules, want 2", len(got))
	}
}
