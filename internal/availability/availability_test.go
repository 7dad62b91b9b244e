package availability

import (
	"errors"
	"testing"
)

func mustTime(t *testing.T, value string) TimeOfDay {
	t.Helper()
	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", value, err)
	}
	return parsed
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "00:00", want: DayStart},
		{input: "23:59", want: DayEnd},
		{input: "09:30", want: TimeOfDay(9*60 + 30)},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "nonsense", wantErr: true},
		{input: "", wantErr: true},
		{input: "12:30xyz", wantErr: true},
		{input: "9:30", wantErr: true},
		{input: "09.30", wantErr: true},
		{input: "+9:30", wantErr: true},
		{input: "0930", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q) succeeded, want error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	t.Parallel()

	if got := mustTime(t, "07:05").String(); got != "07:05" {
		t.Fatalf("String() = %q, want 07:05", got)
	}
	if got := DayEnd.String(); got != "23:59" {
		t.Fatalf("String() = %q, want 23:59", got)
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	t.Parallel()

	for d := Monday; d <= Sunday; d++ {
		parsed, err := ParseDay(d.String())
		if err != nil {
			t.Fatalf("ParseDay(%q) failed: %v", d.String(), err)
		}
		if parsed != d {
			t.Fatalf("ParseDay(%q) = %v, want %v", d.String(), parsed, d)
		}
	}

	if _, err := ParseDay("caturday"); err == nil {
		t.Fatal("ParseDay accepted an unknown day name")
	}
}

func TestNewRangeRejectsInvalidWindows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from string
		to   string
	}{
		{name: "inverted", from: "12:00", to: "09:00"},
		{name: "zero length", from: "10:00", to: "10:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRange(mustTime(t, tc.from), mustTime(t, tc.to))
			if !errors.Is(err, ErrInvalidTimeRange) {
				t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
			}
		})
	}
}

func TestNewRangeAcceptsValidWindow(t *testing.T) {
	t.Parallel()

	d, err := NewRange(mustTime(t, "09:00"), mustTime(t, "17:00"))
	if err != nil {
		t.Fatalf("NewRange failed: %v", err)
	}
	if d.Kind != KindRange || d.From != mustTime(t, "09:00") || d.To != mustTime(t, "17:00") {
		t.Fatalf("unexpected declaration: %#v", d)
	}
}

func TestWeeklyDeclared(t *testing.T) {
	t.Parallel()

	var w Weekly
	if w.Declared() {
		t.Fatal("zero weekly reported as declared")
	}

	w.Set(Wednesday, BusyAllDay())
	if !w.Declared() {
		t.Fatal("weekly with an all-busy day reported as undeclared")
	}
}

func TestWeeklyValidate(t *testing.T) {
	t.Parallel()

	var w Weekly
	w.Set(Friday, FreeAllDay())
	if err := w.Validate(); err != nil {
		t.Fatalf("Validate failed for a valid weekly: %v", err)
	}

	w.Set(Friday, DayAvailability{Kind: KindRange, From: mustTime(t, "12:00"), To: mustTime(t, "08:00")})
	if err := w.Validate(); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}
