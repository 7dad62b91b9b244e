package availability

import "testing"

func TestSelectBestTime_NoDeclaredParticipants(t *testing.T) {
	t.Parallel()

	got := SelectBestTime(nil)
	if got.Outcome != BestTimeNoneDeclared {
		t.Fatalf("expected BestTimeNoneDeclared, got %#v", got)
	}

	got = SelectBestTime([]Weekly{{}, {}})
	if got.Outcome != BestTimeNoneDeclared {
		t.Fatalf("expected BestTimeNoneDeclared for all-unset weeklies, got %#v", got)
	}
}

func TestSelectBestTime_PicksDayWithHighestScore(t *testing.T) {
	t.Parallel()

	// Two of three free on Wednesday all day, the third free 14:00-16:00
	// there; nothing declared anywhere else.
	weeklies := []Weekly{
		weeklyWith(Wednesday, FreeAllDay()),
		weeklyWith(Wednesday, FreeAllDay()),
		weeklyWith(Wednesday, rangeDecl(t, "14:00", "16:00")),
	}

	got := SelectBestTime(weeklies)
	if got.Outcome != BestTimeFound {
		t.Fatalf("expected BestTimeFound, got %#v", got)
	}
	if got.Day != Wednesday {
		t.Fatalf("expected Wednesday, got %v", got.Day)
	}
	if got.Common.Kind != CommonTimeWindow || got.Common.From != mustTime(t, "14:00") || got.Common.To != mustTime(t, "16:00") {
		t.Fatalf("expected window 14:00-16:00, got %#v", got.Common)
	}
	if got.AvailableCount != 3 || got.TotalDeclared != 3 {
		t.Fatalf("expected 3/3 participants, got %d/%d", got.AvailableCount, got.TotalDeclared)
	}
}

func TestSelectBestTime_TiesKeepEarliestDay(t *testing.T) {
	t.Parallel()

	var both Weekly
	both.Set(Tuesday, FreeAllDay())
	both.Set(Friday, FreeAllDay())

	got := SelectBestTime([]Weekly{both, both})
	if got.Outcome != BestTimeFound {
		t.Fatalf("expected BestTimeFound, got %#v", got)
	}
	if got.Day != Tuesday {
		t.Fatalf("tie should keep the earliest day in week order, got %v", got.Day)
	}
	if got.Common.Kind != CommonTimeFullDay {
		t.Fatalf("expected CommonTimeFullDay, got %#v", got.Common)
	}
}

func TestSelectBestTime_LowerScoreDayCannotDisplaceBestWithoutSlot(t *testing.T) {
	t.Parallel()

	// Monday: both declared but disjoint, a perfect score with no shared
	// window. Thursday has a window, yet only half are available there, so
	// it never displaces Monday's running best and the week yields no slot.
	first := weeklyWith(Monday, rangeDecl(t, "08:00", "09:00"))
	first.Set(Thursday, rangeDecl(t, "10:00", "12:00"))
	second := weeklyWith(Monday, rangeDecl(t, "09:00", "10:00"))

	got := SelectBestTime([]Weekly{first, second})
	if got.Outcome != BestTimeNoCommonSlot {
		t.Fatalf("expected BestTimeNoCommonSlot, got %#v", got)
	}
	if got.TotalDeclared != 2 {
		t.Fatalf("expected 2 declared participants, got %d", got.TotalDeclared)
	}
}

func TestSelectBestTime_AllBusyCountsTowardDenominatorOnly(t *testing.T) {
	t.Parallel()

	weeklies := []Weekly{
		weeklyWith(Wednesday, rangeDecl(t, "09:00", "11:00")),
		weeklyWith(Wednesday, BusyAllDay()),
	}

	got := SelectBestTime(weeklies)
	if got.Outcome != BestTimeFound {
		t.Fatalf("expected BestTimeFound, got %#v", got)
	}
	if got.AvailableCount != 1 || got.TotalDeclared != 2 {
		t.Fatalf("expected 1/2 participants, got %d/%d", got.AvailableCount, got.TotalDeclared)
	}
}

func TestSelectBestTime_NoCommonSlotAnywhere(t *testing.T) {
	t.Parallel()

	weeklies := []Weekly{
		weeklyWith(Monday, rangeDecl(t, "08:00", "09:00")),
		weeklyWith(Monday, rangeDecl(t, "09:00", "10:00")),
	}

	got := SelectBestTime(weeklies)
	if got.Outcome != BestTimeNoCommonSlot {
		t.Fatalf("expected BestTimeNoCommonSlot, got %#v", got)
	}
	if got.TotalDeclared != 2 {
		t.Fatalf("expected 2 declared participants, got %d", got.TotalDeclared)
	}
	if len(got.Days) != DaysInWeek {
		t.Fatalf("expected a breakdown for all 7 days, got %d", len(got.Days))
	}
}
