package availability

// DayResult captures the per-day aggregation used by the best-day selection.
type DayResult struct {
	Day            Day
	Score          float64
	AvailableCount int
	TotalDeclared  int
	Common         CommonTime
}

// BestTimeOutcome classifies the overall selection result.
type BestTimeOutcome int

const (
	// BestTimeNoneDeclared means no participant has declared any availability.
	BestTimeNoneDeclared BestTimeOutcome = iota
	// BestTimeNoCommonSlot means declarations exist but no day has a shared window.
	BestTimeNoCommonSlot
	// BestTimeFound means Day and Common describe the recommended slot.
	BestTimeFound
)

// BestTime is the outcome of running the selector over a full week.
type BestTime struct {
	Outcome        BestTimeOutcome
	Day            Day
	Common         CommonTime
	AvailableCount int
	TotalDeclared  int
	Days           []DayResult
}

// SelectBestTime scores each day of the week across the supplied weekly
// declarations and picks the best one.
//
// Only declared weeklies (at least one non-Unset day anywhere) count; their
// number is the score denominator for every day. A day's available count is
// the number of declared participants free that day, either all day or for a
// range; all-busy entries are not counted. Selection starts from Monday's
// result and a later day only replaces the running best when its score is
// strictly higher and it has a shared window, so ties keep the earliest day
// in week order.
func SelectBestTime(weeklies []Weekly) BestTime {
	declared := make([]Weekly, 0, len(weeklies))
	for _, w := range weeklies {
		if w.Declared() {
			declared = append(declared, w)
		}
	}
	if len(declared) == 0 {
		return BestTime{Outcome: BestTimeNoneDeclared}
	}

	results := make([]DayResult, 0, DaysInWeek)
	for day := Monday; day <= Sunday; day++ {
		available := 0
		for _, w := range declared {
			switch w.Get(day).Kind {
			case KindAllFree, KindRange:
				available++
			}
		}
		result := DayResult{
			Day:            day,
			Score:          float64(available) / float64(len(declared)),
			AvailableCount: available,
			TotalDeclared:  len(declared),
		}
		if available > 0 {
			result.Common = CommonTimeForDay(day, declared)
		}
		results = append(results, result)
	}

	best := results[0]
	for _, current := range results[1:] {
		if current.Score > best.Score && current.Common.Kind != CommonTimeNone {
			best = current
		}
	}

	out := BestTime{TotalDeclared: len(declared), Days: results}
	if best.Common.Kind == CommonTimeNone {
		out.Outcome = BestTimeNoCommonSlot
		return out
	}

	out.Outcome = BestTimeFound
	out.Day = best.Day
	out.Common = best.Common
	out.AvailableCount = best.AvailableCount
	return out
}
