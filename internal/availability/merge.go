package availability

// CommonTimeKind classifies the merger outcome for a single day.
type CommonTimeKind int

const (
	// CommonTimeNone means no shared window exists for the day.
	CommonTimeNone CommonTimeKind = iota
	// CommonTimeFullDay means every counted participant is free all day.
	CommonTimeFullDay
	// CommonTimeWindow means the shared window is the From/To interval.
	CommonTimeWindow
)

// CommonTime is the shared window computed for one day. From and To are only
// meaningful when Kind is CommonTimeWindow.
type CommonTime struct {
	Kind CommonTimeKind
	From TimeOfDay
	To   TimeOfDay
}

// CommonTimeForDay intersects the declarations for one day across the given
// weekly declarations.
//
// Participants with an Unset entry for the day contribute nothing. AllBusy
// participants are likewise excluded from the candidate set instead of
// constraining the intersection to empty; they simply do not count as
// available that day. AllFree maps to the full [00:00, 23:59] interval and a
// range maps to itself. The intersection is latest start against earliest
// end, and intervals that merely touch at a boundary do not overlap.
func CommonTimeForDay(day Day, weeklies []Weekly) CommonTime {
	var latestStart, earliestEnd TimeOfDay
	counted := 0
	allFree := true

	for _, w := range weeklies {
		entry := w.Get(day)
		var from, to TimeOfDay
		switch entry.Kind {
		case KindAllFree:
			from, to = DayStart, DayEnd
		case KindRange:
			from, to = entry.From, entry.To
			allFree = false
		default:
			continue
		}
		if counted == 0 {
			latestStart, earliestEnd = from, to
		} else {
			if from > latestStart {
				latestStart = from
			}
			if to < earliestEnd {
				earliestEnd = to
			}
		}
		counted++
	}

	if counted == 0 {
		return CommonTime{Kind: CommonTimeNone}
	}
	if allFree {
		return CommonTime{Kind: CommonTimeFullDay}
	}
	if latestStart >= earliestEnd {
		return CommonTime{Kind: CommonTimeNone}
	}
	return CommonTime{Kind: CommonTimeWindow, From: latestStart, To: earliestEnd}
}
