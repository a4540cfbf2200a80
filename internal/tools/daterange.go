package tools

import "time"

const dateLayout = "2006-01-02"

// DateRange is an inclusive date interval, both ends as YYYY-MM-DD text.
type DateRange struct {
	Start string
	End   string
}

// resolveRange applies the default date window. A missing start date resets
// the whole range to [January 1 of the current year, today]; a missing end
// date alone becomes today. The default is computed fresh on every call so a
// long-running process crossing a year boundary picks up the new year.
func resolveRange(start, end string, now time.Time) DateRange {
	if start == "" {
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
		end = now.Format(dateLayout)
	}
	if end == "" {
		end = now.Format(dateLayout)
	}
	return DateRange{Start: start, End: end}
}
