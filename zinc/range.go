package zinc

import (
	"strings"
	"time"
)

// Range is a half-open [Start, End) instant pair as produced by ParseRange.
type Range struct {
	Start Token // DateTime
	End   Token // DateTime
}

// ParseRange parses the operand of a hisRead range column (spec.md §4.2,
// §6.4): one of the named keywords, a bare date, a bare date-time, or a
// comma-separated pair of dates or date-times. now is the caller-supplied
// current instant, so the helper stays pure and testable.
func ParseRange(s string, now time.Time) (Range, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "today":
		start := startOfDay(now)
		return rangeOf(start, now), nil
	case "yesterday":
		start := startOfDay(now).AddDate(0, 0, -1)
		return rangeOf(start, startOfDay(now)), nil
	case "thisweek":
		start := startOfDay(now)
		for start.Weekday() != time.Sunday {
			start = start.AddDate(0, 0, -1)
		}
		return rangeOf(start, now), nil
	case "thismonth":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return rangeOf(start, now), nil
	case "thisyear":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return rangeOf(start, now), nil
	case "lastfiveminutes":
		return rangeOf(now.Add(-5*time.Minute), now), nil
	case "lasthour":
		return rangeOf(now.Add(-60*time.Minute), now), nil
	}

	if idx := strings.Index(s, ","); idx >= 0 {
		left := strings.TrimSpace(s[:idx])
		right := strings.TrimSpace(s[idx+1:])
		lt, err := parseRangeInstant(left, now)
		if err != nil {
			return Range{}, err
		}
		rt, err := parseRangeInstant(right, now)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: timeToDateTimeToken(lt), End: timeToDateTimeToken(rt)}, nil
	}

	// bare date or bare date-time.
	t, isDateOnly, err := parseRangeInstantKind(s, now)
	if err != nil {
		return Range{}, err
	}
	if isDateOnly {
		return rangeOf(t, now), nil
	}
	return Range{Start: timeToDateTimeToken(t), End: timeToDateTimeToken(now)}, nil
}

func rangeOf(start, end time.Time) Range {
	return Range{Start: timeToDateTimeToken(start), End: timeToDateTimeToken(end)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func timeToDateTimeToken(t time.Time) Token {
	_, offset := t.Zone()
	return NewDateTime(DateTime{
		Date:      Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
		Time:      Time{Hour: t.Hour(), Min: t.Minute(), Sec: t.Second(), Nanos: t.Nanosecond()},
		OffsetSec: offset,
		Zone:      t.Location().String(),
	})
}

func parseRangeInstant(s string, now time.Time) (time.Time, error) {
	t, _, err := parseRangeInstantKind(s, now)
	return t, err
}

// parseRangeInstantKind parses a bare date (YYYY-MM-DD) or bare date-time
// literal, returning whether it was date-only (so the caller can apply the
// "00:00 that date" start-of-day rule).
func parseRangeInstantKind(s string, now time.Time) (time.Time, bool, error) {
	p := &parser{src: s}
	if !p.eof() && isDigit(p.peek()) {
		tok, err := p.parseNumeric()
		if err != nil {
			return time.Time{}, false, newParseError(0, "invalid range instant %q", s)
		}
		switch tok.Kind() {
		case KindDate:
			d := tok.DateVal()
			return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, now.Location()), true, nil
		case KindDateTime:
			return tok.asTime(), false, nil
		}
	}
	return time.Time{}, false, newParseError(0, "invalid range instant %q", s)
}
