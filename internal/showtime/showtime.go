// Package showtime derives a session's lifecycle state from its raw
// schedule strings.  Session dates and times are stored exactly as the
// operator typed them ("2026.02.14", "오후 7:30", "7:30 PM", ...), so
// every piece of schedule arithmetic funnels through the normalizers
// here.  The guiding rule is to fail open: a session whose schedule
// cannot be parsed is treated as upcoming, because a false "ended"
// classification would silently disable booking for it and unlock
// review access that was never earned.
package showtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	firstNumber = regexp.MustCompile(`\d+`)
	clockDigits = regexp.MustCompile(`(\d+):(\d+)`)
	hhmm        = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// DurationMinutes extracts the running time in minutes from a raw
// duration label such as "120분 (인터미션 15분)" or "90 min".  The first
// integer in the label wins.  A label with no digits yields zero, which
// makes the session end the moment it starts.
func DurationMinutes(raw string) int {
	m := firstNumber.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// NormalizeDate converts an operator-entered date string to the
// YYYY-MM-DD form.  Whitespace is stripped, dot separators become
// dashes and a trailing separator is dropped ("2026.02.14." →
// "2026-02-14").
func NormalizeDate(raw string) string {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.TrimSuffix(s, "-")
	return s
}

// NormalizeTime converts a time-of-day string to 24-hour HH:MM form.
// Meridiem markers in either Korean (오전/오후) or English (AM/PM) are
// folded into the hour.  Anything that does not normalize to a valid
// HH:MM falls back to "00:00", i.e. start of day.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(s, "오후") || strings.Contains(upper, "PM"):
		if m := clockDigits.FindStringSubmatch(s); m != nil {
			h, _ := strconv.Atoi(m[1])
			if h != 12 {
				h += 12
			}
			s = twoDigits(h) + ":" + m[2]
		}
	case strings.Contains(s, "오전") || strings.Contains(upper, "AM"):
		if m := clockDigits.FindStringSubmatch(s); m != nil {
			h, _ := strconv.Atoi(m[1])
			if h == 12 {
				h = 0
			}
			s = twoDigits(h) + ":" + m[2]
		}
	}
	if !hhmm.MatchString(s) {
		return "00:00"
	}
	return s
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Start resolves a session's start instant in the venue's local time.
// A missing or malformed time component defaults to start of day.  The
// boolean is false when the date itself cannot be parsed.
func Start(date, timeOfDay string) (time.Time, bool) {
	d := NormalizeDate(date)
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", d+" "+NormalizeTime(timeOfDay), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// End resolves a session's end instant: start plus the performance's
// running time.  The boolean is false when the start cannot be parsed.
func End(date, timeOfDay, duration string) (time.Time, bool) {
	start, ok := Start(date, timeOfDay)
	if !ok {
		return time.Time{}, false
	}
	return start.Add(time.Duration(DurationMinutes(duration)) * time.Minute), true
}

// Ended reports whether the session's derived end instant is strictly
// in the past.  An unparseable schedule reports false (fail open): the
// session stays visible and bookable rather than being silently and
// permanently retired by a data defect.
func Ended(date, timeOfDay, duration string, now time.Time) bool {
	end, ok := End(date, timeOfDay, duration)
	if !ok {
		return false
	}
	return now.After(end)
}

// Started reports whether the session's start instant has been
// reached.  Unlike Ended this fails closed on a parse defect: review
// eligibility hangs off Started, and a malformed schedule must not
// hand out review access.
func Started(date, timeOfDay string, now time.Time) bool {
	start, ok := Start(date, timeOfDay)
	if !ok {
		return false
	}
	return !now.Before(start)
}
