// Package dates converts the flexible date strings found in course CSV
// files into the canonical Unix-seconds strings the backup schema expects.
package dates

import (
	"strconv"
	"strings"
	"time"
)

// Unset is the canonical "not set" timestamp value in generated documents.
const Unset = "0"

// layout accepted strictly: out-of-range fields (day 32, hour 25) are
// rejected rather than rolled over.
const strictLayout = "2006-01-02 15:04"

// fallbackLayouts are tried in order when the input matches neither strict
// form. Best effort only.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04",
	"2006/01/02",
	"02.01.2006 15:04",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// Normalize parses raw into a Unix timestamp string in the server's local
// time zone. Date-only values get defaultTime (e.g. "23:59") appended before
// the strict parse. Empty input yields Unset. The returned bool is false
// only when a non-empty input could not be parsed by any strategy; the
// caller decides how to surface that, the value is still Unset.
func Normalize(raw, defaultTime string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == Unset {
		return Unset, true
	}

	// Bare date: append the default time-of-day and parse strictly.
	if len(s) == len("2006-01-02") && strings.Count(s, "-") == 2 {
		if ts, err := time.ParseInLocation(strictLayout, s+" "+defaultTime, time.Local); err == nil {
			return strconv.FormatInt(ts.Unix(), 10), true
		}
	}

	if ts, err := time.ParseInLocation(strictLayout, s, time.Local); err == nil {
		return strconv.FormatInt(ts.Unix(), 10), true
	}

	for _, layout := range fallbackLayouts {
		ts, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		unix := ts.Unix()
		if unix <= 0 {
			break
		}
		return strconv.FormatInt(unix, 10), true
	}

	return Unset, false
}

// Resolved holds the outcome of the secondary-date fallback chain shared by
// the assignment and quiz builders.
type Resolved struct {
	Start      string // submissions-from / open date, Unset allowed
	Due        string // due / close date, never Unset
	GradingDue string // due + 7 days
	Cutoff     string // explicit cutoff, else same as Due
}

// Resolve applies the fallback chain to three normalized date strings:
// the due date falls back to now when no end date was given, the grading
// due date is always due + 7 days, and the cutoff falls back to the due
// date. The restore engine treats Unset and "same as due" differently, so
// the fallback has to produce explicit values.
func Resolve(start, end, cutoff string, now int64) Resolved {
	due := end
	if due == Unset || due == "" {
		due = strconv.FormatInt(now, 10)
	}

	dueUnix, err := strconv.ParseInt(due, 10, 64)
	if err != nil {
		dueUnix = now
		due = strconv.FormatInt(now, 10)
	}

	resolved := Resolved{
		Start:      start,
		Due:        due,
		GradingDue: strconv.FormatInt(dueUnix+7*24*60*60, 10),
		Cutoff:     cutoff,
	}
	if resolved.Start == "" {
		resolved.Start = Unset
	}
	if resolved.Cutoff == Unset || resolved.Cutoff == "" {
		resolved.Cutoff = due
	}
	return resolved
}
