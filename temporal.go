// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// LocalDate is a date with no time-of-day or zone component (tag 20),
// carried on the wire as an epoch-day int64 per spec.md §6.
type LocalDate time.Time

// LocalDateTime is a date+time with no zone component (tag 21), carried on
// the wire as an ISO-8601 string.
type LocalDateTime time.Time

// LocalTime is a time-of-day with no date or zone component (tag 22),
// carried on the wire as an ISO-8601 string.
type LocalTime time.Duration

// Period is a calendar period (tag 24): a count of years, months, and
// days, as distinct from a fixed-length Duration. Carried on the wire as
// an ISO-8601 string, e.g. "P1Y2M3D".
type Period struct {
	Years, Months, Days int
}

// Joda* types carry the same shapes as their plain counterparts above but
// select the distinct joda-* wire tags reserved for interoperability with
// systems built on Joda-Time (spec.md §6). Per spec.md, joda-local-date is
// string-encoded (unlike the epoch-day-encoded plain LocalDate).
type (
	JodaDateTime      time.Time
	JodaLocalDate     time.Time
	JodaLocalTime     LocalTime
	JodaLocalDateTime LocalDateTime
	JodaDuration      time.Duration
	JodaPeriod        Period
)

// JodaInterval is tag 30: a half-open [Start, End) instant pair, carried
// on the wire as "start/end" ISO-8601.
type JodaInterval struct {
	Start, End time.Time
}

func epochDay(t time.Time) int64 {
	return t.UTC().Unix() / secondsPerDay
}

func dateFromEpochDay(day int64) time.Time {
	return time.Unix(day*secondsPerDay, 0).UTC()
}

const isoDateLayout = "2006-01-02"
const isoDateTimeLayout = "2006-01-02T15:04:05.999999999"
const isoTimeLayout = "15:04:05.999999999"

func formatISODuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d.Seconds()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s != 0 || (h == 0 && m == 0) {
		trimTrailingZeros(&b, s)
		b.WriteByte('S')
	}
	return b.String()
}

func trimTrailingZeros(b *strings.Builder, s float64) {
	str := strconv.FormatFloat(s, 'f', -1, 64)
	b.WriteString(str)
}

func parseISODuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("boson: %q is not an ISO-8601 duration", orig)
	}
	s = s[2:]
	var total time.Duration
	num := strings.Builder{}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			num.WriteRune(r)
		case r == 'H' || r == 'M' || r == 'S':
			v, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, fmt.Errorf("boson: %q is not an ISO-8601 duration: %w", orig, err)
			}
			num.Reset()
			switch r {
			case 'H':
				total += time.Duration(v * float64(time.Hour))
			case 'M':
				total += time.Duration(v * float64(time.Minute))
			case 'S':
				total += time.Duration(v * float64(time.Second))
			}
		default:
			return 0, fmt.Errorf("boson: %q is not an ISO-8601 duration", orig)
		}
	}
	if neg {
		total = -total
	}
	return total, nil
}

func formatISOPeriod(p Period) string {
	if p.Years == 0 && p.Months == 0 && p.Days == 0 {
		return "P0D"
	}
	var b strings.Builder
	b.WriteByte('P')
	if p.Years != 0 {
		fmt.Fprintf(&b, "%dY", p.Years)
	}
	if p.Months != 0 {
		fmt.Fprintf(&b, "%dM", p.Months)
	}
	if p.Days != 0 {
		fmt.Fprintf(&b, "%dD", p.Days)
	}
	return b.String()
}

func parseISOPeriod(s string) (Period, error) {
	var p Period
	if !strings.HasPrefix(s, "P") {
		return p, fmt.Errorf("boson: %q is not an ISO-8601 period", s)
	}
	rest := s[1:]
	num := strings.Builder{}
	neg := false
	for _, r := range rest {
		switch {
		case r == '-':
			neg = true
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'Y' || r == 'M' || r == 'D':
			if num.Len() == 0 {
				continue
			}
			v, err := strconv.Atoi(num.String())
			if err != nil {
				return p, fmt.Errorf("boson: %q is not an ISO-8601 period: %w", s, err)
			}
			if neg {
				v = -v
			}
			num.Reset()
			neg = false
			switch r {
			case 'Y':
				p.Years = v
			case 'M':
				p.Months = v
			case 'D':
				p.Days = v
			}
		default:
			return p, fmt.Errorf("boson: %q is not an ISO-8601 period", s)
		}
	}
	return p, nil
}

func formatLocalTime(d time.Duration) string {
	t := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
	return t.Format(isoTimeLayout)
}

func parseLocalTime(s string) (time.Duration, error) {
	t, err := time.Parse(isoTimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("boson: %q is not an ISO-8601 time: %w", s, err)
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return t.Sub(midnight), nil
}
