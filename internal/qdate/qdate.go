// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package qdate parses and formats QVS20's three date/time data types
// (Date, Time, DateTimeFixedOffset) directly from borrowed byte slices,
// without the allocation a time.Parse/fmt.Sscanf round-trip through
// strings would cost.
package qdate

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component: ISO-8601
// "YYYY-MM-DD", all components mandatory.
type Date struct {
	Year, Month, Day int
}

// TimeOfDay is a time with no date component: "hh:mm:ss" with optional
// fractional seconds, stored to nanosecond precision.
type TimeOfDay struct {
	Hour, Minute, Second, Nanosecond int
}

// DateTime is an instant with a mandatory UTC offset: RFC-3339 with a "Z"
// or "±hh:mm" offset.
type DateTime struct {
	Year, Month, Day                 int
	Hour, Minute, Second, Nanosecond int
	OffsetSeconds                    int // east of UTC
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func readDigits(b []byte, n int) (int, bool) {
	if len(b) < n {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		if !isDigit(b[i]) {
			return 0, false
		}
		v = v*10 + int(b[i]-'0')
	}
	return v, true
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(b []byte) (Date, bool) {
	if len(b) != 10 || b[4] != '-' || b[7] != '-' {
		return Date{}, false
	}
	y, ok := readDigits(b[0:4], 4)
	if !ok {
		return Date{}, false
	}
	m, ok := readDigits(b[5:7], 2)
	if !ok || m < 1 || m > 12 {
		return Date{}, false
	}
	d, ok := readDigits(b[8:10], 2)
	if !ok || d < 1 || d > 31 {
		return Date{}, false
	}
	return Date{Year: y, Month: m, Day: d}, true
}

// AppendDate appends d formatted as "YYYY-MM-DD" to b.
func AppendDate(b []byte, d Date) []byte {
	return fmt.Appendf(b, "%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) String() string { return string(AppendDate(nil, d)) }

// parseFractionalSeconds reads an optional ".ffffff..." suffix starting at
// b[0] == '.', returning nanoseconds and the number of bytes consumed.
func parseFractionalSeconds(b []byte) (ns int, n int, ok bool) {
	if len(b) == 0 || b[0] != '.' {
		return 0, 0, true
	}
	i := 1
	for i < len(b) && isDigit(b[i]) {
		i++
	}
	digits := b[1:i]
	if len(digits) == 0 {
		return 0, 0, false
	}
	// normalize/truncate to 9 significant digits (nanoseconds)
	buf := make([]byte, 9)
	for j := range buf {
		if j < len(digits) {
			buf[j] = digits[j]
		} else {
			buf[j] = '0'
		}
	}
	v, _ := readDigits(buf, 9)
	return v, i, true
}

func appendFractional(b []byte, ns int) []byte {
	if ns == 0 {
		return b
	}
	return fmt.Appendf(b, ".%09d", ns)
}

// ParseTimeOfDay parses "hh:mm:ss" with an optional ".ffffff..." suffix.
func ParseTimeOfDay(b []byte) (TimeOfDay, bool) {
	if len(b) < 8 || b[2] != ':' || b[5] != ':' {
		return TimeOfDay{}, false
	}
	h, ok := readDigits(b[0:2], 2)
	if !ok || h > 23 {
		return TimeOfDay{}, false
	}
	mi, ok := readDigits(b[3:5], 2)
	if !ok || mi > 59 {
		return TimeOfDay{}, false
	}
	s, ok := readDigits(b[6:8], 2)
	if !ok || s > 60 {
		return TimeOfDay{}, false
	}
	ns, n, ok := parseFractionalSeconds(b[8:])
	if !ok {
		return TimeOfDay{}, false
	}
	if 8+n != len(b) {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: h, Minute: mi, Second: s, Nanosecond: ns}, true
}

// AppendTimeOfDay appends t formatted as "hh:mm:ss[.fffffffff]" to b; the
// nine-digit fraction is omitted when it is zero.
func AppendTimeOfDay(b []byte, t TimeOfDay) []byte {
	b = fmt.Appendf(b, "%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	return appendFractional(b, t.Nanosecond)
}

func (t TimeOfDay) String() string { return string(AppendTimeOfDay(nil, t)) }

// ParseDateTime parses RFC-3339 with a mandatory offset ("Z" or "±hh:mm").
func ParseDateTime(b []byte) (DateTime, bool) {
	if len(b) < 20 {
		return DateTime{}, false
	}
	if b[4] != '-' || b[7] != '-' || (b[10] != 'T' && b[10] != 't' && b[10] != ' ') || b[13] != ':' || b[16] != ':' {
		return DateTime{}, false
	}
	date, ok := ParseDate(b[0:10])
	if !ok {
		return DateTime{}, false
	}
	rest := b[11:]
	h, ok := readDigits(rest[0:2], 2)
	if !ok || h > 23 {
		return DateTime{}, false
	}
	mi, ok := readDigits(rest[3:5], 2)
	if !ok || mi > 59 {
		return DateTime{}, false
	}
	s, ok := readDigits(rest[6:8], 2)
	if !ok || s > 60 {
		return DateTime{}, false
	}
	tail := rest[8:]
	ns, n, ok := parseFractionalSeconds(tail)
	if !ok {
		return DateTime{}, false
	}
	tail = tail[n:]
	offset, ok := parseOffset(tail)
	if !ok {
		return DateTime{}, false
	}
	return DateTime{
		Year: date.Year, Month: date.Month, Day: date.Day,
		Hour: h, Minute: mi, Second: s, Nanosecond: ns,
		OffsetSeconds: offset,
	}, true
}

func parseOffset(b []byte) (int, bool) {
	if len(b) == 1 && (b[0] == 'Z' || b[0] == 'z') {
		return 0, true
	}
	if len(b) != 6 || (b[0] != '+' && b[0] != '-') || b[3] != ':' {
		return 0, false
	}
	h, ok := readDigits(b[1:3], 2)
	if !ok || h > 23 {
		return 0, false
	}
	mi, ok := readDigits(b[4:6], 2)
	if !ok || mi > 59 {
		return 0, false
	}
	secs := h*3600 + mi*60
	if b[0] == '-' {
		secs = -secs
	}
	return secs, true
}

// AppendDateTime appends dt formatted as RFC-3339 (with the fixed offset
// it was parsed with) to b.
func AppendDateTime(b []byte, dt DateTime) []byte {
	b = AppendDate(b, Date{Year: dt.Year, Month: dt.Month, Day: dt.Day})
	b = append(b, 'T')
	b = fmt.Appendf(b, "%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
	b = appendFractional(b, dt.Nanosecond)
	if dt.OffsetSeconds == 0 {
		return append(b, 'Z')
	}
	sign := byte('+')
	off := dt.OffsetSeconds
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Appendf(b, "%c%02d:%02d", sign, off/3600, (off%3600)/60)
}

func (dt DateTime) String() string { return string(AppendDateTime(nil, dt)) }

// Time returns dt as a time.Time in its own fixed-offset location.
func (dt DateTime) Time() time.Time {
	loc := time.FixedZone("", dt.OffsetSeconds)
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, dt.Nanosecond, loc)
}
