/*
Copyright 2024 ClearSettle Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"encoding/json"
	"time"
)

// DayFormat is the wire format for calendar days.
const DayFormat = "2006-01-02"

// Day is a calendar day with no time-of-day or location component.
// Rates are stored at day granularity, so Day is usable as a hash-map
// key component, which time.Time is not (monotonic clock, location).
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{Year: y, Month: m, Date: d}
}

// ParseDay parses a "YYYY-MM-DD" string into a Day.
func ParseDay(value string) (Day, error) {
	t, err := time.Parse(DayFormat, value)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// Today returns the current UTC calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// Time returns the day as midnight UTC.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

func (d Day) String() string {
	return d.Time().Format(DayFormat)
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d.Time().After(other.Time())
}

// IsZero reports whether the day is the zero value.
func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	day, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = day
	return nil
}

// DateRange is an inclusive range of calendar days. A settlement run
// always covers a range; a single-day run has Start == End.
type DateRange struct {
	Start Day `json:"start"`
	End   Day `json:"end"`
}

// NewDateRange builds a range and normalizes an inverted pair.
func NewDateRange(start, end Day) DateRange {
	if end.Before(start) {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

// Days returns the number of calendar days covered, inclusive of both
// ends. A single-day range returns 1.
func (r DateRange) Days() int {
	return int(r.End.Time().Sub(r.Start.Time()).Hours()/24) + 1
}

// Months returns the number of whole calendar months covered, counting
// any trailing partial month as one more. A range shorter than a month
// returns 1.
func (r DateRange) Months() int {
	months := 0
	cursor := r.Start
	for {
		next := DayOf(cursor.Time().AddDate(0, 1, 0))
		if next.After(r.End) {
			break
		}
		months++
		cursor = next
	}
	if !cursor.After(r.End) {
		months++
	}
	return months
}

// Contains reports whether the day falls inside the range.
func (r DateRange) Contains(d Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
