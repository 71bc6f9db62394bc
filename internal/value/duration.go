package value

import (
	"fmt"
	"math"
)

// Duration unit factors to seconds. Month/year are calendar-neutral
// approximations (spec.md open question, resolved in DESIGN.md):
// 1 year = 365 days, 1 month = 30.4375 days. These never apply to Date
// arithmetic, which always uses calendar-aware day/month/year carry.
var durationUnitSeconds = map[string]float64{
	"s":     1,
	"sec":   1,
	"min":   60,
	"h":     3600,
	"hour":  3600,
	"day":   86400,
	"week":  604800,
	"month": 30.4375 * 86400,
	"year":  365 * 86400,
}

// NewDuration builds a Duration from a value expressed in the given unit
// word (one of durationUnitSeconds' keys).
func NewDuration(v float64, unit string) (Duration, error) {
	factor, ok := durationUnitSeconds[unit]
	if !ok {
		return Duration{}, fmt.Errorf("unknown duration unit: %s", unit)
	}
	return Duration{Seconds: v * factor, AuthoredUnit: unit}, nil
}

// To converts a Duration to a value expressed in the target unit.
func (d Duration) To(unit string) (float64, error) {
	factor, ok := durationUnitSeconds[unit]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
	return d.Seconds / factor, nil
}

// AddDuration adds a Duration to a Date with calendar carry: days/weeks
// advance the calendar day, months/years advance the calendar month/year
// and clamp to the last valid day of the resulting month (spec.md §4.7).
func (d Date) AddDuration(dur Duration) Date {
	switch dur.AuthoredUnit {
	case "business day":
		return d.AddBusinessDays(int(dur.Seconds / 86400))
	case "month":
		months := int(dur.Seconds / durationUnitSeconds["month"])
		return d.addMonths(months)
	case "year":
		years := int(dur.Seconds / durationUnitSeconds["year"])
		return d.addMonths(years * 12)
	default:
		days := dur.Seconds / 86400
		return d.addDays(days)
	}
}

func (d Date) addMonths(n int) Date {
	totalMonths := (d.Year*12 + (d.Month - 1)) + n
	year := totalMonths / 12
	month := totalMonths%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	day := d.Day
	if maxDay := daysInMonth(year, month); day > maxDay {
		day = maxDay
	}
	out := d
	out.Year, out.Month, out.Day = year, month, day
	return out
}

func (d Date) addDays(days float64) Date {
	jd := toJulianDay(d.Year, d.Month, d.Day) + days
	y, m, dd := fromJulianDay(jd)
	out := d
	out.Year, out.Month, out.Day = y, m, dd
	return out
}

// AddBusinessDays advances n business days (Mon-Fri), skipping weekends.
// n may be negative to move backward (spec.md §4.7).
func (d Date) AddBusinessDays(n int) Date {
	out := d
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		out = out.addDays(float64(step))
		if weekday(out.Year, out.Month, out.Day) != 0 && weekday(out.Year, out.Month, out.Day) != 6 {
			n--
		}
	}
	return out
}

// DiffDays returns a-b in whole days as a Duration (spec.md §4.7: Date-Date=Duration).
func DiffDays(a, b Date) Duration {
	days := toJulianDay(a.Year, a.Month, a.Day) - toJulianDay(b.Year, b.Month, b.Day)
	return Duration{Seconds: days * 86400, AuthoredUnit: "day"}
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	}
	return 30
}

func isLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// toJulianDay/fromJulianDay implement the standard civil-calendar <->
// Julian day number conversion (used for calendar-correct day arithmetic
// and weekday computation without pulling in time.Time, which cannot
// represent a date-only value without an implicit zone).
func toJulianDay(y, m, d int) float64 {
	a := (14 - m) / 12
	yy := y + 4800 - a
	mm := m + 12*a - 3
	jdn := d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
	return float64(jdn)
}

func fromJulianDay(jd float64) (int, int, int) {
	jdn := int(math.Round(jd))
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return year, month, day
}

func weekday(y, m, d int) int {
	jdn := int(toJulianDay(y, m, d))
	// JDN 0 = Monday Jan 1, 4713 BC in the proleptic Julian calendar; the
	// offset below aligns 0=Sunday for the conventional Go time.Weekday.
	return (jdn + 1) % 7
}

func formatDuration(seconds float64) string {
	sign := ""
	s := seconds
	if s < 0 {
		sign = "-"
		s = -s
	}
	h := int(s) / 3600
	m := (int(s) % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%s%d h %d min", sign, h, m)
	case h > 0:
		return fmt.Sprintf("%s%d h", sign, h)
	default:
		return fmt.Sprintf("%s%d min", sign, m)
	}
}
