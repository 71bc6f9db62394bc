package value

import "fmt"

// AddDuration adds a Duration to a Time-of-day, rolling over into a day
// carry when the result crosses midnight (spec.md §4.7).
func (t Time) AddDuration(d Duration) Time {
	totalSeconds := t.Hour*3600 + t.Min*60 + t.Sec
	total := float64(totalSeconds) + d.Seconds
	dayCarry := t.DayCarry
	const daySeconds = 86400
	for total < 0 {
		total += daySeconds
		dayCarry--
	}
	for total >= daySeconds {
		total -= daySeconds
		dayCarry++
	}
	ti := int(total)
	return Time{Hour: ti / 3600, Min: (ti % 3600) / 60, Sec: ti % 60, DayCarry: dayCarry}
}

// SubTime returns a-b as a Duration. Time+Time has no meaning and is
// rejected by the evaluator before this is ever called (spec.md §4.7).
func (a Time) SubTime(b Time) Duration {
	as := a.Hour*3600 + a.Min*60 + a.Sec + a.DayCarry*86400
	bs := b.Hour*3600 + b.Min*60 + b.Sec + b.DayCarry*86400
	return Duration{Seconds: float64(as - bs), AuthoredUnit: "min"}
}

func (t Time) String() string {
	s := fmt.Sprintf("%02d:%02d", t.Hour, t.Min)
	if t.DayCarry != 0 {
		sign := "+"
		n := t.DayCarry
		if n < 0 {
			sign = "-"
			n = -n
		}
		s += fmt.Sprintf(" (%s%d day)", sign, n)
	}
	return s
}
