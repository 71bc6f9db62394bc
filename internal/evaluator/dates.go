package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

var (
	isoDateExpr    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?(?: ?(UTC|Z|[+-]\d{2}:\d{2}))?$`)
	localeDateExpr = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// evalDateLiteral resolves a date literal: relative keywords against the
// injected clock, ISO dates, and locale numeric dates gated behind the
// dateLocale setting (spec.md §4.1 point 8).
func (c *Context) evalDateLiteral(text string) (value.Value, error) {
	switch strings.ToLower(text) {
	case "today":
		return c.clockDate(0), nil
	case "tomorrow":
		return c.clockDate(1), nil
	case "yesterday":
		return c.clockDate(-1), nil
	}

	if m := isoDateExpr.FindStringSubmatch(text); m != nil {
		d := value.Date{}
		d.Year, _ = strconv.Atoi(m[1])
		d.Month, _ = strconv.Atoi(m[2])
		d.Day, _ = strconv.Atoi(m[3])
		if !validYMD(d.Year, d.Month, d.Day) {
			return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
		}
		if m[4] != "" {
			d.HasTime = true
			d.Hour, _ = strconv.Atoi(m[4])
			d.Min, _ = strconv.Atoi(m[5])
			if m[6] != "" {
				d.Sec, _ = strconv.Atoi(m[6])
			}
			if d.Hour > 23 || d.Min > 59 || d.Sec > 59 {
				return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
			}
			zone := m[7]
			if zone == "Z" {
				zone = "UTC"
			}
			d.Zone = zone
		}
		return d, nil
	}

	if m := localeDateExpr.FindStringSubmatch(text); m != nil {
		if c.DateLocale == "" {
			return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		day, month := a, b
		if c.DateLocale == "en-US" {
			month, day = a, b
		} else {
			day, month = a, b
		}
		if !validYMD(year, month, day) {
			return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
		}
		return value.Date{Year: year, Month: month, Day: day}, nil
	}

	return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
}

func (c *Context) clockDate(dayOffset int) value.Date {
	now := c.Clock()
	d := value.Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
	if dayOffset != 0 {
		d = d.AddDuration(value.Duration{Seconds: float64(dayOffset) * 86400, AuthoredUnit: "day"})
	}
	return d
}

func validYMD(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn(year, month)
}

func daysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	}
}

// evalTimeLiteral parses a standalone HH:MM[:SS] time of day.
func evalTimeLiteral(text string) (value.Value, error) {
	parts := strings.Split(text, ":")
	if len(parts) < 2 {
		return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	sec := 0
	if len(parts) == 3 {
		sec, _ = strconv.Atoi(parts[2])
	}
	if h > 23 || m > 59 || sec > 59 {
		return nil, ncerrors.New(ncerrors.KindInvalidDateLiteral, ncerrors.MsgInvalidDateLiteral, text)
	}
	return value.Time{Hour: h, Min: m, Sec: sec}, nil
}
