// Package fx defines the cached exchange-rate snapshot the engine reads
// cross-currency conversions from. The HTTP fetcher that produces a
// snapshot lives outside this repository; the engine only ever consumes a
// snapshot passed into its evaluation context, and conversion fails with
// RateUnavailable when no snapshot (or no rate) is present.
package fx

import (
	"time"

	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
)

// Snapshot is one cached set of exchange rates against a base currency.
type Snapshot struct {
	Base      string
	Rates     map[string]float64
	FetchedAt time.Time
}

// symbolCodes maps currency glyphs to the ISO code used in rate tables.
var symbolCodes = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP", "¥": "JPY",
	"₹": "INR", "₩": "KRW", "₽": "RUB",
}

// codeSymbols is the reverse mapping, used by display code that prefers a
// glyph prefix over an ISO suffix.
var codeSymbols = map[string]string{}

func init() {
	for sym, code := range symbolCodes {
		codeSymbols[code] = sym
	}
}

// Code normalizes a currency token (glyph or ISO code) to its ISO code.
func Code(symbolOrCode string) string {
	if code, ok := symbolCodes[symbolOrCode]; ok {
		return code
	}
	return symbolOrCode
}

// Symbol returns the display glyph for an ISO code, or "" when the code
// has no conventional glyph.
func Symbol(code string) string {
	return codeSymbols[code]
}

// IsGlyph reports whether the token is a currency glyph rather than a code.
func IsGlyph(token string) bool {
	_, ok := symbolCodes[token]
	return ok
}

// rate returns the snapshot's rate for one code relative to the base.
func (s *Snapshot) rate(code string) (float64, error) {
	if s == nil {
		return 0, ncerrors.New(ncerrors.KindRateUnavailable, ncerrors.MsgRateUnavailable, code)
	}
	if code == s.Base {
		return 1, nil
	}
	r, ok := s.Rates[code]
	if !ok || r == 0 {
		return 0, ncerrors.New(ncerrors.KindRateUnavailable, ncerrors.MsgRateUnavailable, code)
	}
	return r, nil
}

// Convert re-expresses an amount of the `from` currency in the `to`
// currency. Both arguments accept glyphs or ISO codes.
func (s *Snapshot) Convert(amount float64, from, to string) (float64, error) {
	fromCode, toCode := Code(from), Code(to)
	if fromCode == toCode {
		return amount, nil
	}
	fr, err := s.rate(fromCode)
	if err != nil {
		return 0, err
	}
	tr, err := s.rate(toCode)
	if err != nil {
		return 0, err
	}
	return amount / fr * tr, nil
}
