package lexer

import "testing"

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func assertKinds(t *testing.T, got []Token, want ...Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("kind count = %d, want %d (%v vs %v)", len(gk), len(want), gk, want)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v (full: %v)", i, gk[i], want[i], gk)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	toks := Tokenize("1 + 2.5 * 3e2", 1)
	assertKinds(t, toks, NUMBER, PLUS, NUMBER, STAR, NUMBER, EOF)
}

func TestTokenizeGrouping(t *testing.T) {
	toks := Tokenize("1,000,000", 1)
	assertKinds(t, toks, NUMBER, EOF)
	if toks[0].Text != "1000000" {
		t.Errorf("Text = %q, want normalized 1000000", toks[0].Text)
	}
	if !toks[0].HasGrouping {
		t.Error("expected HasGrouping = true")
	}
}

func TestTokenizeMagnitudeSuffix(t *testing.T) {
	toks := Tokenize("12k + 3M", 1)
	assertKinds(t, toks, NUMBER, PLUS, NUMBER, EOF)
	if toks[0].Text != "12K" {
		t.Errorf("Text = %q, want 12K", toks[0].Text)
	}
	if toks[2].Text != "3M" {
		t.Errorf("Text = %q, want 3M", toks[2].Text)
	}
}

func TestTokenizeMetersNotMillion(t *testing.T) {
	toks := Tokenize("3m", 1)
	assertKinds(t, toks, NUMBER, IDENT, EOF)
	if toks[0].Text != "3" {
		t.Errorf("Text = %q, want bare 3 (m stays a separate unit ident)", toks[0].Text)
	}
}

func TestTokenizeCompactUnitNotSplitBySuffixRule(t *testing.T) {
	toks := Tokenize("12km", 1)
	assertKinds(t, toks, NUMBER, IDENT, EOF)
	if toks[0].Text != "12" || toks[1].Text != "km" {
		t.Errorf("got %q / %q, want 12 / km", toks[0].Text, toks[1].Text)
	}
}

func TestTokenizeDegreeUnit(t *testing.T) {
	toks := Tokenize("21°C", 1)
	assertKinds(t, toks, NUMBER, IDENT, EOF)
	if toks[1].Text != "°C" {
		t.Errorf("Text = %q, want °C", toks[1].Text)
	}
}

func TestTokenizePercent(t *testing.T) {
	toks := Tokenize("15%", 1)
	assertKinds(t, toks, PERCENT, EOF)
}

func TestTokenizeCurrencySymbol(t *testing.T) {
	toks := Tokenize("$100", 1)
	assertKinds(t, toks, CURRENCY, NUMBER, EOF)
}

func TestTokenizeString(t *testing.T) {
	toks := Tokenize(`"hello world"`, 1)
	assertKinds(t, toks, STRING, EOF)
	if toks[0].Text != "hello world" {
		t.Errorf("Text = %q", toks[0].Text)
	}
}

func TestTokenizeComment(t *testing.T) {
	toks := Tokenize("1 + 1 # trailing note", 1)
	assertKinds(t, toks, NUMBER, PLUS, NUMBER, EOF)
}

func TestTokenizeRefPlaceholder(t *testing.T) {
	toks := Tokenize("__sp_ref_a1b2__ + 1", 1)
	assertKinds(t, toks, REF, PLUS, NUMBER, EOF)
}

func TestTokenizeDate(t *testing.T) {
	toks := Tokenize("2026-07-29", 1)
	assertKinds(t, toks, DATE, EOF)
	if toks[0].Text != "2026-07-29" {
		t.Errorf("Text = %q", toks[0].Text)
	}
}

func TestTokenizeDateWithTime(t *testing.T) {
	toks := Tokenize("2026-07-29T14:30:00", 1)
	assertKinds(t, toks, DATE, EOF)
}

func TestTokenizeBareYearStaysNumber(t *testing.T) {
	toks := Tokenize("2026 + 1", 1)
	assertKinds(t, toks, NUMBER, PLUS, NUMBER, EOF)
}

func TestTokenizeOperators(t *testing.T) {
	toks := Tokenize("a => b .. c >= d <= e == f != g", 1)
	assertKinds(t, toks, IDENT, ARROW, IDENT, DOTDOT, IDENT, GE, IDENT, LE, IDENT, EQ, IDENT, NE, IDENT, EOF)
}

func TestTokenizeIdentifiersAndKeywords(t *testing.T) {
	toks := Tokenize("total in USD", 1)
	assertKinds(t, toks, IDENT, IDENT, IDENT, EOF)
	if !IsKeyword(toks[1].Text) {
		t.Errorf("expected %q to be a keyword", toks[1].Text)
	}
}

func TestTokenizePrecededBySpace(t *testing.T) {
	toks := Tokenize("1+2 + 3", 1)
	if toks[1].PrecededBySpace {
		t.Error("'+' directly after 1 should not be PrecededBySpace")
	}
	if !toks[3].PrecededBySpace {
		t.Error("second '+' should be PrecededBySpace")
	}
}

func TestTokenizeBrackets(t *testing.T) {
	toks := Tokenize("[1, 2, 3]", 1)
	assertKinds(t, toks, LBRACKET, NUMBER, COMMA, NUMBER, COMMA, NUMBER, RBRACKET, EOF)
}
