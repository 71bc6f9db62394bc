// Package lexer implements the line tokenizer (spec.md §4.1): given one
// line of notebook text it emits a stream of typed tokens recognizing
// numbers, currency and percentage literals, date literals, keywords,
// operators, identifiers, and reference placeholders.
//
// Grounded on the teacher repo's internal/lexer.Lexer (rune-based scanner,
// column tracking in runes not bytes)
// and on CalcMark-go-calcmark's token kind catalog (NUMBER_K/M/B/T,
// CURRENCY_SYM/CODE, DATE_LITERAL, DATE_TODAY/TOMORROW/YESTERDAY) for which
// literal shapes a notebook calculator lexer needs to recognize.
package lexer

import "fmt"

// Kind identifies a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	ERROR

	NUMBER   // 123, 1.5, 1.5e10, 12k/12M/12B/12T
	STRING   // "..."
	REF      // __sp_ref_xxx__
	CURRENCY // glyph $, €, £, ¥, ₹, ₩, ₽ (ISO codes like USD lex as IDENT)
	PERCENT  // a NUMBER immediately followed by '%'
	DATE     // ISO or locale numeric date, optionally with time/zone
	TIME     // standalone time of day, HH:MM[:SS]
	IDENT    // identifier, keyword, or unit symbol (disambiguated by the parser)

	PLUS
	MINUS
	STAR
	SLASH
	CARET
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	COLON       // named-argument separator
	PERCENTSIGN // bare '%' (conversion target in "as %")
	DOTDOT      // ".."
	ARROW       // "=>"
	ASSIGN      // "="

	GT
	LT
	GE
	LE
	EQ
	NE
)

var kindNames = map[Kind]string{
	EOF: "EOF", ERROR: "ERROR", NUMBER: "NUMBER", STRING: "STRING", REF: "REF",
	CURRENCY: "CURRENCY", PERCENT: "PERCENT", DATE: "DATE", TIME: "TIME", IDENT: "IDENT",
	PLUS: "PLUS", MINUS: "MINUS", STAR: "STAR", SLASH: "SLASH", CARET: "CARET",
	LPAREN: "LPAREN", RPAREN: "RPAREN", LBRACKET: "LBRACKET", RBRACKET: "RBRACKET",
	COMMA: "COMMA", COLON: "COLON", PERCENTSIGN: "PERCENTSIGN",
	DOTDOT: "DOTDOT", ARROW: "ARROW", ASSIGN: "ASSIGN",
	GT: "GT", LT: "LT", GE: "GE", LE: "LE", EQ: "EQ", NE: "NE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords lists the reserved words enumerated in spec.md §4.1 point 9.
// An IDENT whose lowercase text matches one of these is still emitted as
// IDENT (the parser treats keywords contextually, since several of them
// -- "on", "off", "in", "to" -- are also common English words that must
// remain valid inside a phrase variable name).
var keywords = map[string]bool{
	"to": true, "in": true, "of": true, "on": true, "off": true, "as": true,
	"per": true, "mod": true, "where": true, "step": true, "solve": true,
	"desc": true, "days": true, "day": true, "hours": true, "hour": true,
	"h": true, "min": true, "minute": true, "minutes": true, "s": true,
	"sec": true, "seconds": true, "business": true, "month": true,
	"months": true, "week": true, "weeks": true, "year": true, "years": true,
	"and": true, "today": true, "tomorrow": true, "yesterday": true,
}

// IsKeyword reports whether word is one of the reserved words of spec.md §4.1.
func IsKeyword(word string) bool {
	return keywords[word]
}

// Token is one lexical unit.
type Token struct {
	Kind            Kind
	Text            string // normalized text (e.g. grouping separators stripped)
	Raw             string // original source text
	Line            int
	Column          int // rune offset from line start
	PrecededBySpace bool
	// HasGrouping marks a NUMBER token whose raw text used thousands
	// grouping (e.g. "1,000"). Grouping is legal in display values but
	// rejected in assignment/evaluation inputs (spec.md §4.1 point 4);
	// the parser/evaluator layer, which knows the context, decides.
	HasGrouping bool
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}
