// Package parser turns a tokenized line into an ast.Line: it classifies
// the line per spec.md §4.2 (plain text / variable assignment / bare
// expression / combined assignment / function definition / equation /
// solve request) and, for lines carrying an expression, runs a Pratt
// parser over spec.md §4.3's precedence table.
//
// Grounded on the teacher repo's internal/parser/parser.go (Pratt parser
// shape: prefixParseFns/infixParseFns maps keyed by token kind, a
// precedence table, curToken/peekToken cursor) and on
// CalcMark-go-calcmark's spec/parser/rdparser.go for how a notebook
// calculator grammar folds unit/currency/percentage literals and
// "in"/"where"/"solve" keywords into the same expression grammar a
// general-purpose language parser handles with binary operators alone.
//
// Deliberate deviation from the teacher: line-level classification
// (assignment vs. expression vs. function definition) is done with a
// single top-level scan for a depth-0 '=' or '=>' token BEFORE invoking
// the Pratt parser, rather than a per-statement prefix-dispatch switch —
// the calculator grammar has no statement keywords to switch on, so a
// scan is simpler and just as precise.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/lexer"
	"github.com/nmaxcom/smartpad-go/internal/units"
)

// Precedence levels, lowest to highest (spec.md §4.3). The percentage
// binders of/on/off sit at PRODUCT: they bind like '*', tighter than
// '+'/'-', so "50 + 10% of 200" is 50 + (10% of 200).
const (
	_ int = iota
	LOWEST
	COMPARISON // > < >= <= == !=
	CONVERT    // in, to, as, per
	SUM        // + -
	PRODUCT    // * / mod, and the percentage binders of/on/off
	PREFIX     // unary -x
	POWER      // ^
	CALLIDX    // f(x), list[i]
)

var precedences = map[lexer.Kind]int{
	lexer.GT: COMPARISON, lexer.LT: COMPARISON, lexer.GE: COMPARISON,
	lexer.LE: COMPARISON, lexer.EQ: COMPARISON, lexer.NE: COMPARISON,
	lexer.PLUS: SUM, lexer.MINUS: SUM,
	lexer.STAR: PRODUCT, lexer.SLASH: PRODUCT,
	lexer.CARET:  POWER,
	lexer.DOTDOT: COMPARISON,
	lexer.LPAREN: CALLIDX, lexer.LBRACKET: CALLIDX,
}

var keywordPrecedence = map[string]int{
	"in": CONVERT, "to": CONVERT, "as": CONVERT, "per": CONVERT,
	"of": PRODUCT, "on": PRODUCT, "off": PRODUCT, "mod": PRODUCT,
	"where": COMPARISON,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(left ast.Expression) ast.Expression

// Parser parses one already-tokenized line.
type Parser struct {
	toks  []lexer.Token
	pos   int
	reg   *units.Registry
	known func(string) bool
	errs  []string

	prefixFns map[lexer.Kind]prefixParseFn
	infixFns  map[lexer.Kind]infixParseFn
}

// ParseLine classifies and parses a single notebook line.
func ParseLine(text string, lineNumber int, reg *units.Registry) ast.Line {
	return ParseLineInContext(text, lineNumber, reg, nil)
}

// ParseLineInContext is ParseLine with a known-name dictionary that gates
// phrase-identifier recognition inside expressions: "base plan + 2" only
// parses "base plan" as one identifier when known("base plan") reports
// true. At the left of '=' any word sequence may form a name, so the
// dictionary is not consulted there.
func ParseLineInContext(text string, lineNumber int, reg *units.Registry, known func(string) bool) ast.Line {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ast.PlainTextLine{Text: text, Line: lineNumber, Column: 1}
	}

	toks := lexer.Tokenize(text, lineNumber)
	if len(toks) == 1 { // just EOF: comment-only or whitespace-only line
		return &ast.PlainTextLine{Text: text, Line: lineNumber, Column: 1}
	}

	if sl, ok := trySolveLine(toks, lineNumber, reg); ok {
		return sl
	}

	// Classify on the first depth-0 '=>' (spec: the first one wins, and a
	// top-level '=' before it makes the line a combined assignment), then
	// on the first depth-0 '='.
	if arrow := findTopLevel(toks, lexer.ARROW); arrow >= 0 {
		head := toks[:arrow]
		if assign := findTopLevel(head, lexer.ASSIGN); assign >= 0 {
			name := identOrNil(head[:assign], lineNumber)
			if name == nil {
				return errLine(text, lineNumber, []string{"missing variable name"})
			}
			p := newParserInContext(head[assign+1:], reg, known)
			val := p.parseTopLevel()
			if val == nil || len(p.errs) > 0 {
				return errLine(text, lineNumber, p.errs)
			}
			return &ast.CombinedAssignmentLine{Name: name, Value: val, Raw: rawBetween(text, toks, assign+1, arrow), Line: lineNumber, Column: 1}
		}
		p := newParserInContext(head, reg, known)
		val := p.parseTopLevel()
		if val == nil || len(p.errs) > 0 {
			return errLine(text, lineNumber, p.errs)
		}
		return &ast.ExpressionLine{Value: val, Raw: rawBetween(text, toks, 0, arrow), Line: lineNumber, Column: 1}
	}

	if splitAt := findTopLevel(toks, lexer.ASSIGN); splitAt >= 0 {
		left := toks[:splitAt]
		if name := identOrNil(left, lineNumber); name != nil {
			p := newParserInContext(toks[splitAt+1:], reg, known)
			val := p.parseTopLevel()
			if val == nil || len(p.errs) > 0 {
				return errLine(text, lineNumber, p.errs)
			}
			return &ast.VariableAssignmentLine{Name: name, Value: val, Raw: rawBetween(text, toks, splitAt+1, -1), Line: lineNumber, Column: 1}
		}
		if fn, ok := tryFunctionHeader(left, lineNumber); ok {
			p := newParserInContext(toks[splitAt+1:], reg, known)
			body := p.parseExpression(LOWEST)
			if body == nil || len(p.errs) > 0 {
				return errLine(text, lineNumber, p.errs)
			}
			fn.Body = body
			return fn
		}
		lp := newParserInContext(left, reg, known)
		lhs := lp.parseExpression(LOWEST)
		rp := newParserInContext(toks[splitAt+1:], reg, known)
		rhs := rp.parseExpression(LOWEST)
		if lhs == nil || rhs == nil || len(lp.errs) > 0 || len(rp.errs) > 0 {
			return errLine(text, lineNumber, append(lp.errs, rp.errs...))
		}
		return &ast.EquationLine{Left: lhs, Right: rhs, Line: lineNumber, Column: 1}
	}

	p := newParserInContext(toks, reg, known)
	expr := p.parseExpression(LOWEST)
	if expr == nil || len(p.errs) > 0 {
		return plainFallback(text, lineNumber)
	}
	if p.cur().Kind != lexer.EOF {
		return plainFallback(text, lineNumber)
	}
	return &ast.ExpressionLine{Value: expr, Raw: strings.TrimSpace(text), Line: lineNumber, Column: 1}
}

// rawBetween slices the original line text between two token positions,
// preserving the author's spelling of an expression for re-rendering.
// to == -1 means "to end of line".
func rawBetween(text string, toks []lexer.Token, from, to int) string {
	runes := []rune(text)
	start := 0
	if from >= 0 && from < len(toks) {
		start = toks[from].Column
	}
	end := len(runes)
	if to >= 0 && to < len(toks) {
		end = toks[to].Column
	}
	if start > len(runes) {
		start = len(runes)
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < start {
		end = start
	}
	return strings.TrimSpace(string(runes[start:end]))
}

func plainFallback(text string, lineNumber int) ast.Line {
	return &ast.PlainTextLine{Text: text, Line: lineNumber, Column: 1}
}

func errLine(text string, lineNumber int, errs []string) ast.Line {
	msg := "parse error"
	if len(errs) > 0 {
		msg = strings.Join(errs, "; ")
	}
	return &ast.ErrorLine{Text: text, Message: msg, Line: lineNumber, Column: 1}
}

// identOrNil accepts a bare identifier or a phrase name: any sequence of
// word tokens starting with an identifier ("base plan", "rate 2026").
func identOrNil(toks []lexer.Token, lineNumber int) *ast.Identifier {
	if len(toks) == 0 || toks[0].Kind != lexer.IDENT {
		return nil
	}
	parts := []string{toks[0].Text}
	for _, t := range toks[1:] {
		if t.Kind != lexer.IDENT && t.Kind != lexer.NUMBER {
			return nil
		}
		parts = append(parts, t.Text)
	}
	name := strings.Join(parts, " ")
	return &ast.Identifier{Token: name, Value: name, Line: lineNumber, Column: toks[0].Column}
}

func tryFunctionHeader(toks []lexer.Token, lineNumber int) (*ast.FunctionDefinitionLine, bool) {
	if len(toks) < 3 || toks[0].Kind != lexer.IDENT || toks[1].Kind != lexer.LPAREN || toks[len(toks)-1].Kind != lexer.RPAREN {
		return nil, false
	}
	name := &ast.Identifier{Token: toks[0].Text, Value: toks[0].Text, Line: lineNumber, Column: toks[0].Column}
	var params []*ast.FunctionParam
	inner := toks[2 : len(toks)-1]
	if len(inner) == 0 {
		return &ast.FunctionDefinitionLine{Name: name, Params: nil, Line: lineNumber, Column: 1}, true
	}
	cur := 0
	for cur < len(inner) {
		if inner[cur].Kind != lexer.IDENT {
			return nil, false
		}
		param := &ast.FunctionParam{Name: &ast.Identifier{Token: inner[cur].Text, Value: inner[cur].Text, Line: lineNumber, Column: inner[cur].Column}}
		cur++
		// Optional default: "rate = 20%". The default expression runs to
		// the next comma.
		if cur < len(inner) && inner[cur].Kind == lexer.ASSIGN {
			cur++
			start := cur
			for cur < len(inner) && inner[cur].Kind != lexer.COMMA {
				cur++
			}
			dp := newParser(inner[start:cur], nil)
			def := dp.parseExpression(LOWEST)
			if def == nil || len(dp.errs) > 0 {
				return nil, false
			}
			param.Default = def
		}
		params = append(params, param)
		if cur < len(inner) {
			if inner[cur].Kind != lexer.COMMA {
				return nil, false
			}
			cur++
		}
	}
	return &ast.FunctionDefinitionLine{Name: name, Params: params, Line: lineNumber, Column: 1}, true
}

func trySolveLine(toks []lexer.Token, lineNumber int, reg *units.Registry) (*ast.SolveLine, bool) {
	if len(toks) < 3 || toks[0].Kind != lexer.IDENT || !strings.EqualFold(toks[0].Text, "solve") {
		return nil, false
	}
	rest := toks[1:]
	if strings.EqualFold(rest[0].Text, "for") {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0].Kind != lexer.IDENT {
		return nil, false
	}
	sl := &ast.SolveLine{Variable: rest[0].Text, Line: lineNumber, Column: 1}
	rest = rest[1:]
	// Strip the trailing '=>' and a 'where <var> > 0' root-selection tail.
	if n := len(rest); n > 0 && rest[n-1].Kind == lexer.EOF {
		rest = rest[:n-1]
	}
	if n := len(rest); n > 0 && rest[n-1].Kind == lexer.ARROW {
		rest = rest[:n-1]
	}
	for i, t := range rest {
		if t.Kind == lexer.IDENT && strings.EqualFold(t.Text, "where") {
			tail := rest[i+1:]
			if len(tail) == 3 && tail[0].Kind == lexer.IDENT && tail[0].Text == sl.Variable &&
				(tail[1].Kind == lexer.GT || tail[1].Kind == lexer.GE) &&
				tail[2].Kind == lexer.NUMBER && tail[2].Text == "0" {
				sl.Positive = true
				rest = rest[:i]
				break
			}
			return nil, false
		}
	}
	if len(rest) == 0 {
		return sl, true
	}
	// "in <equation>[, <assumption>...]"
	if rest[0].Kind != lexer.IDENT || !strings.EqualFold(rest[0].Text, "in") {
		return nil, false
	}
	rest = rest[1:]
	for _, part := range splitTopLevel(rest, lexer.COMMA) {
		assign := findTopLevel(part, lexer.ASSIGN)
		if assign < 0 {
			return nil, false
		}
		lp := newParser(part[:assign], reg)
		lhs := lp.parseExpression(LOWEST)
		rp := newParser(part[assign+1:], reg)
		rhs := rp.parseExpression(LOWEST)
		if lhs == nil || rhs == nil || len(lp.errs) > 0 || len(rp.errs) > 0 {
			return nil, false
		}
		eqn := &ast.EquationLine{Left: lhs, Right: rhs, Line: lineNumber, Column: 1}
		if sl.Equation == nil {
			sl.Equation = eqn
		} else {
			sl.Assumptions = append(sl.Assumptions, eqn)
		}
	}
	if sl.Equation == nil {
		return nil, false
	}
	return sl, true
}

// splitTopLevel splits a token slice on every depth-0 token of the given
// kind, dropping the separators.
func splitTopLevel(toks []lexer.Token, kind lexer.Kind) [][]lexer.Token {
	var out [][]lexer.Token
	depth, start := 0, 0
	for i, t := range toks {
		switch t.Kind {
		case lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		case kind:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}

// findTopLevel scans for the first depth-0 token of the given kind, so
// that a line's head (an identifier, or a function header) can be
// separated from its expression tail before any expression parsing starts.
func findTopLevel(toks []lexer.Token, kind lexer.Kind) int {
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		case kind:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func newParser(toks []lexer.Token, reg *units.Registry) *Parser {
	return newParserInContext(toks, reg, nil)
}

func newParserInContext(toks []lexer.Token, reg *units.Registry, known func(string) bool) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.EOF {
		toks = append(append([]lexer.Token{}, toks...), lexer.Token{Kind: lexer.EOF})
	}
	p := &Parser{toks: toks, reg: reg, known: known}
	p.prefixFns = map[lexer.Kind]prefixParseFn{
		lexer.NUMBER:   p.parseNumber,
		lexer.PERCENT:  p.parsePercentLiteral,
		lexer.STRING:   p.parseString,
		lexer.DATE:     p.parseDate,
		lexer.TIME:     p.parseTime,
		lexer.CURRENCY: p.parseCurrencyPrefix,
		lexer.IDENT:    p.parseIdentOrCall,
		lexer.REF:      p.parseRef,
		lexer.MINUS:    p.parseUnary,
		lexer.PLUS:     p.parseUnary,
		lexer.LPAREN:   p.parseGrouped,
		lexer.LBRACKET: p.parseList,
	}
	p.infixFns = map[lexer.Kind]infixParseFn{
		lexer.PLUS: p.parseBinary, lexer.MINUS: p.parseBinary,
		lexer.STAR: p.parseBinary, lexer.SLASH: p.parseBinary,
		lexer.CARET: p.parseBinary,
		lexer.GT:    p.parseComparison, lexer.LT: p.parseComparison,
		lexer.GE: p.parseComparison, lexer.LE: p.parseComparison,
		lexer.EQ: p.parseComparison, lexer.NE: p.parseComparison,
		lexer.LPAREN:   p.parseCall,
		lexer.LBRACKET: p.parseIndex,
		lexer.DOTDOT:   p.parseRange,
	}
	return p
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }
func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return lexer.Token{Kind: lexer.EOF}
}
func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

func (p *Parser) peekPrecedence() int {
	t := p.cur()
	if t.Kind == lexer.IDENT {
		if pr, ok := keywordPrecedence[strings.ToLower(t.Text)]; ok {
			return pr
		}
		return LOWEST
	}
	if pr, ok := precedences[t.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	fn, ok := p.prefixFns[p.cur().Kind]
	if !ok {
		p.errorf("unexpected token %s", p.cur())
		return nil
	}
	left := fn()
	if left == nil {
		return nil
	}

	for p.cur().Kind != lexer.EOF && precedence < p.peekPrecedence() {
		tok := p.cur()
		if tok.Kind == lexer.IDENT {
			switch strings.ToLower(tok.Text) {
			case "in", "to", "as":
				left = p.parseUnitConvert(left)
			case "where":
				left = p.parseWhere(left)
			case "of", "on", "off", "per", "mod":
				left = p.parseKeywordBinary(left)
			default:
				return left
			}
			if left == nil {
				return nil
			}
			continue
		}
		infix, ok := p.infixFns[tok.Kind]
		if !ok {
			break
		}
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

// parseTopLevel parses the full expression tail of an assignment or live
// result, folding a top-level comma sequence into a ListLiteral (spec.md
// §4.3: lists are comma-separated at the top level of an assignment right-
// hand side) and rejecting trailing tokens.
func (p *Parser) parseTopLevel() ast.Expression {
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	if p.cur().Kind != lexer.COMMA {
		if p.cur().Kind != lexer.EOF {
			p.errorf("unexpected token %s", p.cur())
			return nil
		}
		return first
	}
	items := []ast.Expression{first}
	for p.cur().Kind == lexer.COMMA {
		p.advance()
		it := p.parseExpression(LOWEST)
		if it == nil {
			return nil
		}
		items = append(items, it)
	}
	if p.cur().Kind != lexer.EOF {
		p.errorf("unexpected token %s", p.cur())
		return nil
	}
	return &ast.ListLiteral{Items: items, Line: first.Pos().Line, Column: first.Pos().Column}
}

func (p *Parser) parseNumber() ast.Expression {
	tok := p.advance()
	if tok.HasGrouping {
		// Thousands grouping is only legal in display values, never in
		// assignment/evaluation inputs.
		p.errorf("thousands separators are not permitted in input: %s", tok.Raw)
		return nil
	}
	v, mag := stripMagnitude(tok.Text)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errorf("invalid number %q", tok.Raw)
		return nil
	}
	f *= mag
	lit := &ast.NumberLiteral{Token: tok.Raw, Value: f, Line: tok.Line, Column: tok.Column}
	return p.maybeBindUnit(lit, f, tok)
}

func stripMagnitude(text string) (string, float64) {
	if len(text) == 0 {
		return text, 1
	}
	switch text[len(text)-1] {
	case 'K':
		return text[:len(text)-1], 1e3
	case 'M':
		return text[:len(text)-1], 1e6
	case 'B':
		return text[:len(text)-1], 1e9
	case 'T':
		return text[:len(text)-1], 1e12
	}
	return text, 1
}

// maybeBindUnit assembles a quantity/currency literal when the NUMBER
// token is followed, with or without a space, by an IDENT naming a unit or
// an ISO currency code, or by a CURRENCY glyph — the lexer leaves ISO
// codes and unit words as plain IDENT tokens for the parser to decide.
func (p *Parser) maybeBindUnit(lit *ast.NumberLiteral, f float64, numTok lexer.Token) ast.Expression {
	next := p.cur()
	// "N business days" forms a business-day duration quantity.
	if next.Kind == lexer.IDENT && strings.EqualFold(next.Text, "business") {
		after := p.peek()
		if after.Kind == lexer.IDENT && (strings.EqualFold(after.Text, "day") || strings.EqualFold(after.Text, "days")) {
			p.advance()
			p.advance()
			return &ast.QuantityLiteral{Value: f, UnitExpr: "business day", Line: lit.Line, Column: lit.Column}
		}
	}
	// "as" is the conversion keyword ("50 / 200 as %"), never the plural of
	// the ampere alias "a".
	if next.Kind == lexer.IDENT && !strings.EqualFold(next.Text, "as") {
		if p.reg != nil {
			if _, _, err := p.reg.Resolve(next.Text); err == nil {
				unitTok := p.advance()
				return &ast.QuantityLiteral{Value: f, UnitExpr: unitTok.Text, Line: lit.Line, Column: lit.Column}
			}
		}
	}
	if next.Kind == lexer.IDENT && isCurrencyCode(next.Text) {
		unitTok := p.advance()
		return &ast.CurrencyLiteral{Symbol: strings.ToUpper(unitTok.Text), Value: f, Line: lit.Line, Column: lit.Column}
	}
	// Trailing glyph form: "100$".
	if next.Kind == lexer.CURRENCY {
		sym := p.advance()
		return &ast.CurrencyLiteral{Symbol: sym.Text, Value: f, Line: lit.Line, Column: lit.Column}
	}
	// Implicit multiplication: "2 x" where x is neither keyword, unit, nor
	// currency code. Binds tighter than * so "2 x ^ 2" is 2*(x^2).
	if next.Kind == lexer.IDENT && !lexer.IsKeyword(strings.ToLower(next.Text)) {
		right := p.parseExpression(PRODUCT)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpression{Operator: "*", Left: lit, Right: right, Line: lit.Line, Column: lit.Column}
	}
	return lit
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			if c < 'a' || c > 'z' {
				return false
			}
		}
	}
	switch strings.ToUpper(s) {
	case "USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY", "INR", "BRL", "MXN":
		return true
	}
	return false
}

func (p *Parser) parseCurrencyPrefix() ast.Expression {
	sym := p.advance()
	if p.cur().Kind != lexer.NUMBER {
		p.errorf("expected number after currency symbol %q", sym.Text)
		return nil
	}
	numTok := p.advance()
	v, mag := stripMagnitude(numTok.Text)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errorf("invalid number %q", numTok.Raw)
		return nil
	}
	return &ast.CurrencyLiteral{Symbol: sym.Text, Value: f * mag, Line: sym.Line, Column: sym.Column}
}

func (p *Parser) parseString() ast.Expression {
	tok := p.advance()
	return &ast.StringLiteral{Value: tok.Text, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseDate() ast.Expression {
	tok := p.advance()
	return &ast.DateLiteral{Text: tok.Text, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseTime() ast.Expression {
	tok := p.advance()
	return &ast.TimeLiteral{Text: tok.Text, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseRef() ast.Expression {
	tok := p.advance()
	return &ast.RefLiteral{Text: tok.Text, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseIdentOrCall() ast.Expression {
	tok := p.advance()
	if strings.EqualFold(tok.Text, "today") || strings.EqualFold(tok.Text, "tomorrow") || strings.EqualFold(tok.Text, "yesterday") {
		return &ast.DateLiteral{Text: strings.ToLower(tok.Text), Line: tok.Line, Column: tok.Column}
	}
	// ISO prefix form: "USD 12".
	if isCurrencyCode(tok.Text) && p.cur().Kind == lexer.NUMBER && !p.cur().HasGrouping {
		numTok := p.advance()
		v, mag := stripMagnitude(numTok.Text)
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &ast.CurrencyLiteral{Symbol: strings.ToUpper(tok.Text), Value: f * mag, Line: tok.Line, Column: tok.Column}
		}
		p.errorf("invalid number %q", numTok.Raw)
		return nil
	}
	name := tok.Text
	// Greedy longest-match phrase recognition, gated by the known-name
	// dictionary so keywords keep their operator meaning.
	if p.known != nil {
		phrase := name
		end := p.pos
		for i := p.pos; i < len(p.toks) && p.toks[i].Kind == lexer.IDENT; i++ {
			phrase += " " + p.toks[i].Text
			if p.known(phrase) {
				name = phrase
				end = i + 1
			}
		}
		p.pos = end
	}
	return &ast.Identifier{Token: name, Value: name, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.advance()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.UnaryExpression{Operator: tok.Text, Right: right, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseGrouped() ast.Expression {
	tok := p.advance() // '('
	inner := p.parseExpression(LOWEST)
	if inner == nil {
		return nil
	}
	if p.cur().Kind != lexer.RPAREN {
		p.errorf("expected ')' got %s", p.cur())
		return nil
	}
	p.advance()
	return &ast.GroupedExpression{Inner: inner, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseList() ast.Expression {
	tok := p.advance() // '['
	var items []ast.Expression
	if p.cur().Kind != lexer.RBRACKET {
		items = append(items, p.parseExpression(LOWEST))
		for p.cur().Kind == lexer.COMMA {
			p.advance()
			items = append(items, p.parseExpression(LOWEST))
		}
	}
	if p.cur().Kind != lexer.RBRACKET {
		p.errorf("expected ']' got %s", p.cur())
		return nil
	}
	p.advance()
	return &ast.ListLiteral{Items: items, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := precedences[tok.Kind]
	if tok.Kind == lexer.CARET {
		prec-- // right-associative
	}
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpression{Operator: tok.Text, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseComparison(left ast.Expression) ast.Expression {
	tok := p.advance()
	right := p.parseExpression(COMPARISON)
	if right == nil {
		return nil
	}
	return &ast.ComparisonExpression{Operator: tok.Text, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parsePercentLiteral() ast.Expression {
	tok := p.advance()
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		p.errorf("invalid percentage %q", tok.Raw)
		return nil
	}
	return &ast.PercentageLiteral{Token: tok.Raw, Value: f, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseKeywordBinary(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := keywordPrecedence[strings.ToLower(tok.Text)]
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpression{Operator: strings.ToLower(tok.Text), Left: left, Right: right, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseUnitConvert(left ast.Expression) ast.Expression {
	tok := p.advance() // in/to/as

	// "as %" re-expresses a ratio as a percentage.
	if p.cur().Kind == lexer.PERCENTSIGN {
		p.advance()
		return &ast.UnitConvertExpression{Source: left, Target: "%", Line: tok.Line, Column: tok.Column}
	}
	// "to $" / "to USD" annotates with a currency.
	if p.cur().Kind == lexer.CURRENCY {
		sym := p.advance()
		return &ast.UnitConvertExpression{Source: left, Target: sym.Text, Line: tok.Line, Column: tok.Column}
	}
	if p.cur().Kind != lexer.IDENT {
		p.errorf("expected unit/currency name after %q", tok.Text)
		return nil
	}
	// The target may be a composite unit expression: consume the symbol
	// run including '/', '*', '^' and integer exponents ("m/s^2", "km/h").
	var sb strings.Builder
	sb.WriteString(p.advance().Text)
	for {
		switch p.cur().Kind {
		case lexer.SLASH, lexer.STAR, lexer.CARET:
			op := p.advance().Text
			next := p.cur()
			if next.Kind != lexer.IDENT && next.Kind != lexer.NUMBER {
				p.errorf("expected unit symbol after %q", op)
				return nil
			}
			sb.WriteString(op)
			sb.WriteString(p.advance().Text)
			continue
		case lexer.IDENT:
			// Multi-word targets like "business days" or alias phrases
			// separated by spaces, but never a trailing keyword ("step").
			if lexer.IsKeyword(strings.ToLower(p.cur().Text)) {
				return &ast.UnitConvertExpression{Source: left, Target: sb.String(), Line: tok.Line, Column: tok.Column}
			}
			sb.WriteString(" ")
			sb.WriteString(p.advance().Text)
			continue
		}
		return &ast.UnitConvertExpression{Source: left, Target: sb.String(), Line: tok.Line, Column: tok.Column}
	}
}

func (p *Parser) parseWhere(left ast.Expression) ast.Expression {
	tok := p.advance() // where
	if strings.EqualFold(p.cur().Text, "between") {
		p.advance()
		lo := p.parseExpression(COMPARISON)
		if !strings.EqualFold(p.cur().Text, "and") {
			p.errorf("expected 'and' in between-filter")
			return nil
		}
		p.advance()
		hi := p.parseExpression(COMPARISON)
		return &ast.WhereExpression{Source: left, Predicate: &ast.ComparisonExpression{Operator: "between", Left: left, Right: lo, Upper: hi, Line: tok.Line}, Line: tok.Line, Column: tok.Column}
	}
	// Comparator-first predicate: "costs where > $10". The left side of
	// the comparison is each list element in turn, so it stays nil here.
	switch p.cur().Kind {
	case lexer.GT, lexer.LT, lexer.GE, lexer.LE, lexer.EQ, lexer.NE:
		op := p.advance()
		rhs := p.parseExpression(COMPARISON)
		if rhs == nil {
			return nil
		}
		return &ast.WhereExpression{
			Source:    left,
			Predicate: &ast.ComparisonExpression{Operator: op.Text, Right: rhs, Line: tok.Line, Column: tok.Column},
			Line:      tok.Line, Column: tok.Column,
		}
	}
	pred := p.parseExpression(LOWEST)
	if pred == nil {
		return nil
	}
	return &ast.WhereExpression{Source: left, Predicate: pred, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseCall(left ast.Expression) ast.Expression {
	id, ok := left.(*ast.Identifier)
	if !ok {
		// "2(3+4)" or "(a)(b)": juxtaposition against a group is implicit
		// multiplication, not a call.
		grp := p.parseGrouped()
		if grp == nil {
			return nil
		}
		return &ast.BinaryExpression{Operator: "*", Left: left, Right: grp, Line: left.Pos().Line, Column: left.Pos().Column}
	}
	tok := p.advance() // '('
	var args []ast.Expression
	if p.cur().Kind != lexer.RPAREN {
		args = append(args, p.parseCallArg())
		for p.cur().Kind == lexer.COMMA {
			p.advance()
			args = append(args, p.parseCallArg())
		}
	}
	if p.cur().Kind != lexer.RPAREN {
		p.errorf("expected ')' in call to %s", id.Value)
		return nil
	}
	p.advance()
	return &ast.CallExpression{Callee: id, Args: args, Line: tok.Line, Column: tok.Column}
}

// parseCallArg parses one call argument, recognizing the named form
// "name: expr" (spec.md §4.9).
func (p *Parser) parseCallArg() ast.Expression {
	if p.cur().Kind == lexer.IDENT && p.peek().Kind == lexer.COLON {
		nameTok := p.advance()
		p.advance() // ':'
		val := p.parseExpression(LOWEST)
		if val == nil {
			return nil
		}
		return &ast.NamedArgument{
			Name:  &ast.Identifier{Token: nameTok.Text, Value: nameTok.Text, Line: nameTok.Line, Column: nameTok.Column},
			Value: val, Line: nameTok.Line, Column: nameTok.Column,
		}
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	tok := p.advance() // '['
	idx := p.parseExpression(LOWEST)
	if p.cur().Kind != lexer.RBRACKET {
		p.errorf("expected ']' after index")
		return nil
	}
	p.advance()
	return &ast.IndexExpression{List: left, Index: idx, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseRange(left ast.Expression) ast.Expression {
	tok := p.advance() // '..'
	end := p.parseExpression(SUM)
	if end == nil {
		return nil
	}
	r := &ast.RangeExpression{Start: left, End: end, Line: tok.Line, Column: tok.Column}
	if strings.EqualFold(p.cur().Text, "step") {
		p.advance()
		r.Step = p.parseExpression(SUM)
	}
	return r
}
