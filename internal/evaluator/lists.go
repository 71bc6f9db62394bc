package evaluator

import (
	"math"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/nmaxcom/smartpad-go/internal/ast"
	"github.com/nmaxcom/smartpad-go/internal/ncerrors"
	"github.com/nmaxcom/smartpad-go/internal/quantity"
	"github.com/nmaxcom/smartpad-go/internal/value"
)

// evalListLiteral evaluates list items with the length, nesting, and
// dimension-family guards of spec.md §4.8.
func (c *Context) evalListLiteral(n *ast.ListLiteral) (value.Value, error) {
	if len(n.Items) > c.ListMaxLength {
		return nil, ncerrors.New(ncerrors.KindListTooLong, ncerrors.MsgListTooLong, c.ListMaxLength)
	}
	items := make([]value.Value, len(n.Items))
	for i, expr := range n.Items {
		v, err := c.Eval(expr)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(value.List); ok {
			return nil, ncerrors.New(ncerrors.KindNestedListUnsupported, ncerrors.MsgNestedListUnsupported)
		}
		items[i] = v
	}
	if err := c.checkListFamily(items); err != nil {
		return nil, err
	}
	return value.List{Items: items}, nil
}

// checkListFamily verifies the numeric items of a list share one
// dimension/category family (spec.md §3.4: List invariant).
func (c *Context) checkListFamily(items []value.Value) error {
	var first value.Value
	for _, item := range items {
		if !isNumericFamily(item) {
			continue
		}
		if first == nil {
			first = item
			continue
		}
		if _, err := c.compare(first, item); err != nil {
			return ncerrors.New(ncerrors.KindIncompatibleListDims, ncerrors.MsgIncompatibleListDims, string(first.Kind()), string(item.Kind()))
		}
	}
	return nil
}

func isNumericFamily(v value.Value) bool {
	switch v.(type) {
	case value.Number, value.Percentage, value.Currency, value.UnitValue, value.Duration:
		return true
	}
	return false
}

// evalRange expands "a..b [step s]" (spec.md §4.7): integer ranges with a
// direction-matched step, and datetime ranges that require a duration step.
func (c *Context) evalRange(n *ast.RangeExpression) (value.Value, error) {
	start, err := c.Eval(n.Start)
	if err != nil {
		return nil, err
	}
	end, err := c.Eval(n.End)
	if err != nil {
		return nil, err
	}

	if sd, ok := start.(value.Date); ok {
		ed, ok := end.(value.Date)
		if !ok {
			return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgInvalidRangeExpr)
		}
		return c.dateRange(sd, ed, n.Step)
	}

	sn, sok := start.(value.Number)
	en, eok := end.(value.Number)
	if !sok || !eok || sn.V != math.Trunc(sn.V) || en.V != math.Trunc(en.V) {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgInvalidRangeExpr)
	}

	step := 1.0
	if en.V < sn.V {
		step = -1
	}
	if n.Step != nil {
		sv, err := c.Eval(n.Step)
		if err != nil {
			return nil, err
		}
		stepNum, ok := sv.(value.Number)
		if !ok || stepNum.V != math.Trunc(stepNum.V) || stepNum.V == 0 {
			return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgInvalidRangeExpr)
		}
		step = stepNum.V
	}
	if (en.V-sn.V)*step < 0 {
		return nil, ncerrors.New(ncerrors.KindNegativeRangeStep, ncerrors.MsgNegativeRangeStep)
	}

	size := int(math.Abs(en.V-sn.V)/math.Abs(step)) + 1
	if size > c.RangeMaxSize {
		return nil, ncerrors.New(ncerrors.KindListTooLong, ncerrors.MsgListTooLong, c.RangeMaxSize)
	}
	items := make([]value.Value, 0, size)
	for v := sn.V; (step > 0 && v <= en.V) || (step < 0 && v >= en.V); v += step {
		items = append(items, value.Number{V: v})
	}
	return value.List{Items: items}, nil
}

// dateRange expands a datetime range; the step must be a duration
// (spec.md §4.7: "Datetime ranges require a duration step").
func (c *Context) dateRange(start, end value.Date, stepExpr ast.Expression) (value.Value, error) {
	if stepExpr == nil {
		return nil, ncerrors.New(ncerrors.KindInvalidDurationStep, ncerrors.MsgInvalidDurationStep, "missing")
	}
	sv, err := c.Eval(stepExpr)
	if err != nil {
		return nil, err
	}
	step, ok := sv.(value.Duration)
	if !ok || step.Seconds == 0 {
		return nil, ncerrors.New(ncerrors.KindInvalidDurationStep, ncerrors.MsgInvalidDurationStep, sv.String())
	}

	forward := dateLE(start, end)
	if forward != (step.Seconds > 0) {
		return nil, ncerrors.New(ncerrors.KindNegativeRangeStep, ncerrors.MsgNegativeRangeStep)
	}

	var items []value.Value
	cur := start
	for i := 0; ; i++ {
		if i > c.RangeMaxSize {
			return nil, ncerrors.New(ncerrors.KindListTooLong, ncerrors.MsgListTooLong, c.RangeMaxSize)
		}
		if forward && !dateLE(cur, end) {
			break
		}
		if !forward && !dateLE(end, cur) {
			break
		}
		items = append(items, cur)
		cur = cur.AddDuration(step)
		if step.Seconds != math.Trunc(step.Seconds/86400)*86400 {
			// Sub-day steps carry the time of day forward.
			cur = addSeconds(items[len(items)-1].(value.Date), step.Seconds)
		}
	}
	return value.List{Items: items}, nil
}

func addSeconds(d value.Date, seconds float64) value.Date {
	total := float64(d.Hour*3600+d.Min*60+d.Sec) + seconds
	days := math.Floor(total / 86400)
	rem := total - days*86400
	out := d.AddDuration(value.Duration{Seconds: days * 86400, AuthoredUnit: "day"})
	sec := int(rem)
	out.HasTime = true
	out.Hour, out.Min, out.Sec = sec/3600, (sec%3600)/60, sec%60
	return out
}

func dateLE(a, b value.Date) bool {
	as := [6]int{a.Year, a.Month, a.Day, a.Hour, a.Min, a.Sec}
	bs := [6]int{b.Year, b.Month, b.Day, b.Hour, b.Min, b.Sec}
	for i := range as {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return true
}

// evalIndex implements 1-based indexing, negative-from-end, and inclusive
// slicing with over-bounds clamping (spec.md §4.8).
func (c *Context) evalIndex(n *ast.IndexExpression) (value.Value, error) {
	src, err := c.Eval(n.List)
	if err != nil {
		return nil, err
	}
	list, ok := src.(value.List)
	if !ok {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnexpectedToken, "[")
	}

	if rng, isSlice := n.Index.(*ast.RangeExpression); isSlice {
		return c.evalSlice(list, rng)
	}

	iv, err := c.Eval(n.Index)
	if err != nil {
		return nil, err
	}
	idxNum, ok := iv.(value.Number)
	if !ok || idxNum.V != math.Trunc(idxNum.V) {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgInvalidRangeExpr)
	}
	idx := int(idxNum.V)
	if idx == 0 {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgIndexZero)
	}
	if idx < 0 {
		idx = len(list.Items) + idx + 1
	}
	if idx < 1 || idx > len(list.Items) {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgIndexOutOfRange, int(idxNum.V))
	}
	return list.Items[idx-1], nil
}

func (c *Context) evalSlice(list value.List, rng *ast.RangeExpression) (value.Value, error) {
	lo, err := c.sliceBound(rng.Start, len(list.Items))
	if err != nil {
		return nil, err
	}
	hi, err := c.sliceBound(rng.End, len(list.Items))
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, ncerrors.New(ncerrors.KindNonMonotonicSlice, ncerrors.MsgNonMonotonicSlice)
	}
	// Over-bounds clamp.
	if lo < 1 {
		lo = 1
	}
	if hi > len(list.Items) {
		hi = len(list.Items)
	}
	if lo > len(list.Items) {
		return value.List{}, nil
	}
	return value.List{Items: append([]value.Value{}, list.Items[lo-1:hi]...)}, nil
}

func (c *Context) sliceBound(e ast.Expression, n int) (int, error) {
	v, err := c.Eval(e)
	if err != nil {
		return 0, err
	}
	num, ok := v.(value.Number)
	if !ok || num.V != math.Trunc(num.V) {
		return 0, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgInvalidRangeExpr)
	}
	idx := int(num.V)
	if idx < 0 {
		idx = n + idx + 1
	}
	return idx, nil
}

// evalWhere filters a list element-wise by a comparator predicate
// (spec.md §4.8), including the inclusive "between a and b" form.
func (c *Context) evalWhere(n *ast.WhereExpression) (value.Value, error) {
	src, err := c.Eval(n.Source)
	if err != nil {
		return nil, err
	}
	list, ok := src.(value.List)
	if !ok {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnsupportedWherePred, n.Predicate.String())
	}
	pred, ok := n.Predicate.(*ast.ComparisonExpression)
	if !ok {
		return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnsupportedWherePred, n.Predicate.String())
	}

	if pred.Operator == "between" {
		lo, err := c.Eval(pred.Right)
		if err != nil {
			return nil, err
		}
		hi, err := c.Eval(pred.Upper)
		if err != nil {
			return nil, err
		}
		return c.filter(list, func(item value.Value) (bool, error) {
			a, err := c.compare(item, lo)
			if err != nil {
				return false, err
			}
			b, err := c.compare(item, hi)
			if err != nil {
				return false, err
			}
			return a >= 0 && b <= 0, nil
		})
	}

	rhs, err := c.Eval(pred.Right)
	if err != nil {
		return nil, err
	}
	return c.filter(list, func(item value.Value) (bool, error) {
		cmp, err := c.compare(item, rhs)
		if err != nil {
			return false, err
		}
		switch pred.Operator {
		case ">":
			return cmp > 0, nil
		case "<":
			return cmp < 0, nil
		case ">=":
			return cmp >= 0, nil
		case "<=":
			return cmp <= 0, nil
		case "==":
			return cmp == 0, nil
		case "!=":
			return cmp != 0, nil
		}
		return false, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgUnsupportedWherePred, pred.Operator)
	})
}

func (c *Context) filter(list value.List, keep func(value.Value) (bool, error)) (value.Value, error) {
	var out []value.Value
	for _, item := range list.Items {
		ok, err := keep(item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return value.List{Items: out}, nil
}

// aggregators is the set of built-in list reducers (spec.md §4.8).
var aggregators = map[string]bool{
	"sum": true, "total": true, "count": true, "min": true, "max": true,
	"mean": true, "avg": true, "median": true, "stddev": true,
	"range": true, "sort": true,
}

// evalAggregate applies one aggregator to its evaluated arguments.
func (c *Context) evalAggregate(name string, n *ast.CallExpression) (value.Value, error) {
	if len(n.Args) == 0 {
		return nil, ncerrors.New(ncerrors.KindMissingArgument, ncerrors.MsgMissingArgument, name)
	}
	first, err := c.Eval(n.Args[0])
	if err != nil {
		return nil, err
	}
	list, isList := first.(value.List)
	if !isList {
		// Multiple scalar args aggregate as a list: sum(1, 2, 3).
		if len(n.Args) > 1 {
			items := []value.Value{first}
			for _, arg := range n.Args[1:] {
				v, err := c.Eval(arg)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			list = value.List{Items: items}
		} else {
			if name == "avg" || name == "mean" || name == "median" {
				return nil, ncerrors.New(ncerrors.KindSyntax, ncerrors.MsgEmptyAverage)
			}
			list = value.List{Items: []value.Value{first}}
		}
	}

	switch name {
	case "count":
		return value.Number{V: float64(len(list.Items))}, nil
	case "sum":
		return c.sumList(list, false)
	case "total":
		return c.sumList(list, true)
	case "min":
		return c.extremum(list, -1)
	case "max":
		return c.extremum(list, 1)
	case "avg", "mean":
		if len(list.Items) == 0 {
			return value.Number{V: 0}, nil
		}
		total, err := c.sumList(list, false)
		if err != nil {
			return nil, err
		}
		return c.Law.Div(total, value.Number{V: float64(len(list.Items))})
	case "median":
		return c.median(list)
	case "stddev":
		return c.stddev(list)
	case "range":
		lo, err := c.extremum(list, -1)
		if err != nil {
			return nil, err
		}
		hi, err := c.extremum(list, 1)
		if err != nil {
			return nil, err
		}
		return c.Law.Sub(hi, lo)
	case "sort":
		desc := false
		if len(n.Args) == 2 {
			if id, ok := n.Args[1].(*ast.Identifier); ok && strings.EqualFold(id.Value, "desc") {
				desc = true
			} else {
				return nil, ncerrors.New(ncerrors.KindUnknownNamedArgument, ncerrors.MsgUnknownNamedArgument, n.Args[1].String())
			}
		}
		return c.sortList(list, desc)
	}
	return nil, ncerrors.New(ncerrors.KindUnknownFunction, ncerrors.MsgUnknownFunction, name)
}

// sumList adds items left to right, normalizing to the first item's unit.
// In total mode, non-numeric items (opaque strings) are skipped.
func (c *Context) sumList(list value.List, skipNonNumeric bool) (value.Value, error) {
	var acc value.Value
	for _, item := range list.Items {
		if !isNumericFamily(item) {
			if skipNonNumeric {
				continue
			}
			return nil, ncerrors.New(ncerrors.KindIncompatibleListDims, ncerrors.MsgIncompatibleListDims, "numeric", string(item.Kind()))
		}
		if acc == nil {
			acc = item
			continue
		}
		var err error
		acc, err = c.applyBinary("+", acc, item)
		if err != nil {
			return nil, err
		}
	}
	if acc == nil {
		return value.Number{V: 0}, nil
	}
	return acc, nil
}

func (c *Context) extremum(list value.List, sign int) (value.Value, error) {
	if len(list.Items) == 0 {
		return value.Number{V: 0}, nil
	}
	best := list.Items[0]
	for _, item := range list.Items[1:] {
		cmp, err := c.compare(item, best)
		if err != nil {
			return nil, err
		}
		if cmp*sign > 0 {
			best = item
		}
	}
	return best, nil
}

func (c *Context) median(list value.List) (value.Value, error) {
	if len(list.Items) == 0 {
		return value.Number{V: 0}, nil
	}
	sorted, err := c.sortList(list, false)
	if err != nil {
		return nil, err
	}
	items := sorted.(value.List).Items
	mid := len(items) / 2
	if len(items)%2 == 1 {
		return items[mid], nil
	}
	pair, err := c.applyBinary("+", items[mid-1], items[mid])
	if err != nil {
		return nil, err
	}
	return c.Law.Div(pair, value.Number{V: 2})
}

// stddev computes the population standard deviation over the items'
// scalar magnitudes, preserving the first item's variant.
func (c *Context) stddev(list value.List) (value.Value, error) {
	if len(list.Items) == 0 {
		return value.Number{V: 0}, nil
	}
	nums := make([]float64, 0, len(list.Items))
	for _, item := range list.Items {
		num, ok := item.(value.Numeric)
		if !ok {
			return nil, ncerrors.New(ncerrors.KindIncompatibleListDims, ncerrors.MsgIncompatibleListDims, "numeric", string(item.Kind()))
		}
		nums = append(nums, num.Numeric())
	}
	mean := 0.0
	for _, v := range nums {
		mean += v
	}
	mean /= float64(len(nums))
	variance := 0.0
	for _, v := range nums {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(nums))
	sd := math.Sqrt(variance)

	switch first := list.Items[0].(type) {
	case value.Currency:
		return value.Currency{Symbol: first.Symbol, V: sd}, nil
	case value.UnitValue:
		return value.UnitValue{Q: quantity.Quantity{Value: sd, Unit: first.Q.Unit}}, nil
	default:
		return value.Number{V: sd}, nil
	}
}

// sortList orders by canonical magnitude, tie-breaking on the natural
// ordering of display strings so equal magnitudes sort stably and
// human-readably.
func (c *Context) sortList(list value.List, desc bool) (value.Value, error) {
	items := append([]value.Value{}, list.Items...)
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		cmp, err := c.compare(items[i], items[j])
		if err != nil {
			if sortErr == nil {
				sortErr = err
			}
			return false
		}
		if cmp == 0 {
			return natural.Less(items[i].String(), items[j].String())
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return value.List{Items: items}, nil
}
