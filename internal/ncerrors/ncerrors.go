// Package ncerrors is the message catalog and typed-error type for the
// engine, grounded on the teacher repo's internal/interp/errors catalog:
// format-string constants grouped by concern, plus a single typed error
// that carries a Kind for callers that need to branch on failure class
// (spec.md §7) without string-matching messages.
package ncerrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error classes enumerated in spec.md §7.
type Kind string

const (
	KindSyntax                  Kind = "Syntax"
	KindGroupingInInput         Kind = "GroupingInInput"
	KindIncompatibleUnits       Kind = "IncompatibleUnits"
	KindIncompatibleCurrency    Kind = "IncompatibleCurrency"
	KindIncompatibleListDims    Kind = "IncompatibleListDimensions"
	KindUnknownUnit             Kind = "UnknownUnit"
	KindUnknownFunction         Kind = "UnknownFunction"
	KindUnknownNamedArgument    Kind = "UnknownNamedArgument"
	KindMissingArgument         Kind = "MissingArgument"
	KindCircularUnitAlias       Kind = "CircularUnitAlias"
	KindCircularDependency      Kind = "CircularDependency"
	KindUndefinedVariable       Kind = "UndefinedVariable"
	KindListLengthMismatch      Kind = "ListLengthMismatch"
	KindListTooLong             Kind = "ListTooLong"
	KindNestedListUnsupported   Kind = "NestedListUnsupported"
	KindDivisionByZero          Kind = "DivisionByZero"
	KindOverflow                Kind = "Overflow"
	KindInvalidDateLiteral      Kind = "InvalidDateLiteral"
	KindInvalidDurationStep     Kind = "InvalidDurationStep"
	KindNegativeRangeStep       Kind = "NegativeRangeStep"
	KindNonMonotonicSlice       Kind = "NonMonotonicSlice"
	KindNoEquation              Kind = "NoEquation"
	KindMultipleEquationsTarget Kind = "MultipleEquationsContainTarget"
	KindNonNumericExponent      Kind = "NonNumericExponent"
	KindVariableOnBothSides     Kind = "VariableOnBothSides"
	KindRateUnavailable         Kind = "RateUnavailable"
)

// Error is the engine's single error type: a Kind plus a formatted message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error of the given kind by formatting msg with args.
func New(kind Kind, msg string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(msg, args...)}
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ============================================================================
// Message catalog, grouped by concern (teacher's catalog.go convention).
// ============================================================================

const (
	MsgUnexpectedToken       = "unexpected token: %s"
	MsgMissingExpression     = "missing expression"
	MsgInvalidRangeExpr      = "invalid range expression"
	MsgUnsupportedWherePred  = "unsupported where predicate: %s"
	MsgMissingVariableName   = "missing variable name"
	MsgGroupingInInput       = "thousands separators are not permitted in input: %s"
	MsgIncompatibleUnits     = "incompatible units: %s and %s"
	MsgAbsoluteTempSum       = "cannot add two absolute temperatures: %s and %s"
	MsgIncompatibleCurrency  = "incompatible currencies: %s and %s"
	MsgIncompatibleListDims  = "incompatible list dimensions: %s and %s"
	MsgUnknownUnit           = "unknown unit: %s"
	MsgUnknownFunction       = "unknown function: %s"
	MsgUnknownNamedArgument  = "unknown named argument: %s"
	MsgMissingArgument       = "missing required argument: %s"
	MsgCircularUnitAlias     = "circular unit alias: %s"
	MsgCircularDependency    = "circular dependency: %s"
	MsgUndefinedVariable     = "undefined variable: %s"
	MsgListLengthMismatch    = "list length mismatch: %d vs %d"
	MsgListTooLong           = "list exceeds maximum length of %d"
	MsgNestedListUnsupported = "nested lists are not supported"
	MsgDivisionByZero        = "division by zero"
	MsgOverflow              = "arithmetic overflow"
	MsgInvalidDateLiteral    = "invalid date literal: %s"
	MsgInvalidDurationStep   = "invalid duration step: %s"
	MsgNegativeRangeStep     = "range step sign does not match range direction"
	MsgNonMonotonicSlice     = "slice range is not monotonic"
	MsgNoEquation            = "no equation found for %s"
	MsgMultipleEquationsTgt  = "multiple equations contain %s"
	MsgNonNumericExponent    = "exponent must be numeric to isolate %s"
	MsgVariableOnBothSides   = "%s appears on both sides of the equation"
	MsgRateUnavailable       = "exchange rate unavailable for %s"
	MsgIndexOutOfRange       = "index out of range: %d"
	MsgIndexZero             = "list indices are 1-based; 0 is not a valid index"
	MsgEmptyAverage          = "avg expects a list"
	MsgTimePlusTime          = "time + time is not defined"
	MsgSqrtNegative          = "square root of a negative number"
	MsgModByZero             = "modulo by zero"
	MsgRecursionLimit        = "recursion depth limit exceeded"
)
