// Package query builds structured search-query expressions: boolean, range,
// term, phrase, prefix and proximity clauses rendered in the parenthesised
// prefix syntax understood by the search service.
//
//	import q "github.com/jfrconley/cs-query-builder/query"
//
//	filter := q.And(nil,
//	    q.TermStr("status", q.Ptr("PENDING"), nil),
//	    q.Prefix("title", q.Ptr("star"), q.NewOptions(q.Num("boost", 2))),
//	    q.Not(nil, q.TermNum("is_deleted", q.Float(1), nil)),
//	)
//	// (and  (term field=status  'PENDING') (prefix field=title boost=2 'star') (not  (term field=is_deleted  1)))
//
// Every builder returns an Expression. A builder whose optional input is
// missing returns the absent Expression instead of a degenerate clause, and
// And/Or skip absent sub-expressions, so optional filters compose without
// nil checks at the call site.
package query

import (
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/jfrconley/cs-query-builder/internal"
)

// -------------------------------------------------------------------
// Expression – a formatted clause or the absent marker.
// -------------------------------------------------------------------

// Expression is an immutable query fragment. The zero value is absent.
type Expression struct {
	text    string
	present bool
}

// Absent is the "no clause" Expression.
var Absent Expression

// MatchAll matches every document. It is never absent.
var MatchAll = Raw("(matchall)")

// Raw wraps an already formatted fragment.
func Raw(s string) Expression { return Expression{text: s, present: true} }

// IsAbsent reports whether e carries no clause.
func (e Expression) IsAbsent() bool { return !e.present }

// String returns the clause text, or "" when e is absent.
func (e Expression) String() string { return e.text }

// Operator is the clause kind token embedded in formatted output.
type Operator string

const (
	OpAnd    Operator = "and"
	OpOr     Operator = "or"
	OpNot    Operator = "not"
	OpRange  Operator = "range"
	OpTerm   Operator = "term"
	OpPrefix Operator = "prefix"
	OpPhrase Operator = "phrase"
	OpNear   Operator = "near"
)

// ------------
// Combinators
// ------------

// And joins the present sub-expressions with an "and" clause.
// It is absent when every sub-expression is absent, including when none
// are given.
func And(opts Options, exprs ...Expression) Expression { return AndAll(opts, exprs) }

// AndAll is And over a slice the caller already holds.
func AndAll(opts Options, exprs []Expression) Expression { return combine(OpAnd, opts, exprs) }

// Or joins the present sub-expressions with an "or" clause.
func Or(opts Options, exprs ...Expression) Expression { return OrAll(opts, exprs) }

// OrAll is Or over a slice the caller already holds.
func OrAll(opts Options, exprs []Expression) Expression { return combine(OpOr, opts, exprs) }

// Not negates e. It is absent when e is absent.
func Not(opts Options, e Expression) Expression {
	if e.IsAbsent() {
		return Absent
	}
	return format(OpNot, "", e.text, opts)
}

func combine(op Operator, opts Options, exprs []Expression) Expression {
	if allAbsent(exprs) {
		return Absent
	}
	present := internal.Filter(exprs, func(e Expression) bool { return e.present })
	return format(op, "", strings.Join(internal.Map(present, Expression.String), " "), opts)
}

func allAbsent(exprs []Expression) bool {
	return internal.All(exprs, Expression.IsAbsent)
}

// ------------
// Range
// ------------

// RangeNum matches field values between the numeric bounds. A nil bound
// leaves that side open: [lower,} or {,upper]. With both bounds nil the
// result is absent. An empty field is a caller error.
func RangeNum(field string, lower, upper *float64, opts Options) (Expression, error) {
	if field == "" {
		return Absent, &ArgumentError{Op: "RangeNum", Arg: "field"}
	}
	return rangeOf(field, lower, upper, formatNumber, opts), nil
}

// RangeStr is RangeNum over string bounds; each bound is single-quoted.
func RangeStr(field string, lower, upper *string, opts Options) (Expression, error) {
	if field == "" {
		return Absent, &ArgumentError{Op: "RangeStr", Arg: "field"}
	}
	return rangeOf(field, lower, upper, quote, opts), nil
}

func rangeOf[T any](field string, lower, upper *T, render func(T) string, opts Options) Expression {
	var bounds string
	switch {
	case lower == nil && upper == nil:
		return Absent
	case lower == nil:
		bounds = "{," + render(*upper) + "]"
	case upper == nil:
		bounds = "[" + render(*lower) + ",}"
	default:
		bounds = "[" + render(*lower) + "," + render(*upper) + "]"
	}
	return format(OpRange, field, bounds, opts)
}

// ------------
// Leaf clauses
// ------------

// TermNum matches field == v. Absent when v is nil.
func TermNum(field string, v *float64, opts Options) Expression {
	if v == nil {
		return Absent
	}
	return format(OpTerm, field, formatNumber(*v), opts)
}

// TermStr matches field == 'v'. Absent when v is nil.
func TermStr(field string, v *string, opts Options) Expression {
	if v == nil {
		return Absent
	}
	return format(OpTerm, field, quote(*v), opts)
}

// Phrase matches the exact phrase v. Absent when v is nil.
func Phrase(field string, v *string, opts Options) Expression {
	if v == nil {
		return Absent
	}
	return format(OpPhrase, field, quote(*v), opts)
}

// Prefix matches values starting with v. Absent when v is nil.
func Prefix(field string, v *string, opts Options) Expression {
	if v == nil {
		return Absent
	}
	return format(OpPrefix, field, quote(*v), opts)
}

// Near matches the words in values appearing within distance of each
// other. Absent when values is nil. The distance option is set on a copy
// of opts; the caller's Options are left untouched.
func Near(field string, values []string, distance float64, opts Options) Expression {
	if values == nil {
		return Absent
	}
	return format(OpNear, field, quote(strings.Join(values, " ")), opts.With("distance", NumberValue(distance)))
}

// -------------------------------------------------------------------
// Small helpers for optional inputs.
// -------------------------------------------------------------------

// Ptr returns a pointer to v, for the optional string and number inputs.
func Ptr[T any](v T) *T { return &v }

// Float converts any integer or float to the *float64 the numeric
// builders take.
func Float[T constraints.Integer | constraints.Float](v T) *float64 {
	f := float64(v)
	return &f
}
