package query

import (
	"errors"
	"math"
	"testing"
)

func TestCombinators(t *testing.T) {
	a, b := Raw("a"), Raw("b")
	boost := NewOptions(Num("boost", 2))

	tests := []struct {
		name string
		got  Expression
		want string
	}{
		{"and skips absent", And(nil, a, Absent, b), "(and  a b)"},
		{"and leading absent", And(nil, Absent, a, Absent, b), "(and  a b)"},
		{"and single", And(nil, a), "(and  a)"},
		{"and options", And(boost, a, b), "(and boost=2 a b)"},
		{"or", Or(nil, a, b), "(or  a b)"},
		{"or options", Or(NewOptions(Str("q", "x")), a), `(or q="x" a)`},
		{"and all slice", AndAll(nil, []Expression{a, b}), "(and  a b)"},
		{"or all slice", OrAll(nil, []Expression{Absent, b}), "(or  b)"},
		{"not", Not(nil, a), "(not  a)"},
		{"not options", Not(boost, a), "(not boost=2 a)"},
		{"nested", And(nil, Or(nil, a, b), Not(nil, MatchAll)), "(and  (or  a b) (not  (matchall)))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.IsAbsent() {
				t.Fatalf("got absent, want %q", tt.want)
			}
			if tt.got.String() != tt.want {
				t.Errorf("got %q, want %q", tt.got.String(), tt.want)
			}
		})
	}
}

func TestCombinatorsAllAbsent(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		exprs := make([]Expression, n)
		if e := And(nil, exprs...); !e.IsAbsent() {
			t.Errorf("And(%d absent) = %q, want absent", n, e)
		}
		if e := Or(NewOptions(Num("boost", 1)), exprs...); !e.IsAbsent() {
			t.Errorf("Or(%d absent) = %q, want absent", n, e)
		}
	}
	if e := AndAll(nil, nil); !e.IsAbsent() {
		t.Errorf("AndAll(nil) = %q, want absent", e)
	}
	if e := Not(nil, Absent); !e.IsAbsent() {
		t.Errorf("Not(absent) = %q, want absent", e)
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Expression, error)
		want string
	}{
		{"num lower", func() (Expression, error) { return RangeNum("price", Float(1), nil, nil) }, "(range field=price  [1,})"},
		{"num upper", func() (Expression, error) { return RangeNum("price", nil, Float(2), nil) }, "(range field=price  {,2])"},
		{"num both", func() (Expression, error) { return RangeNum("price", Float(1), Float(2.5), nil) }, "(range field=price  [1,2.5])"},
		{"num negative", func() (Expression, error) { return RangeNum("temp", Float(-10), Float(0), nil) }, "(range field=temp  [-10,0])"},
		{"num options", func() (Expression, error) {
			return RangeNum("price", Float(1), nil, NewOptions(Num("boost", 3)))
		}, "(range field=price boost=3 [1,})"},
		{"str lower", func() (Expression, error) { return RangeStr("name", Ptr("a"), nil, nil) }, "(range field=name  ['a',})"},
		{"str upper", func() (Expression, error) { return RangeStr("name", nil, Ptr("m"), nil) }, "(range field=name  {,'m'])"},
		{"str both", func() (Expression, error) { return RangeStr("year", Ptr("2000"), Ptr("2010"), nil) }, "(range field=year  ['2000','2010'])"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestRangeNoBounds(t *testing.T) {
	e, err := RangeNum("price", nil, nil, nil)
	if err != nil || !e.IsAbsent() {
		t.Fatalf("RangeNum no bounds = %q, %v; want absent, nil", e, err)
	}
	e, err = RangeStr("name", nil, nil, NewOptions(Num("boost", 1)))
	if err != nil || !e.IsAbsent() {
		t.Fatalf("RangeStr no bounds = %q, %v; want absent, nil", e, err)
	}
}

func TestRangeMissingField(t *testing.T) {
	calls := map[string]func() (Expression, error){
		"RangeNum":     func() (Expression, error) { return RangeNum("", Float(1), Float(2), nil) },
		"RangeNum nil": func() (Expression, error) { return RangeNum("", nil, nil, nil) },
		"RangeStr":     func() (Expression, error) { return RangeStr("", Ptr("a"), nil, nil) },
		"RangeStr nil": func() (Expression, error) { return RangeStr("", nil, nil, nil) },
	}
	for name, fn := range calls {
		t.Run(name, func(t *testing.T) {
			e, err := fn()
			if err == nil {
				t.Fatalf("expected error, got %q", e)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("errors.Is(%v, ErrInvalidArgument) = false", err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) || argErr.Arg != "field" {
				t.Errorf("errors.As = %+v", argErr)
			}
			if !e.IsAbsent() {
				t.Errorf("expression alongside error = %q", e)
			}
		})
	}
}

func TestLeafClauses(t *testing.T) {
	boost := NewOptions(Num("boost", 2))

	tests := []struct {
		name string
		got  Expression
		want string
	}{
		{"term str", TermStr("name", Ptr("widget"), nil), "(term field=name  'widget')"},
		{"term str options", TermStr("name", Ptr("widget"), boost), "(term field=name boost=2 'widget')"},
		{"term num", TermNum("year", Float(1999), nil), "(term field=year  1999)"},
		{"term num fraction", TermNum("rating", Float(4.25), nil), "(term field=rating  4.25)"},
		{"term no field", TermStr("", Ptr("x"), nil), "(term  'x')"},
		{"phrase", Phrase("title", Ptr("star wars"), nil), "(phrase field=title  'star wars')"},
		{"phrase options", Phrase("title", Ptr("star wars"), NewOptions(Str("lang", "en"))), `(phrase field=title lang="en" 'star wars')`},
		{"prefix", Prefix("title", Ptr("sta"), nil), "(prefix field=title  'sta')"},
		{"prefix boost", Prefix("title", Ptr("sta"), boost), "(prefix field=title boost=2 'sta')"},
		{"empty string is a value", TermStr("name", Ptr(""), nil), "(term field=name  '')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.want {
				t.Errorf("got %q, want %q", tt.got.String(), tt.want)
			}
		})
	}
}

func TestLeafClausesAbsent(t *testing.T) {
	for name, e := range map[string]Expression{
		"TermNum": TermNum("year", nil, nil),
		"TermStr": TermStr("name", nil, nil),
		"Phrase":  Phrase("title", nil, nil),
		"Prefix":  Prefix("title", nil, nil),
		"Near":    Near("body", nil, 3, nil),
	} {
		if !e.IsAbsent() {
			t.Errorf("%s(nil) = %q, want absent", name, e)
		}
	}
}

func TestNear(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		dist   float64
		opts   Options
		want   string
	}{
		{"no options", []string{"fast", "car"}, 3, nil, "(near field=body distance=3 'fast car')"},
		{"distance last", []string{"fast", "car"}, 3, NewOptions(Num("boost", 2)), "(near field=body boost=2distance=3 'fast car')"},
		{"distance overwritten in place", []string{"fast"}, 5, NewOptions(Num("distance", 1), Num("boost", 2)), "(near field=body distance=5boost=2 'fast')"},
		{"empty values", []string{}, 1, nil, "(near field=body distance=1 '')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Near("body", tt.values, tt.dist, tt.opts); got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestNearLeavesCallerOptionsAlone(t *testing.T) {
	opts := make(Options, 1, 4) // spare capacity would expose an in-place append
	opts[0] = Num("boost", 2)

	_ = Near("body", []string{"a"}, 3, opts)

	if len(opts) != 1 {
		t.Fatalf("caller options grew to %d entries", len(opts))
	}
	if _, ok := opts[:2][1].Value.(NumberValue); ok {
		t.Fatalf("distance written into caller's backing array")
	}

	existing := NewOptions(Num("distance", 1))
	_ = Near("body", []string{"a"}, 9, existing)
	if v, _ := existing.Get("distance"); v != NumberValue(1) {
		t.Fatalf("caller distance changed to %v", v)
	}
}

func TestMatchAll(t *testing.T) {
	if MatchAll.IsAbsent() || MatchAll.String() != "(matchall)" {
		t.Fatalf("MatchAll = %q", MatchAll)
	}
}

func TestIdempotent(t *testing.T) {
	build := func() string {
		r, _ := RangeNum("price", Float(10), Float(20), NewOptions(Num("boost", 1.5)))
		return And(NewOptions(Str("q.options", "x")),
			r,
			TermStr("name", Ptr("widget"), nil),
			Near("body", []string{"a", "b"}, 2, NewOptions(Num("boost", 2))),
			Or(nil, Phrase("title", Ptr("p"), nil), Prefix("title", Ptr("q"), nil)),
		).String()
	}
	first := build()
	for i := 0; i < 5; i++ {
		if got := build(); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestZeroExpressionIsAbsent(t *testing.T) {
	var e Expression
	if !e.IsAbsent() || e.String() != "" {
		t.Fatalf("zero Expression = %q, absent=%v", e, e.IsAbsent())
	}
	if Raw("").IsAbsent() {
		t.Fatalf("Raw(\"\") should be present")
	}
	if f := Float(math.MaxInt32); *f != float64(math.MaxInt32) {
		t.Fatalf("Float = %v", *f)
	}
}
