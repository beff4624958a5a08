// Package filter turns tagged Go structs into query expressions, so a
// request struct with optional fields can become a filter in one call.
//
//	type ProductFilter struct {
//	    Name     *string         `csq:"name,term"`
//	    Title    string          `csq:"title,prefix,boost=2"`
//	    Price    *filter.NumRange `csq:"price,range"`
//	    Keywords []string        `csq:"body,near,distance=3"`
//	}
//
//	expr, err := filter.Build(ProductFilter{Title: "star"})
//	// (and  (prefix field=title boost=2 'star'))
//
// Nil pointers, nil slices and zero non-pointer values produce no clause.
// Use a pointer field to match a zero value explicitly.
package filter

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/jfrconley/cs-query-builder/query"
)

// NumRange is the field type for numeric range clauses.
type NumRange struct {
	Lower, Upper *float64
}

// StrRange is the field type for string range clauses.
type StrRange struct {
	Lower, Upper *string
}

// ------------------------------------------------------------------
// Options
// ------------------------------------------------------------------

type BuildOpt func(*buildCfg)

type buildCfg struct {
	combine func(query.Options, []query.Expression) query.Expression
	opts    query.Options // options on the outer and/or clause
}

// Or combines the field clauses with "or" instead of "and".
func Or() BuildOpt { return func(c *buildCfg) { c.combine = query.OrAll } }

// WithOptions sets options on the outer combining clause.
func WithOptions(o query.Options) BuildOpt { return func(c *buildCfg) { c.opts = o } }

// ------------------------------------------------------------------
// Public API
// ------------------------------------------------------------------

// Build reads the `csq` tags of v (a struct or pointer to struct) and
// combines one clause per non-empty field. The result is absent when
// every field is empty.
func Build(v any, opts ...BuildOpt) (query.Expression, error) {
	cfg := &buildCfg{combine: query.AndAll}
	for _, o := range opts {
		o(cfg)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return query.Absent, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return query.Absent, fmt.Errorf("filter: expected struct, got %T", v)
	}

	metas, err := metaFor(rv.Type())
	if err != nil {
		return query.Absent, err
	}

	clauses := make([]query.Expression, 0, len(metas))
	for _, fm := range metas {
		e, err := fm.clause(rv.FieldByIndex(fm.index))
		if err != nil {
			return query.Absent, err
		}
		clauses = append(clauses, e)
	}
	return cfg.combine(cfg.opts, clauses), nil
}

// ------------------------------------------------------------------
// Tag metadata w/ cache
// ------------------------------------------------------------------

type clauseKind string

const (
	kindTerm   clauseKind = "term"
	kindPrefix clauseKind = "prefix"
	kindPhrase clauseKind = "phrase"
	kindRange  clauseKind = "range"
	kindNear   clauseKind = "near"
)

type fieldMeta struct {
	name     string
	index    []int
	kind     clauseKind
	opts     query.Options
	distance float64
}

var metaCache sync.Map // reflect.Type → []fieldMeta

var (
	numRangeType = reflect.TypeOf(NumRange{})
	strRangeType = reflect.TypeOf(StrRange{})
	stringsType  = reflect.TypeOf([]string(nil))
)

func metaFor(rt reflect.Type) ([]fieldMeta, error) {
	if m, ok := metaCache.Load(rt); ok {
		return m.([]fieldMeta), nil
	}
	metas, err := buildMeta(rt)
	if err != nil {
		return nil, err
	}
	metaCache.Store(rt, metas)
	return metas, nil
}

// buildMeta parses `csq:"field,kind,key=value..."` tags. The kind defaults
// to term and the field name to the snake_cased Go name.
func buildMeta(rt reflect.Type) ([]fieldMeta, error) {
	out := make([]fieldMeta, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, ok := f.Tag.Lookup("csq")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		parts := strings.Split(tag, ",")

		fm := fieldMeta{name: parts[0], index: f.Index, kind: kindTerm}
		if fm.name == "" {
			fm.name = snake(f.Name)
		}
		if len(parts) > 1 && parts[1] != "" {
			fm.kind = clauseKind(strings.ToLower(parts[1]))
		}

		hasDistance := false
		for _, kv := range parts[min(2, len(parts)):] {
			key, val, found := strings.Cut(kv, "=")
			if !found {
				return nil, fmt.Errorf("filter: field %s: malformed tag option %q", f.Name, kv)
			}
			n, numErr := strconv.ParseFloat(val, 64)
			if key == "distance" && fm.kind == kindNear {
				if numErr != nil {
					return nil, fmt.Errorf("filter: field %s: distance %q: %w", f.Name, val, numErr)
				}
				fm.distance, hasDistance = n, true
				continue
			}
			if numErr == nil {
				fm.opts = fm.opts.With(key, query.NumberValue(n))
			} else {
				fm.opts = fm.opts.With(key, query.StringValue(val))
			}
		}
		if fm.kind == kindNear && !hasDistance {
			return nil, fmt.Errorf("filter: field %s: near clause requires distance=N", f.Name)
		}

		if err := checkType(fm.kind, f.Type); err != nil {
			return nil, fmt.Errorf("filter: field %s: %w", f.Name, err)
		}
		out = append(out, fm)
	}
	return out, nil
}

func checkType(kind clauseKind, t reflect.Type) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ok := false
	switch kind {
	case kindTerm:
		ok = t.Kind() == reflect.String || isNumeric(t.Kind())
	case kindPrefix, kindPhrase:
		ok = t.Kind() == reflect.String
	case kindRange:
		ok = t == numRangeType || t == strRangeType
	case kindNear:
		ok = t.ConvertibleTo(stringsType)
	default:
		return fmt.Errorf("unknown clause kind %q", kind)
	}
	if !ok {
		return fmt.Errorf("%s clause cannot take %s", kind, t)
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ------------------------------------------------------------------
// Field value → clause
// ------------------------------------------------------------------

func (fm fieldMeta) clause(v reflect.Value) (query.Expression, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return query.Absent, nil
		}
		v = v.Elem()
	} else if v.IsZero() {
		return query.Absent, nil
	}

	switch fm.kind {
	case kindPrefix:
		return query.Prefix(fm.name, query.Ptr(v.String()), fm.opts), nil
	case kindPhrase:
		return query.Phrase(fm.name, query.Ptr(v.String()), fm.opts), nil
	case kindNear:
		return query.Near(fm.name, v.Convert(stringsType).Interface().([]string), fm.distance, fm.opts), nil
	case kindRange:
		switch r := v.Interface().(type) {
		case NumRange:
			return query.RangeNum(fm.name, r.Lower, r.Upper, fm.opts)
		case StrRange:
			return query.RangeStr(fm.name, r.Lower, r.Upper, fm.opts)
		}
	case kindTerm:
		if v.Kind() == reflect.String {
			return query.TermStr(fm.name, query.Ptr(v.String()), fm.opts), nil
		}
		return query.TermNum(fm.name, toFloat(v), fm.opts), nil
	}
	return query.Absent, fmt.Errorf("filter: field %s: unsupported %s clause", fm.name, fm.kind)
}

func toFloat(v reflect.Value) *float64 {
	switch {
	case v.CanInt():
		return query.Float(v.Int())
	case v.CanUint():
		return query.Float(v.Uint())
	default:
		return query.Float(v.Float())
	}
}

// snake converts CamelCase to snake_case.
func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
