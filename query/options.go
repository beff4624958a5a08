package query

import (
	"golang.org/x/exp/constraints"

	"github.com/jfrconley/cs-query-builder/internal"
)

// Value is an option value: StringValue or NumberValue.
type Value interface {
	optionValue()
}

// StringValue serializes as key="value".
type StringValue string

// NumberValue serializes as key=value.
type NumberValue float64

func (StringValue) optionValue() {}
func (NumberValue) optionValue() {}

// Option is one key=value tuning parameter (boost, distance, ...).
type Option struct {
	Key   string
	Value Value
}

// Str builds a string-valued Option.
func Str(key, v string) Option { return Option{Key: key, Value: StringValue(v)} }

// Num builds a number-valued Option from any integer or float.
func Num[T constraints.Integer | constraints.Float](key string, v T) Option {
	return Option{Key: key, Value: NumberValue(float64(v))}
}

// Options is an ordered set of Option. Keys are unique: NewOptions and
// With keep the first position of a key and its latest value. A nil
// Options serializes to "".
type Options []Option

// NewOptions collects opts in order, collapsing repeated keys.
func NewOptions(opts ...Option) Options {
	var out Options
	for _, o := range opts {
		out = out.With(o.Key, o.Value)
	}
	return out
}

// With returns a copy of o with key set to v. An existing key is
// overwritten in place; a new key is appended.
func (o Options) With(key string, v Value) Options {
	out := make(Options, len(o), len(o)+1)
	copy(out, o)
	if i := internal.IndexFunc(out, func(x Option) bool { return x.Key == key }); i >= 0 {
		out[i].Value = v
		return out
	}
	return append(out, Option{Key: key, Value: v})
}

// Get returns the value stored under key.
func (o Options) Get(key string) (Value, bool) {
	if i := internal.IndexFunc(o, func(x Option) bool { return x.Key == key }); i >= 0 {
		return o[i].Value, true
	}
	return nil, false
}
