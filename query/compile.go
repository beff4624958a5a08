package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/jfrconley/cs-query-builder/internal"
)

// -------------------------------------------------------------------
// clause writers – every builder funnels through format so the
// "(op field=F opts value)" layout lives in one place.
// -------------------------------------------------------------------

// format renders (op [field=F ]<opts> value). The space before value is
// written even when opts is empty, so an option-less clause carries two
// spaces: "(term field=name  'widget')".
func format(op Operator, field, value string, opts Options) Expression {
	sb := internal.GetBuilder()
	defer internal.PutBuilder(sb)

	sb.WriteByte('(')
	sb.WriteString(string(op))
	sb.WriteByte(' ')
	if field != "" {
		sb.WriteString("field=")
		sb.WriteString(field)
		sb.WriteByte(' ')
	}
	writeOptions(sb, opts)
	sb.WriteByte(' ')
	sb.WriteString(value)
	sb.WriteByte(')')
	return Raw(sb.String())
}

// SerializeOptions renders opts as concatenated key=value fragments, with
// no separator between them. String values are double-quoted; embedded
// quotes are not escaped.
func SerializeOptions(opts Options) string {
	var sb strings.Builder
	writeOptions(&sb, opts)
	return sb.String()
}

func writeOptions(sb *strings.Builder, opts Options) {
	for _, o := range opts {
		switch v := o.Value.(type) {
		case StringValue:
			sb.WriteString(o.Key)
			sb.WriteString(`="`)
			sb.WriteString(string(v))
			sb.WriteByte('"')
		case NumberValue:
			sb.WriteString(o.Key)
			sb.WriteByte('=')
			sb.WriteString(formatNumber(float64(v)))
		case nil:
			// unset value, nothing to write
		}
	}
}

func quote(s string) string { return "'" + s + "'" }

// formatNumber renders f the way the search service's own clients print
// numbers: shortest round-trip digits, no trailing ".0", exponent form
// outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // also -0
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// strconv pads the exponent to two digits ("1e-07").
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
