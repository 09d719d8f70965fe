// printer.go — canonical value rendering (spec §6).
//
// Grounded on the teacher's printer.go, which owns exactly this
// responsibility (one formatter reused by both `print` and `toString`,
// the host REPL, and debugging output). Corrosion's value space is much
// smaller than MindScript's, so the table collapses to the handful of
// cases spec §6 lists.
package corrosion

import (
	"strconv"
	"strings"
)

// FormatValue renders v per the table in spec §6. It never appends a
// trailing newline — callers that print a line (the `print` primitive,
// the REPL) add one themselves; `toString` does not.
func FormatValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case VInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case VBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case VString:
		b.WriteString(v.Str)
	case VUnit:
		b.WriteString("()")
	case VList:
		b.WriteByte('[')
		for i, e := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case VPair:
		b.WriteByte('(')
		writeValue(b, v.Pair.First)
		b.WriteString(", ")
		writeValue(b, v.Pair.Second)
		b.WriteByte(')')
	case VLeft:
		b.WriteString("Left(")
		writeValue(b, *v.Inner)
		b.WriteByte(')')
	case VRight:
		b.WriteString("Right(")
		writeValue(b, *v.Inner)
		b.WriteByte(')')
	case VClosure:
		b.WriteString("<function>")
	case VFixedPoint:
		b.WriteString("<fixed-point>")
	case VModule:
		b.WriteString("<module>")
	case VPrimitive:
		b.WriteString("<function>")
	}
}
