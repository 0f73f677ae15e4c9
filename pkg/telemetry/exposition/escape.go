package exposition

import (
	"math"
	"strconv"
	"strings"
)

// EscapeLabelValue escapes a label value for the text exposition format.
// Backslashes are escaped first so the escapes added for quotes and newlines
// are not escaped twice.
func EscapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	return v
}

// UnescapeLabelValue reverses EscapeLabelValue. Unknown escape sequences are
// kept verbatim.
func UnescapeLabelValue(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}

	var sb strings.Builder
	sb.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' || i == len(v)-1 {
			sb.WriteByte(v[i])
			continue
		}
		i++
		switch v[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(v[i])
		}
	}
	return sb.String()
}

// FormatValue renders a sample value in exponent notation, with the special
// spellings Prometheus expects for NaN and infinities.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
}
