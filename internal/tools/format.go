package tools

import (
	"math"
	"strconv"
)

// formatMinutes renders a minute count with thousands separators and no
// decimals, e.g. 525600 -> "525,600".
func formatMinutes(v float64) string {
	s := strconv.FormatFloat(math.Round(v), 'f', 0, 64)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var out []byte
	lead := n % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < n; i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func siNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
