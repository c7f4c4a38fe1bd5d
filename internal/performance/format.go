package performance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR rounds to whole rupees and groups digits the Indian way:
// 1234567 → "12,34,567".
func FormatINR(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		s = strings.Join(groups, ",") + "," + tail
	}
	if neg && s != "0" {
		return "-" + s
	}
	return s
}

// Rupees is FormatINR with the currency sign.
func Rupees(d decimal.Decimal) string {
	return "₹" + FormatINR(d)
}
