// Package price extracts numeric values from free-form price strings.
// Purchase prices are stored as the user typed them ("$249.99", "1.250,00",
// "150 USD") so the finance aggregation needs a tolerant parser.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^\d.,\-]`)

// Parse extracts the numeric value from a price string. It returns ok=false
// when the string holds no parseable number ("", "N/A", "free").
//
// Mixed separators are disambiguated by position: "1.250,00" is European
// (1250.00), "1,250.00" is American. A lone comma is treated as a decimal
// separator when at most two digits follow it, otherwise as a thousands
// separator.
func Parse(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European: 1.250,00
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// American: 1,250.00
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
