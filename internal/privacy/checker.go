// Package privacy flags columns that likely hold personally identifiable information.
package privacy

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"biasdetect/domain/table"
)

var (
	emailPattern = regexp.MustCompile(`@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

var nameHints = []string{"full_name", "first_name", "last_name"}

func isNameColumn(name string) bool {
	lower := strings.ToLower(name)
	if lower == "name" {
		return true
	}
	return slices.ContainsFunc(nameHints, func(h string) bool { return strings.Contains(lower, h) })
}

// DetectPII returns the text columns that look like names, emails or phone numbers.
func DetectPII(t *table.Table) []string {
	var out []string
	for _, col := range t.Columns() {
		if col.Kind() != table.KindCategorical {
			continue
		}
		if isNameColumn(col.Name()) {
			out = append(out, col.Name())
			continue
		}
		values := col.Strings()
		if slices.ContainsFunc(values, emailPattern.MatchString) || slices.ContainsFunc(values, phonePattern.MatchString) {
			out = append(out, col.Name())
		}
	}
	return out
}

// Recommendations returns one advisory per flagged column, worded by name hint.
func Recommendations(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		lower := strings.ToLower(col)
		var msg string
		switch {
		case strings.Contains(lower, "email"):
			msg = "Column '%s' contains email addresses. Consider anonymizing or removing this column."
		case strings.Contains(lower, "phone"):
			msg = "Column '%s' contains phone numbers. Consider anonymizing or removing this column."
		case strings.Contains(lower, "name"):
			msg = "Column '%s' contains names. Consider anonymizing or removing this column."
		default:
			msg = "Column '%s' may contain PII. Review and consider anonymizing or removing this column."
		}
		out = append(out, fmt.Sprintf(msg, col))
	}
	return out
}
