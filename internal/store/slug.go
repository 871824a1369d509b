package store

import "strings"

// pairSlug renders a pair string for use in a bar table name: lowercased,
// non-alphanumeric runs replaced by a single underscore, per spec.md §6.
func pairSlug(pair string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(pair) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// barTableName renders the physical bar table name for a (bar_type, pair).
func barTableName(barType, pair string) string {
	return "bars_" + sanitizeIdent(barType) + "_" + pairSlug(pair)
}

// sanitizeIdent lowercases and replaces non-alphanumeric runs with
// underscore, matching pairSlug's rule, so bar_type values like
// "volume_12.5" become valid unquoted identifiers.
func sanitizeIdent(s string) string {
	return pairSlug(s)
}
