package extract

import "regexp"

// accountTokenRe matches short account identifiers like "A1" or "A-23".
var accountTokenRe = regexp.MustCompile(`\b([A-Za-z]-?\d{1,3})\b`)

// AccountToken returns the first explicit account token in the
// question, or "" when none is present. Account tokens bypass the
// dimension-value dictionary so partial or unlisted identifiers can
// still seed a customer filter.
func AccountToken(q string) string {
	m := accountTokenRe.FindStringSubmatch(q)
	if m == nil {
		return ""
	}
	return m[1]
}
