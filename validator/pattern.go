package validator

import (
	"regexp"
	"sort"
	"strings"
)

// emailPattern is a "common sense" e-mail address shape. It doesn't try to be fully RFC 5322 compliant, it
// aims to catch the addresses people actually type, and rejects internationalized domains and quoted locals.
const emailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var (
	formatExpr  = regexp.MustCompile(`^` + emailPattern + `$`)
	extractExpr = regexp.MustCompile(emailPattern)
)

// IsValidFormat reports if the whole argument, after trimming surrounding whitespace, has the syntactic shape
// of an e-mail address. It's a pure predicate and never fails.
func IsValidFormat(email string) bool {
	return formatExpr.MatchString(strings.TrimSpace(email))
}

// ExtractAddresses scans arbitrary text for substrings shaped like e-mail addresses. The result is
// de-duplicated and sorted.
func ExtractAddresses(text string) []string {
	matches := extractExpr.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	unique := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}

		seen[m] = struct{}{}
		unique = append(unique, m)
	}

	sort.Strings(unique)
	return unique
}
