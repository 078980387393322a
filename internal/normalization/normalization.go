package normalization

import (
	"strings"
	"unicode"
)

// ParseInputString trims and collapses user-typed input; returns "" for
// whitespace-only values.
func ParseInputString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username lowercases and trims a username for lookups and storage.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slugify builds a URL slug: lowercase, alphanumerics kept, runs of
// anything else become a single hyphen. Swedish letters are transliterated
// since team and ad titles routinely contain them.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e")
	s = replacer.Replace(s)

	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
