// Package caseconv implements the field-name case policies applied during
// field projection. All functions are pure and allocation-light; they split a
// name into words on underscores, hyphens, and upper-case boundaries, then
// reassemble it in the requested style.
package caseconv

import (
	"strings"
	"unicode"
)

// words splits an identifier into its lower-cased word parts.
// "user_name" -> [user name], "userName" -> [user name], "HTTPCode" -> [http code].
func words(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			// Start a new word at a lower->upper boundary, or at the last
			// upper of an acronym run (HTTPCode -> HTTP | Code).
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				flush()
			} else if i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]) {
				flush()
			}
			cur.WriteRune(unicode.ToLower(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// Snake converts a name to snake_case.
func Snake(s string) string {
	return strings.Join(words(s), "_")
}

// Kebab converts a name to kebab-case.
func Kebab(s string) string {
	return strings.Join(words(s), "-")
}

// Camel converts a name to camelCase.
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(ws[0])
	for _, w := range ws[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

// Pascal converts a name to PascalCase.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

func title(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
