package codegen

import (
	"strings"
	"unicode"
)

// camelCase rewrites a name so that a '-' or '_' followed by a lowercase
// letter becomes that letter uppercased: user_id becomes userId. Any other
// character is kept as is.
func camelCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '-' || r == '_') && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			b.WriteRune(unicode.ToUpper(runes[i+1]))
			i++
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// exportedName turns an operation or parameter name into an exported Go
// identifier: camel-cased, stripped of characters that cannot appear in an
// identifier, first letter upper-cased, prefixed when it would not start
// with a letter.
func exportedName(name string) string {
	var out []rune
	for _, r := range camelCase(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			out = append(out, r)
		}
	}

	if len(out) == 0 || !unicode.IsLetter(out[0]) {
		out = append([]rune("Op"), out...)
	}
	out[0] = unicode.ToUpper(out[0])

	return string(out)
}
