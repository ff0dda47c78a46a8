package stringutil

import (
	"fmt"
	"strings"
	"unicode"
)

// GenerateTableAlias returns the next table alias (t0, t1, ...) and advances the counter
func GenerateTableAlias(counter *int) string {
	alias := fmt.Sprintf("t%d", *counter)
	*counter++
	return alias
}

// ToSnakeCase converts a Go identifier like UnitsInStock into units_in_stock
func ToSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Break before an upper case rune that starts a new word: after a
			// lower case rune, or before a lower case rune inside an acronym (IDName).
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
