// Package textsearch normaliza texto para búsquedas que ignoran mayúsculas y tildes
// ("folletería" encuentra "FOLLETERIA").
package textsearch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita marcas diacríticas, pliega mayúsculas y colapsa espacios.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// Key construye la clave de búsqueda de un producto a partir de sus campos.
func Key(parts ...string) string {
	return Fold(strings.Join(parts, " "))
}

// Match indica si query (sin normalizar) aparece en key (ya normalizada).
func Match(key, query string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	return strings.Contains(key, q)
}
