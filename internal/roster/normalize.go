// Package roster resolves payee labels against the roster of registered payees.
package roster

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// NormalizeKey maps a payee label or roster key to its comparable form:
// transliterated to ASCII, whitespace collapsed, lower-cased.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(unidecode.Unidecode(s)), " "))
}
