package h

import (
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether name is usable as an unquoted Postgres schema or
// table identifier. Tenant names must pass this check before any schema
// strategy touches the database with them.
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SearchPath renders an ordered, de-duplicated schema list as the value of a
// SET search_path statement.
func SearchPath(schemas ...string) string {
	quoted := []string{}
	for _, schema := range UniqueStrings(schemas) {
		quoted = append(quoted, QuoteIdent(schema))
	}
	return strings.Join(quoted, ", ")
}
