package odata

import (
	"net/url"
	"strings"
)

// Literal renders v as an OData string literal with embedded quotes doubled.
func Literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// Eq returns `field eq 'value'`.
func Eq(field, value string) string {
	return field + " eq " + Literal(value)
}

// Or joins clauses with the OData or operator.
func Or(clauses ...string) string {
	return strings.Join(clauses, " or ")
}

// AnyEq matches any of the values against any of the fields, values outer.
func AnyEq(fields []string, values ...string) string {
	clauses := make([]string, 0, len(fields)*len(values))
	for _, v := range values {
		for _, f := range fields {
			clauses = append(clauses, Eq(f, v))
		}
	}
	return Or(clauses...)
}

// KeyPath addresses a single entity by string key: Entity('key').
func KeyPath(entity, key string) string {
	return entity + "('" + url.PathEscape(strings.ReplaceAll(key, "'", "''")) + "')"
}
