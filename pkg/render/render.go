// Package render applies display directives to query results, producing
// formatted cell text and CSS declaration lists.
//
// Everything here is pure: values go in, strings and declarations come out.
// Formatting never fails — a value that resists its directive falls back to
// its plain string form — so rendering can never lose result data.
package render

import "strings"

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an ordered list of declarations. Duplicate properties are
// kept; consumers apply them as a cascade where the last one wins.
type Declarations []Declaration

// String joins the declarations in "property: value; property: value" form,
// suitable for an inline style attribute.
func (d Declarations) String() string {
	if len(d) == 0 {
		return ""
	}
	parts := make([]string, len(d))
	for i, dec := range d {
		parts[i] = dec.Property + ": " + dec.Value
	}
	return strings.Join(parts, "; ")
}

// Get returns the effective value of a property, honoring the cascade: the
// last declaration of the property wins.
func (d Declarations) Get(property string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == property {
			return d[i].Value, true
		}
	}
	return "", false
}
