package render

import "github.com/okuyamashin/querycanvas/pkg/directive"

// CellStyle resolves the visual declarations of one cell. Conditional rules
// replace the static style entirely: when a column carries conditionals, its
// static color, background and weight are never consulted, and a cell value
// that does not parse as a number gets no conditional styling at all.
func CellStyle(v any, col directive.Column) Declarations {
	var decls Declarations
	if col.Align != "" {
		decls = append(decls, Declaration{"text-align", col.Align})
	}

	if len(col.Conditionals) > 0 {
		f, ok := toFloat(v)
		if !ok {
			return decls
		}
		for _, c := range col.Conditionals {
			if c.Op.Compare(f, c.Value) {
				decls = appendStyle(decls, c.Style)
			}
		}
		return decls
	}

	if col.Static.Background != "" {
		decls = append(decls, Declaration{"background-color", col.Static.Background})
	}
	if col.Static.Color != "" {
		decls = append(decls, Declaration{"color", col.Static.Color})
	}
	if col.Static.FontWeight != "" {
		decls = append(decls, Declaration{"font-weight", col.Static.FontWeight})
	}
	return decls
}

// WidthStyle is the structural width of a column, kept apart from CellStyle
// so it applies to the whole column regardless of per-cell branches.
func WidthStyle(col directive.Column) Declarations {
	if col.Width == "" {
		return nil
	}
	return Declarations{{Property: "width", Value: col.Width}}
}

// RowStyle evaluates row rules against one result row. A missing or NULL
// cell skips its rule; a cell that will not parse under a numeric rule skips
// that rule too, never the remaining ones. Matches append in rule order so
// later rules win the cascade.
func RowStyle(row map[string]any, rules []directive.RowRule) Declarations {
	var decls Declarations
	for _, rule := range rules {
		v, ok := row[rule.Column]
		if !ok || v == nil {
			continue
		}

		if rule.Numeric {
			f, ok := toFloat(v)
			if !ok {
				continue
			}
			if rule.Op.Compare(f, rule.Number) {
				decls = appendStyle(decls, rule.Style)
			}
			continue
		}

		if rule.Op.CompareStrings(stringify(v), rule.Text) {
			decls = appendStyle(decls, rule.Style)
		}
	}
	return decls
}

// appendStyle emits a style's declarations in a fixed property order.
func appendStyle(decls Declarations, st directive.Style) Declarations {
	if st.Color != "" {
		decls = append(decls, Declaration{"color", st.Color})
	}
	if st.Background != "" {
		decls = append(decls, Declaration{"background-color", st.Background})
	}
	if st.FontWeight != "" {
		decls = append(decls, Declaration{"font-weight", st.FontWeight})
	}
	return decls
}
