package directive

import (
	"regexp"
	"strconv"
	"strings"
)

// Clause patterns
var (
	// kvPattern matches key=value clauses with double-quoted, single-quoted
	// or bare values. Quoted values may contain spaces; bare values end at
	// the next whitespace.
	kvPattern = regexp.MustCompile(`(\w+)=("([^"]*)"|'([^']*)'|(\S+))`)
	// condPattern matches if<op><number>:<styles> clauses. The operator run
	// is maximal and validated afterwards; the styles run ends at the next
	// whitespace.
	condPattern = regexp.MustCompile(`\bif([<>!=]+)([-+]?\d+(?:\.\d+)?):(\S+)`)
	// rulePattern splits a row directive body into column, operator,
	// literal and style list. The literal is quoted for string comparison
	// or a bare token ending at the first colon.
	rulePattern = regexp.MustCompile(`^([^\s<>!=]+)([<>!=]+)("([^"]*)"|'([^']*)'|[^:]*):(.+)$`)
)

// Valid enum values per clause key. Values outside these sets are no-ops,
// keeping whatever an earlier clause set.
var (
	validTypes   = map[string]bool{"int": true, "float": true, "decimal": true, "text": true}
	validAligns  = map[string]bool{"left": true, "center": true, "right": true}
	validFormats = map[string]bool{"number": true, "datetime": true, "text": true}
)

// parseColumn parses an @column body. The first whitespace-delimited token
// is the column name; the remainder is scanned for key=value clauses and
// conditional clauses. Later occurrences of the same key win.
func parseColumn(body string) (Column, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Column{}, false
	}

	name, rest := body, ""
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		name, rest = body[:i], body[i+1:]
	}

	col := Column{Name: name}
	spans := parseConditionals(rest, &col.Conditionals)
	applyColumnClauses(&col, rest, spans)
	return col, true
}

// parseConditionals collects conditional clauses from s in source order and
// returns the text spans of everything shaped like a conditional clause,
// valid or not. Spans are masked out of the key=value scan so a clause's
// style tokens are never misread as static clauses.
func parseConditionals(s string, out *[]Conditional) [][2]int {
	var spans [][2]int
	for _, loc := range condPattern.FindAllStringSubmatchIndex(s, -1) {
		spans = append(spans, [2]int{loc[0], loc[1]})

		op, ok := parseOp(s[loc[2]:loc[3]])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(s[loc[4]:loc[5]], 64)
		if err != nil {
			continue
		}
		// Style tokens are split on commas only. They cannot contain
		// spaces, so no per-token trimming happens here; row rule style
		// lists are the lenient ones.
		var style Style
		for _, tok := range strings.Split(s[loc[6]:loc[7]], ",") {
			if k, v, ok := strings.Cut(tok, "="); ok {
				applyStyleKey(&style, k, v)
			}
		}
		*out = append(*out, Conditional{Op: op, Value: value, Style: style})
	}
	return spans
}

// applyColumnClauses scans s for key=value clauses, skipping matches inside
// conditional clause spans, and applies recognized keys to col.
func applyColumnClauses(col *Column, s string, masked [][2]int) {
	for _, loc := range kvPattern.FindAllStringSubmatchIndex(s, -1) {
		if overlaps(masked, loc[0], loc[1]) {
			continue
		}
		key := s[loc[2]:loc[3]]
		value := kvValue(s, loc)

		switch key {
		case "type":
			if validTypes[value] {
				col.Type = value
			}
		case "align":
			if validAligns[value] {
				col.Align = value
			}
		case "format":
			if validFormats[value] {
				col.Format = value
			}
		case "comma":
			col.Comma = value == "true"
		case "decimal":
			// An unparseable or negative count clears the field, so the
			// last occurrence always decides.
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				col.Decimal = &n
			} else {
				col.Decimal = nil
			}
		case "pattern":
			col.Pattern = value
		case "width":
			col.Width = value
		case "color", "bg", "backgroundColor", "bold":
			applyStyleKey(&col.Static, key, value)
		}
	}
}

// parseRow parses an @row body of the shape <column><op><literal>:<styles>.
// A body that does not match the shape, or carries an invalid operator run,
// is dropped.
func parseRow(body string) (RowRule, bool) {
	m := rulePattern.FindStringSubmatch(strings.TrimSpace(body))
	if m == nil {
		return RowRule{}, false
	}

	op, ok := parseOp(m[2])
	if !ok {
		return RowRule{}, false
	}
	rule := RowRule{Column: m[1], Op: op}

	// A quoted literal forces string comparison. A bare literal compares
	// numerically when it parses as a float, textually otherwise. The mode
	// is fixed here and never revisited per row.
	lit := m[3]
	switch {
	case len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"':
		rule.Text = m[4]
	case len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'':
		rule.Text = m[5]
	default:
		rule.Text = lit
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			rule.Number = f
			rule.Numeric = true
		}
	}

	// Row style tokens are comma-separated and whitespace-trimmed, unlike
	// the compact style runs of column conditionals.
	for _, tok := range strings.Split(m[6], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if k, v, ok := strings.Cut(tok, "="); ok {
			applyStyleKey(&rule.Style, strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return rule, true
}

// applyStyleKey applies one style key to st. Unknown keys are ignored.
// bg and backgroundColor write the same field; bold=true also pins the
// font weight so renderers that only read FontWeight agree.
func applyStyleKey(st *Style, key, value string) {
	switch key {
	case "color":
		st.Color = value
	case "bg", "backgroundColor":
		st.Background = value
	case "bold":
		if value == "true" {
			st.Bold = true
			st.FontWeight = "bold"
		}
	case "fontWeight":
		st.FontWeight = value
	}
}

// kvValue extracts the clause value from a kvPattern submatch index set,
// preferring the quoted captures so empty quoted values stay distinguishable
// from missing ones.
func kvValue(s string, loc []int) string {
	switch {
	case loc[6] >= 0:
		return s[loc[6]:loc[7]]
	case loc[8] >= 0:
		return s[loc[8]:loc[9]]
	default:
		return s[loc[10]:loc[11]]
	}
}

// overlaps reports whether [start,end) intersects any masked span.
func overlaps(spans [][2]int, start, end int) bool {
	for _, sp := range spans {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}
