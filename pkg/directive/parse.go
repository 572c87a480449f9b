package directive

import "regexp"

// Directive patterns
var (
	// blockPattern matches the first /** ... */ comment, non-greedy so the
	// block ends at the first */ in the text.
	blockPattern = regexp.MustCompile(`(?s)/\*\*(.*?)\*/`)
	// @column price type=int align=right
	columnPattern = regexp.MustCompile(`@column[ \t]+([^\r\n]+)`)
	// @row 曜日=="土":bg=#eeeeff
	rowPattern = regexp.MustCompile(`@row[ \t]+([^\r\n]+)`)
	// @chart type=line x=date y=sales
	chartPattern = regexp.MustCompile(`@chart[ \t]+([^\r\n]+)`)
)

// Parse extracts display options from the first /** ... */ block of the SQL
// text. Directives are recognized anywhere on a line inside the block, so
// the usual " * " comment gutter is fine. Text outside the first block is
// never inspected. Parse always returns a usable Options; input that carries
// no block, or nothing but malformed directives, yields an empty set.
func Parse(sql string) *Options {
	opts := &Options{Columns: make(map[string]Column)}

	block := blockPattern.FindStringSubmatch(sql)
	if block == nil {
		return opts
	}
	body := block[1]

	for _, m := range columnPattern.FindAllStringSubmatch(body, -1) {
		if col, ok := parseColumn(m[1]); ok {
			opts.Columns[col.Name] = col
		}
	}

	for _, m := range rowPattern.FindAllStringSubmatch(body, -1) {
		if rule, ok := parseRow(m[1]); ok {
			opts.RowRules = append(opts.RowRules, rule)
		}
	}

	// Only the first @chart counts; later ones are ignored.
	if m := chartPattern.FindStringSubmatch(body); m != nil {
		opts.Chart = parseChart(m[1])
	}

	return opts
}
