// Package directive parses display directives embedded in SQL comments.
//
// A canvas file carries its presentation rules in the first /** ... */
// block of the SQL text:
//
//	/**
//	 * @column price type=int align=right comma=true if<0:color=red
//	 * @row 曜日=="土":bg=#eeeeff
//	 * @chart type=bar x=date y=sales,returns
//	 */
//	SELECT ...
//
// Parsing never fails: malformed directives and clauses are dropped and the
// remainder is kept, so a typo in a comment can never break query execution.
package directive

// Options is the complete set of display directives parsed from one SQL text.
type Options struct {
	// Columns maps column name to its display options. When a column is
	// named by more than one @column directive, the last directive wins
	// as a whole record.
	Columns map[string]Column
	// RowRules are @row directives in declaration order. Rules matching
	// the same row stack; later declarations override earlier ones when
	// the output is applied as a CSS cascade.
	RowRules []RowRule
	// Chart is the validated @chart directive, or nil when absent or
	// missing a required axis.
	Chart *Chart
}

// Empty reports whether no directive survived parsing.
func (o *Options) Empty() bool {
	return len(o.Columns) == 0 && len(o.RowRules) == 0 && o.Chart == nil
}

// Column holds the display options of a single result column.
type Column struct {
	// Name is the column name exactly as written, case-sensitive.
	Name string
	// Type is one of int, float, decimal, text ("" when unset).
	Type string
	// Align is one of left, center, right ("" when unset).
	Align string
	// Format is one of number, datetime, text ("" when unset).
	Format string
	// Comma groups the integer part into thousands when formatting numbers.
	Comma bool
	// Decimal is the fixed number of fraction digits, nil when unset.
	Decimal *int
	// Pattern is the datetime layout built from yyyy MM dd HH mm ss tokens.
	Pattern string
	// Width is a structural width value, emitted verbatim.
	Width string
	// Static is the unconditional cell style. It is ignored whenever
	// Conditionals is non-empty.
	Static Style
	// Conditionals are if<op><number>:<styles> clauses in source order.
	Conditionals []Conditional
}

// Style is a set of visual properties shared by static, conditional and
// row-level styling.
type Style struct {
	Color      string
	Background string
	FontWeight string
	Bold       bool
}

// Conditional styles a cell when its numeric value satisfies the comparison.
type Conditional struct {
	Op    Op
	Value float64
	Style Style
}

// RowRule styles a whole row when the named column's value satisfies the
// comparison. Whether the comparison is numeric or textual is fixed when the
// directive is parsed and never revisited per row.
type RowRule struct {
	Column string
	Op     Op
	// Text is the comparison literal as written (quotes stripped).
	Text string
	// Number is the parsed literal, valid only when Numeric is true.
	Number  float64
	Numeric bool
	Style   Style
}

// Chart describes the chart requested by an @chart directive. The zero value
// is not valid; charts are produced by Parse with defaults applied.
type Chart struct {
	Type       string   `json:"type"`
	XAxis      string   `json:"xAxis"`
	YAxis      []string `json:"yAxis"`
	Title      string   `json:"title,omitempty"`
	ShowLegend bool     `json:"showLegend"`
	ShowGrid   bool     `json:"showGrid"`
	Stacked    bool     `json:"stacked"`
	Curve      string   `json:"curve"`
}
