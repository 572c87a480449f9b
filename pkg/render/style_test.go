package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/pkg/directive"
)

func TestCellStyle_AlignOnly(t *testing.T) {
	decls := CellStyle(42, directive.Column{Align: "right"})
	assert.Equal(t, "text-align: right", decls.String())
}

func TestCellStyle_StaticOrder(t *testing.T) {
	col := directive.Column{
		Static: directive.Style{Color: "red", Background: "#eee", FontWeight: "bold"},
	}
	decls := CellStyle("anything", col)
	assert.Equal(t, "background-color: #eee; color: red; font-weight: bold", decls.String())
}

func TestCellStyle_ConditionalReplacesStatic(t *testing.T) {
	col := directive.Column{
		Static: directive.Style{Color: "gray", Background: "#ccc"},
		Conditionals: []directive.Conditional{
			{Op: directive.OpLT, Value: 0, Style: directive.Style{Color: "red"}},
		},
	}

	// Matching rule: only the conditional declarations appear.
	decls := CellStyle(-5, col)
	assert.Equal(t, "color: red", decls.String())

	// Non-matching value: no fallback to the static style.
	decls = CellStyle(5, col)
	assert.Empty(t, decls)
}

func TestCellStyle_UnparseableValueSkipsConditionals(t *testing.T) {
	col := directive.Column{
		Align: "right",
		Conditionals: []directive.Conditional{
			{Op: directive.OpNE, Value: 0, Style: directive.Style{Color: "red"}},
		},
	}

	decls := CellStyle("n/a", col)
	// Alignment survives; no conditional is evaluated at all.
	assert.Equal(t, "text-align: right", decls.String())
}

func TestCellStyle_LaterMatchWinsCascade(t *testing.T) {
	col := directive.Column{
		Conditionals: []directive.Conditional{
			{Op: directive.OpGT, Value: 0, Style: directive.Style{Color: "blue"}},
			{Op: directive.OpGT, Value: 0, Style: directive.Style{Color: "green"}},
		},
	}

	decls := CellStyle(5, col)
	require.Len(t, decls, 2)
	assert.Equal(t, "blue", decls[0].Value)

	// Both declarations are kept; the cascade resolves to the later one.
	effective, ok := decls.Get("color")
	require.True(t, ok)
	assert.Equal(t, "green", effective)
}

func TestCellStyle_ConditionalPropertyOrder(t *testing.T) {
	col := directive.Column{
		Conditionals: []directive.Conditional{
			{Op: directive.OpGE, Value: 100, Style: directive.Style{
				Color: "white", Background: "#c00", FontWeight: "bold", Bold: true,
			}},
		},
	}

	decls := CellStyle(150, col)
	assert.Equal(t, "color: white; background-color: #c00; font-weight: bold", decls.String())
}

func TestCellStyle_StringNumberEvaluated(t *testing.T) {
	col := directive.Column{
		Conditionals: []directive.Conditional{
			{Op: directive.OpLT, Value: 0, Style: directive.Style{Color: "red"}},
		},
	}
	decls := CellStyle("-3.5", col)
	assert.Equal(t, "color: red", decls.String())
}

func TestWidthStyle(t *testing.T) {
	assert.Empty(t, WidthStyle(directive.Column{}))
	assert.Equal(t, "width: 120px", WidthStyle(directive.Column{Width: "120px"}).String())
}

func TestRowStyle_NumericRule(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "price", Op: directive.OpGT, Number: 100, Numeric: true,
			Style: directive.Style{Background: "#ffeeee"}},
	}

	decls := RowStyle(map[string]any{"price": 150}, rules)
	assert.Equal(t, "background-color: #ffeeee", decls.String())

	assert.Empty(t, RowStyle(map[string]any{"price": 99}, rules))
}

func TestRowStyle_StringRule(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "曜日", Op: directive.OpEQ, Text: "土",
			Style: directive.Style{Background: "#eeeeff"}},
	}

	decls := RowStyle(map[string]any{"曜日": "土"}, rules)
	assert.Equal(t, "background-color: #eeeeff", decls.String())

	assert.Empty(t, RowStyle(map[string]any{"曜日": "日"}, rules))
}

func TestRowStyle_LexicographicOrdering(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "name", Op: directive.OpLT, Text: "banana",
			Style: directive.Style{Color: "green"}},
	}

	assert.NotEmpty(t, RowStyle(map[string]any{"name": "apple"}, rules))
	assert.Empty(t, RowStyle(map[string]any{"name": "cherry"}, rules))
}

func TestRowStyle_MissingAndNullCellsSkip(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "a", Op: directive.OpGT, Number: 0, Numeric: true,
			Style: directive.Style{Color: "red"}},
		{Column: "b", Op: directive.OpEQ, Text: "x",
			Style: directive.Style{Color: "blue"}},
	}

	// Column a missing entirely, column b NULL: neither rule fires, and
	// neither aborts the walk.
	decls := RowStyle(map[string]any{"b": nil, "c": 1}, rules)
	assert.Empty(t, decls)
}

func TestRowStyle_UnparseableCellSkipsRuleNotWalk(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "n", Op: directive.OpGT, Number: 0, Numeric: true,
			Style: directive.Style{Color: "red"}},
		{Column: "s", Op: directive.OpEQ, Text: "ok",
			Style: directive.Style{Color: "green"}},
	}

	decls := RowStyle(map[string]any{"n": "not-a-number", "s": "ok"}, rules)
	assert.Equal(t, "color: green", decls.String())
}

func TestRowStyle_MatchesAppendInRuleOrder(t *testing.T) {
	rules := []directive.RowRule{
		{Column: "n", Op: directive.OpGT, Number: 0, Numeric: true,
			Style: directive.Style{Background: "#eee"}},
		{Column: "n", Op: directive.OpGT, Number: 10, Numeric: true,
			Style: directive.Style{Background: "#ddd"}},
	}

	decls := RowStyle(map[string]any{"n": 50}, rules)
	require.Len(t, decls, 2)
	assert.Equal(t, "#eee", decls[0].Value)

	effective, _ := decls.Get("background-color")
	assert.Equal(t, "#ddd", effective)
}

func TestRowStyle_QuotedNumberComparesAsString(t *testing.T) {
	// A rule parsed from code=='100' stays textual: integer 100 from the
	// driver stringifies to "100" and matches, "100.0" does not.
	rules := []directive.RowRule{
		{Column: "code", Op: directive.OpEQ, Text: "100",
			Style: directive.Style{Color: "red"}},
	}

	assert.NotEmpty(t, RowStyle(map[string]any{"code": int64(100)}, rules))
	assert.Empty(t, RowStyle(map[string]any{"code": "100.0"}, rules))
}
