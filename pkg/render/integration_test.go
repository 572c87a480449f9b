package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/pkg/directive"
)

// End-to-end: a realistic canvas comment through parsing, formatting and
// style resolution.
func TestDirectiveRenderRoundTrip(t *testing.T) {
	opts := directive.Parse(`/**
 * @column 売上 format=number comma=true decimal=2 align=right width=120px
 * @column 日付 format=datetime pattern="yyyy/MM/dd"
 * @column 差分 if<0:color=red if>=0:color=green
 * @row 曜日=="土":bg=#eeeeff
 * @row 売上>1000000:bold=true
 * @chart type=bar x=日付 y=売上
 */
SELECT 日付, 曜日, 売上, 差分 FROM daily_sales`)

	require.Len(t, opts.Columns, 3)
	require.Len(t, opts.RowRules, 2)
	require.NotNil(t, opts.Chart)

	sales := opts.Columns["売上"]
	assert.Equal(t, "1,234,567.89", FormatValue(1234567.891, sales))
	assert.Equal(t, "", FormatValue(nil, sales))
	assert.Equal(t, "text-align: right", CellStyle(1234567.891, sales).String())
	assert.Equal(t, "width: 120px", WidthStyle(sales).String())

	date := opts.Columns["日付"]
	assert.Equal(t, "2025/12/28", FormatValue("2025-12-28", date))

	diff := opts.Columns["差分"]
	assert.Equal(t, "color: red", CellStyle(-12, diff).String())
	assert.Equal(t, "color: green", CellStyle(0, diff).String())

	saturday := map[string]any{"曜日": "土", "売上": int64(2000000)}
	decls := RowStyle(saturday, opts.RowRules)
	bg, ok := decls.Get("background-color")
	require.True(t, ok)
	assert.Equal(t, "#eeeeff", bg)
	weight, ok := decls.Get("font-weight")
	require.True(t, ok)
	assert.Equal(t, "bold", weight)

	assert.Equal(t, "bar", opts.Chart.Type)
	assert.Equal(t, []string{"売上"}, opts.Chart.YAxis)
	assert.True(t, opts.Chart.ShowLegend)
}

// Adversarial input must degrade quietly, never panic or fail.
func TestDirectiveRenderFailOpen(t *testing.T) {
	opts := directive.Parse(`/**
 * @column
 * @column x if=>5:color=red decimal=banana type=
 * @row >>>:::
 * @chart type=donut
 */`)

	col := opts.Columns["x"]
	assert.Empty(t, col.Conditionals)
	assert.Nil(t, col.Decimal)
	assert.Nil(t, opts.Chart)
	assert.Empty(t, opts.RowRules)

	// Rendering with degraded options still returns the raw value.
	assert.Equal(t, "whatever", FormatValue("whatever", col))
	assert.Empty(t, CellStyle("whatever", col))
}
