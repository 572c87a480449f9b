package directive

import "testing"

func TestParse_NoBlock(t *testing.T) {
	opts := Parse("SELECT id, name FROM users")

	if opts == nil {
		t.Fatal("expected non-nil options")
	}
	if !opts.Empty() {
		t.Errorf("expected empty options, got %+v", opts)
	}
}

func TestParse_PlainCommentIgnored(t *testing.T) {
	opts := Parse(`/* @column price type=int */
SELECT price FROM items`)

	if !opts.Empty() {
		t.Errorf("expected directives in a plain comment to be ignored, got %+v", opts)
	}
}

func TestParse_FirstBlockOnly(t *testing.T) {
	opts := Parse(`/**
 * @column a align=left
 */
SELECT 1;
/**
 * @column b align=right
 */`)

	if len(opts.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(opts.Columns))
	}
	if _, ok := opts.Columns["a"]; !ok {
		t.Error("expected column 'a' from the first block")
	}
	if _, ok := opts.Columns["b"]; ok {
		t.Error("column 'b' from the second block should be invisible")
	}
}

func TestParse_BlockEndsAtFirstTerminator(t *testing.T) {
	opts := Parse(`/** @column a align=left */ SELECT 1 /* x */ /** @column b align=left */`)

	if _, ok := opts.Columns["a"]; !ok {
		t.Error("expected column 'a'")
	}
	if _, ok := opts.Columns["b"]; ok {
		t.Error("non-greedy block must end at the first */")
	}
}

func TestParse_GutterDecoration(t *testing.T) {
	opts := Parse(`/**
 * @column price type=int align=right
 *   @row price>100:bg=red
 */
SELECT price FROM items`)

	if _, ok := opts.Columns["price"]; !ok {
		t.Error("expected @column after a comment gutter to parse")
	}
	if len(opts.RowRules) != 1 {
		t.Errorf("expected 1 row rule, got %d", len(opts.RowRules))
	}
}

func TestParse_ColumnClauses(t *testing.T) {
	opts := Parse(`/**
 * @column price type=int align=right format=number comma=true decimal=2 width=120
 */`)

	col, ok := opts.Columns["price"]
	if !ok {
		t.Fatal("expected column 'price'")
	}
	if col.Type != "int" {
		t.Errorf("expected type 'int', got %q", col.Type)
	}
	if col.Align != "right" {
		t.Errorf("expected align 'right', got %q", col.Align)
	}
	if col.Format != "number" {
		t.Errorf("expected format 'number', got %q", col.Format)
	}
	if !col.Comma {
		t.Error("expected comma=true")
	}
	if col.Decimal == nil || *col.Decimal != 2 {
		t.Errorf("expected decimal 2, got %v", col.Decimal)
	}
	if col.Width != "120" {
		t.Errorf("expected width '120', got %q", col.Width)
	}
}

func TestParse_QuotedValues(t *testing.T) {
	opts := Parse(`/**
 * @column ts format=datetime pattern="yyyy/MM/dd HH:mm:ss"
 * @column note color='dark red'
 */`)

	if p := opts.Columns["ts"].Pattern; p != "yyyy/MM/dd HH:mm:ss" {
		t.Errorf("expected double-quoted pattern with spaces, got %q", p)
	}
	if c := opts.Columns["note"].Static.Color; c != "dark red" {
		t.Errorf("expected single-quoted color with spaces, got %q", c)
	}
}

func TestParse_LastKeyWins(t *testing.T) {
	opts := Parse(`/**
 * @column amount color=red color=blue bg=#fff backgroundColor=#000
 */`)

	col := opts.Columns["amount"]
	if col.Static.Color != "blue" {
		t.Errorf("expected last color 'blue', got %q", col.Static.Color)
	}
	if col.Static.Background != "#000" {
		t.Errorf("expected backgroundColor to override bg, got %q", col.Static.Background)
	}
}

func TestParse_LastDirectiveWinsWholeRecord(t *testing.T) {
	opts := Parse(`/**
 * @column price align=right comma=true
 * @column price color=red
 */`)

	col := opts.Columns["price"]
	if col.Static.Color != "red" {
		t.Errorf("expected color from the last directive, got %q", col.Static.Color)
	}
	// The record is replaced, not merged.
	if col.Align != "" {
		t.Errorf("expected align from the first directive to be gone, got %q", col.Align)
	}
	if col.Comma {
		t.Error("expected comma from the first directive to be gone")
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	opts := Parse(`/**
 * @column price sparkle=yes type=int
 */`)

	col := opts.Columns["price"]
	if col.Type != "int" {
		t.Errorf("expected type 'int', got %q", col.Type)
	}
}

func TestParse_InvalidEnumKeepsEarlierValue(t *testing.T) {
	opts := Parse(`/**
 * @column a type=int type=bogus
 * @column b align=middle
 */`)

	if typ := opts.Columns["a"].Type; typ != "int" {
		t.Errorf("expected invalid enum value to be a no-op, got type %q", typ)
	}
	if al := opts.Columns["b"].Align; al != "" {
		t.Errorf("expected unrecognized align to stay unset, got %q", al)
	}
}

func TestParse_DecimalInvalidClears(t *testing.T) {
	opts := Parse(`/**
 * @column a decimal=3 decimal=lots
 * @column b decimal=-1
 */`)

	if d := opts.Columns["a"].Decimal; d != nil {
		t.Errorf("expected the last decimal clause to clear the field, got %d", *d)
	}
	if d := opts.Columns["b"].Decimal; d != nil {
		t.Errorf("expected negative decimal to stay unset, got %d", *d)
	}
}

func TestParse_CommaRequiresExactTrue(t *testing.T) {
	opts := Parse(`/**
 * @column a comma=TRUE
 * @column b comma=yes
 * @column c comma=true
 */`)

	if opts.Columns["a"].Comma {
		t.Error("comma=TRUE must not enable grouping")
	}
	if opts.Columns["b"].Comma {
		t.Error("comma=yes must not enable grouping")
	}
	if !opts.Columns["c"].Comma {
		t.Error("comma=true must enable grouping")
	}
}

func TestParse_BoldSetsFontWeight(t *testing.T) {
	opts := Parse(`/**
 * @column total bold=true
 * @column note bold=1
 */`)

	st := opts.Columns["total"].Static
	if !st.Bold || st.FontWeight != "bold" {
		t.Errorf("expected bold=true to set the font weight, got %+v", st)
	}
	if st := opts.Columns["note"].Static; st.Bold {
		t.Error("bold=1 must not set the flag")
	}
}

func TestParse_ConditionalClauses(t *testing.T) {
	opts := Parse(`/**
 * @column diff if<0:color=red if>=100:bg=#eeffee,bold=true
 */`)

	conds := opts.Columns["diff"].Conditionals
	if len(conds) != 2 {
		t.Fatalf("expected 2 conditional rules, got %d", len(conds))
	}
	if conds[0].Op != OpLT || conds[0].Value != 0 {
		t.Errorf("expected first rule <0, got %s%v", conds[0].Op, conds[0].Value)
	}
	if conds[0].Style.Color != "red" {
		t.Errorf("expected first rule color red, got %q", conds[0].Style.Color)
	}
	if conds[1].Op != OpGE || conds[1].Value != 100 {
		t.Errorf("expected second rule >=100, got %s%v", conds[1].Op, conds[1].Value)
	}
	if conds[1].Style.Background != "#eeffee" || !conds[1].Style.Bold {
		t.Errorf("expected second rule bg and bold, got %+v", conds[1].Style)
	}
}

func TestParse_ConditionalOrderPreserved(t *testing.T) {
	opts := Parse(`/**
 * @column n if>0:color=blue if>0:color=green
 */`)

	conds := opts.Columns["n"].Conditionals
	if len(conds) != 2 {
		t.Fatalf("expected both rules kept, got %d", len(conds))
	}
	if conds[0].Style.Color != "blue" || conds[1].Style.Color != "green" {
		t.Errorf("expected source order blue then green, got %q, %q",
			conds[0].Style.Color, conds[1].Style.Color)
	}
}

func TestParse_ConditionalInvalidOperatorRuns(t *testing.T) {
	opts := Parse(`/**
 * @column n if=<5:color=red if===5:color=red if=5:color=red if<5:color=green
 */`)

	conds := opts.Columns["n"].Conditionals
	if len(conds) != 1 {
		t.Fatalf("expected only the valid clause to survive, got %d", len(conds))
	}
	if conds[0].Op != OpLT || conds[0].Style.Color != "green" {
		t.Errorf("unexpected surviving clause: %+v", conds[0])
	}
}

func TestParse_ConditionalNegativeThreshold(t *testing.T) {
	opts := Parse(`/**
 * @column n if<=-1.5:color=red
 */`)

	conds := opts.Columns["n"].Conditionals
	if len(conds) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(conds))
	}
	if conds[0].Op != OpLE || conds[0].Value != -1.5 {
		t.Errorf("expected <=-1.5, got %s%v", conds[0].Op, conds[0].Value)
	}
}

func TestParse_ConditionalStylesNotStatic(t *testing.T) {
	opts := Parse(`/**
 * @column n align=right if<0:color=red
 */`)

	col := opts.Columns["n"]
	if col.Static.Color != "" {
		t.Errorf("a conditional's color must not leak into the static style, got %q", col.Static.Color)
	}
	if col.Align != "right" {
		t.Errorf("clauses outside the conditional still apply, got align %q", col.Align)
	}
}

func TestParse_ColumnNamesCaseSensitive(t *testing.T) {
	opts := Parse(`/**
 * @column Price align=left
 * @column price align=right
 */`)

	if len(opts.Columns) != 2 {
		t.Fatalf("expected 2 distinct columns, got %d", len(opts.Columns))
	}
	if opts.Columns["Price"].Align != "left" || opts.Columns["price"].Align != "right" {
		t.Error("column names must be case-sensitive")
	}
}

func TestParse_NonASCIIColumnName(t *testing.T) {
	opts := Parse(`/**
 * @column 売上 format=number comma=true
 */`)

	col, ok := opts.Columns["売上"]
	if !ok {
		t.Fatal("expected non-ASCII column name to parse")
	}
	if !col.Comma {
		t.Error("expected comma=true")
	}
}
