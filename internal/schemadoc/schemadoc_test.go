package schemadoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// stubAdapter serves canned metadata.
type stubAdapter struct {
	driver     string
	tables     []adapter.Table
	tablesErr  error
	columns    map[string][]adapter.Column
	columnsErr map[string]error
	counts     map[string]int64

	countSQL []string
}

func (s *stubAdapter) DriverName() string                            { return s.driver }
func (s *stubAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (s *stubAdapter) Close() error                                  { return nil }
func (s *stubAdapter) Ping(context.Context) error                    { return nil }
func (s *stubAdapter) EnforceReadOnly(context.Context) error         { return nil }

func (s *stubAdapter) Query(_ context.Context, sql string) (*adapter.ResultSet, error) {
	s.countSQL = append(s.countSQL, sql)
	for name, n := range s.counts {
		if containsIdent(sql, name) {
			return &adapter.ResultSet{Columns: []string{"n"}, Rows: []map[string]any{{"n": n}}}, nil
		}
	}
	return nil, errors.New("no such table")
}

func (s *stubAdapter) Tables(context.Context) ([]adapter.Table, error) {
	return s.tables, s.tablesErr
}

func (s *stubAdapter) Columns(_ context.Context, table string) ([]adapter.Column, error) {
	if err := s.columnsErr[table]; err != nil {
		return nil, err
	}
	return s.columns[table], nil
}

var _ adapter.Adapter = (*stubAdapter)(nil)

func containsIdent(sql, name string) bool {
	return strings.Contains(sql, `"`+name+`"`) || strings.Contains(sql, "`"+name+"`")
}

func fixtureAdapter() *stubAdapter {
	return &stubAdapter{
		driver: "sqlite",
		tables: []adapter.Table{
			{Name: "daily_sales", Type: "table", Comment: "One row per region per day."},
			{Name: "v_totals", Type: "view"},
		},
		columns: map[string][]adapter.Column{
			"daily_sales": {
				{Name: "id", Type: "INTEGER", Nullable: false, Comment: "Primary key"},
				{Name: "region", Type: "TEXT", Nullable: true, Default: "'unknown'"},
				{Name: "amount", Type: "REAL", Nullable: true, Default: "0"},
			},
			"v_totals": {
				{Name: "total", Type: "REAL", Nullable: true},
			},
		},
		counts: map[string]int64{"daily_sales": 1200, "v_totals": 3},
	}
}

func TestGenerate_Basic(t *testing.T) {
	doc, err := Generate(context.Background(), fixtureAdapter(), Options{})
	require.NoError(t, err)

	assert.Contains(t, doc, "# Database Schema")
	assert.Contains(t, doc, "## daily_sales")
	assert.Contains(t, doc, "- Type: table")
	assert.Contains(t, doc, "## v_totals")
	assert.Contains(t, doc, "- Type: view")
	assert.Contains(t, doc, "One row per region per day.")
	assert.Contains(t, doc, "| Column | Type | Nullable | Default | Comment |")
	assert.Contains(t, doc, "| id | INTEGER | no |  | Primary key |")
	assert.Contains(t, doc, "| region | TEXT | yes | 'unknown' |  |")
	assert.NotContains(t, doc, "- Rows:", "row counts are opt-in")
}

func TestGenerate_CustomTitle(t *testing.T) {
	doc, err := Generate(context.Background(), fixtureAdapter(), Options{Title: "Shop Warehouse"})
	require.NoError(t, err)
	assert.Contains(t, doc, "# Shop Warehouse")
}

func TestGenerate_TitleCase(t *testing.T) {
	doc, err := Generate(context.Background(), fixtureAdapter(), Options{TitleCase: true})
	require.NoError(t, err)
	assert.Contains(t, doc, "## Daily Sales")
	assert.NotContains(t, doc, "## daily_sales")
}

func TestGenerate_RowCounts(t *testing.T) {
	stub := fixtureAdapter()
	doc, err := Generate(context.Background(), stub, Options{RowCounts: true})
	require.NoError(t, err)

	assert.Contains(t, doc, "- Rows: 1200")
	assert.Contains(t, doc, "- Rows: 3")
	require.NotEmpty(t, stub.countSQL)
	assert.Contains(t, stub.countSQL[0], `"daily_sales"`)
}

func TestGenerate_MySQLQuoting(t *testing.T) {
	stub := fixtureAdapter()
	stub.driver = "mysql"
	_, err := Generate(context.Background(), stub, Options{RowCounts: true})
	require.NoError(t, err)
	assert.Contains(t, stub.countSQL[0], "`daily_sales`")
}

func TestGenerate_SchemaQualified(t *testing.T) {
	stub := fixtureAdapter()
	stub.driver = "postgres"
	stub.tables[0].Schema = "public"

	doc, err := Generate(context.Background(), stub, Options{RowCounts: true})
	require.NoError(t, err)
	assert.Contains(t, doc, "- Schema: public")
	assert.Contains(t, stub.countSQL[0], `"public"."daily_sales"`)
}

func TestGenerate_HTMLComments(t *testing.T) {
	stub := fixtureAdapter()
	stub.columns["daily_sales"][0].Comment = "The <b>primary</b> key"

	doc, err := Generate(context.Background(), stub, Options{})
	require.NoError(t, err)
	assert.Contains(t, doc, "The **primary** key")
	assert.NotContains(t, doc, "<b>")
}

func TestGenerate_CommentEscaping(t *testing.T) {
	stub := fixtureAdapter()
	stub.columns["daily_sales"][1].Comment = "east|west\nsplit"

	doc, err := Generate(context.Background(), stub, Options{})
	require.NoError(t, err)
	assert.Contains(t, doc, `east\|west split`)
}

func TestGenerate_ColumnsFailureIsNonFatal(t *testing.T) {
	stub := fixtureAdapter()
	stub.columnsErr = map[string]error{"daily_sales": errors.New("permission denied")}

	doc, err := Generate(context.Background(), stub, Options{})
	require.NoError(t, err)

	assert.Contains(t, doc, "_Column details unavailable._")
	// The healthy table still renders in full.
	assert.Contains(t, doc, "| total | REAL | yes |  |  |")
}

func TestGenerate_TablesFailure(t *testing.T) {
	stub := &stubAdapter{driver: "sqlite", tablesErr: errors.New("not connected")}
	_, err := Generate(context.Background(), stub, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list tables")
}
