package directive

import "testing"

func TestParse_ChartDefaults(t *testing.T) {
	opts := Parse(`/**
 * @chart type=line x=日付 y=店舗A,店舗B
 */`)

	c := opts.Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.Type != "line" {
		t.Errorf("expected type 'line', got %q", c.Type)
	}
	if c.XAxis != "日付" {
		t.Errorf("expected x axis '日付', got %q", c.XAxis)
	}
	if len(c.YAxis) != 2 || c.YAxis[0] != "店舗A" || c.YAxis[1] != "店舗B" {
		t.Errorf("expected y axes [店舗A 店舗B], got %v", c.YAxis)
	}
	if !c.ShowLegend || !c.ShowGrid {
		t.Error("legend and grid default to true")
	}
	if c.Stacked {
		t.Error("stacked defaults to false")
	}
	if c.Curve != "smooth" {
		t.Errorf("expected default curve 'smooth', got %q", c.Curve)
	}
}

func TestParse_ChartMissingAxisDiscarded(t *testing.T) {
	if c := Parse(`/** @chart y=sales */`).Chart; c != nil {
		t.Errorf("chart without x must be discarded, got %+v", c)
	}
	if c := Parse(`/** @chart x=date */`).Chart; c != nil {
		t.Errorf("chart without y must be discarded, got %+v", c)
	}
	if c := Parse(`/** @chart x=date y=,, */`).Chart; c != nil {
		t.Errorf("chart whose y series are all empty must be discarded, got %+v", c)
	}
}

func TestParse_ChartAxisSynonyms(t *testing.T) {
	opts := Parse(`/**
 * @chart xAxis=month yAxis=revenue
 */`)

	c := opts.Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.XAxis != "month" || len(c.YAxis) != 1 || c.YAxis[0] != "revenue" {
		t.Errorf("xAxis/yAxis synonyms not honored: %+v", c)
	}
}

func TestParse_ChartBooleans(t *testing.T) {
	opts := Parse(`/**
 * @chart type=bar x=d y=v legend=false grid=false stacked=true
 */`)

	c := opts.Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.ShowLegend || c.ShowGrid {
		t.Error("expected legend=false and grid=false to apply")
	}
	if !c.Stacked {
		t.Error("expected stacked=true to apply")
	}
}

func TestParse_ChartBadBooleanKeepsDefault(t *testing.T) {
	c := Parse(`/** @chart x=d y=v legend=no stacked=1 */`).Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if !c.ShowLegend {
		t.Error("legend=no must keep the default true")
	}
	if c.Stacked {
		t.Error("stacked=1 must keep the default false")
	}
}

func TestParse_ChartInvalidTypeKeepsDefault(t *testing.T) {
	c := Parse(`/** @chart type=donut x=d y=v */`).Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.Type != "line" {
		t.Errorf("unrecognized type must keep 'line', got %q", c.Type)
	}
}

func TestParse_ChartCurveAndTitle(t *testing.T) {
	c := Parse(`/** @chart x=d y=v curve=straight title="Monthly Sales" */`).Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.Curve != "straight" {
		t.Errorf("expected curve 'straight', got %q", c.Curve)
	}
	if c.Title != "Monthly Sales" {
		t.Errorf("expected quoted title, got %q", c.Title)
	}
}

func TestParse_ChartFirstDirectiveOnly(t *testing.T) {
	opts := Parse(`/**
 * @chart type=bar x=a y=b
 * @chart type=pie x=c y=d
 */`)

	c := opts.Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if c.Type != "bar" || c.XAxis != "a" {
		t.Errorf("only the first @chart counts, got %+v", c)
	}
}

func TestParse_ChartYAxisTrimmed(t *testing.T) {
	c := Parse(`/** @chart x=d y="store a, store b, " */`).Chart
	if c == nil {
		t.Fatal("expected a chart spec")
	}
	if len(c.YAxis) != 2 || c.YAxis[0] != "store a" || c.YAxis[1] != "store b" {
		t.Errorf("expected trimmed series with empties dropped, got %v", c.YAxis)
	}
}
