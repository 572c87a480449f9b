package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/directive"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

// ChartPayload is the chart spec plus the data extracted for it, as the
// workbench chart pane consumes it.
type ChartPayload struct {
	Spec   *directive.Chart `json:"spec"`
	Labels []string         `json:"labels"`
	Series []ChartSeries    `json:"series"`
}

// ChartSeries is one y column. Values that are not numeric come through
// as null so the series stays aligned with the labels.
type ChartSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// BuildChartPayload extracts chart data from a result, or nil when the
// canvas carries no valid chart directive.
func BuildChartPayload(res *runner.Result) *ChartPayload {
	if res.Options == nil || res.Options.Chart == nil {
		return nil
	}
	spec := res.Options.Chart

	payload := &ChartPayload{
		Spec:   spec,
		Labels: make([]string, 0, len(res.Rows)),
	}

	xCol := columnFor(res, spec.XAxis)
	for _, row := range res.Rows {
		payload.Labels = append(payload.Labels, render.FormatValue(row[spec.XAxis], xCol))
	}

	for _, name := range spec.YAxis {
		series := ChartSeries{Name: name, Values: make([]*float64, 0, len(res.Rows))}
		for _, row := range res.Rows {
			if f, ok := numeric(row[name]); ok {
				v := f
				series.Values = append(series.Values, &v)
			} else {
				series.Values = append(series.Values, nil)
			}
		}
		payload.Series = append(payload.Series, series)
	}
	return payload
}

// ChartJSONRenderer writes the chart payload as JSON.
type ChartJSONRenderer struct{}

func (r *ChartJSONRenderer) Render(w io.Writer, res *runner.Result) error {
	payload := BuildChartPayload(res)
	if payload == nil {
		return fmt.Errorf("canvas has no chart directive")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
