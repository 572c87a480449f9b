package directive

import "strings"

var (
	validChartTypes = map[string]bool{
		"line":    true,
		"bar":     true,
		"pie":     true,
		"area":    true,
		"scatter": true,
	}
	validCurves = map[string]bool{"smooth": true, "straight": true}
)

// parseChart parses an @chart body. Both axes are required: without an x
// axis and at least one y series the whole directive is discarded, never a
// partial chart. Every other key falls back to its default when absent or
// unrecognized.
func parseChart(body string) *Chart {
	c := &Chart{
		Type:       "line",
		ShowLegend: true,
		ShowGrid:   true,
		Curve:      "smooth",
	}

	for _, loc := range kvPattern.FindAllStringSubmatchIndex(body, -1) {
		key := body[loc[2]:loc[3]]
		value := kvValue(body, loc)

		switch key {
		case "type":
			if validChartTypes[value] {
				c.Type = value
			}
		case "x", "xAxis":
			c.XAxis = value
		case "y", "yAxis":
			c.YAxis = splitAxes(value)
		case "title":
			c.Title = value
		case "legend", "showLegend":
			setBool(&c.ShowLegend, value)
		case "grid", "showGrid":
			setBool(&c.ShowGrid, value)
		case "stacked":
			setBool(&c.Stacked, value)
		case "curve":
			if validCurves[value] {
				c.Curve = value
			}
		}
	}

	if c.XAxis == "" || len(c.YAxis) == 0 {
		return nil
	}
	return c
}

// splitAxes splits a y-axis value on commas, trimming each series name and
// dropping empties.
func splitAxes(value string) []string {
	var axes []string
	for _, a := range strings.Split(value, ",") {
		if a = strings.TrimSpace(a); a != "" {
			axes = append(axes, a)
		}
	}
	return axes
}

// setBool applies a boolean clause value. Only the exact strings true and
// false take effect; anything else keeps the default.
func setBool(dst *bool, value string) {
	switch value {
	case "true":
		*dst = true
	case "false":
		*dst = false
	}
}
