package chart

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func renderHTML(w io.Writer, c Curve) error {
	yType := "value"
	if c.logSafe() {
		yType = "log"
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: c.Title,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: c.XLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  c.YLabel,
			Type:  yType,
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	labels := make([]string, len(c.X))
	data := make([]opts.LineData, len(c.Y))
	for i := range c.X {
		labels[i] = strconv.FormatFloat(c.X[i], 'g', -1, 64)
		data[i] = opts.LineData{Value: c.Y[i]}
	}

	var (
		thresholds = make([]opts.MarkLineNameYAxisItem, 0, len(c.Marks))
		ranks      = make([]opts.MarkLineNameXAxisItem, 0, len(c.Marks))
	)
	for _, m := range c.Marks {
		thresholds = append(thresholds, opts.MarkLineNameYAxisItem{
			Name:  "threshold " + strconv.FormatFloat(m.Threshold, 'g', 4, 64),
			YAxis: m.Threshold,
		})
		ranks = append(ranks, opts.MarkLineNameXAxisItem{
			Name:  "r=" + strconv.Itoa(m.Rank),
			XAxis: strconv.Itoa(m.Rank),
		})
	}

	line.SetXAxis(labels).
		AddSeries(c.Name, data,
			charts.WithMarkLineNameYAxisItemOpts(thresholds...),
			charts.WithMarkLineNameXAxisItemOpts(ranks...),
		)
	return line.Render(w)
}
