package chart

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/tcxview/internal/domain/view"
)

// Surface sizes per chart shape.
var sizes = map[view.ChartKind][2]string{
	view.ChartSession:  {"100%", "460px"},
	view.ChartDay:      {"100%", "64px"},
	view.ChartProgress: {"100%", "460px"},
}

// renderHTML draws spec as a standalone echarts page. Values are plotted
// as given.
func renderHTML(spec view.ChartSpec, chartID, theme, assetsHost string) ([]byte, error) {
	line := build(spec, chartID, theme, assetsHost)
	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, err
	}
	buf.WriteString(clickScript(spec, chartID))
	return buf.Bytes(), nil
}

func build(spec view.ChartSpec, chartID, theme, assetsHost string) *charts.Line {
	size := sizes[spec.Kind]
	initOpts := opts.Initialization{
		PageTitle: spec.Title,
		ChartID:   chartID,
		Theme:     theme,
		Width:     size[0],
		Height:    size[1],
	}
	if assetsHost != "" {
		initOpts.AssetsHost = assetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.Legend)}),
		charts.WithTooltipOpts(tooltip(spec)),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.XName,
			Show: opts.Bool(spec.Kind != view.ChartDay),
		}),
	)
	if spec.Title != "" {
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: spec.Title}))
	}
	if spec.Kind == view.ChartDay {
		line.SetGlobalOptions(charts.WithGridOpts(opts.Grid{Left: "2", Right: "2", Top: "2", Bottom: "2"}))
	}

	for i, axis := range spec.Axes {
		y := yAxis(axis)
		if i == 0 {
			line.SetGlobalOptions(charts.WithYAxisOpts(y))
			continue
		}
		line.ExtendYAxis(y)
	}

	line.SetXAxis(spec.Labels)
	for i, s := range spec.Series {
		line.AddSeries(s.Name, lineData(s.Values), seriesOpts(spec, i)...)
	}
	return line
}

func tooltip(spec view.ChartSpec) opts.Tooltip {
	t := opts.Tooltip{Show: opts.Bool(spec.Tooltip), Trigger: "axis"}
	if spec.Tooltip && len(spec.Tips) > 0 {
		t.Formatter = opts.FuncOpts(tipFormatter(spec.Tips))
	}
	return t
}

// tipFormatter lists the axis label and every series value, then the tip
// lines of the hovered index. The lines travel base64 encoded and are HTML
// escaped on display. The function is kept on one line and free of double
// quotes so that it survives the option encoding.
func tipFormatter(tips [][]string) string {
	raw, _ := json.Marshal(tips)
	encoded := base64.StdEncoding.EncodeToString(raw)
	return strings.Join([]string{
		"function (params) {",
		"var list = Array.isArray(params) ? params : [params];",
		"if (!list.length) { return ''; }",
		"var enc = echarts.format.encodeHTML;",
		"var bytes = Uint8Array.from(atob('" + encoded + "'), function (c) { return c.charCodeAt(0); });",
		"var tips = JSON.parse(new TextDecoder().decode(bytes));",
		"var out = [enc(String(list[0].axisValueLabel || list[0].name))];",
		"list.forEach(function (p) {",
		"var v = p.value;",
		"out.push(p.marker + enc(p.seriesName) + ': ' + (v === '-' || v == null ? '-' : Number(v).toFixed(1)));",
		"});",
		"(tips[list[0].dataIndex] || []).forEach(function (line) { out.push(enc(line)); });",
		"return out.join('<br/>');",
		"}",
	}, " ")
}

func yAxis(a view.Axis) opts.YAxis {
	y := opts.YAxis{
		Name:     a.Name,
		Type:     "value",
		Show:     opts.Bool(a.Visible),
		Position: a.Position,
	}
	if a.Min != nil {
		y.Min = *a.Min
	}
	if a.Max != nil {
		y.Max = *a.Max
	}
	if a.Color != "" {
		y.AxisLabel = &opts.AxisLabel{Color: a.Color}
	}
	return y
}

func seriesOpts(spec view.ChartSpec, index int) []charts.SeriesOpts {
	s := spec.Series[index]
	out := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			YAxisIndex: s.Axis,
			ShowSymbol: opts.Bool(false),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: lineWidth(spec.Kind)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
	}
	var marked bool
	for _, g := range spec.Guides {
		if g.Series != index {
			continue
		}
		marked = true
		out = append(out, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  g.Label,
			YAxis: g.Value,
		}))
	}
	if marked {
		out = append(out, charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			Label:  &opts.Label{Show: opts.Bool(spec.Kind != view.ChartDay), Formatter: "{b}"},
		}))
	}
	return out
}

func lineWidth(kind view.ChartKind) float32 {
	if kind == view.ChartDay {
		return 1
	}
	return 2
}

// lineData maps nil values to "-", which echarts draws as a gap.
func lineData(values []*float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		if v == nil {
			items[i] = opts.LineData{Value: "-"}
			continue
		}
		items[i] = opts.LineData{Value: *v}
	}
	return items
}

// clickScript binds the chart's click-through to the navigation routes.
// Charts are embedded in frames, so navigation targets the top window.
func clickScript(spec view.ChartSpec, chartID string) string {
	v := "goecharts_" + chartID
	switch spec.Click.Kind {
	case view.ClickOnDay:
		return fmt.Sprintf(`<script type="text/javascript">
(function(){
  var c = %[1]s;
  c.getZr().setCursorStyle('pointer');
  c.getZr().on('click', function(){ window.top.location.href = %[2]s; });
})();
</script>
`, v, strconv.Quote("/navigate/day/"+spec.Click.Date))
	case view.ClickProgress:
		return fmt.Sprintf(`<script type="text/javascript">
(function(){
  var c = %[1]s;
  c.getZr().on('click', function(e){
    var pt = [e.offsetX, e.offsetY];
    if (!c.containPixel('grid', pt)) { return; }
    var idx = Math.round(c.convertFromPixel({seriesIndex: 0}, pt)[0]);
    if (idx >= 0) { window.top.location.href = '/navigate/progress/' + idx; }
  });
})();
</script>
`, v)
	default:
		return ""
	}
}
