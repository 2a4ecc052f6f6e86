package plotting

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/profiler.report/internal/profiler"
)

// RenderArcChart writes an HTML page with the per-frame average errors of an
// arc and a bar chart of frame outcomes. Skipped and rejected frames appear
// as gaps in the error lines.
func RenderArcChart(w io.Writer, title string, rep *profiler.ArcReport) error {
	frames := make([]int, 0, len(rep.Frames))
	ab := make([]opts.LineData, 0, len(rep.Frames))
	gt := make([]opts.LineData, 0, len(rep.Frames))
	counts := map[profiler.FrameStatus]int{}
	for _, f := range rep.Frames {
		frames = append(frames, f.Frame)
		counts[f.Status]++
		if f.Status != profiler.FrameAccepted {
			ab = append(ab, opts.LineData{Value: "-"})
			gt = append(gt, opts.LineData{Value: "-"})
			continue
		}
		ab = append(ab, opts.LineData{Value: f.Result.AverageAB})
		gt = append(gt, opts.LineData{Value: f.Result.AverageGT})
	}

	colors := generateColors(3)
	s := rep.Summary

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("%s, %d frames, AB max %.2f%% at %.1f°, GT max %.2f%% at %.1f°",
				rep.Modality, s.NumFrames, s.MaxAB, s.MaxABAngle, s.MaxGT, s.MaxGTAngle),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average error (%)", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(frames).
		AddSeries("AB", ab,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[0])}),
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name:  fmt.Sprintf("threshold %.1f%%", rep.Options.Threshold),
				YAxis: rep.Options.Threshold,
			}),
		).
		AddSeries("GT", gt, charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[1])}))

	statuses := []profiler.FrameStatus{profiler.FrameAccepted, profiler.FrameRejected, profiler.FrameSkipped}
	names := make([]string, 0, len(statuses))
	bars := make([]opts.BarData, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
		bars = append(bars, opts.BarData{Value: counts[st]})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: "Frame outcomes", Subtitle: fmt.Sprintf("%d rejection events", s.SkippedFrames)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).AddSeries("frames", bars,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[2])}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	page := components.NewPage()
	page.AddCharts(line, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render arc chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
