// Package plotting renders profile comparisons and arc error traces, as PNG
// through gonum/plot and as interactive HTML through go-echarts.
package plotting

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/monitoring"
	"github.com/banshee-data/profiler.report/internal/profiler"
)

// Output size of PNG plots.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// SaveProfilePlot writes a PNG of dose against position for a reference and a
// candidate profile.
func SaveProfilePlot(fsys fsutil.FileSystem, path, title string, ref, cand profiler.AxisProfile) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Position (cm)"
	p.Y.Label.Text = "Dose (%)"

	colors := generateColors(2)
	for i, series := range []struct {
		label string
		prof  profiler.AxisProfile
	}{
		{"reference", ref},
		{"measured", cand},
	} {
		pts := make(plotter.XYs, 0, series.prof.Len())
		for j := range series.prof.Doses {
			pts = append(pts, plotter.XY{X: series.prof.Positions[j], Y: series.prof.Doses[j]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", series.label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.label, line)
	}
	placeLegend(p)

	return savePNG(fsys, p, path)
}

// SaveStaticPlots writes <base>_AB.png and <base>_GT.png into dir and returns
// their paths.
func SaveStaticPlots(fsys fsutil.FileSystem, dir, base string, ref, cand *profiler.ReferenceProfile) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	var paths []string
	for _, axis := range []struct {
		name      profiler.Axis
		ref, cand profiler.AxisProfile
	}{
		{profiler.AxisAB, ref.AB, cand.AB},
		{profiler.AxisGT, ref.GT, cand.GT},
	} {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", base, axis.name))
		title := fmt.Sprintf("%s - %s profile", base, axis.name)
		if err := SaveProfilePlot(fsys, path, title, axis.ref, axis.cand); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveArcPlot writes a PNG of the per-frame average errors of an arc, with the
// rejection threshold and the rejected frames marked.
func SaveArcPlot(fsys fsutil.FileSystem, path, title string, rep *profiler.ArcReport) error {
	if len(rep.Frames) == 0 {
		return fmt.Errorf("arc has no analysed frames to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Average error (%)"

	abPts := make(plotter.XYs, 0, len(rep.Frames))
	gtPts := make(plotter.XYs, 0, len(rep.Frames))
	var rejected plotter.XYs
	for _, f := range rep.Frames {
		switch f.Status {
		case profiler.FrameAccepted:
			abPts = append(abPts, plotter.XY{X: float64(f.Frame), Y: f.Result.AverageAB})
			gtPts = append(gtPts, plotter.XY{X: float64(f.Frame), Y: f.Result.AverageGT})
		case profiler.FrameRejected:
			rejected = append(rejected, plotter.XY{X: float64(f.Frame), Y: max(f.Result.AverageAB, f.Result.AverageGT)})
		}
	}

	colors := generateColors(3)
	for i, series := range []struct {
		label string
		pts   plotter.XYs
	}{
		{"AB", abPts},
		{"GT", gtPts},
	} {
		if len(series.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", series.label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.label, line)
	}

	first, last := rep.Frames[0].Frame, rep.Frames[len(rep.Frames)-1].Frame
	thr, err := plotter.NewLine(plotter.XYs{
		{X: float64(first), Y: rep.Options.Threshold},
		{X: float64(last), Y: rep.Options.Threshold},
	})
	if err != nil {
		return fmt.Errorf("threshold line: %w", err)
	}
	thr.Color = colors[2]
	thr.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(thr)
	p.Legend.Add(fmt.Sprintf("threshold %.1f%%", rep.Options.Threshold), thr)

	if len(rejected) > 0 {
		sc, err := plotter.NewScatter(rejected)
		if err != nil {
			return fmt.Errorf("rejected frames: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		sc.GlyphStyle.Color = colors[2]
		p.Add(sc)
		p.Legend.Add("rejected", sc)
	}
	placeLegend(p)

	return savePNG(fsys, p, path)
}

func placeLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}

func savePNG(fsys fsutil.FileSystem, p *plot.Plot, path string) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	monitoring.Logf("plot written: %s", path)
	return nil
}
