// Package export writes analysis results to spreadsheet workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/profiler"
	"github.com/banshee-data/profiler.report/internal/qatrack"
)

// Sheet names of an arc workbook.
const (
	SummarySheet = "Summary"
	FramesSheet  = "Frames"
)

// FrameHeader is the header row of the Frames sheet.
var FrameHeader = []any{"Frame", "Angle (deg)", "Status", "Avg AB (%)", "Avg GT (%)", "Max AB (%)", "Max GT (%)"}

// ArcSource names the files an arc report was computed from.
type ArcSource struct {
	MoviePath     string
	ReferencePath string
}

// WriteArcWorkbook writes an XLSX with a Summary sheet of run settings and
// result keys and a Frames sheet with one row per visited frame.
func WriteArcWorkbook(fsys fsutil.FileSystem, path string, src ArcSource, rep *profiler.ArcReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummary(f, src, rep); err != nil {
		return err
	}
	if _, err := f.NewSheet(FramesSheet); err != nil {
		return fmt.Errorf("create frames sheet: %w", err)
	}
	if err := writeFrames(f, rep); err != nil {
		return err
	}

	out, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func writeSummary(f *excelize.File, src ArcSource, rep *profiler.ArcReport) error {
	rows := [][]any{
		{"Movie", src.MoviePath},
		{"Reference", src.ReferencePath},
		{"Modality", rep.Modality.String()},
		{"Start frame", rep.Options.StartFrame},
		{"Threshold (%)", rep.Options.Threshold},
		{"Skip frames", rep.Options.SkipFrames},
		{"Frames in movie", rep.Summary.NumFrames},
		{"Accepted frames", rep.Summary.AcceptedFrames},
		{},
	}
	metrics := qatrack.ArcMetrics(&rep.Summary)
	for _, k := range qatrack.ArcKeys {
		rows = append(rows, []any{k, metrics[k]})
	}
	return setRows(f, SummarySheet, rows)
}

func writeFrames(f *excelize.File, rep *profiler.ArcReport) error {
	rows := make([][]any, 0, len(rep.Frames)+1)
	rows = append(rows, FrameHeader)
	for _, fr := range rep.Frames {
		angle, err := profiler.FrameAngle(rep.Modality, fr.Frame, rep.Summary.NumFrames)
		if err != nil {
			return err
		}
		r := fr.Result
		rows = append(rows, []any{fr.Frame, angle, string(fr.Status), r.AverageAB, r.AverageGT, r.MaxAB, r.MaxGT})
	}
	if err := setRows(f, FramesSheet, rows); err != nil {
		return err
	}
	return f.SetPanes(FramesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
