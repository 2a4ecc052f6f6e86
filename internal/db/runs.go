package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/profiler.report/internal/profiler"
	"github.com/banshee-data/profiler.report/internal/qatrack"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunKind distinguishes static snapshots from arc movies.
type RunKind string

const (
	RunStatic RunKind = "static"
	RunArc    RunKind = "arc"
)

// Run is one stored analysis.
type Run struct {
	ID            string    `json:"run_id"`
	Kind          RunKind   `json:"kind"`
	InputPath     string    `json:"input_path"`
	ReferencePath string    `json:"reference_path"`
	Modality      string    `json:"modality"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordStaticRun stores a static comparison and its result keys. It returns
// the new run ID.
func (db *DB) RecordStaticRun(inputPath, refPath string, m profiler.Modality, res *profiler.StaticResult) (string, error) {
	run := db.newRun(RunStatic, inputPath, refPath, m)

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := insertRun(tx, run, qatrack.StaticMetrics(res)); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit static run: %w", err)
	}
	return run.ID, nil
}

// RecordArcRun stores an arc analysis: summary keys plus one row per visited
// frame. It returns the new run ID.
func (db *DB) RecordArcRun(inputPath, refPath string, rep *profiler.ArcReport) (string, error) {
	run := db.newRun(RunArc, inputPath, refPath, rep.Modality)

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := insertRun(tx, run, qatrack.ArcMetrics(&rep.Summary)); err != nil {
		return "", err
	}
	sum, o := rep.Summary, rep.Options
	if _, err := tx.Exec(`INSERT INTO arc_runs (run_id, start_frame, threshold, skip_frames,
			num_frames, accepted_frames, max_ab_frame, max_gt_frame)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, o.StartFrame, o.Threshold, o.SkipFrames,
		sum.NumFrames, sum.AcceptedFrames, sum.MaxABFrame, sum.MaxGTFrame); err != nil {
		return "", fmt.Errorf("insert arc settings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO arc_frames (run_id, frame, avg_ab, avg_gt, max_ab, max_gt, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range rep.Frames {
		r := f.Result
		if _, err := stmt.Exec(run.ID, f.Frame, r.AverageAB, r.AverageGT, r.MaxAB, r.MaxGT, string(f.Status)); err != nil {
			return "", fmt.Errorf("insert frame %d: %w", f.Frame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit arc run: %w", err)
	}
	return run.ID, nil
}

func (db *DB) newRun(kind RunKind, inputPath, refPath string, m profiler.Modality) Run {
	return Run{
		ID:            uuid.NewString(),
		Kind:          kind,
		InputPath:     inputPath,
		ReferencePath: refPath,
		Modality:      m.String(),
		CreatedAt:     db.clock.Now().UTC(),
	}
}

func insertRun(tx *sql.Tx, run Run, metrics qatrack.Results) error {
	_, err := tx.Exec(`INSERT INTO analysis_runs (run_id, kind, input_path, reference_path, modality, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.InputPath, run.ReferencePath, run.Modality, run.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, name := range metrics.Keys() {
		if _, err := tx.Exec(`INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`,
			run.ID, name, metrics[name]); err != nil {
			return fmt.Errorf("insert metric %s: %w", name, err)
		}
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT run_id, kind, input_path, reference_path, modality, created_at
		FROM analysis_runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one run by ID.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`SELECT run_id, kind, input_path, reference_path, modality, created_at
		FROM analysis_runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		run       Run
		kind      string
		createdAt int64
	)
	if err := s.Scan(&run.ID, &kind, &run.InputPath, &run.ReferencePath, &run.Modality, &createdAt); err != nil {
		return Run{}, err
	}
	run.Kind = RunKind(kind)
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	return run, nil
}

// RunMetrics returns the stored result keys of a run.
func (db *DB) RunMetrics(id string) (qatrack.Results, error) {
	if _, err := db.GetRun(id); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT name, value FROM run_metrics WHERE run_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := qatrack.Results{}
	for rows.Next() {
		var (
			name  string
			value float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ArcFrames returns the per-frame records of an arc run in frame order.
func (db *DB) ArcFrames(id string) ([]profiler.FrameRecord, error) {
	if _, err := db.GetRun(id); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT frame, avg_ab, avg_gt, max_ab, max_gt, status
		FROM arc_frames WHERE run_id = ? ORDER BY frame`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []profiler.FrameRecord
	for rows.Next() {
		var (
			rec    profiler.FrameRecord
			status string
		)
		if err := rows.Scan(&rec.Frame, &rec.Result.AverageAB, &rec.Result.AverageGT,
			&rec.Result.MaxAB, &rec.Result.MaxGT, &status); err != nil {
			return nil, err
		}
		rec.Status = profiler.FrameStatus(status)
		frames = append(frames, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// ArcReport rebuilds the report of a stored arc run: settings, summary and
// per-frame records.
func (db *DB) ArcReport(id string) (*profiler.ArcReport, error) {
	run, err := db.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run.Kind != RunArc {
		return nil, fmt.Errorf("run %s is a %s run, not an arc", id, run.Kind)
	}
	m, err := profiler.ParseModality(run.Modality)
	if err != nil {
		return nil, err
	}

	rep := &profiler.ArcReport{Modality: m}
	s := &rep.Summary
	err = db.QueryRow(`SELECT start_frame, threshold, skip_frames, num_frames,
			accepted_frames, max_ab_frame, max_gt_frame
		FROM arc_runs WHERE run_id = ?`, id).Scan(
		&rep.Options.StartFrame, &rep.Options.Threshold, &rep.Options.SkipFrames,
		&s.NumFrames, &s.AcceptedFrames, &s.MaxABFrame, &s.MaxGTFrame)
	if err != nil {
		return nil, fmt.Errorf("load arc settings: %w", err)
	}

	metrics, err := db.RunMetrics(id)
	if err != nil {
		return nil, err
	}
	s.OverallAvgAB = metrics["overallAvgAB"]
	s.OverallAvgGT = metrics["overallAvgGT"]
	s.MaxAB = metrics["overallAB_avg_maximum"]
	s.MaxABAngle = metrics["angleABavg_max"]
	s.MaxGT = metrics["overallGT_avg_maximum"]
	s.MaxGTAngle = metrics["angleGTavg_max"]
	s.SkippedFrames = int(metrics["numSkippedFrames"])

	if rep.Frames, err = db.ArcFrames(id); err != nil {
		return nil, err
	}
	return rep, nil
}
