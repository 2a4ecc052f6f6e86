package profiler

import (
	"fmt"

	"github.com/banshee-data/profiler.report/internal/fsutil"
	"github.com/banshee-data/profiler.report/internal/monitoring"
)

// Arc analysis defaults.
const (
	// DefaultStartFrame skips the start-up transient at the beginning of a movie.
	DefaultStartFrame = 20
	// DefaultThreshold is the average percentage error above which a frame is
	// treated as detector noise or dropped counts.
	DefaultThreshold = 3.0
	// DefaultSkipFrames is how many frames after a rejected one are ignored.
	DefaultSkipFrames = 5

	// acceptedFloor keeps the overall averages finite when no frame is accepted.
	acceptedFloor = 0.00001
)

// ArcOptions tunes the frame-rejection policy.
type ArcOptions struct {
	StartFrame int
	Threshold  float64
	SkipFrames int
}

// DefaultArcOptions returns the standard rejection policy.
func DefaultArcOptions() ArcOptions {
	return ArcOptions{
		StartFrame: DefaultStartFrame,
		Threshold:  DefaultThreshold,
		SkipFrames: DefaultSkipFrames,
	}
}

// Validate checks that the options describe a usable policy.
func (o ArcOptions) Validate() error {
	if o.StartFrame < 1 {
		return fmt.Errorf("start frame must be at least 1, got %d", o.StartFrame)
	}
	if o.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", o.Threshold)
	}
	if o.SkipFrames < 0 {
		return fmt.Errorf("skip frames must be non-negative, got %d", o.SkipFrames)
	}
	return nil
}

// FrameStatus records what the analyser did with a frame.
type FrameStatus string

const (
	// FrameAccepted frames contribute to the overall statistics.
	FrameAccepted FrameStatus = "accepted"
	// FrameRejected frames exceeded the threshold and started a skip window.
	FrameRejected FrameStatus = "rejected"
	// FrameSkipped frames fell inside a skip window and were not evaluated.
	FrameSkipped FrameStatus = "skipped"
)

// FrameRecord is the outcome for one visited frame. Result is zero for
// skipped frames.
type FrameRecord struct {
	Frame  int
	Status FrameStatus
	Result ErrorResult
}

// ArcSummary aggregates the accepted frames of an arc. The maxima are the
// largest per-frame average errors, with the frame and gantry angle at which
// they occurred.
type ArcSummary struct {
	OverallAvgAB float64
	OverallAvgGT float64
	MaxAB        float64
	MaxABFrame   int
	MaxABAngle   float64
	MaxGT        float64
	MaxGTFrame   int
	MaxGTAngle   float64

	// SkippedFrames counts rejection events, not the frames they skipped.
	SkippedFrames  int
	AcceptedFrames int
	NumFrames      int
}

// Values returns the summary in the order the QA host expects:
// overall averages, AB max and angle, GT max and angle, skip count.
func (s ArcSummary) Values() []float64 {
	return []float64{
		s.OverallAvgAB, s.OverallAvgGT,
		s.MaxAB, s.MaxABAngle,
		s.MaxGT, s.MaxGTAngle,
		float64(s.SkippedFrames),
	}
}

// ArcReport is the result of analysing one movie.
type ArcReport struct {
	Modality Modality
	Options  ArcOptions
	Summary  ArcSummary
	Frames   []FrameRecord
}

// FrameSource yields the frames of a movie.
type FrameSource interface {
	NumFrames() int
	Frame(n int) (*Frame, error)
}

// ArcAnalyzer compares every frame of a movie with a reference profile.
type ArcAnalyzer struct {
	ref      *ReferenceProfile
	modality Modality
	opts     ArcOptions
}

// NewArcAnalyzer validates the modality and options up front so that a bad
// invocation fails before any frame is read.
func NewArcAnalyzer(ref *ReferenceProfile, m Modality, opts ArcOptions) (*ArcAnalyzer, error) {
	if ref == nil {
		return nil, fmt.Errorf("arc analyzer needs a reference profile")
	}
	if !m.Valid() {
		return nil, fmt.Errorf("%w (got %s)", ErrInvalidModality, m)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &ArcAnalyzer{ref: ref, modality: m, opts: opts}, nil
}

type scanState int

const (
	stateScanning scanState = iota
	stateSkipping
)

// arcScan is the single-pass state machine over a movie's frames.
type arcScan struct {
	state     scanState
	remaining int

	sumAB, sumGT float64
	accepted     float64
	summary      ArcSummary
	records      []FrameRecord
}

// Run walks frames StartFrame..NumFrames once, forward only. In the scanning
// state each frame is compared with the reference; a frame whose AB or GT
// average exceeds the threshold is counted as one skip event and moves the
// scan into the skipping state for SkipFrames frames, which are not read.
func (a *ArcAnalyzer) Run(src FrameSource) (*ArcReport, error) {
	numFrames := src.NumFrames()
	if numFrames < 1 {
		return nil, fmt.Errorf("%w: movie has no frames (count %d)", ErrMalformedMovieFile, numFrames)
	}

	s := &arcScan{accepted: acceptedFloor}
	for n := a.opts.StartFrame; n <= numFrames; n++ {
		if err := a.step(s, src, n); err != nil {
			return nil, err
		}
	}

	sum := s.summary
	sum.NumFrames = numFrames
	sum.OverallAvgAB = s.sumAB / s.accepted
	sum.OverallAvgGT = s.sumGT / s.accepted

	var err error
	if sum.MaxABAngle, err = FrameAngle(a.modality, sum.MaxABFrame, numFrames); err != nil {
		return nil, err
	}
	if sum.MaxGTAngle, err = FrameAngle(a.modality, sum.MaxGTFrame, numFrames); err != nil {
		return nil, err
	}

	monitoring.Logf("arc: %d frames, %d accepted, %d rejection events; AB avg %.3f%% max %.3f%% at %.1f°, GT avg %.3f%% max %.3f%% at %.1f°",
		numFrames, sum.AcceptedFrames, sum.SkippedFrames,
		sum.OverallAvgAB, sum.MaxAB, sum.MaxABAngle,
		sum.OverallAvgGT, sum.MaxGT, sum.MaxGTAngle)

	return &ArcReport{
		Modality: a.modality,
		Options:  a.opts,
		Summary:  sum,
		Frames:   s.records,
	}, nil
}

func (a *ArcAnalyzer) step(s *arcScan, src FrameSource, n int) error {
	if s.state == stateSkipping {
		s.records = append(s.records, FrameRecord{Frame: n, Status: FrameSkipped})
		s.remaining--
		if s.remaining <= 0 {
			s.state = stateScanning
		}
		return nil
	}

	frame, err := src.Frame(n)
	if err != nil {
		return err
	}
	res, err := ComputeError(frame.AB, frame.GT, a.ref.AB.Doses, a.ref.GT.Doses, a.modality)
	if err != nil {
		return fmt.Errorf("frame %d: %w", n, err)
	}

	if res.AverageAB > a.opts.Threshold || res.AverageGT > a.opts.Threshold {
		monitoring.Debugf("frame %d rejected: AB %.3f%% GT %.3f%% (threshold %.2f%%)", n, res.AverageAB, res.AverageGT, a.opts.Threshold)
		s.records = append(s.records, FrameRecord{Frame: n, Status: FrameRejected, Result: res})
		s.summary.SkippedFrames++
		if a.opts.SkipFrames > 0 {
			s.state = stateSkipping
			s.remaining = a.opts.SkipFrames
		}
		return nil
	}

	monitoring.Debugf("frame %d accepted: AB %.3f%% GT %.3f%%", n, res.AverageAB, res.AverageGT)
	s.records = append(s.records, FrameRecord{Frame: n, Status: FrameAccepted, Result: res})
	s.sumAB += res.AverageAB
	s.sumGT += res.AverageGT
	if res.AverageAB > s.summary.MaxAB {
		s.summary.MaxAB = res.AverageAB
		s.summary.MaxABFrame = n
	}
	if res.AverageGT > s.summary.MaxGT {
		s.summary.MaxGT = res.AverageGT
		s.summary.MaxGTFrame = n
	}
	s.accepted++
	s.summary.AcceptedFrames++
	return nil
}

// AnalyzeArc loads the reference and the movie and runs the arc analysis.
func AnalyzeArc(fsys fsutil.FileSystem, moviePath, refPath string, m Modality, opts ArcOptions) (*ArcReport, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w (got %s)", ErrInvalidModality, m)
	}
	ref, err := LoadReference(fsys, refPath)
	if err != nil {
		return nil, fmt.Errorf("load reference: %w", err)
	}
	movie, err := LoadMovie(fsys, moviePath)
	if err != nil {
		return nil, fmt.Errorf("load movie: %w", err)
	}
	a, err := NewArcAnalyzer(ref, m, opts)
	if err != nil {
		return nil, err
	}
	return a.Run(movie)
}
