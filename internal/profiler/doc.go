// Package profiler analyses beam-profiler exports for radiotherapy QA.
//
// A detector-array export carries two orthogonal dose profiles, AB (63
// detectors) and GT (65 detectors). Reference exports are tokenized into a
// Document, parsed into a ProfileReport and re-centred on the beam's central
// axis (CAX) before use. Candidate profiles are compared index-by-index over a
// fixed, modality-dependent window, producing mean and maximum percentage
// deviation per axis.
//
// Two analyses are provided:
//
//   - AnalyzeStatic compares one profile snapshot against a reference.
//   - ArcAnalyzer walks a movie export (a gantry arc) frame by frame, rejecting
//     noisy frames and the frames immediately after them, and reports the
//     overall error and the gantry angle of the worst accepted frame.
//
// Everything here is synchronous and single-threaded; files are read whole,
// once per load, and closed on every exit path.
package profiler
