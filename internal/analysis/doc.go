// Package analysis extracts frequency content and phase portraits from
// per-frame traces of a gas run, such as a particle's x coordinate.
//
// A lone particle bouncing between two walls a distance W apart traces a
// triangle wave with frequency |v| / (2(W - 2r)) cycles per frame:
//
//	trace := analysis.Trace(frames, 0, analysis.AxisX)
//	f := analysis.DominantFrequency(trace)
package analysis
