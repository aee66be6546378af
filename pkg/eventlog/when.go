package eventlog

import "time"

type whenKind int

const (
	whenNow whenKind = iota
	whenAt
	whenBetween
)

// When describes when an event happened. The zero value means "now".
type When struct {
	kind  whenKind
	start time.Time
	end   time.Time
}

// At is an event that happened at a single instant.
func At(t time.Time) When {
	return When{kind: whenAt, start: t, end: t}
}

// Between is an event that spans an explicit interval. The resulting record
// is wide even when start equals end. The bounds are stored as given.
func Between(start, end time.Time) When {
	return When{kind: whenBetween, start: start, end: end}
}

// IsZero reports whether w is the zero value.
func (w When) IsZero() bool {
	return w.kind == whenNow
}

// IsInterval reports whether w was built with Between.
func (w When) IsInterval() bool {
	return w.kind == whenBetween
}

// Extent is a resolved event time.
type Extent struct {
	Start  time.Time
	End    time.Time
	IsWide bool
}

// Duration returns End - Start.
func (e Extent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Resolve turns w into concrete timestamps. now is only called for the
// zero When; a nil now uses time.Now.
func (w When) Resolve(now func() time.Time) Extent {
	switch w.kind {
	case whenAt:
		return Extent{Start: w.start, End: w.start}
	case whenBetween:
		return Extent{Start: w.start, End: w.end, IsWide: true}
	default:
		if now == nil {
			now = time.Now
		}
		t := now()
		return Extent{Start: t, End: t}
	}
}
