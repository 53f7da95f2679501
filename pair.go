package linkmtime

import "time"

// DefaultTolerance is the mtime skew under which two entries are considered
// saved together.
const DefaultTolerance = 3 * time.Second

// PairStatus is the result of [ComparePair].
type PairStatus struct {
	A, B Metadata
	// Skew is B's mtime minus A's mtime.
	Skew time.Duration
	// InSync is true if |Skew| <= tolerance.
	InSync bool
}

// Newer returns "a" or "b" naming the entry with the later mtime,
// or "" if the pair is in sync.
func (s PairStatus) Newer() string {
	switch {
	case s.InSync:
		return ""
	case s.Skew > 0:
		return "b"
	default:
		return "a"
	}
}

// ComparePair resolves a and b with r and compares their effective mtimes.
// A negative tolerance is treated as 0.
//
// This is the check a notebook/script pairing tool needs when one side of the
// pair is a symbolic link: comparing lstat results would compare against the
// link's own mtime.
func ComparePair(r *Resolver, a, b string, tolerance time.Duration) (PairStatus, error) {
	ma, err := r.Resolve(a)
	if err != nil {
		return PairStatus{}, err
	}
	mb, err := r.Resolve(b)
	if err != nil {
		return PairStatus{}, err
	}

	tolerance = max(tolerance, 0)
	skew := mb.ModTime().Sub(ma.ModTime())
	abs := skew
	if abs < 0 {
		abs = -abs
	}

	return PairStatus{
		A:      ma,
		B:      mb,
		Skew:   skew,
		InSync: abs <= tolerance,
	}, nil
}
