// Package clock abstracts the wall clock so that entry ages can be reported deterministically.
package clock

import "time"

// WallClock is an interface wrapping basic Now method, which returns wall clock time.
// For real clock that wraps [time.Now], use [RealWallClock].
type WallClock interface {
	Now() time.Time
}

type realWallClock struct{}

func (c realWallClock) Now() time.Time {
	return time.Now()
}

func RealWallClock() WallClock {
	return realWallClock{}
}

// FixedWallClock always returns the time it was created with.
type FixedWallClock time.Time

func (c FixedWallClock) Now() time.Time {
	return time.Time(c)
}

// Age returns how long before c.Now() t is.
// Times in the future yield a negative duration.
func Age(c WallClock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
