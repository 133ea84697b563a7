package media

import "time"

// The media server expresses positions and durations in ticks of 100ns:
// 10,000,000 ticks per second. The engine side speaks milliseconds. All
// conversions floor to the coarser boundary and happen only at the
// host/engine boundary; internal state stores native units for each side.
const (
	TicksPerSecond      int64 = 10_000_000
	TicksPerMillisecond int64 = 10_000
)

// TicksToMilliseconds converts server ticks to engine milliseconds, flooring
// to the millisecond boundary.
func TicksToMilliseconds(ticks int64) int64 {
	return ticks / TicksPerMillisecond
}

// MillisecondsToTicks converts engine milliseconds to server ticks.
func MillisecondsToTicks(ms int64) int64 {
	return ms * TicksPerMillisecond
}

// TicksToDuration converts server ticks to a time.Duration.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks * 100)
}

// DurationToTicks converts a time.Duration to server ticks, flooring to the
// tick boundary.
func DurationToTicks(d time.Duration) int64 {
	return d.Nanoseconds() / 100
}
