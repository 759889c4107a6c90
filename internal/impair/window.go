package impair

import "time"

// WindowDuration is the length of a [RateWindow].
const WindowDuration = time.Second

// RateWindow accounts the packets received in the current window. The
// zero value is invalid; construct using [NewRateWindow].
//
// A RateWindow is not safe for concurrent use: the relay loop owns it.
type RateWindow struct {
	// Start is when the current window started.
	Start time.Time

	// Count is the number of packets counted in the current window.
	Count int64

	// Tagged is true once a packet has been tagged in this window.
	Tagged bool
}

// NewRateWindow returns a fresh window starting at now.
func NewRateWindow(now time.Time) *RateWindow {
	return &RateWindow{Start: now}
}

// Increment accounts for one more packet and returns the new count.
func (w *RateWindow) Increment() int64 {
	w.Count++
	return w.Count
}

// Remaining returns how long before the window expires, which is zero
// when the window has already expired.
func (w *RateWindow) Remaining(now time.Time) time.Duration {
	if d := w.Start.Add(WindowDuration).Sub(now); d > 0 {
		return d
	}
	return 0
}

// MaybeReset starts a new window at now if at least [WindowDuration]
// elapsed since Start. On reset it returns true along with the count of
// the window that just ended.
func (w *RateWindow) MaybeReset(now time.Time) (int64, bool) {
	if now.Sub(w.Start) < WindowDuration {
		return 0, false
	}
	previous := w.Count
	w.Start = now
	w.Count = 0
	w.Tagged = false
	return previous, true
}
