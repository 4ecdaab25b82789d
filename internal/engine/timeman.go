package engine

import "time"

// TimeManager tracks the two time budgets the search honors: a soft bound
// checked only between iterative-deepening iterations, and a hard bound
// checked at every search node and cutoff point. hard_time is always
// soft_time*3/2 (spec §4.h) except under allow_for, where both are pinned
// to the same fixed duration.
type TimeManager struct {
	ref  time.Time
	soft time.Duration
	hard time.Duration

	// canTimeOut is cleared for the depth-1 root iteration so the search
	// always completes at least one full iteration and returns a legal
	// move, per spec §4.f step 2.
	canTimeOut bool
}

// NewTimeManager returns a TimeManager with no budget set; call
// TimeControl or AllowFor before starting a search.
func NewTimeManager() *TimeManager {
	return &TimeManager{canTimeOut: true}
}

// reserveFloorCap caps the minimum think time the original engine this is based
// on guarantees even with very little clock left (original_source/src/
// lib.rs's reserve_time): min(time_left/4, 50ms). Carried forward per
// SPEC_FULL.md §12 so a won/lost-on-time edge case with almost no clock
// left still returns a move quickly rather than soft-timing-out at 0.
const reserveFloorCap = 50 * time.Millisecond

// TimeControl computes soft/hard budgets from a UCI-style time control:
// movesToGo (0 means "not specified", defaulting to 40), and the side to
// move's remaining time and increment.
func (tm *TimeManager) TimeControl(movesToGo int, timeLeft, timeIncr time.Duration) {
	mtg := movesToGo
	if mtg <= 0 {
		mtg = 40
	}

	soft := timeLeft / time.Duration(mtg)
	if timeLeft > 4*timeIncr {
		soft += 3 * timeIncr / 5
	}

	floor := timeLeft / 4
	if floor > reserveFloorCap {
		floor = reserveFloorCap
	}
	if soft < floor {
		soft = floor
	}

	tm.soft = soft
	tm.hard = soft * 3 / 2
}

// AllowFor pins both the soft and hard budget to d, for fixed-time
// searches (e.g. UCI "movetime" or the bench command).
func (tm *TimeManager) AllowFor(d time.Duration) {
	tm.soft = d
	tm.hard = d
}

// Start records the reference instant a new best_move call measures
// elapsed time against.
func (tm *TimeManager) Start() {
	tm.ref = time.Now()
}

// SetCanTimeOut toggles whether HardTimesUp/SoftTimesUp can ever report
// true; the root driver clears this for the depth-1 iteration.
func (tm *TimeManager) SetCanTimeOut(v bool) {
	tm.canTimeOut = v
}

// Elapsed returns the time since Start.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.ref)
}

// HardTimesUp reports whether the hard budget has been exceeded; queried
// at every search node and cutoff point.
func (tm *TimeManager) HardTimesUp() bool {
	return tm.canTimeOut && time.Since(tm.ref) > tm.hard
}

// SoftTimesUp reports whether the soft budget has been exceeded; queried
// by the root driver between iterations.
func (tm *TimeManager) SoftTimesUp() bool {
	return tm.canTimeOut && time.Since(tm.ref) > tm.soft
}
