// Package window computes the half-open query interval a scheduled run
// covers. Windows are keyed purely off wall-clock hour-of-day so adjacent
// runs tile time without gaps or overlaps, no matter how late the scheduler
// actually fires.
package window

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadBatchHours rejects a batch-hour list that is empty, out of range,
// or not strictly increasing.
var ErrBadBatchHours = errors.New("batch hours must be a non-empty, strictly increasing list of hours in [0,23]")

// Window is the half-open interval [Begin, End) a run queries against the feed.
type Window struct {
	Begin time.Time
	End   time.Time
}

// stampLayout is the feed's timestamp parameter format.
const stampLayout = "200601021504"

// BeginStamp formats Begin for the feed query.
func (w Window) BeginStamp() string { return w.Begin.Format(stampLayout) }

// EndStamp formats End for the feed query.
func (w Window) EndStamp() string { return w.End.Format(stampLayout) }

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.BeginStamp(), w.EndStamp())
}

// Validate checks a batch-hour list against the ErrBadBatchHours contract.
func Validate(hours []int) error {
	if len(hours) == 0 {
		return ErrBadBatchHours
	}
	prev := -1
	for _, h := range hours {
		if h < 0 || h > 23 || h <= prev {
			return ErrBadBatchHours
		}
		prev = h
	}
	return nil
}

// Compute resolves the query window for a run executed at now.
//
// Let valid be the configured hours not after now's hour:
//   - valid empty (before the day's first batch): yesterday's last batch hour
//     through today's first.
//   - otherwise the window ends at the latest valid hour and begins at the
//     previous configured hour (wrapping to yesterday's last for the first).
//
// Minutes and below truncate to zero, so a run fired ten minutes late still
// queries the exact same window as one fired on time.
func Compute(now time.Time, hours []int) (Window, error) {
	if err := Validate(hours); err != nil {
		return Window{}, err
	}

	at := func(day time.Time, hour int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	}
	yesterday := now.AddDate(0, 0, -1)

	idx := -1
	for i, h := range hours {
		if h <= now.Hour() {
			idx = i
		}
	}

	// Before the first batch of the day.
	if idx < 0 {
		return Window{
			Begin: at(yesterday, hours[len(hours)-1]),
			End:   at(now, hours[0]),
		}, nil
	}

	var begin time.Time
	if idx == 0 {
		begin = at(yesterday, hours[len(hours)-1])
	} else {
		begin = at(now, hours[idx-1])
	}
	return Window{Begin: begin, End: at(now, hours[idx])}, nil
}
