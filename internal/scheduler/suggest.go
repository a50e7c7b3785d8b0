package scheduler

import "time"

// Slot is a proposed reservation interval.
type Slot struct {
	Start time.Time
	End   time.Time
}

const (
	suggestStep     = 15 * time.Minute
	defaultDuration = 60 * time.Minute
	defaultHorizon  = 8 * time.Hour
)

// SuggestSlot searches forward from the candidate's start for the first
// interval of the requested duration that produces no conflicts, advancing in
// fixed 15-minute steps. When the candidate carries an end time, its own
// duration wins over the argument. The search gives up once the trial start
// reaches candidate start + horizon. Non-positive duration or horizon fall
// back to 60 minutes and 8 hours.
func SuggestSlot(existing []Event, devices map[string]DeviceState, candidate Event, duration, horizon time.Duration) (Slot, bool) {
	if duration <= 0 {
		duration = defaultDuration
	}
	if !candidate.End.IsZero() && candidate.End.After(candidate.Start) {
		duration = candidate.End.Sub(candidate.Start)
	}
	if horizon <= 0 {
		horizon = defaultHorizon
	}

	limit := candidate.Start.Add(horizon)
	for trial := candidate.Start; trial.Before(limit); trial = trial.Add(suggestStep) {
		attempt := candidate
		attempt.Start = trial
		attempt.End = trial.Add(duration)
		if len(DetectConflicts(existing, devices, attempt, "")) == 0 {
			return Slot{Start: attempt.Start, End: attempt.End}, true
		}
	}
	return Slot{}, false
}
