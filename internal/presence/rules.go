package presence

import (
	"fmt"
	"time"
)

const (
	pauseWindowStart = 12 * time.Hour
	pauseWindowEnd   = 15 * time.Hour
	departureFrom    = 18 * time.Hour
)

// DailyState is what the validator knows about one employee's day: the set
// of actions already recorded by active events.
type DailyState struct {
	recorded map[string]bool
}

// NewDailyState builds the state from the day's active events.
func NewDailyState(events []Event) DailyState {
	s := DailyState{recorded: make(map[string]bool, len(events))}
	for _, e := range events {
		if e.Active {
			s.recorded[e.Action] = true
		}
	}
	return s
}

// Has reports whether action was already recorded.
func (s DailyState) Has(action string) bool { return s.recorded[action] }

// Validate decides whether action may be recorded at now given the day's
// state. The duplicate check runs first, then the ordering and time-window
// rules.
func Validate(state DailyState, action string, now time.Time) error {
	if state.Has(action) {
		return &ValidationError{
			Code:    CodeDuplicateAction,
			Message: fmt.Sprintf("action %q has already been recorded for this employee today", action),
		}
	}
	if action != ActionArrival && !state.Has(ActionArrival) {
		return ErrArrivalRequired
	}
	tod := sinceMidnight(now)
	switch action {
	case ActionPauseStart, ActionPauseEnd:
		if tod < pauseWindowStart || tod >= pauseWindowEnd {
			return ErrOutsidePauseWindow
		}
		if action == ActionPauseEnd && !state.Has(ActionPauseStart) {
			return ErrPauseStartRequired
		}
	case ActionDeparture:
		if tod < departureFrom {
			return ErrTooEarlyForDeparture
		}
	}
	return nil
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
