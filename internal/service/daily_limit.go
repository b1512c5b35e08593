package service

import (
	"time"

	"github.com/bravoform/bravoform-api/internal/models"
)

// LimitStatus is the evaluated daily-limit state of one form for one
// collaborator on one local calendar day.
type LimitStatus struct {
	UsedToday      int
	Limit          int
	Limited        bool
	Reached        bool
	RespondedToday bool
	Pending        bool
}

// EvaluateDailyLimit computes the limit state from the form's settings and
// the collaborator's responses. The day window is resolved in loc; a
// response counts toward today when its effective timestamp (submittedAt,
// else createdAt) falls within it. An enabled limit of zero or less is
// normalized up to one; zero is never a "block everything" state.
func EvaluateDailyLimit(settings models.Settings, responses []models.Response, now time.Time, loc *time.Location) LimitStatus {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	used := 0
	for i := range responses {
		ts := responses[i].EffectiveTime().In(loc)
		if !ts.Before(dayStart) && ts.Before(dayEnd) {
			used++
		}
	}

	status := LimitStatus{
		UsedToday:      used,
		Limited:        settings.DailyLimitEnabled,
		RespondedToday: used > 0,
	}
	if settings.DailyLimitEnabled {
		limit := settings.DailyLimitCount
		if limit < 1 {
			limit = 1
		}
		status.Limit = limit
		status.Reached = used >= limit
		status.Pending = used < limit
	} else {
		status.Pending = used == 0
	}
	return status
}
