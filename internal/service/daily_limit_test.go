package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bravoform/bravoform-api/internal/models"
)

func responsesAt(times ...time.Time) []models.Response {
	out := make([]models.Response, 0, len(times))
	for _, ts := range times {
		submitted := ts
		out = append(out, models.Response{CreatedAt: ts, SubmittedAt: &submitted})
	}
	return out
}

func TestEvaluateDailyLimitCounting(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	settings := models.Settings{DailyLimitEnabled: true, DailyLimitCount: 2}

	cases := []struct {
		name    string
		used    int
		reached bool
		pending bool
	}{
		{"none", 0, false, true},
		{"one", 1, false, true},
		{"at limit", 2, true, false},
		{"over limit", 3, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			times := make([]time.Time, tc.used)
			for i := range times {
				times[i] = now.Add(-time.Duration(i) * time.Hour)
			}
			status := EvaluateDailyLimit(settings, responsesAt(times...), now, time.UTC)
			assert.Equal(t, tc.used, status.UsedToday)
			assert.Equal(t, 2, status.Limit)
			assert.Equal(t, tc.reached, status.Reached)
			assert.Equal(t, tc.pending, status.Pending)
			assert.Equal(t, tc.used > 0, status.RespondedToday)
		})
	}
}

func TestEvaluateDailyLimitZeroCountMeansOne(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	settings := models.Settings{DailyLimitEnabled: true, DailyLimitCount: 0}

	status := EvaluateDailyLimit(settings, nil, now, time.UTC)
	assert.Equal(t, 1, status.Limit)
	assert.False(t, status.Reached)

	status = EvaluateDailyLimit(settings, responsesAt(now.Add(-time.Hour)), now, time.UTC)
	assert.True(t, status.Reached)
}

func TestEvaluateDailyLimitDisabled(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	settings := models.Settings{DailyLimitEnabled: false}

	status := EvaluateDailyLimit(settings, nil, now, time.UTC)
	assert.False(t, status.Limited)
	assert.False(t, status.Reached)
	assert.True(t, status.Pending)

	status = EvaluateDailyLimit(settings, responsesAt(now.Add(-time.Hour)), now, time.UTC)
	assert.False(t, status.Reached)
	assert.False(t, status.Pending)
	assert.True(t, status.RespondedToday)
}

func TestEvaluateDailyLimitIgnoresOtherDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	settings := models.Settings{DailyLimitEnabled: true, DailyLimitCount: 1}

	yesterday := now.Add(-2 * time.Hour)
	status := EvaluateDailyLimit(settings, responsesAt(yesterday), now, time.UTC)
	assert.Equal(t, 0, status.UsedToday)
	assert.False(t, status.Reached)
}

func TestEvaluateDailyLimitUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC is 21:00 the previous local day
	ts := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	settings := models.Settings{DailyLimitEnabled: true, DailyLimitCount: 1}
	status := EvaluateDailyLimit(settings, responsesAt(ts), now, loc)
	assert.Equal(t, 0, status.UsedToday)
}

func TestEvaluateDailyLimitFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	resp := models.Response{CreatedAt: now.Add(-time.Hour)}

	settings := models.Settings{DailyLimitEnabled: true, DailyLimitCount: 1}
	status := EvaluateDailyLimit(settings, []models.Response{resp}, now, time.UTC)
	assert.Equal(t, 1, status.UsedToday)
	assert.True(t, status.Reached)
}
