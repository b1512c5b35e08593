package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUnmarshalDefaults(t *testing.T) {
	var settings Settings
	require.NoError(t, json.Unmarshal([]byte(`{}`), &settings))

	assert.True(t, settings.AllowSave)
	assert.True(t, settings.ShowProgress)
	assert.False(t, settings.ConfirmBeforeSubmit)
	assert.False(t, settings.DailyLimitEnabled)
	assert.Zero(t, settings.DailyLimitCount)
}

func TestSettingsUnmarshalKeepsExplicitValues(t *testing.T) {
	payload := `{"allowSave":false,"showProgress":false,"confirmBeforeSubmit":true,"dailyLimitEnabled":true,"dailyLimitCount":3}`
	var settings Settings
	require.NoError(t, json.Unmarshal([]byte(payload), &settings))

	assert.False(t, settings.AllowSave)
	assert.False(t, settings.ShowProgress)
	assert.True(t, settings.ConfirmBeforeSubmit)
	assert.True(t, settings.DailyLimitEnabled)
	assert.Equal(t, 3, settings.DailyLimitCount)
}

func TestSettingsUnmarshalCoercesLegacyCounts(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    int
	}{
		{"number", `{"dailyLimitCount":5}`, 5},
		{"string", `{"dailyLimitCount":"5"}`, 5},
		{"padded string", `{"dailyLimitCount":" 7 "}`, 7},
		{"garbage string", `{"dailyLimitCount":"lots"}`, 0},
		{"null", `{"dailyLimitCount":null}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var settings Settings
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &settings))
			assert.Equal(t, tc.want, settings.DailyLimitCount)
		})
	}
}

func TestSettingsScanNullColumnAppliesPolicy(t *testing.T) {
	var settings Settings
	require.NoError(t, settings.Scan(nil))

	assert.True(t, settings.AllowSave)
	assert.True(t, settings.ShowProgress)
	assert.False(t, settings.ConfirmBeforeSubmit)
	assert.False(t, settings.DailyLimitEnabled)

	// an explicit all-off document is preserved
	var explicit Settings
	require.NoError(t, explicit.Scan([]byte(`{"allowSave":false,"showProgress":false}`)))
	assert.False(t, explicit.AllowSave)
	assert.False(t, explicit.ShowProgress)
}

func TestResponseEffectiveTime(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	submitted := created.Add(30 * time.Minute)

	resp := Response{CreatedAt: created, SubmittedAt: &submitted}
	assert.Equal(t, submitted, resp.EffectiveTime())

	resp.SubmittedAt = nil
	assert.Equal(t, created, resp.EffectiveTime())
}

func TestJSONBColumnRoundTrip(t *testing.T) {
	list := StringList{"collab-1", "collab-2"}
	value, err := list.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)

	var empty StringList
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
