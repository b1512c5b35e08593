package service

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/models"
)

func respAt(formID, collaboratorID string, created time.Time, gap time.Duration) models.Response {
	submitted := created.Add(gap)
	return models.Response{
		FormID:               formID,
		CollaboratorID:       collaboratorID,
		CollaboratorUsername: collaboratorID,
		CreatedAt:            created,
		SubmittedAt:          &submitted,
	}
}

func TestComputeOverviewAverageExcludesMissingTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "u1", base, 10*time.Minute),
		respAt("f1", "u2", base, 20*time.Minute),
		{FormID: "f1", CollaboratorID: "u3", CreatedAt: base}, // never submitted
	}

	overview := ComputeOverview([]models.Form{{ID: "f1"}}, responses, TimeWindow{})
	assert.Equal(t, 3, overview.TotalResponses)
	assert.Equal(t, 3, overview.ActiveUsers)
	assert.InDelta(t, 15.0, overview.AvgResponseTime, 0.001)
}

func TestComputeOverviewCompletionRateCapped(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "u1", base, time.Minute),
		respAt("f1", "u1", base.Add(time.Hour), time.Minute),
		respAt("f1", "u1", base.Add(2*time.Hour), time.Minute),
	}
	overview := ComputeOverview([]models.Form{{ID: "f1"}}, responses, TimeWindow{})
	assert.Equal(t, 100.0, overview.CompletionRate)
}

func TestComputeOverviewWindow(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "u1", base, time.Minute),
		respAt("f1", "u2", base.AddDate(0, 0, -5), time.Minute),
	}
	window := TimeWindow{From: base.AddDate(0, 0, -1)}
	overview := ComputeOverview([]models.Form{{ID: "f1"}}, responses, window)
	assert.Equal(t, 1, overview.TotalResponses)
	assert.Equal(t, 1, overview.ActiveUsers)
}

func TestGroupByDayAscending(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "u1", base.AddDate(0, 0, 1), time.Minute),
		respAt("f1", "u1", base, time.Minute),
		respAt("f1", "u1", base, time.Minute),
	}
	buckets := GroupByDay(responses, TimeWindow{}, time.UTC)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-03-10", buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "2026-03-11", buckets[1].Key)
}

func TestGroupByFormCountDescendingStable(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	forms := []models.Form{
		{ID: "fa", Title: "Alpha"},
		{ID: "fb", Title: "Beta"},
		{ID: "fc", Title: "Alpha"}, // same label as fa, tie broken by key
	}
	responses := []models.Response{
		respAt("fb", "u1", base, time.Minute),
		respAt("fb", "u1", base, time.Minute),
		respAt("fa", "u1", base, time.Minute),
		respAt("fc", "u1", base, time.Minute),
	}
	buckets := GroupByForm(forms, responses, TimeWindow{})
	require.Len(t, buckets, 3)
	assert.Equal(t, "fb", buckets[0].Key)
	assert.Equal(t, "fa", buckets[1].Key)
	assert.Equal(t, "fc", buckets[2].Key)
}

func TestGroupByFormUnknownFormKeepsID(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{respAt("ghost", "u1", base, time.Minute)}
	buckets := GroupByForm(nil, responses, TimeWindow{})
	require.Len(t, buckets, 1)
	assert.Equal(t, "ghost", buckets[0].Key)
	assert.Equal(t, "ghost", buckets[0].Label)
}

func TestGroupByCollaborator(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "ana", base, time.Minute),
		respAt("f1", "ana", base, time.Minute),
		respAt("f1", "bob", base, time.Minute),
		{FormID: "f1", CreatedAt: base}, // anonymous rows skipped
	}
	buckets := GroupByCollaborator(responses, TimeWindow{})
	require.Len(t, buckets, 2)
	assert.Equal(t, "ana", buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Count)
}

func TestBucketLabelTruncatedKeyIntact(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	long := strings.Repeat("x", 80)
	forms := []models.Form{{ID: "f1", Title: long}}
	responses := []models.Response{respAt("f1", "u1", base, time.Minute)}

	buckets := GroupByForm(forms, responses, TimeWindow{})
	require.Len(t, buckets, 1)
	assert.Equal(t, "f1", buckets[0].Key)
	assert.Less(t, len([]rune(buckets[0].Label)), 40)
}

func TestBucketLabelTruncationKeepsValidUTF8(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	long := strings.Repeat("é", 40)
	forms := []models.Form{{ID: "f1", Title: long}}
	responses := []models.Response{respAt("f1", "u1", base, time.Minute)}

	buckets := GroupByForm(forms, responses, TimeWindow{})
	require.Len(t, buckets, 1)
	assert.True(t, utf8.ValidString(buckets[0].Label))
	assert.Len(t, []rune(buckets[0].Label), 32)
}

func TestBucketTiebreakUsesFullLabel(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prefix := strings.Repeat("x", 40)
	forms := []models.Form{
		{ID: "f1", Title: prefix + "zzz"},
		{ID: "f2", Title: prefix + "aaa"},
	}
	responses := []models.Response{
		respAt("f1", "u1", base, time.Minute),
		respAt("f2", "u1", base, 2*time.Minute),
	}

	buckets := GroupByForm(forms, responses, TimeWindow{})
	require.Len(t, buckets, 2)
	// equal counts and identical truncated labels; the full title decides
	assert.Equal(t, buckets[0].Label, buckets[1].Label)
	assert.Equal(t, "f2", buckets[0].Key)
	assert.Equal(t, "f1", buckets[1].Key)
}

func TestGroupByHour(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	responses := []models.Response{
		respAt("f1", "u1", base, time.Minute),
		respAt("f1", "u1", base.Add(time.Hour), time.Minute),
		respAt("f1", "u1", base.Add(time.Hour), time.Minute),
	}
	buckets := GroupByHour(responses, TimeWindow{}, time.UTC)
	require.Len(t, buckets, 2)
	assert.Equal(t, "09:00", buckets[0].Key)
	assert.Equal(t, "10:00", buckets[1].Key)
	assert.Equal(t, 2, buckets[1].Count)
}
