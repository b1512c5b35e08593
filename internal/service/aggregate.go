package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
)

// Aggregation over already-fetched collections. Every function here is pure
// and deterministic: no I/O, ties broken by key, malformed documents skipped.

const bucketLabelLimit = 32

// TimeWindow bounds an aggregation. Zero bounds mean unbounded on that side.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the effective timestamp falls inside the window.
func (w TimeWindow) Contains(ts time.Time) bool {
	if !w.From.IsZero() && ts.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !ts.Before(w.To) {
		return false
	}
	return true
}

// ComputeOverview derives the headline dashboard metrics.
//
// avgResponseTime averages (submittedAt - createdAt) in minutes over
// responses carrying both timestamps; the rest are excluded, not zeroed.
// completionRate is the deliberately crude responses/forms ratio capped at
// 100.
func ComputeOverview(forms []models.Form, responses []models.Response, window TimeWindow) dto.DashboardOverview {
	overview := dto.DashboardOverview{TotalForms: len(forms)}

	users := make(map[string]struct{})
	var gapTotal float64
	var gapCount int

	for i := range responses {
		resp := &responses[i]
		if !window.Contains(resp.EffectiveTime()) {
			continue
		}
		overview.TotalResponses++
		if resp.CollaboratorID != "" {
			users[resp.CollaboratorID] = struct{}{}
		}
		if resp.SubmittedAt != nil && !resp.SubmittedAt.IsZero() && !resp.CreatedAt.IsZero() {
			gap := resp.SubmittedAt.Sub(resp.CreatedAt).Minutes()
			if gap >= 0 {
				gapTotal += gap
				gapCount++
			}
		}
	}

	overview.ActiveUsers = len(users)
	if gapCount > 0 {
		overview.AvgResponseTime = gapTotal / float64(gapCount)
	}
	if overview.TotalForms > 0 {
		rate := float64(overview.TotalResponses) / float64(overview.TotalForms) * 100
		if rate > 100 {
			rate = 100
		}
		overview.CompletionRate = rate
	}
	return overview
}

// GroupByDay buckets responses by local calendar day, ascending by day.
func GroupByDay(responses []models.Response, window TimeWindow, loc *time.Location) []dto.BucketCount {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[string]int)
	for i := range responses {
		ts := responses[i].EffectiveTime()
		if !window.Contains(ts) {
			continue
		}
		counts[ts.In(loc).Format("2006-01-02")]++
	}
	return sortedBuckets(counts, nil, false)
}

// GroupByHour buckets responses by local hour of day, ascending by hour.
func GroupByHour(responses []models.Response, window TimeWindow, loc *time.Location) []dto.BucketCount {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[string]int)
	for i := range responses {
		ts := responses[i].EffectiveTime()
		if !window.Contains(ts) {
			continue
		}
		counts[fmt.Sprintf("%02d:00", ts.In(loc).Hour())]++
	}
	return sortedBuckets(counts, nil, false)
}

// GroupByForm buckets responses per form, count descending with the form
// title as display label. Responses referencing unknown forms keep their id
// as label instead of erroring.
func GroupByForm(forms []models.Form, responses []models.Response, window TimeWindow) []dto.BucketCount {
	labels := make(map[string]string, len(forms))
	for i := range forms {
		labels[forms[i].ID] = forms[i].Title
	}
	counts := make(map[string]int)
	for i := range responses {
		if !window.Contains(responses[i].EffectiveTime()) {
			continue
		}
		if responses[i].FormID == "" {
			continue
		}
		counts[responses[i].FormID]++
	}
	return sortedBuckets(counts, labels, true)
}

// GroupByCollaborator buckets responses per collaborator, count descending.
func GroupByCollaborator(responses []models.Response, window TimeWindow) []dto.BucketCount {
	labels := make(map[string]string)
	counts := make(map[string]int)
	for i := range responses {
		if !window.Contains(responses[i].EffectiveTime()) {
			continue
		}
		id := responses[i].CollaboratorID
		if id == "" {
			continue
		}
		counts[id]++
		if responses[i].CollaboratorUsername != "" {
			labels[id] = responses[i].CollaboratorUsername
		}
	}
	return sortedBuckets(counts, labels, true)
}

// sortedBuckets materializes the count map. Top-N style groupings sort by
// count descending with label, then key, as stable tiebreaks; time-series
// groupings sort ascending by key. Labels are truncated for display only.
func sortedBuckets(counts map[string]int, labels map[string]string, byCount bool) []dto.BucketCount {
	buckets := make([]dto.BucketCount, 0, len(counts))
	for key, count := range counts {
		label := key
		if labels != nil {
			if l, ok := labels[key]; ok && l != "" {
				label = l
			}
		}
		buckets = append(buckets, dto.BucketCount{Key: key, Label: label, Count: count})
	}
	// ordering uses the full label; truncation happens after the sort so it
	// stays display-only
	sort.Slice(buckets, func(i, j int) bool {
		if byCount {
			if buckets[i].Count != buckets[j].Count {
				return buckets[i].Count > buckets[j].Count
			}
			if buckets[i].Label != buckets[j].Label {
				return buckets[i].Label < buckets[j].Label
			}
		}
		return buckets[i].Key < buckets[j].Key
	})
	for i := range buckets {
		buckets[i].Label = truncateLabel(buckets[i].Label)
	}
	return buckets
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= bucketLabelLimit {
		return label
	}
	return string(runes[:bucketLabelLimit-1]) + "…"
}
