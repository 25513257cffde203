package aggregatetodos

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/models"
)

func item(src models.Source, urgency models.Urgency, conf float64, desc string) models.ActionItem {
	return models.ActionItem{Source: src, Urgency: urgency, Confidence: conf, Description: desc}
}

func descriptions(items []models.ActionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Description
	}
	return out
}

func TestAggregate_UrgencyBeforeConfidence(t *testing.T) {
	results := []models.SourceResult{
		{Source: models.SourceEmail, Items: []models.ActionItem{item(models.SourceEmail, models.UrgencyHigh, 0.8, "email item")}},
		{Source: models.SourceJira, Items: []models.ActionItem{item(models.SourceJira, models.UrgencyCritical, 0.5, "jira item")}},
		{Source: models.SourceSlack, Items: []models.ActionItem{}},
	}

	out := Aggregate(results, Options{ConfidenceThreshold: 0, DaysBack: 1})
	assert.Equal(t, []string{"jira item", "email item"}, descriptions(out.Todos))
	assert.Equal(t, "Last 1 day", out.AnalysisPeriod)
	assert.Empty(t, out.Errors)
	assert.True(t, out.SourceStatus[models.SourceSlack].Success)
}

func TestAggregate_ConfidenceThreshold(t *testing.T) {
	results := []models.SourceResult{{
		Source: models.SourceJira,
		Items: []models.ActionItem{
			item(models.SourceJira, models.UrgencyMedium, 0.9, "a"),
			item(models.SourceJira, models.UrgencyMedium, 0.5, "b"),
			item(models.SourceJira, models.UrgencyMedium, 0.7, "c"),
		},
	}}

	out := Aggregate(results, Options{ConfidenceThreshold: 0.6, DaysBack: 3})
	assert.Equal(t, []string{"a", "c"}, descriptions(out.Todos))
	assert.Equal(t, 1, out.BelowThreshold)
	assert.Equal(t, "Last 3 days", out.AnalysisPeriod)
	for _, it := range out.Todos {
		assert.GreaterOrEqual(t, it.Confidence, 0.6)
	}
}

func TestAggregate_FailedSourceIsIsolated(t *testing.T) {
	results := []models.SourceResult{
		models.FailedSource(models.SourceEmail, apperrors.NewSourceFetchFailedError("email", errors.New("imap timeout"))),
		{Source: models.SourceJira, ItemsAnalyzed: 4, Items: []models.ActionItem{item(models.SourceJira, models.UrgencyLow, 0.9, "j")}},
		{Source: models.SourceSlack, ItemsAnalyzed: 2, Items: []models.ActionItem{item(models.SourceSlack, models.UrgencyHigh, 0.9, "s")}},
	}

	out := Aggregate(results, Options{ConfidenceThreshold: 0.6, DaysBack: 1})

	assert.Equal(t, []string{"s", "j"}, descriptions(out.Todos))
	require.Len(t, out.Errors, 1)
	assert.Equal(t, models.SourceEmail, out.Errors[0].Source)
	assert.Equal(t, string(apperrors.ErrCodeSourceFetchFailed), out.Errors[0].Code)
	assert.Contains(t, out.Errors[0].String(), "Email: ")

	assert.False(t, out.SourceStatus[models.SourceEmail].Success)
	assert.Equal(t, SourceStatus{Success: true, TodosFound: 1, ItemsAnalyzed: 4}, out.SourceStatus[models.SourceJira])
	assert.Equal(t, 1, out.SourceCounts[models.SourceSlack])
	assert.Len(t, out.ByUrgency[models.UrgencyHigh], 1)
}

func TestAggregate_DisabledSourceIsSkippedNotFailed(t *testing.T) {
	results := []models.SourceResult{
		models.FailedSource(models.SourceSlack, apperrors.NewSourceDisabledError("slack")),
	}
	out := Aggregate(results, Options{DaysBack: 1})
	assert.Empty(t, out.Errors)
	assert.True(t, out.SourceStatus[models.SourceSlack].Skipped)
}

func TestAggregate_DedupeOnlyRemoves(t *testing.T) {
	results := []models.SourceResult{
		{Source: models.SourceJira, Items: []models.ActionItem{
			item(models.SourceJira, models.UrgencyLow, 0.7, "Update docs"),
			item(models.SourceJira, models.UrgencyHigh, 0.8, "update  DOCS"),
		}},
		{Source: models.SourceSlack, Items: []models.ActionItem{
			item(models.SourceSlack, models.UrgencyLow, 0.7, "Update docs"),
		}},
	}

	out := Aggregate(results, Options{ConfidenceThreshold: 0.6, DaysBack: 1})
	assert.LessOrEqual(t, out.Total(), 3)
	assert.Equal(t, 1, out.Duplicates)
	require.Len(t, out.Todos, 2)
	assert.Equal(t, models.UrgencyHigh, out.Todos[0].Urgency)
	assert.Equal(t, models.SourceSlack, out.Todos[1].Source)
}

func TestSort_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	urgencies := append([]models.Urgency{"unknown"}, models.Urgencies...)

	for trial := 0; trial < 50; trial++ {
		items := make([]models.ActionItem, 20)
		for i := range items {
			items[i] = models.ActionItem{
				Description: string(rune('a' + i)),
				Urgency:     urgencies[r.Intn(len(urgencies))],
				Confidence:  float64(r.Intn(5)) / 4,
			}
		}

		Sort(items)
		once := append([]models.ActionItem(nil), items...)
		Sort(items)
		assert.Equal(t, once, items)

		for i := 1; i < len(items); i++ {
			prev, cur := items[i-1], items[i]
			require.LessOrEqual(t, prev.Urgency.Rank(), cur.Urgency.Rank())
			if prev.Urgency.Rank() == cur.Urgency.Rank() {
				require.GreaterOrEqual(t, prev.Confidence, cur.Confidence)
			}
		}
	}
}

func TestSort_StableForTies(t *testing.T) {
	items := []models.ActionItem{
		item(models.SourceEmail, models.UrgencyLow, 0.7, "first"),
		item(models.SourceJira, models.UrgencyLow, 0.7, "second"),
		item(models.SourceSlack, models.UrgencyLow, 0.7, "third"),
	}
	Sort(items)
	assert.Equal(t, []string{"first", "second", "third"}, descriptions(items))
}

func TestAggregate_CountNeverExceedsInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 30; trial++ {
		var results []models.SourceResult
		total := 0
		for _, src := range models.Sources {
			n := r.Intn(6)
			res := models.SourceResult{Source: src}
			for i := 0; i < n; i++ {
				res.Items = append(res.Items, item(src, models.Urgencies[r.Intn(4)], r.Float64(), string(rune('a'+r.Intn(3)))))
			}
			total += n
			results = append(results, res)
		}
		out := Aggregate(results, Options{ConfidenceThreshold: 0.5, DaysBack: 1})
		assert.LessOrEqual(t, out.Total(), total)
		for _, it := range out.Todos {
			assert.GreaterOrEqual(t, it.Confidence, 0.5)
		}
	}
}
