package aggregatetodos

import (
	"fmt"
	"sort"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/models"
)

// Aggregate merges per-source results into one list. Items below the
// threshold are dropped, the rest are sorted by urgency then confidence,
// and duplicates within a source are collapsed onto their first occurrence.
// A failed source contributes no items and one error entry.
func Aggregate(results []models.SourceResult, opts Options) *Result {
	out := &Result{
		ByUrgency:     map[models.Urgency][]models.ActionItem{},
		BySource:      map[models.Source][]models.ActionItem{},
		UrgencyCounts: map[models.Urgency]int{},
		SourceCounts:  map[models.Source]int{},
		SourceStatus:  map[models.Source]SourceStatus{},
		Todos:         []models.ActionItem{},
	}
	out.AnalysisPeriod = analysisPeriod(opts.DaysBack)

	var merged []models.ActionItem
	for _, r := range results {
		status := SourceStatus{ItemsAnalyzed: r.ItemsAnalyzed}
		if r.Err != nil {
			code := apperrors.ExtractCode(r.Err)
			if code == apperrors.ErrCodeSourceDisabled {
				status.Skipped = true
				out.SourceStatus[r.Source] = status
				continue
			}
			status.Error = r.Err.Error()
			out.SourceStatus[r.Source] = status
			out.Errors = append(out.Errors, SourceError{
				Source:  r.Source,
				Code:    string(code),
				Message: r.Err.Error(),
			})
			continue
		}

		kept := FilterByConfidence(r.Items, opts.ConfidenceThreshold)
		out.BelowThreshold += len(r.Items) - len(kept)
		status.Success = true
		status.TodosFound = len(kept)
		out.SourceStatus[r.Source] = status
		merged = append(merged, kept...)
	}

	Sort(merged)
	deduped := Dedupe(merged)
	out.Duplicates = len(merged) - len(deduped)
	out.Todos = deduped

	for _, item := range deduped {
		out.ByUrgency[item.Urgency] = append(out.ByUrgency[item.Urgency], item)
		out.BySource[item.Source] = append(out.BySource[item.Source], item)
		out.UrgencyCounts[item.Urgency]++
		out.SourceCounts[item.Source]++
	}
	for src, status := range out.SourceStatus {
		if status.Success {
			status.TodosFound = out.SourceCounts[src]
			out.SourceStatus[src] = status
		}
	}
	return out
}

// FilterByConfidence keeps items whose confidence is at least threshold.
func FilterByConfidence(items []models.ActionItem, threshold float64) []models.ActionItem {
	kept := make([]models.ActionItem, 0, len(items))
	for _, item := range items {
		if item.Confidence >= threshold {
			kept = append(kept, item)
		}
	}
	return kept
}

// Sort orders items by urgency rank ascending, then confidence descending.
// Equal keys keep their encounter order, so sorting twice is a no-op.
func Sort(items []models.ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Urgency.Rank(), items[j].Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].Confidence > items[j].Confidence
	})
}

// Dedupe drops later items with the same source and normalized description.
func Dedupe(items []models.ActionItem) []models.ActionItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.ActionItem, 0, len(items))
	for _, item := range items {
		key := item.DedupeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func analysisPeriod(days int) string {
	if days == 1 {
		return "Last 1 day"
	}
	return fmt.Sprintf("Last %d days", days)
}
