// Package scoring combines relevance, recency, and engagement into one
// composite 0-100 score per item, and sorts items by that score.
package scoring

import (
	"sort"
	"strconv"

	"github.com/paper-app/research30/internal/domain"
)

// Composite blends an item's three sub-scores using source-appropriate
// weights (HuggingFace items weigh engagement more heavily than papers
// do) and applies the low-confidence penalty. relevance01 is the raw
// [0,1] relevance score; recency and engagementScore are already 0-100.
func Composite(weights domain.ScoreWeights, relevance01 float64, recency, engagementScore int, confidence domain.Confidence) int {
	relScore := int(relevance01 * 100)
	overall := weights.Relevance*float64(relScore) +
		weights.Recency*float64(recency) +
		weights.Engagement*float64(engagementScore)

	if confidence == domain.ConfidenceLow {
		overall -= domain.LowConfidencePenalty
	}

	score := int(overall)
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// WeightsFor returns the composite-score weighting appropriate to a
// source: HuggingFace items lean more on engagement (downloads/likes are
// a stronger signal there than for a day-old preprint).
func WeightsFor(source domain.Source) domain.ScoreWeights {
	if source == domain.SourceHuggingFace {
		return domain.HFWeights
	}
	return domain.PaperWeights
}

// Score fills in RecencyScore, EngagementScore, and CompositeScore on an
// item's header in place, given the already-computed engagement score.
func Score(item domain.Item, recency, engagementScore int) {
	h := item.Header()
	h.RecencyScore = recency
	h.EngagementScore = float64(engagementScore)
	h.CompositeScore = float64(Composite(WeightsFor(item.Source()), h.Relevance, recency, engagementScore, h.DateConfidence))
}

// Sort orders items by composite score descending, then by date
// descending (undated items sort last), then by title ascending.
func Sort(items []domain.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Header(), items[j].Header()
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		ak, bk := dateSortKey(a), dateSortKey(b)
		if ak != bk {
			return ak > bk
		}
		return a.Title < b.Title
	})
}

// dateSortKey turns a date into a YYYYMMDD integer, with a missing
// date mapped to the lowest possible key so undated items always sort
// after dated ones at equal score.
func dateSortKey(h *domain.ItemHeader) int64 {
	if h.Date == nil {
		return 0
	}
	s := h.Date.Format("20060102")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
