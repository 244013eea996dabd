// Package dateconf filters items by publication date and classifies how
// confident that date is, plus derives a recency score from it.
package dateconf

import (
	"time"

	"github.com/paper-app/research30/internal/domain"
)

// Precision describes how much of a date an adapter actually observed
// before FilterByDateRange and Confidence ever run.
type Precision int

const (
	// PrecisionNone means no date was found at all.
	PrecisionNone Precision = iota
	// PrecisionYearMonth means only a year and month were available
	// (common for OpenAlex/PubMed records mid-indexing).
	PrecisionYearMonth
	// PrecisionFull means a complete year-month-day date was parsed.
	PrecisionFull
)

// Confidence classifies a date's precision into the three-tier scheme
// every scorer reads. A full date outside the query's [from, to] window
// rates medium; dropping such items is FilterByDateRange's job.
func Confidence(precision Precision, date *time.Time, from, to time.Time) domain.Confidence {
	if date == nil {
		return domain.ConfidenceLow
	}
	switch precision {
	case PrecisionFull:
		if !date.Before(from) && !date.After(to) {
			return domain.ConfidenceHigh
		}
		return domain.ConfidenceMedium
	case PrecisionYearMonth:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// FilterByDateRange removes items outside [from, to]. An item with no
// date is kept unless requireDate is set, matching
// normalize.py::filter_by_date_range's "undated items pass by default"
// behavior.
func FilterByDateRange[T domain.Item](items []T, from, to time.Time, requireDate bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		h := item.Header()
		if h.Date == nil {
			if !requireDate {
				result = append(result, item)
			}
			continue
		}
		d := *h.Date
		if d.Before(from) || d.After(to) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// maxRecencyDays is the horizon beyond which an item contributes no
// recency score at all; it mirrors the pipeline's default 30-day lookback
// window extended with slack for slower-indexing sources.
const maxRecencyDays = 90

// RecencyScore returns an integer in [0,100], monotonically non-increasing
// in the item's age, and 0 when date is nil. A same-day item scores 100;
// an item older than maxRecencyDays scores 0; dates are linearly
// interpolated between those two points.
func RecencyScore(date *time.Time, now time.Time) int {
	if date == nil {
		return 0
	}
	ageDays := now.Sub(*date).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	if ageDays >= maxRecencyDays {
		return 0
	}
	score := 100.0 * (1.0 - ageDays/maxRecencyDays)
	return int(score + 0.5)
}
