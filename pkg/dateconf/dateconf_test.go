package dateconf

import (
	"testing"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/stretchr/testify/assert"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestFilterByDateRange_KeepsUndatedItemsByDefault(t *testing.T) {
	items := []*domain.ArxivItem{
		{ItemHeader: domain.ItemHeader{Title: "undated"}},
	}
	from, to := date("2026-01-01"), date("2026-01-31")
	out := FilterByDateRange(items, *from, *to, false)
	assert.Len(t, out, 1)
}

func TestFilterByDateRange_DropsUndatedItemsWhenRequired(t *testing.T) {
	items := []*domain.ArxivItem{
		{ItemHeader: domain.ItemHeader{Title: "undated"}},
	}
	from, to := date("2026-01-01"), date("2026-01-31")
	out := FilterByDateRange(items, *from, *to, true)
	assert.Empty(t, out)
}

func TestFilterByDateRange_DropsOutOfRangeDates(t *testing.T) {
	items := []*domain.ArxivItem{
		{ItemHeader: domain.ItemHeader{Title: "too old", Date: date("2025-01-01")}},
		{ItemHeader: domain.ItemHeader{Title: "in range", Date: date("2026-01-15")}},
	}
	from, to := date("2026-01-01"), date("2026-01-31")
	out := FilterByDateRange(items, *from, *to, false)
	assert.Len(t, out, 1)
	assert.Equal(t, "in range", out[0].Title)
}

func TestConfidence_NilDateIsLow(t *testing.T) {
	from, to := *date("2026-01-01"), *date("2026-01-31")
	assert.Equal(t, domain.ConfidenceLow, Confidence(PrecisionNone, nil, from, to))
}

func TestConfidence_FullDateInRangeIsHigh(t *testing.T) {
	from, to := *date("2026-01-01"), *date("2026-01-31")
	assert.Equal(t, domain.ConfidenceHigh, Confidence(PrecisionFull, date("2026-01-15"), from, to))
}

func TestConfidence_YearMonthOnlyIsMedium(t *testing.T) {
	from, to := *date("2026-01-01"), *date("2026-01-31")
	assert.Equal(t, domain.ConfidenceMedium, Confidence(PrecisionYearMonth, date("2026-01-15"), from, to))
}

func TestRecencyScore_NilDateScoresZero(t *testing.T) {
	assert.Equal(t, 0, RecencyScore(nil, time.Now()))
}

func TestRecencyScore_TodayScoresMax(t *testing.T) {
	now := *date("2026-07-31")
	assert.Equal(t, 100, RecencyScore(&now, now))
}

func TestRecencyScore_IsMonotonicallyNonIncreasingWithAge(t *testing.T) {
	now := *date("2026-07-31")
	recent := date("2026-07-25")
	older := date("2026-06-01")
	assert.GreaterOrEqual(t, RecencyScore(recent, now), RecencyScore(older, now))
}

func TestRecencyScore_BeyondHorizonScoresZero(t *testing.T) {
	now := *date("2026-07-31")
	ancient := date("2020-01-01")
	assert.Equal(t, 0, RecencyScore(ancient, now))
}
