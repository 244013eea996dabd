package openalex

import (
	"testing"

	"github.com/paper-app/research30/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructAbstract_OrdersWordsByPosition(t *testing.T) {
	idx := map[string][]int{
		"rice":    {0},
		"genomes": {2},
		"in":      {1},
	}
	assert.Equal(t, "rice in genomes", reconstructAbstract(idx))
}

func TestReconstructAbstract_EmptyIndexReturnsEmptyString(t *testing.T) {
	assert.Equal(t, "", reconstructAbstract(nil))
}

func TestExtractDOI_StripsResolverPrefix(t *testing.T) {
	assert.Equal(t, "10.1234/xyz", extractDOI("https://doi.org/10.1234/xyz"))
	assert.Equal(t, "10.1234/xyz", extractDOI("10.1234/xyz"))
}

func TestRankBoost_DecaysAcrossPage(t *testing.T) {
	top := rankBoost(0, 100)
	bottom := rankBoost(99, 100)
	assert.Greater(t, top, bottom)
	assert.InDelta(t, 0.1, top, 0.001)
}

func TestWorkToItem_ReconstructsAbstractAndDOI(t *testing.T) {
	w := &workResult{
		ID:              "https://openalex.org/W123",
		DOI:             "https://doi.org/10.1038/s41586-026-0001",
		Title:           "Gene editing in rice genomes",
		PublicationDate: "2026-07-01",
		CitedByCount:    12,
		Authorships: []authorship{
			{Author: struct {
				DisplayName string `json:"display_name"`
			}{DisplayName: "Jane Doe"}},
		},
		AbstractInvertedIndex: map[string][]int{"We": {0}, "edit": {1}, "genes": {2}},
		Topics:                []topic{{DisplayName: "Genome editing"}},
	}
	item := workToItem(w, "gene editing", 0, 10)
	require.NotNil(t, item)
	assert.Equal(t, "W123", item.OpenAlexID)
	assert.Equal(t, "10.1038/s41586-026-0001", item.DOI)
	assert.Equal(t, "We edit genes", item.Abstract)
	assert.Equal(t, "Genome editing", item.PrimaryTopic)
	assert.Equal(t, domain.ConfidenceHigh, item.DateConfidence)
	require.NotNil(t, item.Engagement.Citations)
	assert.Equal(t, 12, *item.Engagement.Citations)
	assert.LessOrEqual(t, item.Relevance, 1.0)
}

func TestWorkToItem_DropsBelowRelevanceFloor(t *testing.T) {
	w := &workResult{ID: "https://openalex.org/W1", Title: "Completely unrelated cooking show recap"}
	assert.Nil(t, workToItem(w, "gene editing", 50, 100))
}

func TestWorkToItem_DropsWorkWithMissingTitle(t *testing.T) {
	assert.Nil(t, workToItem(&workResult{}, "topic", 0, 10))
}
