package engagement

import (
	"testing"

	"github.com/paper-app/research30/internal/domain"
	"github.com/stretchr/testify/assert"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

func TestBiorxiv_NilEngagementReturnsBase(t *testing.T) {
	assert.Equal(t, 20, Biorxiv(nil))
}

func TestBiorxiv_PublishedDOIBoostsScore(t *testing.T) {
	e := &domain.Engagement{PublishedDOI: strp("10.1/x")}
	assert.Equal(t, 70, Biorxiv(e))
}

func TestBiorxiv_ScoreNeverExceeds100(t *testing.T) {
	e := &domain.Engagement{PublishedDOI: strp("10.1/x"), AuthorCount: intp(10)}
	assert.Equal(t, 80, Biorxiv(e))
	assert.LessOrEqual(t, Biorxiv(e), 100)
}

func TestArxiv_PopularCategoryBoostsScore(t *testing.T) {
	assert.Equal(t, 40, Arxiv(nil, "cs.LG"))
	assert.Equal(t, 30, Arxiv(nil, "econ.GN"))
}

func TestPubmed_CitationsContributeLogarithmically(t *testing.T) {
	low := Pubmed(&domain.Engagement{Citations: intp(1)})
	high := Pubmed(&domain.Engagement{Citations: intp(1000)})
	assert.Greater(t, high, low)
}

func TestHuggingFace_NegativeOrNilCountsAreSafe(t *testing.T) {
	assert.Equal(t, 10, HuggingFace(&domain.Engagement{Downloads: intp(-5)}))
	assert.Equal(t, 10, HuggingFace(nil))
}

func TestSemanticScholar_MirrorsOpenAlexShape(t *testing.T) {
	e := &domain.Engagement{PublishedJournal: strp("Nature"), Citations: intp(50), AuthorCount: intp(6)}
	assert.Equal(t, OpenAlex(e), SemanticScholar(e))
}

func TestFor_DispatchesOnSource(t *testing.T) {
	item := &domain.ArxivItem{
		ItemHeader: domain.ItemHeader{Engagement: &domain.Engagement{AuthorCount: intp(6)}},
		Categories: []string{"cs.AI"},
	}
	assert.Equal(t, Arxiv(item.Header().Engagement, "cs.AI"), For(item, "cs.AI"))
}
