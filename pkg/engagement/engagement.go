// Package engagement computes a 0-100 academic-signal score from each
// source's post-publication metadata (citations, downloads, peer review
// status, author count). Absent metadata always degrades gracefully to a
// per-source base score rather than zero, since a low-metadata item is
// usually just new, not unpopular.
package engagement

import (
	"math"
	"strings"

	"github.com/paper-app/research30/internal/domain"
)

func log1pSafe(x *int) float64 {
	if x == nil || *x < 0 {
		return 0.0
	}
	return math.Log1p(float64(*x))
}

func clamp100(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// Biorxiv scores peer-review status and author count; bioRxiv/medRxiv
// expose almost nothing else.
func Biorxiv(e *domain.Engagement) int {
	if e == nil {
		return 20
	}
	score := 20
	if e.PublishedDOI != nil && *e.PublishedDOI != "" {
		score += 50
	}
	if e.AuthorCount != nil && *e.AuthorCount >= 5 {
		score += 10
	}
	return clamp100(score)
}

var popularArxivCategories = []string{
	"cs.AI", "cs.LG", "cs.CL", "cs.CV", "cs.NE", "stat.ML",
	"q-bio", "physics", "math",
}

// Arxiv scores category popularity and author count; arXiv has no
// citation counts of its own.
func Arxiv(e *domain.Engagement, primaryCategory string) int {
	score := 30
	for _, cat := range popularArxivCategories {
		if strings.HasPrefix(primaryCategory, cat) {
			score += 10
			break
		}
	}
	if e != nil && e.AuthorCount != nil && *e.AuthorCount >= 5 {
		score += 10
	}
	return clamp100(score)
}

// Pubmed scores journal publication and citation count.
func Pubmed(e *domain.Engagement) int {
	if e == nil {
		return 40
	}
	score := 40
	if e.PublishedJournal != nil && *e.PublishedJournal != "" {
		score += 20
	}
	if e.Citations != nil && *e.Citations > 0 {
		score += int(log1pSafe(e.Citations) * 15)
	}
	return clamp100(score)
}

// HuggingFace scores downloads and likes, each on its own log scale so a
// single early star doesn't dominate a brand-new model's score.
func HuggingFace(e *domain.Engagement) int {
	if e == nil {
		return 10
	}
	score := 10
	score += int(log1pSafe(e.Downloads) * 8)
	score += int(log1pSafe(e.Likes) * 12)
	return clamp100(score)
}

// OpenAlex scores journal publication, citation count, and author count.
func OpenAlex(e *domain.Engagement) int {
	if e == nil {
		return 30
	}
	score := 30
	if e.PublishedJournal != nil && *e.PublishedJournal != "" {
		score += 20
	}
	if e.Citations != nil && *e.Citations > 0 {
		score += int(log1pSafe(e.Citations) * 12)
	}
	if e.AuthorCount != nil && *e.AuthorCount >= 5 {
		score += 10
	}
	return clamp100(score)
}

// SemanticScholar mirrors OpenAlex's shape: citation count, venue, author
// count are the three signals S2 exposes consistently.
func SemanticScholar(e *domain.Engagement) int {
	if e == nil {
		return 30
	}
	score := 30
	if e.PublishedJournal != nil && *e.PublishedJournal != "" {
		score += 20
	}
	if e.Citations != nil && *e.Citations > 0 {
		score += int(log1pSafe(e.Citations) * 12)
	}
	if e.AuthorCount != nil && *e.AuthorCount >= 5 {
		score += 10
	}
	return clamp100(score)
}

// For computes the academic-signal score for any item by dispatching on
// its source, using primaryCategory only for arXiv items.
func For(item domain.Item, primaryCategory string) int {
	e := item.Header().Engagement
	switch item.Source() {
	case domain.SourceBiorxiv, domain.SourceMedrxiv:
		return Biorxiv(e)
	case domain.SourceArxiv:
		return Arxiv(e, primaryCategory)
	case domain.SourcePubmed:
		return Pubmed(e)
	case domain.SourceHuggingFace:
		return HuggingFace(e)
	case domain.SourceOpenAlex:
		return OpenAlex(e)
	case domain.SourceSemanticScholar:
		return SemanticScholar(e)
	default:
		return 0
	}
}
