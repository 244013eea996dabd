// Package semanticscholar searches the Semantic Scholar Graph API's
// semantic paper search, which ranks by embedding similarity rather
// than keyword overlap. Because that ranking already does most of the
// relevance work, this adapter applies a higher keyword-relevance
// threshold than the other sources and only needs to filter out
// tangential abstract-only mentions.
package semanticscholar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
)

const apiBase = "https://api.semanticscholar.org/graph/v1"

var fields = strings.Join([]string{
	"title", "abstract", "authors", "citationCount",
	"influentialCitationCount", "journal", "externalIds",
	"openAccessPdf", "publicationDate", "venue", "url",
	"publicationTypes",
}, ",")

// Adapter implements sources.Adapter for Semantic Scholar.
type Adapter struct {
	Client *transport.Client
	APIKey string
}

func New(client *transport.Client, apiKey string) *Adapter {
	return &Adapter{Client: client, APIKey: apiKey}
}

func (a *Adapter) Name() domain.Source { return domain.SourceSemanticScholar }

type searchPage struct {
	Total int      `json:"total"`
	Next  *int     `json:"next"`
	Data  []paper  `json:"data"`
}

type paper struct {
	PaperID                  string                 `json:"paperId"`
	Title                    string                 `json:"title"`
	Abstract                 string                 `json:"abstract"`
	Authors                  []s2Author             `json:"authors"`
	CitationCount            int                    `json:"citationCount"`
	InfluentialCitationCount int                    `json:"influentialCitationCount"`
	Journal                  *s2Journal             `json:"journal"`
	ExternalIDs              map[string]interface{} `json:"externalIds"`
	OpenAccessPdf            *s2OpenAccessPdf       `json:"openAccessPdf"`
	PublicationDate          string                 `json:"publicationDate"`
	Venue                    string                 `json:"venue"`
	URL                      string                 `json:"url"`
	PublicationTypes         []string               `json:"publicationTypes"`
}

type s2Author struct {
	Name string `json:"name"`
}

type s2Journal struct {
	Name string `json:"name"`
}

type s2OpenAccessPdf struct {
	URL string `json:"url"`
}

func (a *Adapter) fetchPage(ctx context.Context, topic, from, to string, offset, pageSize int) (*searchPage, error) {
	params := url.Values{}
	params.Set("query", topic)
	params.Set("publicationDateOrYear", fmt.Sprintf("%s:%s", from, to))
	params.Set("limit", fmt.Sprintf("%d", pageSize))
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("fields", fields)

	var headers map[string]string
	if a.APIKey != "" {
		headers = map[string]string{"x-api-key": a.APIKey}
	}

	var page searchPage
	if err := a.Client.FetchJSON(ctx, apiBase+"/paper/search?"+params.Encode(), headers, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search paginates the semantic search endpoint, boosting each
// surviving result's relevance by its position in the overall ranking
// before the composite scorer ever sees it.
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	maxResults := cfg.DepthLimit(domain.SourceSemanticScholar, q.Depth)
	from, to := q.From.Format("2006-01-02"), q.To.Format("2006-01-02")

	var results []domain.Item
	var pageErr error
	offset := 0
	for p := 0; p < cfg.SemanticScholarMaxPages; p++ {
		page, err := a.fetchPage(ctx, q.Topic, from, to, offset, cfg.SemanticScholarPageSize)
		if err != nil {
			if offset == 0 {
				return nil, fmt.Errorf("semanticscholar search: %w", err)
			}
			pageErr = fmt.Errorf("semanticscholar search offset %d: %w", offset, err)
			break
		}
		if len(page.Data) == 0 {
			break
		}

		for i, pp := range page.Data {
			globalRank := offset + i
			item := paperToItem(&pp, q.Topic, globalRank, maxResults, cfg.SemanticScholarRelevanceFloor)
			if item != nil {
				results = append(results, item)
			}
		}

		if len(results) >= maxResults {
			break
		}
		if page.Next == nil || offset+cfg.SemanticScholarPageSize >= page.Total {
			break
		}
		offset = *page.Next
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, pageErr
}

func rankBoost(rank, maxResults int) float64 {
	if maxResults <= 0 {
		return 0
	}
	boost := 0.1 * (1 - float64(rank)/float64(maxResults))
	return max(0.0, boost)
}

func extractDOI(externalIDs map[string]interface{}) string {
	if externalIDs == nil {
		return ""
	}
	if doi, ok := externalIDs["DOI"].(string); ok {
		return doi
	}
	return ""
}

func buildURL(p *paper, doi string) string {
	if p.OpenAccessPdf != nil && p.OpenAccessPdf.URL != "" {
		return p.OpenAccessPdf.URL
	}
	if doi != "" {
		return "https://doi.org/" + doi
	}
	return p.URL
}

func paperToItem(p *paper, topicQuery string, rank, maxResults int, relevanceFloor float64) *domain.SemanticScholarItem {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil
	}

	rel, why := relevance.Compute(topicQuery, title, p.Abstract)
	if rel <= relevanceFloor {
		return nil
	}
	rel = min(1.0, rel+rankBoost(rank, maxResults))

	authors := make([]string, 0, len(p.Authors))
	for _, au := range p.Authors {
		if au.Name != "" {
			authors = append(authors, au.Name)
		}
	}

	var date *time.Time
	confidence := domain.ConfidenceLow
	if p.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", p.PublicationDate); err == nil {
			date = &t
			confidence = domain.ConfidenceHigh
		}
	}

	venue := p.Venue
	if venue == "" && p.Journal != nil {
		venue = p.Journal.Name
	}
	var publishedJournal *string
	if venue != "" {
		publishedJournal = &venue
	}

	doi := extractDOI(p.ExternalIDs)
	citations := p.CitationCount
	influential := p.InfluentialCitationCount
	authorCount := len(authors)

	return &domain.SemanticScholarItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  buildURL(p, doi),
			Abstract:             p.Abstract,
			Authors:              authors,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				Citations:            &citations,
				InfluentialCitations: &influential,
				AuthorCount:          &authorCount,
				PublishedJournal:     publishedJournal,
			},
		},
		PaperID:          p.PaperID,
		DOI:              doi,
		Venue:            venue,
		PublicationTypes: p.PublicationTypes,
	}
}
