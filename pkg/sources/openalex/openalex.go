// Package openalex searches the OpenAlex works index, which already
// ranks by full-text relevance server-side; a local keyword relevance
// score is still computed for consistency with the other sources.
package openalex

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
)

const baseURL = "https://api.openalex.org/works"
const topicsURL = "https://api.openalex.org/topics"
const relevanceFloor = 0.1
const maxTopicIDs = 3

// Adapter implements sources.Adapter for OpenAlex.
type Adapter struct {
	Client       *transport.Client
	ContactEmail string // polite-pool mailto param
}

func New(client *transport.Client, contactEmail string) *Adapter {
	return &Adapter{Client: client, ContactEmail: contactEmail}
}

func (a *Adapter) Name() domain.Source { return domain.SourceOpenAlex }

type searchResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Results []workResult `json:"results"`
}

type workResult struct {
	ID                    string                 `json:"id"`
	DOI                   string                 `json:"doi"`
	Title                 string                 `json:"title"`
	DisplayName           string                 `json:"display_name"`
	PublicationDate       string                 `json:"publication_date"`
	Type                  string                 `json:"type"`
	CitedByCount          int                    `json:"cited_by_count"`
	Authorships           []authorship           `json:"authorships"`
	PrimaryLocation       *location              `json:"primary_location"`
	OpenAccess            *openAccess            `json:"open_access"`
	AbstractInvertedIndex map[string][]int       `json:"abstract_inverted_index"`
	Topics                []topic                `json:"topics"`
}

type topic struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type authorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type location struct {
	Source *source `json:"source"`
}

type source struct {
	DisplayName string `json:"display_name"`
}

type openAccess struct {
	OAURL string `json:"oa_url"`
}

// topicsResponse mirrors the /topics discovery endpoint's shape.
type topicsResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// DiscoverTopicIDs resolves up to three OpenAlex topic IDs matching the
// query, used to widen the works filter beyond pure full-text search.
// Failure here is non-fatal by contract; callers proceed without
// augmentation.
func (a *Adapter) DiscoverTopicIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", fmt.Sprintf("%d", maxTopicIDs))
	if a.ContactEmail != "" {
		params.Set("mailto", a.ContactEmail)
	}

	var resp topicsResponse
	if err := a.Client.FetchJSON(ctx, topicsURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("openalex topic discovery: %w", err)
	}
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if id := strings.TrimPrefix(r.ID, "https://openalex.org/"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (a *Adapter) fetchPage(ctx context.Context, topic, from, to string, topicIDs []string, page, pageSize int) (*searchResponse, error) {
	filter := fmt.Sprintf("from_publication_date:%s,to_publication_date:%s", from, to)
	if len(topicIDs) > 0 {
		filter += ",topics.id:" + strings.Join(topicIDs, "|")
	}

	params := url.Values{}
	params.Set("search", topic)
	params.Set("filter", filter)
	params.Set("sort", "relevance_score:desc")
	params.Set("per_page", fmt.Sprintf("%d", pageSize))
	params.Set("page", fmt.Sprintf("%d", page))
	if a.ContactEmail != "" {
		params.Set("mailto", a.ContactEmail)
	}

	var resp searchResponse
	if err := a.Client.FetchJSON(ctx, baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search first tries to augment the works filter with matching topic
// IDs (non-fatal if discovery fails), then paginates OpenAlex's
// relevance-ranked results until enough relevant matches accumulate,
// the upstream result set is exhausted, or the page safety valve trips.
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	maxResults := cfg.DepthLimit(domain.SourceOpenAlex, q.Depth)
	from, to := q.From.Format("2006-01-02"), q.To.Format("2006-01-02")

	topicIDs, err := a.DiscoverTopicIDs(ctx, q.Topic)
	if err != nil && a.Client != nil && a.Client.Debug {
		log.Printf("[openalex] topic discovery failed, searching without augmentation: %v", err)
	}

	var results []domain.Item
	var pageErr error
	for page := 1; page <= cfg.OpenAlexMaxPages; page++ {
		resp, err := a.fetchPage(ctx, q.Topic, from, to, topicIDs, page, cfg.OpenAlexPageSize)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("openalex search: %w", err)
			}
			pageErr = fmt.Errorf("openalex search page %d: %w", page, err)
			break
		}
		if len(resp.Results) == 0 {
			break
		}

		for i, w := range resp.Results {
			globalRank := (page-1)*cfg.OpenAlexPageSize + i
			item := workToItem(&w, q.Topic, globalRank, maxResults)
			if item != nil {
				results = append(results, item)
			}
		}

		if len(results) >= maxResults || page*cfg.OpenAlexPageSize >= resp.Meta.Count {
			break
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, pageErr
}

// rankBoost rewards results OpenAlex itself ranked near the top, on top
// of this pipeline's own keyword relevance score, since the upstream
// relevance_score:desc ordering carries signal this pipeline's
// title/abstract-only scorer cannot see (citation graph proximity). The
// global rank runs across pages while the denominator stays at the
// depth cap, so the boost can go negative-and-clamp past the cap; that
// matches the observed upstream behavior, discontinuities included.
func rankBoost(rank, maxResults int) float64 {
	if maxResults <= 0 {
		return 0
	}
	boost := 0.1 * (1 - float64(rank)/float64(maxResults))
	return max(0.0, boost)
}

func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}
	type wordAt struct {
		pos  int
		word string
	}
	var positions []wordAt
	for word, idxs := range invertedIndex {
		for _, pos := range idxs {
			positions = append(positions, wordAt{pos, word})
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].pos < positions[j].pos })

	words := make([]string, 0, len(positions))
	for _, p := range positions {
		words = append(words, p.word)
	}
	return strings.Join(words, " ")
}

func extractDOI(doiURL string) string {
	doiURL = strings.TrimPrefix(doiURL, "https://doi.org/")
	doiURL = strings.TrimPrefix(doiURL, "http://doi.org/")
	return doiURL
}

func buildURL(w *workResult) string {
	if w.DOI != "" {
		if strings.HasPrefix(w.DOI, "http") {
			return w.DOI
		}
		return "https://doi.org/" + w.DOI
	}
	if w.OpenAccess != nil && w.OpenAccess.OAURL != "" {
		return w.OpenAccess.OAURL
	}
	return w.ID
}

func workToItem(w *workResult, topicQuery string, rank, pageSize int) *domain.OpenAlexItem {
	title := w.Title
	if title == "" {
		title = w.DisplayName
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	abstract := reconstructAbstract(w.AbstractInvertedIndex)
	rel, why := relevance.Compute(topicQuery, title, abstract)
	if rel <= relevanceFloor {
		return nil
	}
	rel = min(1.0, rel+rankBoost(rank, pageSize))

	authors := make([]string, 0, len(w.Authorships))
	for _, au := range w.Authorships {
		if name := strings.TrimSpace(au.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}

	var date *time.Time
	confidence := domain.ConfidenceLow
	if w.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", w.PublicationDate); err == nil {
			date = &t
			confidence = domain.ConfidenceHigh
		}
	}

	primaryTopic := ""
	primaryTopicScore := 0.0
	if len(w.Topics) > 0 {
		primaryTopic = w.Topics[0].DisplayName
		primaryTopicScore = w.Topics[0].Score
	}

	var venue string
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		venue = w.PrimaryLocation.Source.DisplayName
	}
	var publishedJournal *string
	if venue != "" {
		publishedJournal = &venue
	}
	citations := w.CitedByCount
	authorCount := len(authors)

	return &domain.OpenAlexItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  buildURL(w),
			Abstract:             abstract,
			Authors:              authors,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				Citations:        &citations,
				AuthorCount:      &authorCount,
				PublishedJournal: publishedJournal,
			},
		},
		OpenAlexID:        strings.TrimPrefix(w.ID, "https://openalex.org/"),
		DOI:               extractDOI(w.DOI),
		SourceName:        venue,
		WorkType:          w.Type,
		PrimaryTopic:      primaryTopic,
		PrimaryTopicScore: primaryTopicScore,
	}
}
