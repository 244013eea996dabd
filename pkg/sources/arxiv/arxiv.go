// Package arxiv searches the arXiv Atom API for preprints matching a
// topic within a submission-date range.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
)

const baseURL = "http://export.arxiv.org/api/query"
const relevanceFloor = 0.1

// Adapter implements sources.Adapter for arXiv.
type Adapter struct {
	Client *transport.Client
}

func New(client *transport.Client) *Adapter { return &Adapter{Client: client} }

func (a *Adapter) Name() domain.Source { return domain.SourceArxiv }

// feed mirrors arXiv's Atom response shape.
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []entry  `xml:"entry"`
}

type entry struct {
	ID              string     `xml:"id"`
	Title           string     `xml:"title"`
	Summary         string     `xml:"summary"`
	Published       string     `xml:"published"`
	Updated         string     `xml:"updated"`
	Authors         []author   `xml:"author"`
	Links           []link     `xml:"link"`
	Category        []category `xml:"category"`
	PrimaryCategory category   `xml:"primary_category"`
}

type author struct {
	Name string `xml:"name"`
}

type link struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type category struct {
	Term string `xml:"term,attr"`
}

// Search queries arXiv's submittedDate range filter, sorted newest
// first; this pipeline cares about recency, not arXiv's own
// relevance ranking.
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	maxResults := cfg.DepthLimit(domain.SourceArxiv, q.Depth)

	fromArxiv := strings.ReplaceAll(q.From.Format("2006-01-02"), "-", "") + "0000"
	toArxiv := strings.ReplaceAll(q.To.Format("2006-01-02"), "-", "") + "2359"

	searchTerm := q.Topic
	if len(strings.Fields(q.Topic)) > 1 {
		searchTerm = `"` + q.Topic + `"`
	}

	params := url.Values{}
	params.Set("search_query", fmt.Sprintf("all:%s AND submittedDate:[%s TO %s]", searchTerm, fromArxiv, toArxiv))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))

	reqURL := baseURL + "?" + params.Encode()

	text, err := a.Client.FetchText(ctx, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}

	var parsed feed
	if err := xml.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("arxiv parse: %w", err)
	}

	items := make([]domain.Item, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		item := entryToItem(&e, q.Topic)
		if item != nil {
			items = append(items, item)
		}
	}
	return items, nil
}

func entryToItem(e *entry, topic string) *domain.ArxivItem {
	arxivID := extractArxivID(e.ID)
	title := strings.TrimSpace(e.Title)
	if arxivID == "" || title == "" {
		return nil
	}

	authors := make([]string, 0, len(e.Authors))
	for _, au := range e.Authors {
		if n := strings.TrimSpace(au.Name); n != "" {
			authors = append(authors, n)
		}
	}

	var published *time.Time
	for _, raw := range []string{e.Published, e.Updated} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			published = &t
			break
		}
	}

	categories := make([]string, 0, len(e.Category))
	for _, c := range e.Category {
		categories = append(categories, c.Term)
	}

	pdfURL := "https://arxiv.org/pdf/" + arxivID
	for _, l := range e.Links {
		if l.Type == "application/pdf" {
			pdfURL = l.Href
			break
		}
	}

	abstract := strings.TrimSpace(e.Summary)
	rel, why := relevance.Compute(topic, title, abstract)
	if rel <= relevanceFloor {
		return nil
	}

	primaryCategory := e.PrimaryCategory.Term
	if primaryCategory == "" && len(categories) > 0 {
		primaryCategory = categories[0]
	}

	confidence := domain.ConfidenceLow
	if published != nil {
		confidence = domain.ConfidenceHigh
	}

	authorCount := len(authors)
	item := &domain.ArxivItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  pdfURL,
			Abstract:             abstract,
			Authors:              authors,
			Date:                 published,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				AuthorCount: &authorCount,
			},
		},
		ArxivID:         arxivID,
		DOI:             "10.48550/arXiv." + arxivID,
		Categories:      categories,
		PrimaryCategory: primaryCategory,
	}
	return item
}

// extractArxivID pulls the bare arXiv ID out of an Atom entry's id URL
// and strips a trailing version suffix ("2301.00001v2" -> "2301.00001").
func extractArxivID(fullURL string) string {
	parts := strings.Split(fullURL, "/abs/")
	if len(parts) != 2 {
		return ""
	}
	id := parts[1]
	if idx := strings.LastIndex(id, "v"); idx > 0 {
		versionPart := id[idx+1:]
		isVersion := len(versionPart) > 0
		for _, c := range versionPart {
			if c < '0' || c > '9' {
				isVersion = false
				break
			}
		}
		if isVersion {
			id = id[:idx]
		}
	}
	return id
}

// PrimaryCategory returns an item's declared primary arXiv category,
// falling back to its first listed category; used by pkg/engagement's
// arXiv scorer to detect popular subject areas.
func PrimaryCategory(item *domain.ArxivItem) string {
	if item.PrimaryCategory != "" {
		return item.PrimaryCategory
	}
	if len(item.Categories) == 0 {
		return ""
	}
	return item.Categories[0]
}
