// Package huggingface searches the HuggingFace Hub for models, datasets,
// and daily papers matching a topic. Unlike the other sources, none of
// its three endpoints accept a date filter, so every result is matched
// locally after fetch; daily papers additionally have no search
// parameter at all and are filtered purely by local relevance.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
)

const relevanceFloor = 0.1

// Adapter implements sources.Adapter for HuggingFace.
type Adapter struct {
	Client *transport.Client
}

func New(client *transport.Client) *Adapter { return &Adapter{Client: client} }

func (a *Adapter) Name() domain.Source { return domain.SourceHuggingFace }

type rawModel struct {
	ModelID      string   `json:"modelId"`
	ID           string   `json:"id"`
	LastModified string   `json:"lastModified"`
	CreatedAt    string   `json:"createdAt"`
	Downloads    int      `json:"downloads"`
	Likes        int      `json:"likes"`
	Tags         []string `json:"tags"`
}

type rawDataset struct {
	ID           string   `json:"id"`
	LastModified string   `json:"lastModified"`
	CreatedAt    string   `json:"createdAt"`
	Downloads    int      `json:"downloads"`
	Likes        int      `json:"likes"`
	Tags         []string `json:"tags"`
}

// author accepts either a bare string or {"name": "..."} — the Hub's
// daily_papers endpoint mixes both shapes across records.
type author struct {
	Name string
}

func (a *author) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	return nil
}

type nestedPaper struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []author `json:"authors"`
	Summary string   `json:"summary"`
	Upvotes int      `json:"upvotes"`
}

type rawDailyPaper struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	PublishedAt string       `json:"publishedAt"`
	Paper       *nestedPaper `json:"paper"`
}

func (a *Adapter) searchModels(ctx context.Context, topic string, limit int) ([]rawModel, error) {
	reqURL := fmt.Sprintf("https://huggingface.co/api/models?search=%s&sort=likes&direction=-1&limit=%d",
		url.QueryEscape(topic), limit)
	var models []rawModel
	if err := a.Client.FetchJSON(ctx, reqURL, nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (a *Adapter) searchDatasets(ctx context.Context, topic string, limit int) ([]rawDataset, error) {
	reqURL := fmt.Sprintf("https://huggingface.co/api/datasets?search=%s&sort=likes&direction=-1&limit=%d",
		url.QueryEscape(topic), limit)
	var datasets []rawDataset
	if err := a.Client.FetchJSON(ctx, reqURL, nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

func (a *Adapter) searchDailyPapers(ctx context.Context, topic string) ([]rawDailyPaper, error) {
	var papers []rawDailyPaper
	if err := a.Client.FetchJSON(ctx, "https://huggingface.co/api/daily_papers", nil, &papers); err != nil {
		return nil, err
	}
	relevant := make([]rawDailyPaper, 0, len(papers))
	for _, p := range papers {
		title := p.Title
		if p.Paper != nil && p.Paper.Title != "" {
			title = p.Paper.Title
		}
		rel, _ := relevance.Compute(topic, title, "")
		if rel > relevanceFloor {
			relevant = append(relevant, p)
		}
	}
	return relevant, nil
}

// Search queries models, datasets, and daily papers independently and,
// since none of the three Hub endpoints accept a date parameter, locally
// drops every result dated before the query's From date, undated results
// included. The upper bound (To) is not checked here.
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	limit := cfg.DepthLimit(domain.SourceHuggingFace, q.Depth)
	fromDate := q.From.Format("2006-01-02")

	var errs []string
	items := make([]domain.Item, 0, limit*2)

	models, err := a.searchModels(ctx, q.Topic, limit)
	if err != nil {
		errs = append(errs, fmt.Sprintf("models: %v", err))
	}
	for _, m := range models {
		if item := modelToItem(&m, q.Topic); item != nil && itemDate(item) >= fromDate {
			items = append(items, item)
		}
	}

	datasets, err := a.searchDatasets(ctx, q.Topic, limit)
	if err != nil {
		errs = append(errs, fmt.Sprintf("datasets: %v", err))
	}
	for _, d := range datasets {
		if item := datasetToItem(&d, q.Topic); item != nil && itemDate(item) >= fromDate {
			items = append(items, item)
		}
	}

	papers, err := a.searchDailyPapers(ctx, q.Topic)
	if err != nil {
		errs = append(errs, fmt.Sprintf("papers: %v", err))
	}
	for _, p := range papers {
		if item := paperToItem(&p, q.Topic); item != nil && itemDate(item) >= fromDate {
			items = append(items, item)
		}
	}

	if len(errs) > 0 {
		return items, fmt.Errorf("huggingface: %s", strings.Join(errs, "; "))
	}
	return items, nil
}

// itemDate returns the YYYY-MM-DD form of an item's date, or "" if
// unknown. The format sorts lexicographically in date order, so a
// plain string comparison against from_date is a valid range check.
func itemDate(item *domain.HuggingFaceItem) string {
	if item.Date == nil {
		return ""
	}
	return item.Date.Format("2006-01-02")
}

func parseHFDate(candidates ...string) *time.Time {
	for _, v := range candidates {
		if len(v) < 10 {
			continue
		}
		if t, err := time.Parse("2006-01-02", v[:10]); err == nil {
			return &t
		}
	}
	return nil
}

func splitID(id string) (title, owner string) {
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:], id[:idx]
	}
	return id, ""
}

func modelToItem(m *rawModel, topic string) *domain.HuggingFaceItem {
	id := m.ModelID
	if id == "" {
		id = m.ID
	}
	if id == "" {
		return nil
	}
	title, _ := splitID(id)
	date := parseHFDate(m.LastModified, m.CreatedAt)
	rel, why := relevance.Compute(topic, title, strings.Join(m.Tags, " "))
	if rel <= relevanceFloor {
		return nil
	}

	confidence := domain.ConfidenceLow
	if date != nil {
		confidence = domain.ConfidenceHigh
	}
	downloads, likes := m.Downloads, m.Likes

	return &domain.HuggingFaceItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  "https://huggingface.co/" + id,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				Downloads: &downloads,
				Likes:     &likes,
			},
		},
		ResourceType: domain.HFResourceModel,
		HFID:         id,
		Tags:         m.Tags,
	}
}

func datasetToItem(d *rawDataset, topic string) *domain.HuggingFaceItem {
	if d.ID == "" {
		return nil
	}
	title, _ := splitID(d.ID)
	date := parseHFDate(d.LastModified, d.CreatedAt)
	rel, why := relevance.Compute(topic, title, strings.Join(d.Tags, " "))
	if rel <= relevanceFloor {
		return nil
	}

	confidence := domain.ConfidenceLow
	if date != nil {
		confidence = domain.ConfidenceHigh
	}
	downloads, likes := d.Downloads, d.Likes

	return &domain.HuggingFaceItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  "https://huggingface.co/datasets/" + d.ID,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				Downloads: &downloads,
				Likes:     &likes,
			},
		},
		ResourceType: domain.HFResourceDataset,
		HFID:         d.ID,
		Tags:         d.Tags,
	}
}

func paperToItem(p *rawDailyPaper, topic string) *domain.HuggingFaceItem {
	title := p.Title
	id := p.ID
	var authors []author
	var summary string
	upvotes := 0
	if p.Paper != nil {
		if p.Paper.Title != "" {
			title = p.Paper.Title
		}
		if p.Paper.ID != "" {
			id = p.Paper.ID
		}
		authors = p.Paper.Authors
		summary = p.Paper.Summary
		upvotes = p.Paper.Upvotes
	}
	if title == "" {
		return nil
	}

	authorNames := make([]string, 0, len(authors))
	for i, au := range authors {
		if i >= 3 {
			break
		}
		if au.Name != "" {
			authorNames = append(authorNames, au.Name)
		}
	}

	date := parseHFDate(p.PublishedAt)
	rel, why := relevance.Compute(topic, title, summary)

	confidence := domain.ConfidenceLow
	if date != nil {
		confidence = domain.ConfidenceHigh
	}
	downloads := 0

	return &domain.HuggingFaceItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  "https://huggingface.co/papers/" + id,
			Abstract:             summary,
			Authors:              authorNames,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				Downloads: &downloads,
				Likes:     &upvotes,
			},
		},
		ResourceType: domain.HFResourceDailyPaper,
		HFID:         id,
		ArxivID:      id,
	}
}
