// Package biorxiv searches the bioRxiv/medRxiv preprint API. Unlike the
// other sources, this API has no keyword search: it returns preprints by
// date range only, so relevance filtering happens locally after fetch.
package biorxiv

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
	"golang.org/x/sync/errgroup"
)

const pageSize = 100
const relevanceFloor = 0.1

// rawRecord mirrors one element of the biorxiv details API's "collection".
type rawRecord struct {
	DOI              string `json:"doi"`
	Title            string `json:"title"`
	Authors          string `json:"authors"`
	Abstract         string `json:"abstract"`
	Date             string `json:"date"`
	Category         string `json:"category"`
	Server           string `json:"server"`
	Published        string `json:"published"`
	PublishedJournal string `json:"published_journal"`
	Version          string `json:"version"`
}

type page struct {
	Collection []rawRecord `json:"collection"`
	Messages   []message   `json:"messages"`
}

type message struct {
	Total int `json:"total"`
	Count int `json:"count"`
}

// Adapter implements sources.Adapter for one preprint server ("biorxiv"
// or "medrxiv"); the pipeline registers one instance per server since
// they share an API shape but have distinct source priorities.
type Adapter struct {
	Client *transport.Client
	Server domain.Source // SourceBiorxiv or SourceMedrxiv
}

func New(client *transport.Client, server domain.Source) *Adapter {
	return &Adapter{Client: client, Server: server}
}

func (a *Adapter) Name() domain.Source { return a.Server }

func (a *Adapter) serverName() string {
	if a.Server == domain.SourceMedrxiv {
		return "medrxiv"
	}
	return "biorxiv"
}

func (a *Adapter) fetchPage(ctx context.Context, from, to time.Time, cursor int) (*page, error) {
	url := fmt.Sprintf("https://api.biorxiv.org/details/%s/%s/%s/%d/json",
		a.serverName(), from.Format("2006-01-02"), to.Format("2006-01-02"), cursor)
	var p page
	if err := a.Client.FetchJSON(ctx, url, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Adapter) filterPage(topic string, records []rawRecord) []domain.Item {
	matches := make([]domain.Item, 0, len(records))
	for _, r := range records {
		rel, why := relevance.Compute(topic, r.Title, r.Abstract)
		if rel <= relevanceFloor {
			continue
		}
		item := recordToItem(&r, a.Server, rel, why)
		if item != nil {
			matches = append(matches, item)
		}
	}
	return matches
}

// Search fetches the first page sequentially to learn the total result
// count, then fans the remaining pages out across a bounded worker pool,
// stopping early once enough relevant matches have accumulated.
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	maxRelevant := cfg.DepthLimit(a.Server, q.Depth)

	first, err := a.fetchPage(ctx, q.From, q.To, 0)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", a.serverName(), err)
	}
	if len(first.Collection) == 0 {
		return nil, nil
	}

	results := a.filterPage(q.Topic, first.Collection)
	if len(results) >= maxRelevant {
		return results[:maxRelevant], nil
	}
	if len(first.Messages) == 0 {
		return results, nil
	}

	total, count := first.Messages[0].Total, first.Messages[0].Count
	if count >= total {
		return results, nil
	}

	var cursors []int
	for c := count; c < total && len(cursors) < cfg.BiorxivMaxPages-1; c += pageSize {
		cursors = append(cursors, c)
	}
	if len(cursors) == 0 {
		return results, nil
	}

	groupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var pageErr error
	g, gctx := errgroup.WithContext(groupCtx)
	g.SetLimit(cfg.BiorxivWorkers)

	for _, cursor := range cursors {
		cursor := cursor
		g.Go(func() error {
			p, err := a.fetchPage(gctx, q.From, q.To, cursor)
			if err != nil {
				// A single failed page is non-fatal; the rest keep going.
				// The first failure not caused by cancellation is reported
				// alongside the collected results.
				if gctx.Err() == nil {
					mu.Lock()
					if pageErr == nil {
						pageErr = fmt.Errorf("%s search cursor %d: %w", a.serverName(), cursor, err)
					}
					mu.Unlock()
				}
				return nil
			}
			matches := a.filterPage(q.Topic, p.Collection)

			mu.Lock()
			results = append(results, matches...)
			enough := len(results) >= maxRelevant
			mu.Unlock()

			if enough {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(results) > maxRelevant {
		results = results[:maxRelevant]
	}
	return results, pageErr
}

func recordToItem(r *rawRecord, server domain.Source, rel float64, why string) *domain.BiorxivItem {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil
	}

	var date *time.Time
	confidence := domain.ConfidenceLow
	if r.Date != "" {
		if t, err := time.Parse("2006-01-02", r.Date); err == nil {
			date = &t
			confidence = domain.ConfidenceHigh
		}
	}

	var authors []string
	authorCount := 0
	if r.Authors != "" {
		for _, a := range strings.Split(r.Authors, ";") {
			if name := strings.TrimSpace(a); name != "" {
				authors = append(authors, name)
			}
		}
		authorCount = len(authors)
	}

	var publishedDOI *string
	if r.Published != "" && r.Published != "NA" && r.Published != "NOT_PUBLISHED" {
		p := r.Published
		publishedDOI = &p
	}
	var publishedJournal *string
	if r.PublishedJournal != "" {
		j := r.PublishedJournal
		publishedJournal = &j
	}

	url := ""
	if r.DOI != "" {
		url = "https://doi.org/" + r.DOI
	}

	version := 0
	fmt.Sscanf(r.Version, "%d", &version)

	return &domain.BiorxivItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  url,
			Abstract:             strings.TrimSpace(r.Abstract),
			Authors:              authors,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				PublishedDOI:     publishedDOI,
				PublishedJournal: publishedJournal,
				AuthorCount:      &authorCount,
			},
		},
		DOI:      r.DOI,
		Server:   server,
		Category: strings.TrimSpace(r.Category),
		Version:  version,
	}
}
