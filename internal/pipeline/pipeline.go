// Package pipeline coordinates the source adapters: resolving which
// sources a query touches, fanning searches out across a bounded worker
// pool, scoring and filtering each source's results independently, then
// merging and deduplicating everything into one ResultSet.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/dateconf"
	"github.com/paper-app/research30/pkg/dedupe"
	"github.com/paper-app/research30/pkg/engagement"
	"github.com/paper-app/research30/pkg/scoring"
	"github.com/paper-app/research30/pkg/sources"
	"github.com/paper-app/research30/pkg/sources/arxiv"
	"github.com/paper-app/research30/pkg/sources/biorxiv"
	"github.com/paper-app/research30/pkg/sources/huggingface"
	"github.com/paper-app/research30/pkg/sources/openalex"
	"github.com/paper-app/research30/pkg/sources/pubmed"
	"github.com/paper-app/research30/pkg/sources/semanticscholar"
	"github.com/paper-app/research30/pkg/transport"
)

// Logger is the narrow logging surface the coordinator needs; satisfied
// by the standard library's *log.Logger. Constructors accept a logger
// rather than importing one globally.
type Logger interface {
	Printf(format string, args ...any)
}

// Coordinator runs a TopicQuery against every active source adapter and
// reduces the results into one ResultSet.
type Coordinator struct {
	cfg      domain.Config
	adapters map[domain.Source]sources.Adapter
	log      Logger
}

// New builds a Coordinator with one adapter per source. Most adapters
// share one retrying transport.Client; arXiv and PubMed get a slower
// one since their XML payloads routinely exceed the default timeout.
func New(cfg domain.Config, log Logger) *Coordinator {
	client := transport.New(cfg.HTTPTimeout, cfg.MaxRetries, cfg.RetryDelay, cfg.Debug)
	slowClient := transport.New(cfg.SlowHTTPTimeout, cfg.MaxRetries, cfg.RetryDelay, cfg.Debug)

	adapters := map[domain.Source]sources.Adapter{
		domain.SourceArxiv:           arxiv.New(slowClient),
		domain.SourceBiorxiv:         biorxiv.New(client, domain.SourceBiorxiv),
		domain.SourceMedrxiv:         biorxiv.New(client, domain.SourceMedrxiv),
		domain.SourcePubmed:          pubmed.New(slowClient),
		domain.SourceHuggingFace:     huggingface.New(client),
		domain.SourceOpenAlex:        openalex.New(client, cfg.ContactEmail),
		domain.SourceSemanticScholar: semanticscholar.New(client, cfg.S2APIKey),
	}
	return &Coordinator{cfg: cfg, adapters: adapters, log: log}
}

// Run searches every source a query resolves to, scores and filters each
// source's results, then merges and deduplicates across sources. A
// single source's failure (network error, malformed response, panic) is
// recorded in PerSourceError and never aborts the other sources.
func (c *Coordinator) Run(ctx context.Context, q domain.TopicQuery) (*domain.ResultSet, error) {
	runID := uuid.NewString()
	c.log.Printf("[pipeline %s] starting run: topic=%q sources=%v", runID, q.Topic, q.ActiveSources())

	var mu sync.Mutex
	perSourceItems := make(map[domain.Source][]domain.Item)
	perSourceError := make(map[domain.Source]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.OuterPoolSize)

	for _, src := range q.ActiveSources() {
		src := src
		adapter, ok := c.adapters[src]
		if !ok {
			continue
		}
		g.Go(func() error {
			// A panicking adapter must not tear down the errgroup (a
			// returned error would cancel gctx and abort every other
			// source), so panics land in perSourceError like any other
			// failure.
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					perSourceError[src] = fmt.Sprintf("panic: %v", r)
					mu.Unlock()
				}
			}()
			items, searchErr := adapter.Search(gctx, q, c.cfg)
			processed := c.processSourceItems(src, items, q)

			mu.Lock()
			perSourceItems[src] = processed
			if searchErr != nil {
				perSourceError[src] = searchErr.Error()
			}
			mu.Unlock()
			return nil
		})
	}
	// Every goroutine above swallows its own error into perSourceError and
	// returns nil, so g.Wait() returns nil; a cancelled ctx shows up only as
	// the adapters' own per-source errors.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]domain.Item, 0, totalItems(perSourceItems))
	for _, src := range q.ActiveSources() {
		merged = append(merged, perSourceItems[src]...)
	}
	merged = dedupe.CrossSource(merged, domain.DedupeThreshold)
	scoring.Sort(merged)

	result := &domain.ResultSet{
		Topic:          q.Topic,
		From:           q.From.Format("2006-01-02"),
		To:             q.To.Format("2006-01-02"),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Mode:           q.Mode,
		PerSourceItems: regroup(merged),
		PerSourceError: perSourceError,
	}
	c.log.Printf("[pipeline %s] done: %d items across %d sources", runID, result.Count(), len(result.PerSourceItems))
	return result, nil
}

// processSourceItems applies one source's date filter, academic/recency
// scoring, and within-source dedupe. It never returns an error itself:
// an adapter that partially failed still hands back whatever it managed
// to collect before erroring, and those items are scored like any other.
func (c *Coordinator) processSourceItems(src domain.Source, items []domain.Item, q domain.TopicQuery) []domain.Item {
	if len(items) == 0 {
		return nil
	}

	filtered := dateconf.FilterByDateRange(items, q.From, q.To, q.RequireDate)
	now := time.Now()
	for _, item := range filtered {
		h := item.Header()
		recency := dateconf.RecencyScore(h.Date, now)
		engagementScore := engagement.For(item, primaryCategoryOf(item))
		scoring.Score(item, recency, engagementScore)
	}
	scoring.Sort(filtered)
	return dedupe.WithinSource(filtered, domain.DedupeThreshold)
}

// primaryCategoryOf extracts an arXiv item's primary subject category;
// every other source ignores the value pkg/engagement.For passes through.
func primaryCategoryOf(item domain.Item) string {
	if a, ok := item.(*domain.ArxivItem); ok {
		return arxiv.PrimaryCategory(a)
	}
	return ""
}

func totalItems(perSource map[domain.Source][]domain.Item) int {
	n := 0
	for _, items := range perSource {
		n += len(items)
	}
	return n
}

func regroup(items []domain.Item) map[domain.Source][]domain.Item {
	out := make(map[domain.Source][]domain.Item)
	for _, item := range items {
		src := item.Source()
		out[src] = append(out[src], item)
	}
	return out
}
