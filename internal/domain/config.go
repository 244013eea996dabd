package domain

import "time"

// ScoreWeights combines relevance, recency, and engagement into one
// composite score. HuggingFace items use a different blend than paper
// sources because download/like counts are a stronger engagement signal
// there than citation counts are for a brand-new preprint.
type ScoreWeights struct {
	Relevance  float64
	Recency    float64
	Engagement float64
}

var (
	PaperWeights = ScoreWeights{Relevance: 0.50, Recency: 0.25, Engagement: 0.25}
	HFWeights    = ScoreWeights{Relevance: 0.45, Recency: 0.25, Engagement: 0.30}
)

// LowConfidencePenalty is subtracted from the composite score whenever an
// item's date confidence is low.
const LowConfidencePenalty = 10.0

// DedupeThreshold is the minimum Jaccard 3-gram title similarity that
// counts as a duplicate.
const DedupeThreshold = 0.70

// depthLimits holds each source's own quick/default/deep record caps;
// they vary by source because each upstream API paginates differently
// (arXiv and Semantic Scholar return up to 200 at "deep", bioRxiv counts
// relevance-filtered matches rather than raw results).
var depthLimits = map[Source]map[Depth]int{
	SourceArxiv:           {DepthQuick: 30, DepthDefault: 100, DepthDeep: 200},
	SourceBiorxiv:         {DepthQuick: 20, DepthDefault: 50, DepthDeep: 200},
	SourceMedrxiv:         {DepthQuick: 20, DepthDefault: 50, DepthDeep: 200},
	SourcePubmed:          {DepthQuick: 30, DepthDefault: 100, DepthDeep: 200},
	SourceHuggingFace:     {DepthQuick: 20, DepthDefault: 50, DepthDeep: 100},
	SourceOpenAlex:        {DepthQuick: 30, DepthDefault: 100, DepthDeep: 200},
	SourceSemanticScholar: {DepthQuick: 30, DepthDefault: 100, DepthDeep: 200},
}

// Config is the immutable configuration threaded through the pipeline and
// every adapter. It is built once by internal/config.Load and never
// mutated afterward.
type Config struct {
	NCBIAPIKey string
	S2APIKey   string
	Debug      bool

	HTTPTimeout     time.Duration
	SlowHTTPTimeout time.Duration // arXiv and PubMed EFetch return large XML payloads
	MaxRetries      int
	RetryDelay      time.Duration
	OuterPoolSize   int
	BiorxivWorkers  int
	BiorxivMaxPages int

	PubmedRateLimitWithKey    time.Duration
	PubmedRateLimitWithoutKey time.Duration
	PubmedEFetchBatchSize     int

	OpenAlexMaxPages int
	OpenAlexPageSize int

	SemanticScholarMaxPages       int
	SemanticScholarPageSize       int
	SemanticScholarRelevanceFloor float64

	ContactEmail string // used as the OpenAlex polite-pool mailto param
}

// DefaultConfig returns the built-in limits, timeouts, and rates.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:     30 * time.Second,
		SlowHTTPTimeout: 60 * time.Second,
		MaxRetries:      3,
		RetryDelay:      1 * time.Second,
		OuterPoolSize:   5,
		BiorxivWorkers:  5,
		BiorxivMaxPages: 30,

		PubmedRateLimitWithKey:    100 * time.Millisecond,
		PubmedRateLimitWithoutKey: 340 * time.Millisecond,
		PubmedEFetchBatchSize:     200,

		OpenAlexMaxPages: 5,
		OpenAlexPageSize: 100,

		SemanticScholarMaxPages:       3,
		SemanticScholarPageSize:       100,
		SemanticScholarRelevanceFloor: 0.3,
	}
}

// DepthLimit resolves the per-source, per-depth-tier record cap.
func (c Config) DepthLimit(source Source, d Depth) int {
	tiers, ok := depthLimits[source]
	if !ok {
		return 50
	}
	if n, ok := tiers[d]; ok {
		return n
	}
	return tiers[DepthDefault]
}
