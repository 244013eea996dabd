package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ResultSet is the single return value of one pipeline run: every item
// collected, grouped by source, plus any per-source error encountered
// along the way. A source with an error can still contribute items if it
// failed partway through pagination.
type ResultSet struct {
	Topic          string            `json:"topic"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	GeneratedAt    string            `json:"generated_at"`
	Mode           Mode              `json:"mode"`
	PerSourceItems map[Source][]Item `json:"-"`
	PerSourceError map[Source]string `json:"errors,omitempty"`
	FromCache      bool              `json:"from_cache"`
	CacheAgeHours  float64           `json:"cache_age_hours,omitempty"`
}

// Count returns the total number of items across every source.
func (r *ResultSet) Count() int {
	n := 0
	for _, items := range r.PerSourceItems {
		n += len(items)
	}
	return n
}

// Flatten returns every item across all sources in a single slice, in
// whatever per-source order PerSourceItems already holds (callers that
// want a globally sorted view should run pkg/scoring.Sort over this).
func (r *ResultSet) Flatten() []Item {
	out := make([]Item, 0, r.Count())
	for _, src := range AllSources {
		out = append(out, r.PerSourceItems[src]...)
	}
	return out
}

// resultSetJSON mirrors ResultSet but with PerSourceItems made visible
// under "items" for serialization; Item values marshal through their
// concrete struct tags since json.Marshal resolves interface values by
// their dynamic type.
type resultSetJSON struct {
	Topic         string            `json:"topic"`
	From          string            `json:"from"`
	To            string            `json:"to"`
	GeneratedAt   string            `json:"generated_at"`
	Mode          Mode              `json:"mode"`
	Items         map[Source][]Item `json:"items"`
	Errors        map[Source]string `json:"errors,omitempty"`
	FromCache     bool              `json:"from_cache"`
	CacheAgeHours float64           `json:"cache_age_hours,omitempty"`
}

func (r *ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultSetJSON{
		Topic:         r.Topic,
		From:          r.From,
		To:            r.To,
		GeneratedAt:   r.GeneratedAt,
		Mode:          r.Mode,
		Items:         r.PerSourceItems,
		Errors:        r.PerSourceError,
		FromCache:     r.FromCache,
		CacheAgeHours: r.CacheAgeHours,
	})
}

// ReportCache is the external caching collaborator's contract; this
// module defines the interface and key derivation but never implements
// a backing store for it.
type ReportCache interface {
	Get(key string) (doc []byte, ageHours float64, ok bool)
	Put(key string, doc []byte) error
}

// CacheKey derives the report cache key for a query: the first 16 hex
// characters of SHA-256 over "{topic}|{from}|{to}|{sources}".
func CacheKey(topic, from, to, sources string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", topic, from, to, sources)))
	return hex.EncodeToString(sum[:])[:16]
}

type resultSetUnmarshalJSON struct {
	Topic         string                       `json:"topic"`
	From          string                       `json:"from"`
	To            string                       `json:"to"`
	GeneratedAt   string                       `json:"generated_at"`
	Mode          Mode                         `json:"mode"`
	Items         map[Source][]json.RawMessage `json:"items"`
	Errors        map[Source]string            `json:"errors,omitempty"`
	FromCache     bool                         `json:"from_cache"`
	CacheAgeHours float64                      `json:"cache_age_hours,omitempty"`
}

func (r *ResultSet) UnmarshalJSON(data []byte) error {
	var raw resultSetUnmarshalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Topic, r.From, r.To = raw.Topic, raw.From, raw.To
	r.GeneratedAt, r.Mode = raw.GeneratedAt, raw.Mode
	r.PerSourceError = raw.Errors
	r.FromCache, r.CacheAgeHours = raw.FromCache, raw.CacheAgeHours
	r.PerSourceItems = make(map[Source][]Item, len(raw.Items))
	for src, rawItems := range raw.Items {
		items := make([]Item, 0, len(rawItems))
		for _, rm := range rawItems {
			item, err := newItemForSource(src)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(rm, item); err != nil {
				return err
			}
			items = append(items, item)
		}
		r.PerSourceItems[src] = items
	}
	return nil
}

func newItemForSource(src Source) (Item, error) {
	switch src {
	case SourceArxiv:
		return &ArxivItem{}, nil
	case SourceBiorxiv, SourceMedrxiv:
		return &BiorxivItem{}, nil
	case SourcePubmed:
		return &PubmedItem{}, nil
	case SourceHuggingFace:
		return &HuggingFaceItem{}, nil
	case SourceOpenAlex:
		return &OpenAlexItem{}, nil
	case SourceSemanticScholar:
		return &SemanticScholarItem{}, nil
	default:
		return nil, errUnknownSource(src)
	}
}

type errUnknownSource Source

func (e errUnknownSource) Error() string { return "domain: unknown source " + string(e) }
