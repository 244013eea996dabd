// Package domain defines the canonical schema shared by every source
// adapter and by the scoring and deduplication stages.
package domain

import "time"

// Source identifies which upstream API an Item came from.
type Source string

const (
	SourceArxiv           Source = "arxiv"
	SourceBiorxiv         Source = "biorxiv"
	SourceMedrxiv         Source = "medrxiv"
	SourcePubmed          Source = "pubmed"
	SourceHuggingFace     Source = "huggingface"
	SourceOpenAlex        Source = "openalex"
	SourceSemanticScholar Source = "semanticscholar"
)

// SourcePriority orders sources for dedupe tie-breaking: lower wins.
// Semantic Scholar shares OpenAlex's rank since both are secondary
// aggregators layered over the same primary literature.
var SourcePriority = map[Source]int{
	SourcePubmed:          0,
	SourceOpenAlex:        1,
	SourceSemanticScholar: 1,
	SourceBiorxiv:         2,
	SourceMedrxiv:         3,
	SourceArxiv:           4,
	SourceHuggingFace:     5,
}

// Confidence classifies how much of an item's publication date is known.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Depth controls how many records an adapter is willing to retrieve.
type Depth string

const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// Engagement captures whatever post-publication signal a source exposes.
// A nil pointer field means the source never reports that signal; it must
// never be read as zero.
type Engagement struct {
	Citations            *int    `json:"citations,omitempty"`
	InfluentialCitations *int    `json:"influential_citations,omitempty"`
	Likes                *int    `json:"likes,omitempty"`
	Downloads            *int    `json:"downloads,omitempty"`
	Stars                *int    `json:"stars,omitempty"`
	Comments             *int    `json:"comments,omitempty"`
	AuthorCount          *int    `json:"author_count,omitempty"`
	PublishedJournal     *string `json:"published_journal,omitempty"`
	// PublishedDOI is the DOI of the version-of-record, when a source
	// reports it separately from the item's own preprint/work DOI. It
	// participates in cross-source dedupe exactly like any other DOI.
	PublishedDOI *string `json:"published_doi,omitempty"`
}

// ItemHeader holds the fields common to every source variant. It is
// embedded, never referenced polymorphically in place of Item itself.
type ItemHeader struct {
	Title                string      `json:"title"`
	URL                  string      `json:"url"`
	Abstract             string      `json:"abstract,omitempty"`
	Authors              []string    `json:"authors,omitempty"`
	Date                 *time.Time  `json:"date,omitempty"`
	DateConfidence       Confidence  `json:"date_confidence"`
	Engagement           *Engagement `json:"engagement,omitempty"`
	Relevance            float64     `json:"relevance"`
	RelevanceExplanation string      `json:"relevance_explanation,omitempty"`
	RecencyScore         int         `json:"recency_score"`
	EngagementScore      float64     `json:"engagement_score"`
	CompositeScore       float64     `json:"score"`
}

// DedupeKeys collects every identifier an item can be matched against
// during cross-source deduplication.
type DedupeKeys struct {
	DOI          string
	PreprintDOI  string
	PublishedDOI string
}

// Item is the tagged-variant interface implemented by every per-source
// record type. It intentionally carries no behavior beyond identity and
// header access: date filtering reads only the header, while engagement
// scoring and composite weighting read the header and dispatch on
// Source().
type Item interface {
	Source() Source
	// ID is the globally unique "<source>:<native_id>" identifier.
	ID() string
	Header() *ItemHeader
	DedupeKeys() DedupeKeys
}

func dedupeKeysFromHeader(h *ItemHeader, ownDOIs ...string) DedupeKeys {
	keys := DedupeKeys{}
	for _, d := range ownDOIs {
		if d != "" && keys.DOI == "" {
			keys.DOI = d
		}
	}
	if h.Engagement != nil && h.Engagement.PublishedDOI != nil {
		keys.PublishedDOI = *h.Engagement.PublishedDOI
	}
	return keys
}

// ArxivItem is an arXiv preprint.
type ArxivItem struct {
	ItemHeader
	ArxivID         string   `json:"arxiv_id"`
	DOI             string   `json:"doi,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	PrimaryCategory string   `json:"primary_category,omitempty"`
}

func (i *ArxivItem) Source() Source      { return SourceArxiv }
func (i *ArxivItem) ID() string      { return string(SourceArxiv) + ":" + i.ArxivID }
func (i *ArxivItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *ArxivItem) DedupeKeys() DedupeKeys {
	keys := dedupeKeysFromHeader(&i.ItemHeader, i.DOI)
	keys.PreprintDOI = i.DOI
	return keys
}

// BiorxivItem is a bioRxiv or medRxiv preprint. Server distinguishes the
// two since they share one API shape but are separate source priorities.
type BiorxivItem struct {
	ItemHeader
	DOI      string `json:"doi,omitempty"`
	Server   Source `json:"server"`
	Category string `json:"category,omitempty"`
	Version  int    `json:"version,omitempty"`
}

func (i *BiorxivItem) Source() Source {
	if i.Server == SourceMedrxiv {
		return SourceMedrxiv
	}
	return SourceBiorxiv
}
func (i *BiorxivItem) ID() string { return string(i.Source()) + ":" + i.DOI }
func (i *BiorxivItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *BiorxivItem) DedupeKeys() DedupeKeys {
	keys := dedupeKeysFromHeader(&i.ItemHeader, i.DOI)
	keys.PreprintDOI = i.DOI
	return keys
}

// PubmedItem is a PubMed/MEDLINE citation.
type PubmedItem struct {
	ItemHeader
	PMID      string   `json:"pmid"`
	PMCID     string   `json:"pmcid,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	MeshTerms []string `json:"mesh_terms,omitempty"`
}

func (i *PubmedItem) Source() Source      { return SourcePubmed }
func (i *PubmedItem) ID() string      { return string(SourcePubmed) + ":" + i.PMID }
func (i *PubmedItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *PubmedItem) DedupeKeys() DedupeKeys {
	return dedupeKeysFromHeader(&i.ItemHeader, i.DOI)
}

// HuggingFaceResourceType distinguishes the three sub-resources the
// HuggingFace adapter searches independently.
type HuggingFaceResourceType string

const (
	HFResourceModel       HuggingFaceResourceType = "model"
	HFResourceDataset     HuggingFaceResourceType = "dataset"
	HFResourceDailyPaper  HuggingFaceResourceType = "daily_paper"
)

// HuggingFaceItem is a model, dataset, or daily-paper record.
type HuggingFaceItem struct {
	ItemHeader
	ResourceType HuggingFaceResourceType `json:"resource_type"`
	HFID         string                  `json:"hf_id"`
	ArxivID      string                  `json:"arxiv_id,omitempty"`
	Tags         []string                `json:"tags,omitempty"`
}

func (i *HuggingFaceItem) Source() Source      { return SourceHuggingFace }
func (i *HuggingFaceItem) ID() string      { return string(SourceHuggingFace) + ":" + i.HFID }
func (i *HuggingFaceItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *HuggingFaceItem) DedupeKeys() DedupeKeys {
	return dedupeKeysFromHeader(&i.ItemHeader)
}

// OpenAlexItem is an OpenAlex work.
type OpenAlexItem struct {
	ItemHeader
	OpenAlexID        string  `json:"openalex_id"`
	DOI               string  `json:"doi,omitempty"`
	SourceName        string  `json:"source_name,omitempty"`
	WorkType          string  `json:"work_type,omitempty"`
	PrimaryTopic      string  `json:"primary_topic,omitempty"`
	PrimaryTopicScore float64 `json:"primary_topic_score,omitempty"`
}

func (i *OpenAlexItem) Source() Source      { return SourceOpenAlex }
func (i *OpenAlexItem) ID() string      { return string(SourceOpenAlex) + ":" + i.OpenAlexID }
func (i *OpenAlexItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *OpenAlexItem) DedupeKeys() DedupeKeys {
	return dedupeKeysFromHeader(&i.ItemHeader, i.DOI)
}

// SemanticScholarItem is a Semantic Scholar paper.
type SemanticScholarItem struct {
	ItemHeader
	PaperID          string   `json:"paper_id"`
	DOI              string   `json:"doi,omitempty"`
	Venue            string   `json:"venue,omitempty"`
	PublicationTypes []string `json:"publication_types,omitempty"`
}

func (i *SemanticScholarItem) Source() Source      { return SourceSemanticScholar }
func (i *SemanticScholarItem) ID() string      { return string(SourceSemanticScholar) + ":" + i.PaperID }
func (i *SemanticScholarItem) Header() *ItemHeader { return &i.ItemHeader }
func (i *SemanticScholarItem) DedupeKeys() DedupeKeys {
	return dedupeKeysFromHeader(&i.ItemHeader, i.DOI)
}
