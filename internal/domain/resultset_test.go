package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSet_JSONRoundTrip(t *testing.T) {
	date := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	citations := 12
	original := &ResultSet{
		Topic:       "gene editing",
		From:        "2026-07-01",
		To:          "2026-07-31",
		GeneratedAt: "2026-07-31T12:00:00Z",
		Mode:        ModeAll,
		PerSourceItems: map[Source][]Item{
			SourceArxiv: {
				&ArxivItem{
					ItemHeader: ItemHeader{
						Title:          "Gene editing in rice",
						URL:            "https://arxiv.org/pdf/2301.00001",
						Date:           &date,
						DateConfidence: ConfidenceHigh,
						Relevance:      0.75,
						CompositeScore: 80,
					},
					ArxivID:         "2301.00001",
					PrimaryCategory: "q-bio.GN",
				},
			},
			SourcePubmed: {
				&PubmedItem{
					ItemHeader: ItemHeader{
						Title:          "Gene editing outcomes",
						DateConfidence: ConfidenceMedium,
						Relevance:      0.6,
						Engagement:     &Engagement{Citations: &citations},
					},
					PMID:      "12345",
					MeshTerms: []string{"Gene Editing", "CRISPR-Cas Systems"},
				},
			},
		},
		PerSourceError: map[Source]string{SourceHuggingFace: "HTTP 503"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ResultSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Topic, decoded.Topic)
	assert.Equal(t, original.GeneratedAt, decoded.GeneratedAt)
	assert.Equal(t, original.Mode, decoded.Mode)
	assert.Equal(t, original.PerSourceError, decoded.PerSourceError)
	require.Len(t, decoded.PerSourceItems[SourceArxiv], 1)

	arxivItem, ok := decoded.PerSourceItems[SourceArxiv][0].(*ArxivItem)
	require.True(t, ok)
	assert.Equal(t, "2301.00001", arxivItem.ArxivID)
	assert.Equal(t, "q-bio.GN", arxivItem.PrimaryCategory)
	assert.Equal(t, 0.75, arxivItem.Relevance)

	pubmedItem, ok := decoded.PerSourceItems[SourcePubmed][0].(*PubmedItem)
	require.True(t, ok)
	assert.Equal(t, []string{"Gene Editing", "CRISPR-Cas Systems"}, pubmedItem.MeshTerms)
	require.NotNil(t, pubmedItem.Engagement)
	require.NotNil(t, pubmedItem.Engagement.Citations)
	assert.Equal(t, 12, *pubmedItem.Engagement.Citations)
}

func TestResultSet_UnmarshalRejectsUnknownSource(t *testing.T) {
	var rs ResultSet
	err := json.Unmarshal([]byte(`{"topic":"x","items":{"gopherpedia":[{}]}}`), &rs)
	assert.Error(t, err)
}

func TestItemID_PrefixesSourceTag(t *testing.T) {
	assert.Equal(t, "arxiv:2301.00001", (&ArxivItem{ArxivID: "2301.00001"}).ID())
	assert.Equal(t, "pubmed:12345", (&PubmedItem{PMID: "12345"}).ID())
	assert.Equal(t, "medrxiv:10.1101/x", (&BiorxivItem{DOI: "10.1101/x", Server: SourceMedrxiv}).ID())
	assert.Equal(t, "huggingface:facebook/bart", (&HuggingFaceItem{HFID: "facebook/bart"}).ID())
	assert.Equal(t, "openalex:W123", (&OpenAlexItem{OpenAlexID: "W123"}).ID())
	assert.Equal(t, "semanticscholar:abc", (&SemanticScholarItem{PaperID: "abc"}).ID())
}

func TestCacheKey_IsStableSixteenHexChars(t *testing.T) {
	a := CacheKey("gene editing", "2026-07-01", "2026-07-31", "all")
	b := CacheKey("gene editing", "2026-07-01", "2026-07-31", "all")
	c := CacheKey("gene editing", "2026-07-01", "2026-07-31", "preprints")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", a)
}
