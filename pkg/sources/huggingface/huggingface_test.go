package huggingface

import (
	"encoding/json"
	"testing"

	"github.com/paper-app/research30/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelToItem_SplitsOwnerFromModelID(t *testing.T) {
	m := &rawModel{ModelID: "facebook/bart-large", LastModified: "2026-07-15T10:00:00Z", Downloads: 100, Likes: 5, Tags: []string{"nlp"}}
	item := modelToItem(m, "bart")
	require.NotNil(t, item)
	assert.Equal(t, "bart-large", item.Title)
	assert.Equal(t, "huggingface:facebook/bart-large", item.ID())
	assert.Equal(t, []string{"nlp"}, item.Tags)
	assert.Equal(t, "https://huggingface.co/facebook/bart-large", item.URL)
	assert.Equal(t, domain.ConfidenceHigh, item.DateConfidence)
	assert.Equal(t, domain.HFResourceModel, item.ResourceType)
	require.NotNil(t, item.Engagement.Downloads)
	assert.Equal(t, 100, *item.Engagement.Downloads)
}

func TestModelToItem_DropsModelWithMissingID(t *testing.T) {
	assert.Nil(t, modelToItem(&rawModel{}, "topic"))
}

func TestDatasetToItem_UsesDatasetsURLPrefix(t *testing.T) {
	d := &rawDataset{ID: "squad", CreatedAt: "2026-01-01T00:00:00Z"}
	item := datasetToItem(d, "squad")
	require.NotNil(t, item)
	assert.Equal(t, "https://huggingface.co/datasets/squad", item.URL)
	assert.Equal(t, domain.HFResourceDataset, item.ResourceType)
}

func TestPaperToItem_PrefersNestedPaperFields(t *testing.T) {
	p := &rawDailyPaper{
		Title:       "outer title",
		PublishedAt: "2026-07-20T00:00:00Z",
		Paper: &nestedPaper{
			ID:      "2301.00001",
			Title:   "Deep learning for genomics",
			Summary: "We study deep learning in genomics.",
			Authors: []author{{Name: "Jane Doe"}, {Name: "John Roe"}},
			Upvotes: 42,
		},
	}
	item := paperToItem(p, "deep learning")
	require.NotNil(t, item)
	assert.Equal(t, "Deep learning for genomics", item.Title)
	assert.Equal(t, "https://huggingface.co/papers/2301.00001", item.URL)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, item.Authors)
	require.NotNil(t, item.Engagement.Likes)
	assert.Equal(t, 42, *item.Engagement.Likes)
	assert.Greater(t, item.Relevance, 0.0)
}

func TestPaperToItem_DropsPaperWithNoTitle(t *testing.T) {
	assert.Nil(t, paperToItem(&rawDailyPaper{}, "topic"))
}

func TestAuthor_UnmarshalsStringOrObjectShape(t *testing.T) {
	var aStr, aObj author
	require.NoError(t, json.Unmarshal([]byte(`"Jane Doe"`), &aStr))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"John Roe"}`), &aObj))
	assert.Equal(t, "Jane Doe", aStr.Name)
	assert.Equal(t, "John Roe", aObj.Name)
}

func TestItemDate_EmptyWhenDateUnknown(t *testing.T) {
	assert.Equal(t, "", itemDate(&domain.HuggingFaceItem{}))
}
