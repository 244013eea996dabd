package arxiv

import (
	"encoding/xml"
	"testing"

	"github.com/paper-app/research30/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <title>Deep Learning for Genomics</title>
    <summary>A study of deep learning applied to genomics data.</summary>
    <published>2026-07-20T00:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
    <category term="cs.LG"/>
    <link href="http://arxiv.org/pdf/2301.00001v2" type="application/pdf"/>
  </entry>
</feed>`

func parseFixture(t *testing.T) []domain.Item {
	t.Helper()
	var parsed feed
	require.NoError(t, xml.Unmarshal([]byte(atomFixture), &parsed))
	items := make([]domain.Item, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		if item := entryToItem(&e, "deep learning"); item != nil {
			items = append(items, item)
		}
	}
	return items
}

func TestEntryToItem_ParsesEntryIntoItem(t *testing.T) {
	items := parseFixture(t)
	require.Len(t, items, 1)

	item := items[0].(*domain.ArxivItem)
	assert.Equal(t, "2301.00001", item.ArxivID)
	assert.Equal(t, "Deep Learning for Genomics", item.Title)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, item.Authors)
	assert.Equal(t, domain.ConfidenceHigh, item.DateConfidence)
	assert.Equal(t, "10.48550/arXiv.2301.00001", item.DOI)
	assert.Equal(t, "https://arxiv.org/pdf/2301.00001v2", item.URL)
	assert.Greater(t, item.Relevance, 0.0)
}

func TestExtractArxivID_StripsVersionSuffix(t *testing.T) {
	assert.Equal(t, "2301.00001", extractArxivID("http://arxiv.org/abs/2301.00001v1"))
	assert.Equal(t, "hep-th/9901001", extractArxivID("http://arxiv.org/abs/hep-th/9901001v3"))
	assert.Equal(t, "", extractArxivID("not a valid url"))
}

func TestPrimaryCategory_ReturnsFirstOrEmpty(t *testing.T) {
	assert.Equal(t, "cs.LG", PrimaryCategory(&domain.ArxivItem{Categories: []string{"cs.LG", "cs.AI"}}))
	assert.Equal(t, "", PrimaryCategory(&domain.ArxivItem{}))
}

func TestEntryToItem_DropsEntryWithMissingTitle(t *testing.T) {
	e := &entry{ID: "http://arxiv.org/abs/2301.00001v1"}
	assert.Nil(t, entryToItem(e, "topic"))
}

func TestEntryToItem_DropsIrrelevantEntry(t *testing.T) {
	e := &entry{
		ID:    "http://arxiv.org/abs/2301.00002v1",
		Title: "Completely unrelated cooking recipes",
	}
	assert.Nil(t, entryToItem(e, "gene editing"))
}

func TestEntryToItem_FallsBackToFirstCategory(t *testing.T) {
	items := parseFixture(t)
	require.Len(t, items, 1)
	item := items[0].(*domain.ArxivItem)
	assert.Equal(t, "cs.LG", item.PrimaryCategory)
}
