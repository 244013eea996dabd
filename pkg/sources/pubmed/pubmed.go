// Package pubmed searches MEDLINE/PubMed via NCBI's ESearch/EFetch eutils:
// ESearch resolves a topic query to a list of PMIDs, EFetch then retrieves
// the full citations for those PMIDs in batches.
package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paper-app/research30/internal/domain"
	"github.com/paper-app/research30/pkg/relevance"
	"github.com/paper-app/research30/pkg/transport"
)

const (
	esearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

	relevanceFloor = 0.1
)

// knownPhrases are multi-word topics searched as a single TIAB phrase
// instead of being split into an AND of their words, since splitting
// them would lose the phrase's meaning (e.g. "stem cell" -> "stem" AND
// "cell" would match unrelated biology).
var knownPhrases = map[string]bool{
	"machine learning": true,
	"deep learning":    true,
	"gene editing":     true,
	"gene therapy":     true,
	"sickle cell":      true,
	"stem cell":        true,
	"clinical trial":   true,
	"single cell":      true,
	"genome wide":      true,
	"public health":    true,
	"mental health":    true,
}

// Adapter implements sources.Adapter for PubMed.
type Adapter struct {
	Client *transport.Client
}

func New(client *transport.Client) *Adapter { return &Adapter{Client: client} }

func (a *Adapter) Name() domain.Source { return domain.SourcePubmed }

// buildQuery translates a topic into a PubMed title/abstract ([TIAB])
// query. Single words and known phrases search verbatim; other
// multi-word topics search the exact phrase OR'd with an AND of every
// individual word, so a record matching all the words without the
// exact phrase still surfaces.
func buildQuery(topic string) string {
	words := strings.Fields(topic)
	if len(words) <= 1 || knownPhrases[strings.ToLower(topic)] {
		return fmt.Sprintf("%s[TIAB]", topic)
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, fmt.Sprintf("%s[TIAB]", w))
	}
	return fmt.Sprintf(`("%s"[TIAB] OR (%s))`, topic, strings.Join(parts, " AND "))
}

// esearchResponse mirrors esearch.fcgi's retmode=json shape.
type esearchResponse struct {
	Result struct {
		IDList           []string `json:"idlist"`
		QueryTranslation string   `json:"querytranslation"`
	} `json:"esearchresult"`
}

func (a *Adapter) esearch(ctx context.Context, query string, maxResults int, apiKey string) ([]string, string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("reldate", "30")
	params.Set("datetype", "pdat")
	params.Set("retmax", fmt.Sprintf("%d", maxResults))
	params.Set("retmode", "json")
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}

	var resp esearchResponse
	if err := a.Client.FetchJSON(ctx, esearchURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, "", err
	}
	if a.Client.Debug {
		log.Printf("[pubmed] query translation: %s", resp.Result.QueryTranslation)
	}
	return resp.Result.IDList, resp.Result.QueryTranslation, nil
}

// EFetch response types.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
	PubmedData      pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID            string          `xml:"PMID"`
	Article         article         `xml:"Article"`
	MeshHeadingList meshHeadingList `xml:"MeshHeadingList"`
}

type meshHeadingList struct {
	Headings []meshHeading `xml:"MeshHeading"`
}

type meshHeading struct {
	DescriptorName string `xml:"DescriptorName"`
}

type article struct {
	Journal      journal       `xml:"Journal"`
	ArticleTitle string        `xml:"ArticleTitle"`
	Abstract     abstract      `xml:"Abstract"`
	AuthorList   authorList    `xml:"AuthorList"`
	ArticleDate  []journalDate `xml:"ArticleDate"`
}

type journal struct {
	Title   string      `xml:"Title"`
	PubDate journalDate `xml:"JournalIssue>PubDate"`
}

type journalDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type abstract struct {
	AbstractTexts []abstractText `xml:"AbstractText"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type authorList struct {
	Authors []pubmedAuthor `xml:"Author"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedData struct {
	ArticleIDList articleIDList `xml:"ArticleIdList"`
}

type articleIDList struct {
	ArticleIDs []articleID `xml:"ArticleId"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

func (a *Adapter) efetch(ctx context.Context, pmids []string, apiKey string) ([]pubmedArticle, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("rettype", "abstract")
	params.Set("retmode", "xml")
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}

	text, err := a.Client.FetchText(ctx, efetchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var set pubmedArticleSet
	if err := xml.Unmarshal([]byte(text), &set); err != nil {
		return nil, fmt.Errorf("pubmed efetch parse: %w", err)
	}
	return set.Articles, nil
}

// parsePubDate parses a PubMed date element, accepting both the "Jul"
// month names journal PubDates carry and the "07" numerics ArticleDates
// carry. A missing day or month yields medium confidence; a missing or
// unparseable year yields no date at all.
func parsePubDate(d journalDate) (*time.Time, domain.Confidence) {
	if d.Year == "" {
		return nil, domain.ConfidenceLow
	}
	confidence := domain.ConfidenceHigh
	dateStr := d.Year
	formats := []string{"2006"}
	if d.Month != "" {
		dateStr += " " + d.Month
		formats = []string{"2006 Jan", "2006 01", "2006 1"}
		if d.Day != "" {
			dateStr += " " + d.Day
			formats = []string{"2006 Jan 2", "2006 01 2", "2006 1 2"}
		} else {
			confidence = domain.ConfidenceMedium
		}
	} else {
		confidence = domain.ConfidenceMedium
	}
	for _, f := range formats {
		if t, err := time.Parse(f, dateStr); err == nil {
			return &t, confidence
		}
	}
	return nil, domain.ConfidenceLow
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Search resolves PMIDs via ESearch, then retrieves full citations via
// EFetch in rate-limited batches (NCBI asks for no more than ~3
// requests/second without an API key, ~10/second with one).
func (a *Adapter) Search(ctx context.Context, q domain.TopicQuery, cfg domain.Config) ([]domain.Item, error) {
	maxResults := cfg.DepthLimit(domain.SourcePubmed, q.Depth)
	rateDelay := cfg.PubmedRateLimitWithoutKey
	if cfg.NCBIAPIKey != "" {
		rateDelay = cfg.PubmedRateLimitWithKey
	}

	query := buildQuery(q.Topic)
	pmids, _, err := a.esearch(ctx, query, maxResults, cfg.NCBIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}
	if len(pmids) == 0 {
		return nil, nil
	}
	if err := sleep(ctx, rateDelay); err != nil {
		return nil, err
	}

	batchSize := cfg.PubmedEFetchBatchSize
	items := make([]domain.Item, 0, len(pmids))
	for i := 0; i < len(pmids); i += batchSize {
		end := i + batchSize
		if end > len(pmids) {
			end = len(pmids)
		}
		articles, err := a.efetch(ctx, pmids[i:end], cfg.NCBIAPIKey)
		if err != nil {
			return items, fmt.Errorf("pubmed efetch: %w", err)
		}
		for _, art := range articles {
			if item := articleToItem(&art, q.Topic); item != nil {
				items = append(items, item)
			}
		}
		if end < len(pmids) {
			if err := sleep(ctx, rateDelay); err != nil {
				return items, err
			}
		}
	}
	return items, nil
}

func articleToItem(a *pubmedArticle, topic string) *domain.PubmedItem {
	pmid := strings.TrimSpace(a.MedlineCitation.PMID)
	title := strings.TrimSpace(a.MedlineCitation.Article.ArticleTitle)
	if pmid == "" || title == "" {
		return nil
	}

	var abstractParts []string
	for _, t := range a.MedlineCitation.Article.Abstract.AbstractTexts {
		if t.Label != "" {
			abstractParts = append(abstractParts, fmt.Sprintf("%s: %s", t.Label, t.Text))
		} else {
			abstractParts = append(abstractParts, t.Text)
		}
	}
	abstractText := strings.TrimSpace(strings.Join(abstractParts, "\n\n"))

	// Citations render as "LastName FirstInitial" ("Doe J"), the form
	// PubMed itself displays.
	authors := make([]string, 0, len(a.MedlineCitation.Article.AuthorList.Authors))
	for _, au := range a.MedlineCitation.Article.AuthorList.Authors {
		last := strings.TrimSpace(au.LastName)
		if last == "" {
			continue
		}
		name := last
		if fore := strings.TrimSpace(au.ForeName); fore != "" {
			r, _ := utf8.DecodeRuneInString(fore)
			name = last + " " + string(r)
		}
		authors = append(authors, name)
	}

	// ArticleDate (the electronic publication date) is preferred; the
	// journal issue's PubDate is the fallback when absent.
	var date *time.Time
	confidence := domain.ConfidenceLow
	for _, ad := range a.MedlineCitation.Article.ArticleDate {
		if date, confidence = parsePubDate(ad); date != nil {
			break
		}
	}
	if date == nil {
		date, confidence = parsePubDate(a.MedlineCitation.Article.Journal.PubDate)
	}

	var doi, pmcID string
	for _, id := range a.PubmedData.ArticleIDList.ArticleIDs {
		switch id.IDType {
		case "doi":
			doi = id.Value
		case "pmc":
			pmcID = id.Value
		}
	}

	articleURL := "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
	if pmcID != "" {
		articleURL = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", pmcID)
	}

	journalTitle := a.MedlineCitation.Article.Journal.Title
	var publishedJournal *string
	if journalTitle != "" {
		publishedJournal = &journalTitle
	}

	rel, why := relevance.Compute(topic, title, abstractText)
	if rel <= relevanceFloor {
		return nil
	}
	authorCount := len(authors)

	var meshTerms []string
	for _, h := range a.MedlineCitation.MeshHeadingList.Headings {
		if d := strings.TrimSpace(h.DescriptorName); d != "" {
			meshTerms = append(meshTerms, d)
		}
	}

	return &domain.PubmedItem{
		ItemHeader: domain.ItemHeader{
			Title:                title,
			URL:                  articleURL,
			Abstract:             abstractText,
			Authors:              authors,
			Date:                 date,
			DateConfidence:       confidence,
			Relevance:            rel,
			RelevanceExplanation: why,
			Engagement: &domain.Engagement{
				AuthorCount:      &authorCount,
				PublishedJournal: publishedJournal,
			},
		},
		PMID:      pmid,
		PMCID:     pmcID,
		DOI:       doi,
		Journal:   journalTitle,
		MeshTerms: meshTerms,
	}
}
