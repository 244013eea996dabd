// Package dedupe removes duplicate items, first by exact DOI match, then
// by Jaccard similarity of 3-gram title shingles. Both passes prefer
// keeping the item from the higher-priority source, and within a source
// prefer the higher-scored item.
package dedupe

import (
	"regexp"
	"strings"

	"github.com/paper-app/research30/internal/domain"
	"golang.org/x/text/unicode/norm"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)
var whitespacePattern = regexp.MustCompile(`\s+`)
var combiningMarkPattern = regexp.MustCompile(`\p{Mn}+`)

// NormalizeText lowercases, strips punctuation, and collapses whitespace
// before n-gram shingling. Unicode titles are first decomposed (NFKD) so
// accented variants of the same word shingle identically; OpenAlex and
// PubMed both carry accented author-supplied titles.
func NormalizeText(text string) string {
	text = norm.NFKD.String(strings.ToLower(text))
	text = combiningMarkPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Ngrams returns the set of character 3-grams in text after
// normalization. Text shorter than n becomes its own single-member set.
func Ngrams(text string, n int) map[string]struct{} {
	text = NormalizeText(text)
	set := make(map[string]struct{})
	if len(text) < n {
		set[text] = struct{}{}
		return set
	}
	for i := 0; i <= len(text)-n; i++ {
		set[text[i:i+n]] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes |A∩B| / |A∪B|, 0 if either set is empty.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func sourcePriority(item domain.Item) int {
	if p, ok := domain.SourcePriority[item.Source()]; ok {
		return p
	}
	return 99
}

// keepsOver reports whether item a should be kept over item b when they
// are judged duplicates: higher-priority source wins; ties go to the
// higher composite score.
func keepsOver(a, b domain.Item) bool {
	pa, pb := sourcePriority(a), sourcePriority(b)
	if pa != pb {
		return pa < pb
	}
	return a.Header().CompositeScore >= b.Header().CompositeScore
}

func dois(item domain.Item) []string {
	keys := item.DedupeKeys()
	var out []string
	for _, d := range []string{keys.DOI, keys.PreprintDOI, keys.PublishedDOI} {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// CrossSource removes duplicates across a combined list drawn from
// several sources: a DOI-exact pass, then a 3-gram title-Jaccard pass at
// the given threshold (0.70 per the default pipeline configuration).
func CrossSource(items []domain.Item, threshold float64) []domain.Item {
	if len(items) <= 1 {
		return items
	}

	removed := make(map[int]bool)

	doiIndex := make(map[string][]int)
	for idx, item := range items {
		for _, d := range dois(item) {
			doiIndex[d] = append(doiIndex[d], idx)
		}
	}
	for _, indices := range doiIndex {
		if len(indices) <= 1 {
			continue
		}
		best := indices[0]
		for _, idx := range indices[1:] {
			if keepsOver(items[idx], items[best]) {
				best = idx
			}
		}
		for _, idx := range indices {
			if idx != best {
				removed[idx] = true
			}
		}
	}

	type shingled struct {
		idx    int
		ngrams map[string]struct{}
	}
	remaining := make([]shingled, 0, len(items))
	for idx, item := range items {
		if removed[idx] {
			continue
		}
		remaining = append(remaining, shingled{idx: idx, ngrams: Ngrams(item.Header().Title, 3)})
	}

	for i := 0; i < len(remaining); i++ {
		if removed[remaining[i].idx] {
			continue
		}
		for j := i + 1; j < len(remaining); j++ {
			if removed[remaining[j].idx] {
				continue
			}
			if JaccardSimilarity(remaining[i].ngrams, remaining[j].ngrams) < threshold {
				continue
			}
			idxI, idxJ := remaining[i].idx, remaining[j].idx
			if keepsOver(items[idxI], items[idxJ]) {
				removed[idxJ] = true
			} else {
				removed[idxI] = true
			}
		}
	}

	out := make([]domain.Item, 0, len(items)-len(removed))
	for idx, item := range items {
		if !removed[idx] {
			out = append(out, item)
		}
	}
	return out
}

// WithinSource removes near-duplicate titles within a single source's
// item list, keeping the higher-scored item of each pair.
func WithinSource(items []domain.Item, threshold float64) []domain.Item {
	if len(items) <= 1 {
		return items
	}

	ngrams := make([]map[string]struct{}, len(items))
	for i, item := range items {
		ngrams[i] = Ngrams(item.Header().Title, 3)
	}

	removed := make(map[int]bool)
	for i := 0; i < len(items); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if removed[j] {
				continue
			}
			if JaccardSimilarity(ngrams[i], ngrams[j]) < threshold {
				continue
			}
			if items[i].Header().CompositeScore >= items[j].Header().CompositeScore {
				removed[j] = true
			} else {
				removed[i] = true
			}
		}
	}

	out := make([]domain.Item, 0, len(items)-len(removed))
	for idx, item := range items {
		if !removed[idx] {
			out = append(out, item)
		}
	}
	return out
}
