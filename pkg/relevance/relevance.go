// Package relevance scores how well an item's title and abstract match a
// search topic.
package relevance

import (
	"fmt"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// Compute scores topic relevance against title+abstract. Title matches
// count double; an exact phrase match is the strongest signal; bigram
// matches reward word order. Returns a score in [0,1] rounded to three
// decimals, plus a semicolon-joined explanation of which signals fired.
func Compute(topic, title, abstract string) (float64, string) {
	if topic == "" {
		return 0.0, "no topic"
	}

	topicLower := strings.ToLower(topic)
	titleLower := strings.ToLower(title)
	abstractLower := strings.ToLower(abstract)

	topicWords := wordPattern.FindAllString(topicLower, -1)
	if len(topicWords) == 0 {
		return 0.0, "no topic words"
	}

	var score float64
	var reasons []string

	if strings.Contains(titleLower, topicLower) {
		score += 0.4
		reasons = append(reasons, "exact phrase in title")
	} else if strings.Contains(abstractLower, topicLower) {
		score += 0.2
		reasons = append(reasons, "exact phrase in abstract")
	}

	titleMatches := countWordMatches(topicWords, titleLower)
	abstractMatches := countWordMatches(topicWords, abstractLower)

	titleRatio := float64(titleMatches) / float64(len(topicWords))
	abstractRatio := float64(abstractMatches) / float64(len(topicWords))
	score += titleRatio*0.3*2 + abstractRatio*0.3

	if titleMatches > 0 {
		reasons = append(reasons, fmt.Sprintf("%d/%d words in title", titleMatches, len(topicWords)))
	}
	if abstractMatches > 0 {
		reasons = append(reasons, fmt.Sprintf("%d/%d words in abstract", abstractMatches, len(topicWords)))
	}

	if len(topicWords) >= 2 {
		maxBigrams := len(topicWords) - 1
		titleBigrams := countBigramMatches(topicWords, titleLower)
		abstractBigrams := countBigramMatches(topicWords, abstractLower)
		bigramRatio := max(
			float64(titleBigrams)/float64(maxBigrams),
			float64(abstractBigrams)/float64(maxBigrams)*0.5,
		)
		score += bigramRatio * 0.15

		if totalBigrams := max(titleBigrams, abstractBigrams); totalBigrams > 0 {
			reasons = append(reasons, fmt.Sprintf("%d/%d bigrams matched", totalBigrams, maxBigrams))
		}
	}

	allInTitle := titleMatches == len(topicWords)
	allInAbstract := abstractMatches == len(topicWords)
	if allInTitle {
		score += 0.1
		reasons = append(reasons, "all words in title")
	} else if allInAbstract {
		score += 0.05
		reasons = append(reasons, "all words in abstract")
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	score = round3(score)

	why := "low keyword match"
	if len(reasons) > 0 {
		why = strings.Join(reasons, "; ")
	}
	return score, why
}

func countWordMatches(topicWords []string, text string) int {
	n := 0
	for _, w := range topicWords {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// countBigramMatches counts how many consecutive topic-word pairs appear
// together in text, e.g. topic "labor market AI impacts" yields bigrams
// "labor market", "market ai", "ai impacts".
func countBigramMatches(topicWords []string, text string) int {
	if len(topicWords) < 2 {
		return 0
	}
	count := 0
	for i := 0; i < len(topicWords)-1; i++ {
		bigram := topicWords[i] + " " + topicWords[i+1]
		if strings.Contains(text, bigram) {
			count++
		}
	}
	return count
}

func round3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
