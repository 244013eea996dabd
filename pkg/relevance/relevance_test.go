package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_EmptyTopicScoresZero(t *testing.T) {
	score, why := Compute("", "some title", "some abstract")
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "no topic", why)
}

func TestCompute_ExactPhraseInTitleDominates(t *testing.T) {
	score, why := Compute("labor market", "The Labor Market for AI researchers", "irrelevant abstract")
	assert.Greater(t, score, 0.4)
	assert.Contains(t, why, "exact phrase in title")
}

func TestCompute_IsIdempotent(t *testing.T) {
	a, _ := Compute("quantum computing", "Advances in Quantum Computing", "a survey of quantum computing")
	b, _ := Compute("quantum computing", "Advances in Quantum Computing", "a survey of quantum computing")
	assert.Equal(t, a, b)
}

func TestCompute_ScoreIsClampedToUnitInterval(t *testing.T) {
	score, _ := Compute("ai", "AI AI AI AI AI", "AI AI AI AI AI")
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestCompute_BigramBonusRewardsWordOrder(t *testing.T) {
	inOrder, why := Compute("labor market impacts", "Labor Market Impacts of Automation", "")
	scrambled, _ := Compute("labor market impacts", "Impacts on the Labor side and the Market side", "")
	assert.Greater(t, inOrder, scrambled)
	assert.Contains(t, why, "bigrams matched")
}

func TestCompute_BigramBonusDistinguishesTopicOrder(t *testing.T) {
	ordered, why := Compute("labor market AI impacts", "Effects on the labor market from automation", "")
	scrambled, _ := Compute("labor market AI impacts", "Labor relations in AI systems", "")
	assert.Greater(t, ordered, scrambled)
	assert.Contains(t, why, "bigrams matched")
}

func TestCompute_ExactPhraseWithEmptyAbstract(t *testing.T) {
	score, why := Compute("CRISPR gene editing", "CRISPR gene editing in human cells", "")
	assert.GreaterOrEqual(t, score, 0.50)
	assert.Contains(t, why, "exact phrase in title")
	assert.Contains(t, why, "all words in title")
}

func TestCompute_AllWordsInTitleAddsBonus(t *testing.T) {
	score, why := Compute("gene editing", "Gene Editing techniques", "")
	assert.Contains(t, why, "all words in title")
	assert.LessOrEqual(t, score, 1.0)
}

func TestCompute_NoMatchScoresLow(t *testing.T) {
	score, why := Compute("quantum computing", "Unrelated title about cooking", "recipes for dinner")
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "low keyword match", why)
}
