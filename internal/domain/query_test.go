package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSources_AllModeExcludesBiorxivServers(t *testing.T) {
	q := TopicQuery{Mode: ModeAll}
	srcs := q.ActiveSources()
	assert.ElementsMatch(t, DefaultSources, srcs)
	assert.NotContains(t, srcs, SourceBiorxiv)
	assert.NotContains(t, srcs, SourceMedrxiv)
}

func TestActiveSources_PreprintsMode(t *testing.T) {
	q := TopicQuery{Mode: ModePreprints}
	assert.ElementsMatch(t, []Source{SourceOpenAlex, SourceArxiv}, q.ActiveSources())
}

func TestActiveSources_SingleMode(t *testing.T) {
	q := TopicQuery{Mode: ModeSingle, Only: SourcePubmed}
	assert.Equal(t, []Source{SourcePubmed}, q.ActiveSources())
}

func TestActiveSources_ExplicitListOverridesMode(t *testing.T) {
	q := TopicQuery{Mode: ModeAll, Sources: []Source{SourceBiorxiv, SourceMedrxiv}}
	assert.Equal(t, []Source{SourceBiorxiv, SourceMedrxiv}, q.ActiveSources())
}

func TestParseSourceSet_ResolvesNamedSetsAndSingles(t *testing.T) {
	all, err := ParseSourceSet("all")
	require.NoError(t, err)
	assert.Equal(t, DefaultSources, all)

	preprints, err := ParseSourceSet("preprints")
	require.NoError(t, err)
	assert.Equal(t, PreprintSources, preprints)

	single, err := ParseSourceSet("medrxiv")
	require.NoError(t, err)
	assert.Equal(t, []Source{SourceMedrxiv}, single)

	_, err = ParseSourceSet("gopherpedia")
	assert.Error(t, err)
}
