package parser

import (
	"testing"

	"github.com/learnloop/activity-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVocabulary_DropsMalformedWords(t *testing.T) {
	xmlData := `<activities type="flashcard">
		<word><term>ubiquitous</term><meaning>found everywhere</meaning></word>
		<word><term>ephemeral</term><meaning>short-lived</meaning><example>an ephemeral stream</example></word>
		<word><term>broken</term></word>
		<word><term>candid</term><meaning>honest and direct</meaning></word>
		<word><term>lucid</term><meaning>clear</meaning></word>
	</activities>`

	vocabulary, err := ParseVocabulary([]byte(xmlData), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, models.VocabularyFlashcard, vocabulary.Kind)
	require.Len(t, vocabulary.Words, 4)
	assert.Equal(t, "an ephemeral stream", vocabulary.Words[1].Example)
}

func TestParseVocabulary_MissingTypeIsFatal(t *testing.T) {
	xmlData := `<activities>
		<word><term>candid</term><meaning>honest</meaning></word>
	</activities>`

	vocabulary, err := ParseVocabulary([]byte(xmlData), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownVocabularyKind)
	assert.Nil(t, vocabulary)
}

func TestParseVocabulary_UnknownTypeIsFatal(t *testing.T) {
	xmlData := `<activities type="carousel">
		<word><term>candid</term><meaning>honest</meaning></word>
	</activities>`

	_, err := ParseVocabulary([]byte(xmlData), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownVocabularyKind)
}

func TestParseVocabulary_ZeroValidWordsIsFatal(t *testing.T) {
	xmlData := `<activities type="slider">
		<word><term>orphan</term></word>
		<word><meaning>no term here</meaning></word>
	</activities>`

	_, err := ParseVocabulary([]byte(xmlData), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWords)
	assert.True(t, IsFatal(err))
}

func TestParseMatchingPairs_PagePerActivity(t *testing.T) {
	xmlData := `<activities>
		<activity activityid="p1">
			<question id="1" word="arid" correctOption="extremely dry"/>
			<question id="2" word="humid" correctOption="damp air"/>
		</activity>
		<activity activityid="p2">
			<question id="3" word="polar" correctOption="near the poles"/>
		</activity>
	</activities>`

	pages, err := ParseMatchingPairs([]byte(xmlData), discardLogger())
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "p1", pages[0].ActivityID)
	require.Len(t, pages[0].Keywords, 2)
	require.Len(t, pages[0].Definitions, 2)
	assert.Equal(t, "arid", pages[0].Keywords[0].Content)
	assert.Equal(t, "extremely dry", pages[0].Definitions[0].Text)
	assert.Equal(t, pages[0].Keywords[0].ID, pages[0].Definitions[0].CorrectKeywordID)

	assert.Equal(t, "p2", pages[1].ActivityID)
	require.Len(t, pages[1].Keywords, 1)
}

func TestParseMatchingPairs_SkipsMalformedPairs(t *testing.T) {
	xmlData := `<activities>
		<activity activityid="p1">
			<question id="1" word="arid" correctOption="extremely dry"/>
			<question id="2" word="" correctOption="damp air"/>
			<question id="3" word="polar"/>
		</activity>
	</activities>`

	pages, err := ParseMatchingPairs([]byte(xmlData), discardLogger())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Keywords, 1)
}

func TestParseMatchingPairs_NoUsablePagesIsFatal(t *testing.T) {
	xmlData := `<activities>
		<activity activityid="p1">
			<question id="1" word="arid"/>
		</activity>
	</activities>`

	_, err := ParseMatchingPairs([]byte(xmlData), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPages)
}
