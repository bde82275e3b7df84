package parser

import (
	"io"
	"log/slog"
	"testing"

	"github.com/learnloop/activity-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseQuiz_DocumentOrder(t *testing.T) {
	xmlData := `<activities headertext="Unit 3 Quiz">
		<question id="q1" desc="First?">
			<option slno="a" correct="true" desc="Yes"/>
			<option slno="b" correct="false" desc="No"/>
		</question>
		<question id="q2" desc="Second?">
			<option slno="a" correct="false" desc="Yes"/>
			<option slno="b" correct="true" desc="No"/>
		</question>
		<question id="q3" desc="Third?">
			<option slno="a" correct="true" desc="Yes"/>
			<option slno="b" correct="true" desc="Also yes"/>
			<option slno="c" correct="false" desc="No"/>
		</question>
	</activities>`

	result, err := ParseQuiz([]byte(xmlData), discardLogger())
	require.NoError(t, err)
	require.Len(t, result.Questions, 3)

	require.NotNil(t, result.ActivitiesHeaderText)
	assert.Equal(t, "Unit 3 Quiz", *result.ActivitiesHeaderText)

	assert.Equal(t, "q1", result.Questions[0].ID)
	assert.Equal(t, "q2", result.Questions[1].ID)
	assert.Equal(t, "q3", result.Questions[2].ID)
}

func TestParseQuiz_KindDerivation(t *testing.T) {
	tests := []struct {
		name     string
		options  string
		expected models.QuestionKind
	}{
		{
			name:     "one correct option is single",
			options:  `<option slno="a" correct="true" desc="A"/><option slno="b" correct="false" desc="B"/>`,
			expected: models.QuestionSingle,
		},
		{
			name:     "two correct options is multiple",
			options:  `<option slno="a" correct="true" desc="A"/><option slno="b" correct="true" desc="B"/>`,
			expected: models.QuestionMultiple,
		},
		{
			name:     "zero correct options is single",
			options:  `<option slno="a" correct="false" desc="A"/><option slno="b" correct="false" desc="B"/>`,
			expected: models.QuestionSingle,
		},
		{
			name:     "correct attribute is case-insensitive",
			options:  `<option slno="a" correct="TRUE" desc="A"/><option slno="b" correct="True" desc="B"/>`,
			expected: models.QuestionMultiple,
		},
		{
			name:     "non-true values are not correct",
			options:  `<option slno="a" correct="yes" desc="A"/><option slno="b" correct="true" desc="B"/>`,
			expected: models.QuestionSingle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xmlData := `<activities><question id="q1" desc="Q?">` + tt.options + `</question></activities>`
			result, err := ParseQuiz([]byte(xmlData), discardLogger())
			require.NoError(t, err)
			require.Len(t, result.Questions, 1)
			assert.Equal(t, tt.expected, result.Questions[0].Kind)

			// Invariant: multiple iff more than one correct option.
			correctCount := len(result.Questions[0].CorrectOptionIDs())
			assert.Equal(t, correctCount > 1, result.Questions[0].Kind == models.QuestionMultiple)
		})
	}
}

func TestParseQuiz_DefaultsAndAttributes(t *testing.T) {
	xmlData := `<activities>
		<question id="q1" desc="Q?" headertext="Banner" reference="Some passage" img="http://cdn/pic.png" titletext="Passage title">
			<option slno="a" correct="true" desc="A"/>
		</question>
	</activities>`

	result, err := ParseQuiz([]byte(xmlData), discardLogger())
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)

	q := result.Questions[0]
	assert.Equal(t, "Banner", q.HeaderText)
	assert.Equal(t, "Some passage", q.Reference)
	assert.Equal(t, "http://cdn/pic.png", q.Img)
	assert.Equal(t, "Passage title", q.TitleText)
	assert.Equal(t, 1, q.Marks)
	assert.Nil(t, result.ActivitiesHeaderText)
}

func TestParseQuiz_SkipsQuestionWithoutOptions(t *testing.T) {
	xmlData := `<activities>
		<question id="q1" desc="Broken?"/>
		<question id="q2" desc="Fine?">
			<option slno="a" correct="true" desc="A"/>
		</question>
	</activities>`

	result, err := ParseQuiz([]byte(xmlData), discardLogger())
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "q2", result.Questions[0].ID)
}

func TestParseQuiz_MalformedDocumentIsFatal(t *testing.T) {
	_, err := ParseQuiz([]byte(`<activities><question id="q1"`), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.True(t, IsFatal(err))
}

func TestParseQuiz_EmptyDocument(t *testing.T) {
	result, err := ParseQuiz([]byte(`<activities/>`), discardLogger())
	require.NoError(t, err)
	assert.Empty(t, result.Questions)
}

func TestParse_UnknownDialect(t *testing.T) {
	_, err := Parse(models.Dialect("podcast"), []byte(`<activities/>`), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDialect)
}
