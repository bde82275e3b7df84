package parser

import (
	"log/slog"

	"github.com/learnloop/activity-service/internal/models"
)

// Parse dispatches to the parser registered for the given dialect. The
// dialect comes from the activity registration, never from sniffing the
// document: the three schemas are mutually exclusive by contract.
func Parse(dialect models.Dialect, data []byte, logger *slog.Logger) (*models.ActivityContent, error) {
	switch dialect {
	case models.DialectQuiz:
		result, err := ParseQuiz(data, logger)
		if err != nil {
			return nil, err
		}
		return &models.ActivityContent{
			Dialect:    models.DialectQuiz,
			HeaderText: result.ActivitiesHeaderText,
			Questions:  result.Questions,
		}, nil

	case models.DialectMatchingPairs:
		pages, err := ParseMatchingPairs(data, logger)
		if err != nil {
			return nil, err
		}
		return &models.ActivityContent{
			Dialect: models.DialectMatchingPairs,
			Pages:   pages,
		}, nil

	case models.DialectFlashcardSlider:
		vocabulary, err := ParseVocabulary(data, logger)
		if err != nil {
			return nil, err
		}
		return &models.ActivityContent{
			Dialect:    models.DialectFlashcardSlider,
			Vocabulary: vocabulary,
		}, nil

	default:
		return nil, newParseError(dialect, ErrUnknownDialect)
	}
}
