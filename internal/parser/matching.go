package parser

import (
	"encoding/xml"
	"fmt"
	"log/slog"

	"github.com/learnloop/activity-service/internal/models"
)

type matchingDocumentXML struct {
	HeaderText string                `xml:"headertext,attr"`
	Activities []matchingActivityXML `xml:"activity"`
}

type matchingActivityXML struct {
	ActivityID string                `xml:"activityid,attr"`
	Questions  []matchingQuestionXML `xml:"question"`
}

type matchingQuestionXML struct {
	ID            string `xml:"id,attr"`
	Word          string `xml:"word,attr"`
	CorrectOption string `xml:"correctOption,attr"`
}

// ParseMatchingPairs converts a matching-pairs dialect document into one
// MatchingPage per <activity> element. Each authored pair contributes one
// draggable keyword (the word) and one droppable definition (the correct
// option text) bound by the pair id. Malformed pairs and empty activities are
// dropped with a warning; a document with no usable pages at all is fatal,
// since a drill with zero pages cannot run.
func ParseMatchingPairs(data []byte, logger *slog.Logger) ([]models.MatchingPage, error) {
	var doc matchingDocumentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(models.DialectMatchingPairs, fmt.Errorf("%w: %v", ErrMalformedDocument, err))
	}

	var pages []models.MatchingPage
	for _, ax := range doc.Activities {
		page := models.MatchingPage{ActivityID: ax.ActivityID}
		for _, qx := range ax.Questions {
			if qx.Word == "" || qx.CorrectOption == "" {
				logger.Warn("skipping malformed matching pair",
					"activity_id", ax.ActivityID,
					"question_id", qx.ID)
				continue
			}
			page.Keywords = append(page.Keywords, models.Keyword{
				ID:      qx.ID,
				Content: qx.Word,
			})
			page.Definitions = append(page.Definitions, models.Definition{
				ID:               qx.ID,
				Text:             qx.CorrectOption,
				CorrectKeywordID: qx.ID,
			})
		}
		if len(page.Keywords) == 0 {
			logger.Warn("skipping matching activity with no valid pairs", "activity_id", ax.ActivityID)
			continue
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, newParseError(models.DialectMatchingPairs, ErrNoPages)
	}

	return pages, nil
}
