package parser

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/learnloop/activity-service/internal/models"
)

// QuizResult is the output of the quiz dialect parser.
type QuizResult struct {
	Questions            []models.Question
	ActivitiesHeaderText *string
}

// The wrapper element name is not enforced; authored documents use
// <activities headertext="..."> but only the child <question> elements and
// the root headertext attribute matter.
type quizDocumentXML struct {
	HeaderText string            `xml:"headertext,attr"`
	Questions  []quizQuestionXML `xml:"question"`
}

type quizQuestionXML struct {
	ID         string          `xml:"id,attr"`
	Desc       string          `xml:"desc,attr"`
	HeaderText string          `xml:"headertext,attr"`
	Reference  string          `xml:"reference,attr"`
	Img        string          `xml:"img,attr"`
	TitleText  string          `xml:"titletext,attr"`
	Marks      string          `xml:"marks,attr"`
	Options    []quizOptionXML `xml:"option"`
}

type quizOptionXML struct {
	SlNo    string `xml:"slno,attr"`
	Correct string `xml:"correct,attr"`
	Desc    string `xml:"desc,attr"`
}

// ParseQuiz converts a quiz-dialect XML document into typed questions in
// document order. Individual malformed questions are dropped with a warning;
// only an unparsable document is fatal.
func ParseQuiz(data []byte, logger *slog.Logger) (*QuizResult, error) {
	var doc quizDocumentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(models.DialectQuiz, fmt.Errorf("%w: %v", ErrMalformedDocument, err))
	}

	result := &QuizResult{}
	if doc.HeaderText != "" {
		headerText := doc.HeaderText
		result.ActivitiesHeaderText = &headerText
	}

	for _, qx := range doc.Questions {
		question, ok := buildQuestion(qx)
		if !ok {
			logger.Warn("skipping malformed question", "question_id", qx.ID)
			continue
		}
		result.Questions = append(result.Questions, question)
	}

	return result, nil
}

func buildQuestion(qx quizQuestionXML) (models.Question, bool) {
	if len(qx.Options) == 0 {
		return models.Question{}, false
	}

	question := models.Question{
		ID:         qx.ID,
		Text:       qx.Desc,
		HeaderText: qx.HeaderText,
		Reference:  qx.Reference,
		Img:        qx.Img,
		TitleText:  qx.TitleText,
		Marks:      parseMarks(qx.Marks),
		Options:    make([]models.Option, 0, len(qx.Options)),
	}

	correctCount := 0
	for _, ox := range qx.Options {
		option := models.Option{
			ID:        ox.SlNo,
			Text:      ox.Desc,
			IsCorrect: strings.ToLower(ox.Correct) == "true",
		}
		if option.IsCorrect {
			correctCount++
		}
		question.Options = append(question.Options, option)
	}

	// Type is derived, never authored: multiple iff more than one correct
	// option. Zero correct options is legal content (an unscored item).
	if correctCount > 1 {
		question.Kind = models.QuestionMultiple
	} else {
		question.Kind = models.QuestionSingle
	}

	return question, true
}

// Marks default to 1; the attribute is an authoring extension point that
// current content never sets.
func parseMarks(raw string) int {
	if raw == "" {
		return 1
	}
	marks, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || marks <= 0 {
		return 1
	}
	return marks
}
