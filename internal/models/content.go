package models

// QuestionKind is derived from the authored options, never authored directly:
// a question with more than one correct option is "multiple", else "single".
type QuestionKind string

const (
	QuestionSingle   QuestionKind = "single"
	QuestionMultiple QuestionKind = "multiple"
)

// Option is one answer choice of a quiz question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is one parsed quiz question. Text may still carry the authoring
// conventions ({...} emphasis spans, <br> line breaks); use parser.SegmentText
// to turn it into renderable segments.
type Question struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	HeaderText string       `json:"header_text,omitempty"`
	Reference  string       `json:"reference,omitempty"`
	Img        string       `json:"img,omitempty"`
	TitleText  string       `json:"title_text,omitempty"`
	Kind       QuestionKind `json:"kind"`
	Marks      int          `json:"marks"`
	Options    []Option     `json:"options"`
}

// CorrectOptionIDs returns the ids of all correct options in authored order.
func (q Question) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// VocabularyKind is the presentation mode of a flashcard/slider activity.
type VocabularyKind string

const (
	VocabularyFlashcard VocabularyKind = "flashcard"
	VocabularySlider    VocabularyKind = "slider"
)

// Word is one vocabulary entry. Example is optional.
type Word struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

// VocabularyData is the parsed flashcard/slider activity content.
type VocabularyData struct {
	Kind  VocabularyKind `json:"kind"`
	Words []Word         `json:"words"`
}

// Keyword is a draggable token of a matching page.
type Keyword struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Definition is a droppable slot of a matching page. CorrectKeywordID refers
// to exactly one Keyword.ID on the same page.
type Definition struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	CorrectKeywordID string `json:"correct_keyword_id"`
}

// MatchingPage is one set of keyword/definition pairs scored as a unit,
// corresponding to one <activity> element of the matching-pairs dialect.
type MatchingPage struct {
	ActivityID  string       `json:"activity_id"`
	Keywords    []Keyword    `json:"keywords"`
	Definitions []Definition `json:"definitions"`
}

// ActivityContent is the tagged union over the three content dialects.
// Exactly one of Questions/Pages/Vocabulary is populated, per Dialect.
type ActivityContent struct {
	Dialect    Dialect         `json:"dialect"`
	HeaderText *string         `json:"header_text,omitempty"`
	Questions  []Question      `json:"questions,omitempty"`
	Pages      []MatchingPage  `json:"pages,omitempty"`
	Vocabulary *VocabularyData `json:"vocabulary,omitempty"`
}

// SubmissionPayload is the attempt result shape handed to the hosting
// platform at final submission. Field names follow the platform contract.
type SubmissionPayload struct {
	UserAttemptFlag  bool `json:"userAttemptFlag"`
	UserAttemptScore int  `json:"userAttemptScore"`
}
