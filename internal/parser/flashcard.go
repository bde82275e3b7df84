package parser

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/learnloop/activity-service/internal/models"
)

type vocabularyDocumentXML struct {
	Type  string            `xml:"type,attr"`
	Words []vocabularyWordXML `xml:"word"`
}

type vocabularyWordXML struct {
	Term    string `xml:"term"`
	Meaning string `xml:"meaning"`
	Example string `xml:"example"`
}

// ParseVocabulary converts a flashcard/slider dialect document into a word
// list. A missing or unrecognized type attribute is fatal, as is ending up
// with zero valid words; individual words missing a term or meaning are
// dropped with a warning.
func ParseVocabulary(data []byte, logger *slog.Logger) (*models.VocabularyData, error) {
	var doc vocabularyDocumentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(models.DialectFlashcardSlider, fmt.Errorf("%w: %v", ErrMalformedDocument, err))
	}

	kind := models.VocabularyKind(strings.ToLower(doc.Type))
	if kind != models.VocabularyFlashcard && kind != models.VocabularySlider {
		return nil, newParseError(models.DialectFlashcardSlider, ErrUnknownVocabularyKind)
	}

	vocabulary := &models.VocabularyData{Kind: kind}
	for _, wx := range doc.Words {
		term := strings.TrimSpace(wx.Term)
		meaning := strings.TrimSpace(wx.Meaning)
		if term == "" || meaning == "" {
			logger.Warn("skipping malformed word entry", "term", wx.Term)
			continue
		}
		vocabulary.Words = append(vocabulary.Words, models.Word{
			Term:    term,
			Meaning: meaning,
			Example: strings.TrimSpace(wx.Example),
		})
	}

	if len(vocabulary.Words) == 0 {
		return nil, newParseError(models.DialectFlashcardSlider, ErrNoWords)
	}

	return vocabulary, nil
}
