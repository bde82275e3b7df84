package validator

import (
	"testing"

	apperrors "github.com/learnloop/activity-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Title      string  `json:"title" validate:"required,min=1,max=200"`
	ContentURL string  `json:"content_url" validate:"required,url"`
	Dialect    string  `json:"dialect" validate:"required,dialect"`
	MaxScore   float64 `json:"subconcept_max_score" validate:"required,gt=0"`
}

func TestValidator_Dialect(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		dialect string
		valid   bool
	}{
		{"quiz dialect", "quiz", true},
		{"matching pairs dialect", "matching_pairs", true},
		{"flashcard slider dialect", "flashcard_slider", true},
		{"unknown dialect", "podcast", false},
		{"empty dialect", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest{
				Title:      "Unit 3 Quiz",
				ContentURL: "https://content.example.com/unit3.xml",
				Dialect:    tt.dialect,
				MaxScore:   5,
			}

			err := v.Validate(req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(registerRequest{Dialect: "quiz", MaxScore: 1})
	require.Error(t, err)

	verrs, ok := err.(apperrors.ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]bool)
	for _, ve := range verrs {
		fields[ve.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["content_url"])
}
