package matching

import (
	"testing"

	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPages(count int) []models.MatchingPage {
	var pages []models.MatchingPage
	for i := 0; i < count; i++ {
		page := testPage(2)
		page.ActivityID = string(rune('a' + i))
		pages = append(pages, page)
	}
	return pages
}

func solvePage(t *testing.T, p *Page, correctly bool) {
	t.Helper()
	defs := p.Definitions()
	for i, def := range defs {
		target := def
		if !correctly {
			target = defs[(i+1)%len(defs)]
		}
		_, err := p.Place(def.CorrectKeywordID, target.ID)
		require.NoError(t, err)
	}
	require.True(t, p.IsSubmitted())
	assert.Equal(t, correctly, p.IsCorrect())
}

func TestDrill_RequiresPages(t *testing.T) {
	_, err := NewDrill(nil, testRNG())
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestDrill_OnePointPerCorrectPage(t *testing.T) {
	d, err := NewDrill(testPages(3), testRNG())
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalPages())

	solvePage(t, d.CurrentPage(), true)
	assert.Equal(t, 1, d.Score())

	page, err := d.NextPage()
	require.NoError(t, err)
	solvePage(t, page, false)
	assert.Equal(t, 1, d.Score())

	page, err = d.NextPage()
	require.NoError(t, err)
	solvePage(t, page, true)
	assert.Equal(t, 2, d.Score())

	_, err = d.NextPage()
	assert.ErrorIs(t, err, ErrLastPage)
	assert.True(t, d.Complete())
}

func TestDrill_FinishRequiresCompletion(t *testing.T) {
	d, err := NewDrill(testPages(2), testRNG())
	require.NoError(t, err)

	_, err = d.Finish(2)
	assert.ErrorIs(t, err, ErrNotComplete)

	solvePage(t, d.CurrentPage(), true)
	page, err := d.NextPage()
	require.NoError(t, err)
	solvePage(t, page, true)

	outcome, err := d.Finish(2)
	require.NoError(t, err)
	assert.True(t, outcome.Payload.UserAttemptFlag)
	assert.Equal(t, 2, outcome.Payload.UserAttemptScore)
	assert.InDelta(t, 100.0, outcome.ScorePercentage, 0.001)
	require.Len(t, outcome.Effects, 2)
	assert.Equal(t, quiz.EffectSubmit, outcome.Effects[0].Kind)
	assert.Equal(t, quiz.EffectNavigate, outcome.Effects[1].Kind)

	_, err = d.Finish(2)
	assert.ErrorIs(t, err, ErrPageLocked)
}

func TestDrill_PercentageUsesExternalMaximum(t *testing.T) {
	d, err := NewDrill(testPages(2), testRNG())
	require.NoError(t, err)

	solvePage(t, d.CurrentPage(), true)
	page, err := d.NextPage()
	require.NoError(t, err)
	solvePage(t, page, false)

	outcome, err := d.Finish(4)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Score)
	assert.InDelta(t, 25.0, outcome.ScorePercentage, 0.001)
}

func TestDrill_SnapshotRoundTrip(t *testing.T) {
	d, err := NewDrill(testPages(2), testRNG())
	require.NoError(t, err)
	solvePage(t, d.CurrentPage(), true)

	restored := Restore(d.Snapshot())
	assert.Equal(t, 1, restored.Score())
	assert.Equal(t, 0, restored.PageIndex())
	assert.True(t, restored.CurrentPage().IsSubmitted())

	page, err := restored.NextPage()
	require.NoError(t, err)
	solvePage(t, page, true)
	assert.True(t, restored.Complete())
	assert.Equal(t, 2, restored.Score())
}
