package matching

import (
	"math/rand"
	"time"

	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/quiz"
)

// Drill is a multi-page matching activity. One page is one point; the total
// score is the count of pages placed fully correctly.
type Drill struct {
	sources   []models.MatchingPage
	pages     []*Page
	pageIndex int
	rng       *rand.Rand
	done      bool
}

// NewDrill builds a drill from parsed pages. rng drives the per-page
// shuffles; pass nil for a time-seeded source.
func NewDrill(sources []models.MatchingPage, rng *rand.Rand) (*Drill, error) {
	if len(sources) == 0 {
		return nil, ErrNoPages
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	d := &Drill{
		sources: sources,
		pages:   make([]*Page, len(sources)),
		rng:     rng,
	}
	d.pages[0] = NewPage(sources[0], rng)
	return d, nil
}

func (d *Drill) PageIndex() int  { return d.pageIndex }
func (d *Drill) TotalPages() int { return len(d.sources) }

// CurrentPage returns the page under the cursor.
func (d *Drill) CurrentPage() *Page {
	return d.pages[d.pageIndex]
}

// NextPage advances to the following page, shuffling it on entry. Pages are
// built lazily so the shuffle happens when the page is actually entered, not
// when the drill is created.
func (d *Drill) NextPage() (*Page, error) {
	if d.pageIndex >= len(d.sources)-1 {
		return nil, ErrLastPage
	}
	d.pageIndex++
	if d.pages[d.pageIndex] == nil {
		d.pages[d.pageIndex] = NewPage(d.sources[d.pageIndex], d.rng)
	} else if !d.pages[d.pageIndex].IsSubmitted() {
		// Re-entering an unscored page presents a fresh arrangement.
		d.pages[d.pageIndex].shuffle(d.rng)
	}
	return d.pages[d.pageIndex], nil
}

// Score counts pages scored correct so far.
func (d *Drill) Score() int {
	score := 0
	for _, p := range d.pages {
		if p != nil && p.IsSubmitted() && p.IsCorrect() {
			score++
		}
	}
	return score
}

// Complete reports whether every page has been scored.
func (d *Drill) Complete() bool {
	for _, p := range d.pages {
		if p == nil || !p.IsSubmitted() {
			return false
		}
	}
	return true
}

// Finish closes a completed drill and produces the final outcome, mirroring
// the quiz payload shape: one point per correct page, percentage against the
// externally supplied subconcept maximum.
func (d *Drill) Finish(subconceptMaxScore float64) (*quiz.Outcome, error) {
	if d.done {
		return nil, ErrPageLocked
	}
	if !d.Complete() {
		return nil, ErrNotComplete
	}

	score := d.Score()
	var percentage float64
	if subconceptMaxScore > 0 {
		percentage = float64(score) / subconceptMaxScore * 100
	}

	d.done = true
	return &quiz.Outcome{
		Payload: models.SubmissionPayload{
			UserAttemptFlag:  true,
			UserAttemptScore: score,
		},
		Score:           score,
		TotalMarks:      len(d.sources),
		ScorePercentage: percentage,
		Effects: []quiz.Effect{
			{Kind: quiz.EffectSubmit},
			{Kind: quiz.EffectNavigate, Delay: quiz.NavigateDelay},
		},
	}, nil
}

// Finished reports whether Finish has produced the terminal outcome.
func (d *Drill) Finished() bool { return d.done }
