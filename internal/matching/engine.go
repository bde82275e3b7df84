package matching

import (
	"errors"
	"math/rand"

	"github.com/learnloop/activity-service/internal/models"
)

// PoolLocation is the holding area for keywords not placed in any slot.
const PoolLocation = "pool"

var (
	ErrUnknownKeyword      = errors.New("keyword not on this page")
	ErrUnknownDefinition   = errors.New("definition not on this page")
	ErrPageLocked          = errors.New("page already scored")
	ErrIncompletePlacement = errors.New("place all keywords before submitting")
	ErrNoPages             = errors.New("drill has no pages")
	ErrNotComplete         = errors.New("drill is not complete")
	ErrLastPage            = errors.New("already on the last page")
)

// Page is the placement state of one keyword/definition set. Keywords and
// definitions are shuffled independently so the learner cannot match by
// position. A page is scored exactly once; after that every placement is
// rejected.
type Page struct {
	activityID  string
	keywords    []models.Keyword
	definitions []models.Definition

	placed    map[string]*models.Keyword // definition id -> occupant
	positions map[string]string          // keyword id -> definition id or PoolLocation

	submitted bool
	correct   bool
}

// NewPage builds a page with both lists independently shuffled using rng.
func NewPage(source models.MatchingPage, rng *rand.Rand) *Page {
	p := &Page{
		activityID:  source.ActivityID,
		keywords:    append([]models.Keyword(nil), source.Keywords...),
		definitions: append([]models.Definition(nil), source.Definitions...),
		placed:      make(map[string]*models.Keyword, len(source.Definitions)),
		positions:   make(map[string]string, len(source.Keywords)),
	}
	for _, kw := range p.keywords {
		p.positions[kw.ID] = PoolLocation
	}
	for _, def := range p.definitions {
		p.placed[def.ID] = nil
	}
	p.shuffle(rng)
	return p
}

// shuffle is a Fisher-Yates pass over each list independently.
func (p *Page) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.keywords), func(i, j int) {
		p.keywords[i], p.keywords[j] = p.keywords[j], p.keywords[i]
	})
	rng.Shuffle(len(p.definitions), func(i, j int) {
		p.definitions[i], p.definitions[j] = p.definitions[j], p.definitions[i]
	})
}

func (p *Page) ActivityID() string              { return p.activityID }
func (p *Page) Keywords() []models.Keyword      { return p.keywords }
func (p *Page) Definitions() []models.Definition { return p.definitions }
func (p *Page) IsSubmitted() bool               { return p.submitted }
func (p *Page) IsCorrect() bool                 { return p.correct }

// PositionOf returns the current location of a keyword: a definition id or
// PoolLocation.
func (p *Page) PositionOf(keywordID string) (string, bool) {
	loc, ok := p.positions[keywordID]
	return loc, ok
}

// Placements returns the definition id -> keyword id occupancy map; empty
// slots map to the empty string.
func (p *Page) Placements() map[string]string {
	out := make(map[string]string, len(p.placed))
	for defID, kw := range p.placed {
		if kw != nil {
			out[defID] = kw.ID
		} else {
			out[defID] = ""
		}
	}
	return out
}

// Place moves keyword keywordID onto target, which is either a definition id
// or PoolLocation. The transition order is fixed: the keyword's previous
// slot is vacated first, then an occupant of the target is evicted to the
// pool, then the keyword is placed. A keyword therefore never occupies two
// slots and a slot never holds two keywords.
//
// When the placement fills the last empty slot the page evaluates and locks
// itself; the returned flag reports that. Evaluation never runs while any
// slot is still empty.
func (p *Page) Place(keywordID, target string) (evaluated bool, err error) {
	if p.submitted {
		return false, ErrPageLocked
	}

	keyword := p.findKeyword(keywordID)
	if keyword == nil {
		return false, ErrUnknownKeyword
	}
	if target != PoolLocation {
		if _, ok := p.placed[target]; !ok {
			return false, ErrUnknownDefinition
		}
	}

	// Vacate the keyword's previous slot.
	if prev := p.positions[keywordID]; prev != PoolLocation {
		p.placed[prev] = nil
	}

	if target == PoolLocation {
		p.positions[keywordID] = PoolLocation
		return false, nil
	}

	// Evict first, then place.
	if occupant := p.placed[target]; occupant != nil {
		p.positions[occupant.ID] = PoolLocation
	}
	p.placed[target] = keyword
	p.positions[keywordID] = target

	if !p.allFilled() {
		return false, nil
	}
	p.lockAndScore()
	return true, nil
}

// Submit is the manual scoring path. It rejects an incomplete page without
// mutating state; a complete page scores through the same evaluation the
// automatic path uses.
func (p *Page) Submit() (bool, error) {
	if p.submitted {
		return false, ErrPageLocked
	}
	if !p.allFilled() {
		return false, ErrIncompletePlacement
	}
	p.lockAndScore()
	return p.correct, nil
}

func (p *Page) lockAndScore() {
	p.correct = evaluatePlacements(p.definitions, p.placed)
	p.submitted = true
}

func (p *Page) allFilled() bool {
	for _, kw := range p.placed {
		if kw == nil {
			return false
		}
	}
	return true
}

func (p *Page) findKeyword(id string) *models.Keyword {
	for i := range p.keywords {
		if p.keywords[i].ID == id {
			return &p.keywords[i]
		}
	}
	return nil
}

// evaluatePlacements is the single scoring function shared by the automatic
// and manual paths: every definition must hold the keyword it names.
func evaluatePlacements(definitions []models.Definition, placed map[string]*models.Keyword) bool {
	for _, def := range definitions {
		kw := placed[def.ID]
		if kw == nil || kw.ID != def.CorrectKeywordID {
			return false
		}
	}
	return true
}
