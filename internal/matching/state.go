package matching

import (
	"math/rand"
	"time"

	"github.com/learnloop/activity-service/internal/models"
)

// PageState is the serializable snapshot of one page.
type PageState struct {
	ActivityID  string              `json:"activity_id"`
	Keywords    []models.Keyword    `json:"keywords"`
	Definitions []models.Definition `json:"definitions"`
	Placed      map[string]string   `json:"placed"` // definition id -> keyword id ("" = empty)
	Submitted   bool                `json:"submitted"`
	Correct     bool                `json:"correct"`
}

// State is the serializable snapshot of a drill.
type State struct {
	Sources   []models.MatchingPage `json:"sources"`
	Pages     []*PageState          `json:"pages"`
	PageIndex int                   `json:"page_index"`
	Done      bool                  `json:"done"`
}

func (p *Page) snapshot() *PageState {
	return &PageState{
		ActivityID:  p.activityID,
		Keywords:    append([]models.Keyword(nil), p.keywords...),
		Definitions: append([]models.Definition(nil), p.definitions...),
		Placed:      p.Placements(),
		Submitted:   p.submitted,
		Correct:     p.correct,
	}
}

func restorePage(state *PageState) *Page {
	p := &Page{
		activityID:  state.ActivityID,
		keywords:    append([]models.Keyword(nil), state.Keywords...),
		definitions: append([]models.Definition(nil), state.Definitions...),
		placed:      make(map[string]*models.Keyword, len(state.Definitions)),
		positions:   make(map[string]string, len(state.Keywords)),
		submitted:   state.Submitted,
		correct:     state.Correct,
	}
	for _, kw := range p.keywords {
		p.positions[kw.ID] = PoolLocation
	}
	for _, def := range p.definitions {
		p.placed[def.ID] = nil
	}
	for defID, kwID := range state.Placed {
		if kwID == "" {
			continue
		}
		if kw := p.findKeyword(kwID); kw != nil {
			p.placed[defID] = kw
			p.positions[kwID] = defID
		}
	}
	return p
}

// Snapshot captures the drill state. The shuffle source is not part of the
// snapshot; a restored drill reseeds it.
func (d *Drill) Snapshot() State {
	state := State{
		Sources:   d.sources,
		Pages:     make([]*PageState, len(d.pages)),
		PageIndex: d.pageIndex,
		Done:      d.done,
	}
	for i, p := range d.pages {
		if p != nil {
			state.Pages[i] = p.snapshot()
		}
	}
	return state
}

// Restore rebuilds a drill from a snapshot.
func Restore(state State) *Drill {
	d := &Drill{
		sources:   state.Sources,
		pages:     make([]*Page, len(state.Sources)),
		pageIndex: state.PageIndex,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		done:      state.Done,
	}
	for i, ps := range state.Pages {
		if ps != nil && i < len(d.pages) {
			d.pages[i] = restorePage(ps)
		}
	}
	if d.pages[d.pageIndex] == nil {
		d.pages[d.pageIndex] = NewPage(d.sources[d.pageIndex], d.rng)
	}
	return d
}
