package ase

import (
	"sort"
	"time"

	"github.com/sepsislab/asewatch/internal/model"
)

// ritState is the repeat-infection-timeframe machine state.
type ritState int

const (
	ritOpen ritState = iota
	ritInWindow
)

// AssignEpisodeIDs runs the repeat-infection pass over one
// hospitalization's assembled episodes, in place. Sepsis episodes are
// visited in onset order; a counted episode takes the next sequential id
// and opens the suppression window, episodes starting inside the window
// are suppressed and inherit the opener's id. Community-onset episodes
// bypass the machine entirely when RITOnlyHospitalOnset is set: always
// counted, never opening or resetting a window. Non-sepsis episodes keep
// a nil id. No state crosses hospitalizations.
func AssignEpisodeIDs(eps []model.Episode, p Params) {
	idx := make([]int, 0, len(eps))
	for i := range eps {
		if eps[i].Sepsis {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return eps[idx[a]].OnsetOrCulture().Before(eps[idx[b]].OnsetOrCulture())
	})

	nextID := 1
	if !p.ApplyRIT {
		for _, i := range idx {
			id := nextID
			nextID++
			eps[i].EpisodeID = &id
		}
		return
	}

	state := ritOpen
	var windowCloses time.Time
	openerID := 0
	for _, i := range idx {
		ep := &eps[i]
		t := ep.OnsetOrCulture()

		if p.RITOnlyHospitalOnset && ep.Type == model.OnsetCommunity {
			id := nextID
			nextID++
			ep.EpisodeID = &id
			continue
		}

		if state == ritInWindow && t.After(windowCloses) {
			state = ritOpen
		}

		switch state {
		case ritOpen:
			id := nextID
			nextID++
			ep.EpisodeID = &id
			openerID = id
			windowCloses = t.Add(p.ritWindow())
			state = ritInWindow
		case ritInWindow:
			id := openerID
			ep.EpisodeID = &id
			ep.Suppressed = true
		}
	}
}
