// Package rotation decides which saved wallpaper to show next, or whether the
// caller should fetch a new one from the catalog instead.
//
// The selector is pure: it takes a snapshot of the saved list, the shown
// history and the currently displayed image and returns a Decision. Applying
// the decision (persisting, notifying, displaying) is left to the caller.
package rotation

import (
	"fmt"

	"go-wallhaven-rotator/internal/codec"
	"go-wallhaven-rotator/internal/models"
	"go-wallhaven-rotator/internal/notify"

	log "github.com/sirupsen/logrus"
)

// Action is what the caller should do with a Decision.
type Action int

const (
	Display Action = iota
	FetchRemote
)

func (a Action) String() string {
	if a == FetchRemote {
		return "fetch-remote"
	}
	return "display"
}

// Policy holds the rotation toggles read from configuration.
type Policy struct {
	Shuffle bool
	Cycle   bool
}

// Input is the snapshot a selection is made from.
type Input struct {
	Policy Policy
	Saved  []models.SavedEntry
	// Shown holds serialized entries already displayed this cycle.
	Shown []string
	// Current is the URL or local path currently on screen.
	Current string
}

// Decision is the outcome of one selection.
type Decision struct {
	Action Action
	// Reason is set for FetchRemote.
	Reason string

	Entry     models.SavedEntry
	URL       string
	Thumbnail string
	// Position is the 1-based index of Entry within the saved list.
	Position int
	Total    int

	// Shown is the shown history to persist after this decision.
	Shown         []string
	Notifications []notify.Notification
}

// Selector picks the next saved wallpaper.
type Selector struct {
	// Intn returns a uniform random int in [0, n). Use rand.IntN in production.
	Intn func(n int) int
}

// NewSelector creates a selector with the given random source.
func NewSelector(intn func(n int) int) *Selector {
	return &Selector{Intn: intn}
}

// Next runs the selection ladder over in.
func (s *Selector) Next(in Input) Decision {
	var notes []notify.Notification
	note := func(msg string) {
		notes = append(notes, notify.Notification{Title: notify.Title, Message: msg, Icon: notify.IconWallpaper})
	}
	fetch := func(reason string, shown []string) Decision {
		log.WithField("reason", reason).Debug("Rotation falling back to remote fetch")
		return Decision{Action: FetchRemote, Reason: reason, Shown: shown, Total: len(in.Saved), Notifications: notes}
	}

	saved := in.Saved
	shown := append([]string(nil), in.Shown...)

	if len(saved) == 0 {
		note("No saved wallpapers found. Fetching from Wallhaven...")
		return fetch("No saved wallpapers found. Fetching from Wallhaven...", shown)
	}

	if len(shown) >= len(saved) {
		if !in.Policy.Cycle {
			return fetch(fmt.Sprintf("All %d saved wallpapers shown. Fetching new from Wallhaven...", len(saved)), []string{})
		}
		note("Restarting saved wallpapers cycle")
		shown = []string{}
	}

	unshown := filterUnshown(saved, shown)
	if len(unshown) == 0 {
		if !in.Policy.Cycle {
			return fetch(fmt.Sprintf("All %d saved wallpapers shown. Fetching new from Wallhaven...", len(saved)), []string{})
		}
		unshown = saved
		shown = []string{}
	}

	var (
		selected models.SavedEntry
		found    bool
	)
	if in.Policy.Shuffle {
		pool := excludeCurrent(unshown, in.Current)
		if len(pool) == 0 {
			if !in.Policy.Cycle {
				return fetch("Only one saved wallpaper left. Fetching new from Wallhaven...", shown)
			}
			pool = excludeCurrent(saved, in.Current)
			shown = []string{}
			if len(pool) == 0 {
				note("Only one saved wallpaper available")
				pool = saved
			}
		}
		selected, found = pool[s.Intn(len(pool))], true
	} else {
		selected, found = scanSequential(saved, shown, in.Current)
		if !found {
			if !in.Policy.Cycle {
				return fetch("Only one saved wallpaper left. Fetching new from Wallhaven...", []string{})
			}
			shown = []string{}
			selected, found = scanSequential(saved, shown, in.Current)
			if !found {
				note("Only one saved wallpaper available")
				selected = saved[0]
			}
		}
	}

	shown = append(shown, selected.Serialized)
	position := indexOf(saved, selected) + 1

	d := Decision{
		Action:    Display,
		Entry:     selected,
		URL:       selected.FullURL,
		Thumbnail: selected.ThumbURL,
		Position:  position,
		Total:     len(saved),
		Shown:     shown,
	}
	source := "online"
	if selected.LocalPath != "" {
		d.URL = codec.PresentPath(selected.LocalPath)
		d.Thumbnail = d.URL
		source = "local"
	}
	note(fmt.Sprintf("Loading saved wallpaper %d of %d (%s)", position, len(saved), source))
	d.Notifications = notes

	log.WithFields(log.Fields{"position": position, "total": len(saved), "source": source}).Debug("Selected saved wallpaper")
	return d
}

// MatchesCurrent reports whether entry is what is currently on screen.
// Remote values compare against the full URL, anything else against the
// normalized local path, since the same entry may be shown either way.
func MatchesCurrent(entry models.SavedEntry, current string) bool {
	if current == "" {
		return false
	}
	if codec.IsRemoteURL(current) {
		return entry.FullURL == current
	}
	return entry.LocalPath != "" && entry.LocalPath == codec.NormalizePath(current)
}

// scanSequential walks the list circularly from just after the current entry.
// While unshown entries remain only those are accepted; otherwise the first
// non-current entry wins.
func scanSequential(saved []models.SavedEntry, shown []string, current string) (models.SavedEntry, bool) {
	n := len(saved)
	start := 0
	for i, e := range saved {
		if MatchesCurrent(e, current) {
			start = i + 1
			break
		}
	}

	requireUnshown := len(filterUnshown(saved, shown)) > 0
	for i := 0; i < n; i++ {
		cand := saved[(start+i)%n]
		if MatchesCurrent(cand, current) {
			continue
		}
		if requireUnshown && contains(shown, cand.Serialized) {
			continue
		}
		return cand, true
	}
	return models.SavedEntry{}, false
}

func filterUnshown(saved []models.SavedEntry, shown []string) []models.SavedEntry {
	var out []models.SavedEntry
	for _, e := range saved {
		if !contains(shown, e.Serialized) {
			out = append(out, e)
		}
	}
	return out
}

func excludeCurrent(entries []models.SavedEntry, current string) []models.SavedEntry {
	var out []models.SavedEntry
	for _, e := range entries {
		if !MatchesCurrent(e, current) {
			out = append(out, e)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(saved []models.SavedEntry, entry models.SavedEntry) int {
	for i, e := range saved {
		if e.Serialized == entry.Serialized {
			return i
		}
	}
	return -1
}
