// Package policy manages the album blacklist/whitelist settings consulted
// by the extraction engine. Whitelist mode is represented internally as a
// working blacklist holding the complement of the user's selections, so
// both modes share one membership test.
package policy

import (
	"sort"
	"strings"
)

// Smart folder names recognised as Non-User Albums
var nuaNames = map[string]bool{
	"Favorites":        true,
	"Hidden":           true,
	"Selfies":          true,
	"Recently Deleted": true,
	// lowercase smart folder identifiers used on asset relationships
	"favorites":        true,
	"hidden":           true,
	"selfies":          true,
	"recently_deleted": true,
}

// ListEntry represents an album or smart folder as a filterable item
type ListEntry struct {
	Name  string
	IsNUA bool
}

// NewEntry builds a ListEntry, trimming whitespace and flagging NUAs
func NewEntry(name string) ListEntry {
	trimmed := strings.TrimSpace(name)
	return ListEntry{Name: trimmed, IsNUA: nuaNames[trimmed]}
}

// Policy holds the current filtering configuration
type Policy struct {
	workingBlacklist map[ListEntry]struct{}
	originalFullList map[ListEntry]struct{}
	blacklistMode    bool
}

// New returns a Policy in blacklist mode with an empty list
func New() *Policy {
	return &Policy{
		workingBlacklist: make(map[ListEntry]struct{}),
		originalFullList: make(map[ListEntry]struct{}),
		blacklistMode:    true,
	}
}

// IsBlacklist reports whether the policy is in blacklist mode
func (p *Policy) IsBlacklist() bool {
	return p.blacklistMode
}

// EngineList returns the entries the extraction engine should evaluate:
// the exclusions in blacklist mode, the selections in whitelist mode.
func (p *Policy) EngineList() []ListEntry {
	var entries []ListEntry
	if p.blacklistMode {
		for e := range p.workingBlacklist {
			entries = append(entries, e)
		}
	} else {
		for e := range p.originalFullList {
			if _, blocked := p.workingBlacklist[e]; !blocked {
				entries = append(entries, e)
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// ToggleMode switches between blacklist and whitelist mode, clearing the
// current selection. Entering whitelist mode requires the full album list
// so the complement representation can be seeded; without it the policy
// reverts to blacklist mode.
func (p *Policy) ToggleMode(allAlbumNames []string) string {
	p.blacklistMode = !p.blacklistMode
	p.workingBlacklist = make(map[ListEntry]struct{})
	p.originalFullList = make(map[ListEntry]struct{})

	if !p.blacklistMode {
		if len(allAlbumNames) == 0 {
			p.blacklistMode = true
			return "[!] Error: Cannot create Whitelist without backup data."
		}

		for _, name := range allAlbumNames {
			entry := NewEntry(name)
			p.workingBlacklist[entry] = struct{}{}
			p.originalFullList[entry] = struct{}{}
		}

		return "Mode switched to: Whitelist (List cleared. Select albums to ALLOW.)"
	}

	return "Mode switched to: Blacklist (List cleared. Select albums to BLOCK.)"
}

// ToggleAlbum adds or removes an album from the active selection
func (p *Policy) ToggleAlbum(albumName string) (bool, string) {
	entry := NewEntry(albumName)
	if entry.Name == "" {
		return false, "Album name cannot be empty."
	}

	_, listed := p.workingBlacklist[entry]

	if p.blacklistMode {
		if listed {
			delete(p.workingBlacklist, entry)
			return true, "Album '" + entry.Name + "' removed from Blacklist."
		}
		p.workingBlacklist[entry] = struct{}{}
		return true, "Album '" + entry.Name + "' added to Blacklist."
	}

	// Whitelist mode inverts the bookkeeping: selecting an album removes
	// it from the working blacklist so the engine exports it.
	if listed {
		delete(p.workingBlacklist, entry)
		return true, "Album '" + entry.Name + "' added to Whitelist."
	}
	p.workingBlacklist[entry] = struct{}{}
	return true, "Album '" + entry.Name + "' removed from Whitelist."
}

// IsAlbumAllowed reports whether an album is eligible for export under
// the current configuration. Both modes reduce to absence from the
// working blacklist.
func (p *Policy) IsAlbumAllowed(albumName string) bool {
	_, blocked := p.workingBlacklist[NewEntry(albumName)]
	return !blocked
}

// State returns the mode name and a comma-separated display list of the
// currently selected albums.
func (p *Policy) State() (string, string) {
	mode := "Blacklist"
	var display []string

	if p.blacklistMode {
		for e := range p.workingBlacklist {
			display = append(display, e.Name)
		}
	} else {
		mode = "Whitelist"
		for e := range p.originalFullList {
			if _, blocked := p.workingBlacklist[e]; !blocked {
				display = append(display, e.Name)
			}
		}
	}

	if len(display) == 0 {
		return mode, "None"
	}
	sort.Strings(display)
	return mode, strings.Join(display, ", ")
}
