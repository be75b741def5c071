package bridge

import "github.com/desertthunder/mprisd/internal/status"

// Group names a set of fields emitted together. Names match MPRIS player properties.
type Group string

const (
	Metadata       Group = "Metadata"
	PlaybackStatus Group = "PlaybackStatus"
	LoopStatus     Group = "LoopStatus"
	Shuffle        Group = "Shuffle"
	Volume         Group = "Volume"
	Position       Group = "Position"
)

// AllGroups is every group, in emission order.
var AllGroups = []Group{Metadata, PlaybackStatus, LoopStatus, Shuffle, Volume, Position}

// SelectGroups maps per-field change flags onto the groups that must be emitted.
func SelectGroups(c status.Changes) []Group {
	var groups []Group
	if c.Track {
		groups = append(groups, Metadata)
	}
	if c.State {
		groups = append(groups, PlaybackStatus)
	}
	if c.Repeat {
		groups = append(groups, LoopStatus)
	}
	if c.Shuffle {
		groups = append(groups, Shuffle)
	}
	if c.Volume {
		groups = append(groups, Volume)
	}
	if c.Position {
		groups = append(groups, Position)
	}
	return groups
}

// Contains reports whether g is in groups.
func Contains(groups []Group, g Group) bool {
	for _, x := range groups {
		if x == g {
			return true
		}
	}
	return false
}
