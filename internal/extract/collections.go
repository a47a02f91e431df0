package extract

import (
	"strings"

	"github.com/photoxport/photoxport/internal/policy"
	"github.com/photoxport/photoxport/internal/types"
)

// Policy is the filtering configuration consulted for every asset. The
// policy package's Policy satisfies it.
type Policy interface {
	EngineList() []policy.ListEntry
	IsBlacklist() bool
}

// Deduplicate returns the assets with duplicate asset UUIDs removed,
// preserving the first occurrence of each.
func Deduplicate(assets []types.Asset) []types.Asset {
	seen := make(map[string]bool, len(assets))
	var unique []types.Asset
	for _, asset := range assets {
		if seen[asset.AssetUUID] {
			continue
		}
		seen[asset.AssetUUID] = true
		unique = append(unique, asset)
	}
	return unique
}

// BurstGroup holds the frames of one burst in backup order
type BurstGroup struct {
	UUID   string
	Frames []types.Asset
}

// SeparateBurstFrames partitions assets into burst groups and the
// remaining singles. Group order follows the first-seen frame so the
// extraction walk stays deterministic.
func SeparateBurstFrames(assets []types.Asset) ([]BurstGroup, []types.Asset) {
	index := make(map[string]int)
	var groups []BurstGroup
	var singles []types.Asset

	for _, asset := range assets {
		if asset.Subtype == types.SubtypeBurstFrame && asset.BurstUUID != nil {
			uuid := *asset.BurstUUID
			i, ok := index[uuid]
			if !ok {
				i = len(groups)
				index[uuid] = i
				groups = append(groups, BurstGroup{UUID: uuid})
			}
			groups[i].Frames = append(groups[i].Frames, asset)
			continue
		}
		singles = append(singles, asset)
	}

	return groups, singles
}

// AlbumTitleMap builds the album-UUID-to-title lookup from user albums
func AlbumTitleMap(albums []types.Album) map[string]string {
	titles := make(map[string]string, len(albums))
	for _, album := range albums {
		if album.Type == types.AlbumTypeUser {
			titles[album.AlbumUUID] = album.Title
		}
	}
	return titles
}

// canonicalNUA reduces a smart folder entry name to the identifier used
// on asset relationships ("Recently Deleted" -> "recently_deleted").
func canonicalNUA(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ActiveCollections resolves the destination collections for an asset
// under the configured blacklist/whitelist policy. Unknown album UUIDs
// are dropped. Smart folder collections carry the "nua_" title prefix.
func ActiveCollections(asset types.Asset, pol Policy, titleByUUID map[string]string) []types.CollectionRef {
	uaNames := make(map[string]bool)
	nuaNames := make(map[string]bool)
	for _, entry := range pol.EngineList() {
		if entry.IsNUA {
			nuaNames[canonicalNUA(entry.Name)] = true
		} else {
			uaNames[entry.Name] = true
		}
	}

	blacklist := pol.IsBlacklist()
	var result []types.CollectionRef

	for _, albumUUID := range asset.Relationships.UserAlbums {
		title, ok := titleByUUID[albumUUID]
		if !ok {
			continue
		}
		if uaNames[title] != blacklist {
			result = append(result, types.CollectionRef{Title: title, IsNUA: false})
		}
	}

	for _, folder := range asset.Relationships.SmartFolders {
		name := string(folder)
		if nuaNames[name] != blacklist {
			result = append(result, types.CollectionRef{Title: "nua_" + name, IsNUA: true})
		}
	}

	return result
}
