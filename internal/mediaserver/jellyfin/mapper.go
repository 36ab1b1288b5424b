package jellyfin

import (
	"fmt"

	"github.com/mmcdole/kinocache/internal/domain"
)

// MapItemType converts a Jellyfin item type name to a domain item type.
// Unknown types map to ItemTypeOther, or ItemTypeFolder when the server
// marks them as folders.
func MapItemType(typ string, isFolder bool) domain.ItemType {
	switch typ {
	case "Movie":
		return domain.ItemTypeMovie
	case "Episode":
		return domain.ItemTypeEpisode
	case "Audio":
		return domain.ItemTypeAudio
	case "AudioBook":
		return domain.ItemTypeAudioBook
	case "MusicVideo":
		return domain.ItemTypeMusicVideo
	case "Series":
		return domain.ItemTypeSeries
	case "Season":
		return domain.ItemTypeSeason
	case "BoxSet":
		return domain.ItemTypeCollection
	case "Folder", "CollectionFolder":
		return domain.ItemTypeFolder
	case "Playlist":
		return domain.ItemTypePlaylist
	case "UserView":
		return domain.ItemTypeUserView
	case "MusicAlbum":
		return domain.ItemTypeAlbum
	case "MusicArtist":
		return domain.ItemTypeArtist
	}
	if isFolder {
		return domain.ItemTypeFolder
	}
	return domain.ItemTypeOther
}

// MapItem converts a single Jellyfin item to a domain item
func MapItem(item Item) (*domain.Item, error) {
	id, err := domain.ParseID(item.ID)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.Name, err)
	}

	di := &domain.Item{
		Type:         MapItemType(item.Type, item.IsFolder),
		ID:           id,
		Name:         displayName(item),
		RuntimeTicks: item.RunTimeTicks,
	}

	// User data (resume position)
	if item.UserData != nil {
		di.PlaybackTicks = item.UserData.PlaybackPositionTicks
	}

	return di, nil
}

// MapItems converts Jellyfin items to domain items, failing on the first invalid one
func MapItems(items []Item) ([]*domain.Item, error) {
	mapped := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		di, err := MapItem(item)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, di)
	}
	return mapped, nil
}

// displayName prefixes episodes with their series so queued episodes stay identifiable
func displayName(item Item) string {
	if item.Type == "Episode" && item.SeriesName != "" {
		return item.SeriesName + " - " + item.Name
	}
	return item.Name
}
