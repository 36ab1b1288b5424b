package domain

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemType distinguishes catalog item kinds.
// It is stored as a single byte, so values must stay below 256.
type ItemType uint8

const (
	ItemTypeNone ItemType = 0

	// Playable items
	ItemTypeAudio      ItemType = 1
	ItemTypeAudioBook  ItemType = 2
	ItemTypeEpisode    ItemType = 3
	ItemTypeMovie      ItemType = 4
	ItemTypeMusicVideo ItemType = 5
	ItemTypeOther      ItemType = 6

	// Containers: everything from ItemTypeCollection up
	ItemTypeCollection ItemType = 20
	ItemTypeFolder     ItemType = 21
	ItemTypePlaylist   ItemType = 22
	ItemTypeUserView   ItemType = 23
	ItemTypeAlbum      ItemType = 24
	ItemTypeArtist     ItemType = 25
	ItemTypeSeason     ItemType = 26
	ItemTypeSeries     ItemType = 27
)

// IsFolder returns true if items of this type hold other items
func (t ItemType) IsFolder() bool {
	return t >= ItemTypeCollection
}

// String returns a lowercase label for the type
func (t ItemType) String() string {
	switch t {
	case ItemTypeNone:
		return "none"
	case ItemTypeAudio:
		return "audio"
	case ItemTypeAudioBook:
		return "audiobook"
	case ItemTypeEpisode:
		return "episode"
	case ItemTypeMovie:
		return "movie"
	case ItemTypeMusicVideo:
		return "musicvideo"
	case ItemTypeOther:
		return "other"
	case ItemTypeCollection:
		return "collection"
	case ItemTypeFolder:
		return "folder"
	case ItemTypePlaylist:
		return "playlist"
	case ItemTypeUserView:
		return "userview"
	case ItemTypeAlbum:
		return "album"
	case ItemTypeArtist:
		return "artist"
	case ItemTypeSeason:
		return "season"
	case ItemTypeSeries:
		return "series"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// IDSize is the byte length of a server item identifier
const IDSize = 16

// ID is a raw server-assigned item identifier (a Jellyfin GUID)
type ID [IDSize]byte

// ParseID parses the 32 hex character form the server uses.
// The dashed UUID form is accepted as well.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid item id %q: %w", s, err)
	}
	return ID(u), nil
}

// String returns the id as 32 lowercase hex characters
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns true for the all-zero id
func (id ID) IsZero() bool {
	return id == ID{}
}

// ticksPerSecond: the server counts time in 100-nanosecond ticks
const ticksPerSecond = 10000000

// Item is one catalog entry as listed by the server
type Item struct {
	Type          ItemType
	ID            ID
	Name          string
	RuntimeTicks  int64 // Total duration in server ticks
	PlaybackTicks int64 // Last known playback position in server ticks

	// Children is only ever populated in memory. It is never written to disk,
	// and items read back from a cache always have no children.
	Children []*Item
}

// IsPlayable returns true for leaf items that can be queued for playback
func (i *Item) IsPlayable() bool {
	return i.Type != ItemTypeNone && !i.Type.IsFolder()
}

// Runtime returns the total duration
func (i *Item) Runtime() time.Duration {
	return TicksToDuration(i.RuntimeTicks)
}

// PlaybackPosition returns the resume position
func (i *Item) PlaybackPosition() time.Duration {
	return TicksToDuration(i.PlaybackTicks)
}

// FormattedDuration returns the runtime in a human-readable format
func (i *Item) FormattedDuration() string {
	return FormatDuration(i.Runtime())
}

// FormatDuration formats d as "1h 57m" or "42m"
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// TicksToDuration converts server ticks to a time.Duration
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks) * (time.Second / ticksPerSecond)
}
