package jellyfin

// ItemsResponse represents a paginated list of items from Jellyfin
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// Item represents a catalog item from Jellyfin (movie, series, season, episode, folder, etc.)
type Item struct {
	ID             string    `json:"Id"`
	Name           string    `json:"Name"`
	Type           string    `json:"Type"`
	CollectionType string    `json:"CollectionType,omitempty"` // For libraries: "movies", "tvshows"
	IsFolder       bool      `json:"IsFolder,omitempty"`
	ParentID       string    `json:"ParentId,omitempty"`
	SeriesName     string    `json:"SeriesName,omitempty"`
	RunTimeTicks   int64     `json:"RunTimeTicks,omitempty"` // Duration in 100-nanosecond units
	UserData       *UserData `json:"UserData,omitempty"`
}

// UserData contains user-specific data for an item (watch status, progress)
type UserData struct {
	PlaybackPositionTicks int64 `json:"PlaybackPositionTicks"` // Progress in 100-nanosecond units
	PlayCount             int   `json:"PlayCount"`
	Played                bool  `json:"Played"`
}
