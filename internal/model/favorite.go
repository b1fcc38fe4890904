package model

import "time"

// FavoriteItem is a tour the member marked for later. Only ID and AddedAt carry
// meaning for the store; the rest is display data captured at insert time.
type FavoriteItem struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Image       string     `json:"image,omitempty"`
	Price       *float64   `json:"price"`
	Destination string     `json:"destination,omitempty"`
	Days        int        `json:"days,omitempty"`
	Nights      int        `json:"nights,omitempty"`
	Code        string     `json:"code,omitempty"`
	AddedAt     *time.Time `json:"added_at,omitempty"` // nil on legacy entries, which never expire
}

// FavoriteIDsResponse is the API response DTO for GET /api/member/favorites
type FavoriteIDsResponse struct {
	TourIDs []int64 `json:"tour_ids"`
}

// ToggleFavoriteRequest is the DTO for flipping a favorite
type ToggleFavoriteRequest struct {
	TourID *int64 `json:"tour_id" validate:"required,gte=1"`
}

// ToggleFavoriteResponse reports the membership after the flip
type ToggleFavoriteResponse struct {
	TourID    int64 `json:"tour_id"`
	Favorited bool  `json:"favorited"`
}
