package video

import "time"

type CreateVideoReq struct {
	Title          string    `json:"title" validate:"required"`
	ReleaseDate    time.Time `json:"release_date" validate:"required"`
	TotalInventory *int64    `json:"total_inventory" validate:"required,gte=0"`
}

// UpdateVideoReq is a partial update; absent fields stay untouched.
type UpdateVideoReq struct {
	Title          *string    `json:"title" validate:"omitempty,min=1"`
	ReleaseDate    *time.Time `json:"release_date"`
	TotalInventory *int64     `json:"total_inventory" validate:"omitempty,gte=0"`
}
