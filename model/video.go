// model/video.go
package model

import "time"

type Video struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	ReleaseDate        time.Time `json:"release_date"`
	TotalInventory     int64     `json:"total_inventory"`
	AvailableInventory int64     `json:"available_inventory"`
}
