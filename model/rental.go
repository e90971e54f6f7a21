// model/rental.go
package model

import "time"

// Rental is one checkout of a video by a customer. A rental is open while
// ReturnedOnDate is nil; check-in closes it instead of deleting the row, so
// a repeat checkout of the same pair creates a new rental.
type Rental struct {
	ID             int64      `json:"id"`
	CustomerID     int64      `json:"customer_id"`
	VideoID        int64      `json:"video_id"`
	DueDate        time.Time  `json:"due_date"`
	ReturnedOnDate *time.Time `json:"returned_on_date,omitempty"`
}
