// model/customer.go
package model

import "time"

type Customer struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	RegisteredAt          time.Time `json:"registered_at"`
	PostalCode            string    `json:"postal_code"`
	Phone                 string    `json:"phone"`
	VideosCheckedOutCount int64     `json:"videos_checked_out_count"`
}
