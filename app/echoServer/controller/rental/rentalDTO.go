package rental

type CheckOutReq struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	VideoID    int64 `json:"video_id" validate:"required,gt=0"`
}

type CheckInReq struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	VideoID    int64 `json:"video_id" validate:"required,gt=0"`
}

// CheckInResp is the rental object without due_date; the rental is closed,
// so the due date no longer applies.
type CheckInResp struct {
	ID                    int64 `json:"id"`
	CustomerID            int64 `json:"customer_id"`
	VideoID               int64 `json:"video_id"`
	VideosCheckedOutCount int64 `json:"videos_checked_out_count"`
	AvailableInventory    int64 `json:"available_inventory"`
}
