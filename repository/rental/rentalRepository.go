// repository/rental/rentalRepository.go
package rentalrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sundbean/retro-video-store/util/query"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoInventory      = errors.New("no available inventory")
	ErrNoOpenRental     = errors.New("no open rental for that customer and video")
	ErrAlreadyReturned  = errors.New("rental already checked in")
	ErrAlreadyOut       = errors.New("customer already has that video checked out")
)

// Info is the rental response shape: the rental row combined with the
// counters it just moved.
type Info struct {
	ID                    int64     `json:"id"`
	CustomerID            int64     `json:"customer_id"`
	VideoID               int64     `json:"video_id"`
	DueDate               time.Time `json:"due_date"`
	VideosCheckedOutCount int64     `json:"videos_checked_out_count"`
	AvailableInventory    int64     `json:"available_inventory"`
}

// CustomerRentalRow lists a video currently out to a customer.
type CustomerRentalRow struct {
	ReleaseDate time.Time `json:"release_date"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
}

// CustomerHistoryRow lists a returned rental from the customer's side.
// CheckoutDate is derived as due_date - 7 days; the checkout instant itself
// is not stored.
type CustomerHistoryRow struct {
	Title        string    `json:"title"`
	CheckoutDate time.Time `json:"checkout_date"`
	DueDate      time.Time `json:"due_date"`
}

// VideoRentalRow lists a customer who currently has the video out.
type VideoRentalRow struct {
	DueDate    time.Time `json:"due_date"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	PostalCode string    `json:"postal_code"`
}

// VideoHistoryRow lists a returned rental from the video's side.
type VideoHistoryRow struct {
	CustomerID   int64     `json:"customer_id"`
	Name         string    `json:"name"`
	PostalCode   string    `json:"postal_code"`
	CheckoutDate time.Time `json:"checkout_date"`
	DueDate      time.Time `json:"due_date"`
}

// OverdueRow is an open rental whose due date has passed.
type OverdueRow struct {
	VideoID      int64     `json:"video_id"`
	Title        string    `json:"title"`
	CustomerID   int64     `json:"customer_id"`
	Name         string    `json:"name"`
	PostalCode   string    `json:"postal_code"`
	CheckoutDate time.Time `json:"checkout_date"`
	DueDate      time.Time `json:"due_date"`
}

var (
	rentalSpec = query.Spec{
		Columns: map[string]string{
			"id":               "r.id",
			"rental_id":        "r.id",
			"customer_id":      "r.customer_id",
			"video_id":         "r.video_id",
			"due_date":         "r.due_date",
			"returned_on_date": "r.returned_on_date",
		},
		Default: "r.id",
	}
	customerViewSpec = query.Spec{
		Columns: map[string]string{
			"id":           "r.id",
			"video_id":     "r.video_id",
			"due_date":     "r.due_date",
			"title":        "v.title",
			"release_date": "v.release_date",
		},
		Default: "r.id",
	}
	videoViewSpec = query.Spec{
		Columns: map[string]string{
			"id":          "r.id",
			"customer_id": "r.customer_id",
			"due_date":    "r.due_date",
			"name":        "c.name",
			"postal_code": "c.postal_code",
		},
		Default: "r.id",
	}
	overdueSpec = query.Spec{
		Columns: map[string]string{
			"id":          "r.id",
			"customer_id": "r.customer_id",
			"video_id":    "r.video_id",
			"due_date":    "r.due_date",
			"title":       "v.title",
			"name":        "c.name",
			"postal_code": "c.postal_code",
		},
		Default: "r.video_id",
	}
)

type Repo interface {
	CheckOut(ctx context.Context, customerID, videoID int64, due time.Time) (*Info, error)
	CheckIn(ctx context.Context, customerID, videoID int64, returned time.Time) (*Info, error)

	List(ctx context.Context, p query.Params) ([]Info, error)
	ListByCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerRentalRow, error)
	HistoryByCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerHistoryRow, error)
	ListByVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoRentalRow, error)
	HistoryByVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoHistoryRow, error)
	Overdue(ctx context.Context, p query.Params) ([]OverdueRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// CheckOut creates an open rental and moves both counters in one
// transaction. The video row lock serializes concurrent checkouts of the
// last copy: the loser re-reads available_inventory as 0 and fails.
func (r *repo) CheckOut(ctx context.Context, customerID, videoID int64, due time.Time) (info *Info, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var available int64
	err = tx.QueryRowContext(ctx, `
		SELECT available_inventory
		FROM videos
		WHERE id = $1
		FOR UPDATE`, videoID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if available <= 0 {
		return nil, ErrNoInventory
	}

	var checkedOut int64
	err = tx.QueryRowContext(ctx, `
		SELECT videos_checked_out_count
		FROM customers
		WHERE id = $1
		FOR UPDATE`, customerID).Scan(&checkedOut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	out := Info{CustomerID: customerID, VideoID: videoID, DueDate: due}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rentals (customer_id, video_id, due_date)
		VALUES ($1, $2, $3)
		RETURNING id`, customerID, videoID, due).Scan(&out.ID)
	if err != nil {
		// The partial unique index allows one open rental per pair.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyOut
		}
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE videos
		SET available_inventory = available_inventory - 1
		WHERE id = $1
		RETURNING available_inventory`, videoID).Scan(&out.AvailableInventory)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE customers
		SET videos_checked_out_count = videos_checked_out_count + 1
		WHERE id = $1
		RETURNING videos_checked_out_count`, customerID).Scan(&out.VideosCheckedOutCount)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckIn closes the oldest open rental for the pair and moves both
// counters back, capping available_inventory at total_inventory and
// flooring the checkout count at zero.
func (r *repo) CheckIn(ctx context.Context, customerID, videoID int64, returned time.Time) (info *Info, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCustomerNotFound
	}
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVideoNotFound
	}

	out := Info{CustomerID: customerID, VideoID: videoID}
	err = tx.QueryRowContext(ctx, `
		SELECT id, due_date
		FROM rentals
		WHERE customer_id = $1
		  AND video_id = $2
		  AND returned_on_date IS NULL
		ORDER BY id
		LIMIT 1
		FOR UPDATE`, customerID, videoID).Scan(&out.ID, &out.DueDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish "never rented" from "already brought back".
			var closed bool
			if err = tx.QueryRowContext(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM rentals
					WHERE customer_id = $1 AND video_id = $2
				)`, customerID, videoID).Scan(&closed); err != nil {
				return nil, err
			}
			if closed {
				return nil, ErrAlreadyReturned
			}
			return nil, ErrNoOpenRental
		}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE rentals
		SET returned_on_date = $2
		WHERE id = $1`, out.ID, returned); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE videos
		SET available_inventory = LEAST(available_inventory + 1, total_inventory)
		WHERE id = $1
		RETURNING available_inventory`, videoID).Scan(&out.AvailableInventory)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE customers
		SET videos_checked_out_count = GREATEST(videos_checked_out_count - 1, 0)
		WHERE id = $1
		RETURNING videos_checked_out_count`, customerID).Scan(&out.VideosCheckedOutCount)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) List(ctx context.Context, p query.Params) ([]Info, error) {
	q := `
		SELECT r.id, r.customer_id, r.video_id, r.due_date,
			c.videos_checked_out_count, v.available_inventory
		FROM rentals r
		JOIN customers c ON c.id = r.customer_id
		JOIN videos v ON v.id = r.video_id`
	tail, err := rentalSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Info{}
	for rows.Next() {
		var i Info
		if err := rows.Scan(&i.ID, &i.CustomerID, &i.VideoID, &i.DueDate,
			&i.VideosCheckedOutCount, &i.AvailableInventory); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *repo) ListByCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerRentalRow, error) {
	q := `
		SELECT v.release_date, v.title, r.due_date
		FROM rentals r
		JOIN videos v ON v.id = r.video_id
		WHERE r.customer_id = $1
		  AND r.returned_on_date IS NULL`
	tail, err := customerViewSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CustomerRentalRow{}
	for rows.Next() {
		var row CustomerRentalRow
		if err := rows.Scan(&row.ReleaseDate, &row.Title, &row.DueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) HistoryByCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerHistoryRow, error) {
	q := `
		SELECT v.title, r.due_date - INTERVAL '7 days', r.due_date
		FROM rentals r
		JOIN videos v ON v.id = r.video_id
		WHERE r.customer_id = $1
		  AND r.returned_on_date IS NOT NULL`
	tail, err := customerViewSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CustomerHistoryRow{}
	for rows.Next() {
		var row CustomerHistoryRow
		if err := rows.Scan(&row.Title, &row.CheckoutDate, &row.DueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListByVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoRentalRow, error) {
	q := `
		SELECT r.due_date, c.name, c.phone, c.postal_code
		FROM rentals r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.video_id = $1
		  AND r.returned_on_date IS NULL`
	tail, err := videoViewSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []VideoRentalRow{}
	for rows.Next() {
		var row VideoRentalRow
		if err := rows.Scan(&row.DueDate, &row.Name, &row.Phone, &row.PostalCode); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) HistoryByVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoHistoryRow, error) {
	q := `
		SELECT c.id, c.name, c.postal_code, r.due_date - INTERVAL '7 days', r.due_date
		FROM rentals r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.video_id = $1
		  AND r.returned_on_date IS NOT NULL`
	tail, err := videoViewSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []VideoHistoryRow{}
	for rows.Next() {
		var row VideoHistoryRow
		if err := rows.Scan(&row.CustomerID, &row.Name, &row.PostalCode, &row.CheckoutDate, &row.DueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) Overdue(ctx context.Context, p query.Params) ([]OverdueRow, error) {
	q := `
		SELECT v.id, v.title, c.id, c.name, c.postal_code,
			r.due_date - INTERVAL '7 days', r.due_date
		FROM rentals r
		JOIN customers c ON c.id = r.customer_id
		JOIN videos v ON v.id = r.video_id
		WHERE r.due_date < NOW()
		  AND r.returned_on_date IS NULL`
	tail, err := overdueSpec.Tail(p)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q+tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OverdueRow{}
	for rows.Next() {
		var row OverdueRow
		if err := rows.Scan(&row.VideoID, &row.Title, &row.CustomerID, &row.Name,
			&row.PostalCode, &row.CheckoutDate, &row.DueDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
