package videorepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sundbean/retro-video-store/model"
	"github.com/sundbean/retro-video-store/util/query"
)

// ErrHasOpenRentals blocks deletion while copies of the video are out.
var ErrHasOpenRentals = errors.New("video has open rentals")

// Update carries the fields of a partial update; nil means leave unchanged.
type Update struct {
	Title          *string
	ReleaseDate    *time.Time
	TotalInventory *int64
}

var listSpec = query.Spec{
	Columns: map[string]string{
		"id":                  "id",
		"video_id":            "id",
		"title":               "title",
		"release_date":        "release_date",
		"total_inventory":     "total_inventory",
		"available_inventory": "available_inventory",
	},
	Default: "id",
}

type Repo interface {
	List(ctx context.Context, p query.Params) ([]model.Video, error)
	ByID(ctx context.Context, id int64) (*model.Video, error)
	Create(ctx context.Context, v *model.Video) error
	Update(ctx context.Context, id int64, u Update) (*model.Video, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const videoCols = `id, title, release_date, total_inventory, available_inventory`

func (r *repo) List(ctx context.Context, p query.Params) ([]model.Video, error) {
	q := `SELECT ` + videoCols + ` FROM videos`

	cond, args, err := listSpec.Filter(p, 1)
	if err != nil {
		return nil, err
	}
	if cond != "" {
		q += " WHERE " + cond
	}
	tail, err := listSpec.Tail(p)
	if err != nil {
		return nil, err
	}
	q += tail

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Video{}
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.ReleaseDate, &v.TotalInventory, &v.AvailableInventory); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Video, error) {
	const q = `
		SELECT ` + videoCols + `
		FROM videos
		WHERE id = $1`
	var v model.Video
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&v.ID, &v.Title, &v.ReleaseDate, &v.TotalInventory, &v.AvailableInventory)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) Create(ctx context.Context, v *model.Video) error {
	// A new title starts with every copy on the shelf.
	const q = `
		INSERT INTO videos (title, release_date, total_inventory, available_inventory)
		VALUES ($1, $2, $3, $3)
		RETURNING id, available_inventory`
	return r.db.QueryRowContext(ctx, q, v.Title, v.ReleaseDate, v.TotalInventory).
		Scan(&v.ID, &v.AvailableInventory)
}

func (r *repo) Update(ctx context.Context, id int64, u Update) (*model.Video, error) {
	// Changing total_inventory shifts available_inventory by the same delta,
	// clamped to [0, new total] so open rentals keep the books consistent.
	const q = `
		UPDATE videos
		SET title           = COALESCE($2, title),
			release_date    = COALESCE($3, release_date),
			total_inventory = COALESCE($4, total_inventory),
			available_inventory = LEAST(
				COALESCE($4, total_inventory),
				GREATEST(available_inventory + COALESCE($4, total_inventory) - total_inventory, 0)
			)
		WHERE id = $1
		RETURNING ` + videoCols
	var v model.Video
	err := r.db.QueryRowContext(ctx, q, id, u.Title, u.ReleaseDate, u.TotalInventory).
		Scan(&v.ID, &v.Title, &v.ReleaseDate, &v.TotalInventory, &v.AvailableInventory)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var open bool
	const check = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE video_id = $1 AND returned_on_date IS NULL
		)`
	if err = tx.QueryRowContext(ctx, check, id).Scan(&open); err != nil {
		return err
	}
	if open {
		return ErrHasOpenRentals
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM rentals WHERE video_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
