package customerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sundbean/retro-video-store/model"
	"github.com/sundbean/retro-video-store/util/query"
)

// ErrHasOpenRentals blocks deletion while the customer still has videos out.
var ErrHasOpenRentals = errors.New("customer has open rentals")

// Update carries the fields of a partial update; nil means leave unchanged.
type Update struct {
	Name       *string
	PostalCode *string
	Phone      *string
}

var listSpec = query.Spec{
	Columns: map[string]string{
		"id":                       "id",
		"customer_id":              "id",
		"name":                     "name",
		"postal_code":              "postal_code",
		"phone":                    "phone",
		"registered_at":            "registered_at",
		"videos_checked_out_count": "videos_checked_out_count",
	},
	Default: "id",
}

type Repo interface {
	List(ctx context.Context, p query.Params) ([]model.Customer, error)
	ByID(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, id int64, u Update) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const customerCols = `id, name, registered_at, postal_code, phone, videos_checked_out_count`

func (r *repo) List(ctx context.Context, p query.Params) ([]model.Customer, error) {
	q := `SELECT ` + customerCols + ` FROM customers`

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

	out := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.RegisteredAt, &c.PostalCode, &c.Phone, &c.VideosCheckedOutCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Customer, error) {
	const q = `
		SELECT ` + customerCols + `
		FROM customers
		WHERE id = $1`
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Name, &c.RegisteredAt, &c.PostalCode, &c.Phone, &c.VideosCheckedOutCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, c *model.Customer) error {
	const q = `
		INSERT INTO customers (name, postal_code, phone)
		VALUES ($1, $2, $3)
		RETURNING id, registered_at, videos_checked_out_count`
	return r.db.QueryRowContext(ctx, q, c.Name, c.PostalCode, c.Phone).
		Scan(&c.ID, &c.RegisteredAt, &c.VideosCheckedOutCount)
}

func (r *repo) Update(ctx context.Context, id int64, u Update) (*model.Customer, error) {
	// COALESCE keeps the stored value for fields absent from the payload.
	const q = `
		UPDATE customers
		SET name        = COALESCE($2, name),
			postal_code = COALESCE($3, postal_code),
			phone       = COALESCE($4, phone)
		WHERE id = $1
		RETURNING ` + customerCols
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, id, u.Name, u.PostalCode, u.Phone).
		Scan(&c.ID, &c.Name, &c.RegisteredAt, &c.PostalCode, &c.Phone, &c.VideosCheckedOutCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
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
			WHERE customer_id = $1 AND returned_on_date IS NULL
		)`
	if err = tx.QueryRowContext(ctx, check, id).Scan(&open); err != nil {
		return err
	}
	if open {
		return ErrHasOpenRentals
	}

	// Closed rentals reference the customer; clear them so the row can go.
	if _, err = tx.ExecContext(ctx, `DELETE FROM rentals WHERE customer_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
