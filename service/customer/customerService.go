package customersvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sundbean/retro-video-store/model"
	customerrepo "github.com/sundbean/retro-video-store/repository/customer"
	"github.com/sundbean/retro-video-store/util/query"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound       ErrCode = "CUSTOMER_NOT_FOUND"
	ErrHasOpenRentals ErrCode = "HAS_OPEN_RENTALS"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrBadQuery       ErrCode = "BAD_QUERY"
)

type codedError struct {
	code ErrCode
	err  error
}

func (e codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.err }

func makeErr(c ErrCode) error          { return codedError{code: c} }
func wrapErr(c ErrCode, e error) error { return codedError{code: c, err: e} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Update = customerrepo.Update

type Repo interface {
	List(ctx context.Context, p query.Params) ([]model.Customer, error)
	ByID(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, id int64, u Update) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	List(ctx context.Context, p query.Params) ([]model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, name, postalCode, phone string) (int64, error)
	Update(ctx context.Context, id int64, u Update) (*model.Customer, error)

	// Delete removes the customer and returns its id. Customers with open
	// rentals cannot be deleted.
	Delete(ctx context.Context, id int64) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, p query.Params) ([]model.Customer, error) {
	out, err := s.r.List(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, name, postalCode, phone string) (int64, error) {
	if name == "" || postalCode == "" || phone == "" {
		return 0, makeErr(ErrBadInput)
	}
	c := model.Customer{Name: name, PostalCode: postalCode, Phone: phone}
	if err := s.r.Create(ctx, &c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (s *service) Update(ctx context.Context, id int64, u Update) (*model.Customer, error) {
	c, err := s.r.Update(ctx, id, u)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id int64) (int64, error) {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, customerrepo.ErrHasOpenRentals) {
			return 0, wrapErr(ErrHasOpenRentals, err)
		}
		return 0, mapErr(err)
	}
	return id, nil
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	var uf *query.UnknownFieldError
	if errors.As(err, &uf) {
		return wrapErr(ErrBadQuery, err)
	}
	return err
}
