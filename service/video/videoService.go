package videosvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sundbean/retro-video-store/model"
	videorepo "github.com/sundbean/retro-video-store/repository/video"
	"github.com/sundbean/retro-video-store/util/query"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound       ErrCode = "VIDEO_NOT_FOUND"
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

type Update = videorepo.Update

type Repo interface {
	List(ctx context.Context, p query.Params) ([]model.Video, error)
	ByID(ctx context.Context, id int64) (*model.Video, error)
	Create(ctx context.Context, v *model.Video) error
	Update(ctx context.Context, id int64, u Update) (*model.Video, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	List(ctx context.Context, p query.Params) ([]model.Video, error)
	Get(ctx context.Context, id int64) (*model.Video, error)
	Create(ctx context.Context, title string, releaseDate time.Time, totalInventory int64) (int64, error)
	Update(ctx context.Context, id int64, u Update) (*model.Video, error)

	// Delete removes the video and returns its id. Videos with open rentals
	// cannot be deleted.
	Delete(ctx context.Context, id int64) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, p query.Params) ([]model.Video, error) {
	out, err := s.r.List(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Video, error) {
	v, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (s *service) Create(ctx context.Context, title string, releaseDate time.Time, totalInventory int64) (int64, error) {
	if title == "" || releaseDate.IsZero() || totalInventory < 0 {
		return 0, makeErr(ErrBadInput)
	}
	v := model.Video{Title: title, ReleaseDate: releaseDate, TotalInventory: totalInventory}
	if err := s.r.Create(ctx, &v); err != nil {
		return 0, err
	}
	return v.ID, nil
}

func (s *service) Update(ctx context.Context, id int64, u Update) (*model.Video, error) {
	if u.TotalInventory != nil && *u.TotalInventory < 0 {
		return nil, makeErr(ErrBadInput)
	}
	v, err := s.r.Update(ctx, id, u)
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (s *service) Delete(ctx context.Context, id int64) (int64, error) {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, videorepo.ErrHasOpenRentals) {
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
