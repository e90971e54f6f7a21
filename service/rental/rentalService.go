package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sundbean/retro-video-store/model"
	rentalrepo "github.com/sundbean/retro-video-store/repository/rental"
	"github.com/sundbean/retro-video-store/util/query"
)

// RentalPeriod is how long a checkout lasts before the video is due back.
const RentalPeriod = 7 * 24 * time.Hour

// errors used by controllers

type ErrCode string

const (
	ErrVideoNotFound    ErrCode = "VIDEO_NOT_FOUND"
	ErrCustomerNotFound ErrCode = "CUSTOMER_NOT_FOUND"
	ErrNoInventory      ErrCode = "NO_INVENTORY"
	ErrNoMatchingRental ErrCode = "NO_MATCHING_RENTAL"
	ErrAlreadyCheckedIn ErrCode = "ALREADY_CHECKED_IN"
	ErrAlreadyOut       ErrCode = "ALREADY_CHECKED_OUT"
	ErrBadQuery         ErrCode = "BAD_QUERY"
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

// repository shapes re-exported for controllers
type (
	Info               = rentalrepo.Info
	CustomerRentalRow  = rentalrepo.CustomerRentalRow
	CustomerHistoryRow = rentalrepo.CustomerHistoryRow
	VideoRentalRow     = rentalrepo.VideoRentalRow
	VideoHistoryRow    = rentalrepo.VideoHistoryRow
	OverdueRow         = rentalrepo.OverdueRow
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

// CustomerLookup answers whether a customer exists.
type CustomerLookup interface {
	ByID(ctx context.Context, id int64) (*model.Customer, error)
}

// VideoLookup answers whether a video exists.
type VideoLookup interface {
	ByID(ctx context.Context, id int64) (*model.Video, error)
}

type Service interface {
	// CheckOut opens a rental due in RentalPeriod, takes one copy off the
	// shelf and bumps the customer's checkout count, all in one unit.
	CheckOut(ctx context.Context, customerID, videoID int64) (*Info, error)

	// CheckIn closes the open rental for the pair and returns the copy to
	// the shelf.
	CheckIn(ctx context.Context, customerID, videoID int64) (*Info, error)

	List(ctx context.Context, p query.Params) ([]Info, error)
	ListForCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerRentalRow, error)
	HistoryForCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerHistoryRow, error)
	ListForVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoRentalRow, error)
	HistoryForVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoHistoryRow, error)
	Overdue(ctx context.Context, p query.Params) ([]OverdueRow, error)
}

// ----- Service implementation -----

type service struct {
	r  Repo
	cl CustomerLookup
	vl VideoLookup
}

func New(r Repo, cl CustomerLookup, vl VideoLookup) Service {
	return &service{r: r, cl: cl, vl: vl}
}

func (s *service) CheckOut(ctx context.Context, customerID, videoID int64) (*Info, error) {
	due := time.Now().UTC().Add(RentalPeriod)
	info, err := s.r.CheckOut(ctx, customerID, videoID, due)
	if err != nil {
		return nil, mapErr(err)
	}
	return info, nil
}

func (s *service) CheckIn(ctx context.Context, customerID, videoID int64) (*Info, error) {
	info, err := s.r.CheckIn(ctx, customerID, videoID, time.Now().UTC())
	if err != nil {
		return nil, mapErr(err)
	}
	return info, nil
}

func (s *service) List(ctx context.Context, p query.Params) ([]Info, error) {
	out, err := s.r.List(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerRentalRow, error) {
	if err := s.customerExists(ctx, customerID); err != nil {
		return nil, err
	}
	out, err := s.r.ListByCustomer(ctx, customerID, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) HistoryForCustomer(ctx context.Context, customerID int64, p query.Params) ([]CustomerHistoryRow, error) {
	if err := s.customerExists(ctx, customerID); err != nil {
		return nil, err
	}
	out, err := s.r.HistoryByCustomer(ctx, customerID, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) ListForVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoRentalRow, error) {
	if err := s.videoExists(ctx, videoID); err != nil {
		return nil, err
	}
	out, err := s.r.ListByVideo(ctx, videoID, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) HistoryForVideo(ctx context.Context, videoID int64, p query.Params) ([]VideoHistoryRow, error) {
	if err := s.videoExists(ctx, videoID); err != nil {
		return nil, err
	}
	out, err := s.r.HistoryByVideo(ctx, videoID, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) Overdue(ctx context.Context, p query.Params) ([]OverdueRow, error) {
	out, err := s.r.Overdue(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *service) customerExists(ctx context.Context, id int64) error {
	if _, err := s.cl.ByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrCustomerNotFound)
		}
		return err
	}
	return nil
}

func (s *service) videoExists(ctx context.Context, id int64) error {
	if _, err := s.vl.ByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrVideoNotFound)
		}
		return err
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, rentalrepo.ErrVideoNotFound):
		return wrapErr(ErrVideoNotFound, err)
	case errors.Is(err, rentalrepo.ErrCustomerNotFound):
		return wrapErr(ErrCustomerNotFound, err)
	case errors.Is(err, rentalrepo.ErrNoInventory):
		return wrapErr(ErrNoInventory, err)
	case errors.Is(err, rentalrepo.ErrNoOpenRental):
		return wrapErr(ErrNoMatchingRental, err)
	case errors.Is(err, rentalrepo.ErrAlreadyReturned):
		return wrapErr(ErrAlreadyCheckedIn, err)
	case errors.Is(err, rentalrepo.ErrAlreadyOut):
		return wrapErr(ErrAlreadyOut, err)
	}
	var uf *query.UnknownFieldError
	if errors.As(err, &uf) {
		return wrapErr(ErrBadQuery, err)
	}
	return err
}
