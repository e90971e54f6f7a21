package rental

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	rs "github.com/sundbean/retro-video-store/service/rental"
	"github.com/sundbean/retro-video-store/util/query"
)

type svcMock struct {
	checkOutFn func(ctx context.Context, customerID, videoID int64) (*rs.Info, error)
	checkInFn  func(ctx context.Context, customerID, videoID int64) (*rs.Info, error)
	listFn     func(ctx context.Context, p query.Params) ([]rs.Info, error)
	overdueFn  func(ctx context.Context, p query.Params) ([]rs.OverdueRow, error)
}

var _ rs.Service = (*svcMock)(nil)

func (m *svcMock) CheckOut(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
	return m.checkOutFn(ctx, customerID, videoID)
}
func (m *svcMock) CheckIn(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
	return m.checkInFn(ctx, customerID, videoID)
}
func (m *svcMock) List(ctx context.Context, p query.Params) ([]rs.Info, error) {
	return m.listFn(ctx, p)
}
func (m *svcMock) ListForCustomer(ctx context.Context, customerID int64, p query.Params) ([]rs.CustomerRentalRow, error) {
	return nil, nil
}
func (m *svcMock) HistoryForCustomer(ctx context.Context, customerID int64, p query.Params) ([]rs.CustomerHistoryRow, error) {
	return nil, nil
}
func (m *svcMock) ListForVideo(ctx context.Context, videoID int64, p query.Params) ([]rs.VideoRentalRow, error) {
	return nil, nil
}
func (m *svcMock) HistoryForVideo(ctx context.Context, videoID int64, p query.Params) ([]rs.VideoHistoryRow, error) {
	return nil, nil
}
func (m *svcMock) Overdue(ctx context.Context, p query.Params) ([]rs.OverdueRow, error) {
	return m.overdueFn(ctx, p)
}

// codeErr mimics the service's coded errors from outside the package.
type codeErr struct {
	code rs.ErrCode
	msg  string
}

func (e codeErr) Error() string    { return e.msg }
func (e codeErr) Code() rs.ErrCode { return e.code }

func newController(svc rs.Service) *Controller {
	return &Controller{
		Svc: svc,
		V:   validator.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func errorsOf(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors
}

func TestCheckOut_Success(t *testing.T) {
	m := &svcMock{
		checkOutFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
			require.Equal(t, int64(1), customerID)
			require.Equal(t, int64(2), videoID)
			return &rs.Info{ID: 5, CustomerID: 1, VideoID: 2, VideosCheckedOutCount: 1, AvailableInventory: 1}, nil
		},
	}
	rec := doJSON(t, newController(m).CheckOut, http.MethodPost, "/rentals/check-out",
		`{"customer_id":1,"video_id":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var info rs.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, int64(5), info.ID)
	require.Equal(t, int64(1), info.VideosCheckedOutCount)
}

func TestCheckOut_NoInventory(t *testing.T) {
	m := &svcMock{
		checkOutFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
			return nil, codeErr{rs.ErrNoInventory, "no available inventory"}
		},
	}
	rec := doJSON(t, newController(m).CheckOut, http.MethodPost, "/rentals/check-out",
		`{"customer_id":3,"video_id":2}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"No available inventory for that title"}, errorsOf(t, rec))
}

func TestCheckOut_MissingEntities(t *testing.T) {
	cases := []struct {
		err     error
		wantMsg string
	}{
		{codeErr{rs.ErrVideoNotFound, "video not found"}, "Video does not exist"},
		{codeErr{rs.ErrCustomerNotFound, "customer not found"}, "Customer does not exist"},
	}
	for _, tc := range cases {
		m := &svcMock{
			checkOutFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
				return nil, tc.err
			},
		}
		rec := doJSON(t, newController(m).CheckOut, http.MethodPost, "/rentals/check-out",
			`{"customer_id":1,"video_id":2}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, []string{tc.wantMsg}, errorsOf(t, rec))
	}
}

func TestCheckOut_InvalidBody(t *testing.T) {
	rec := doJSON(t, newController(&svcMock{}).CheckOut, http.MethodPost, "/rentals/check-out",
		`{"customer_id":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"Invalid data"}, errorsOf(t, rec))
}

func TestCheckIn_NoMatchingRecord(t *testing.T) {
	m := &svcMock{
		checkInFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
			return nil, codeErr{rs.ErrNoMatchingRental, "no open rental"}
		},
	}
	rec := doJSON(t, newController(m).CheckIn, http.MethodPost, "/rentals/check-in",
		`{"customer_id":1,"video_id":2}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"No matching record"}, errorsOf(t, rec))
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	m := &svcMock{
		checkInFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
			return nil, codeErr{rs.ErrAlreadyCheckedIn, "rental already checked in"}
		},
	}
	rec := doJSON(t, newController(m).CheckIn, http.MethodPost, "/rentals/check-in",
		`{"customer_id":1,"video_id":2}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"Rental has already been checked in"}, errorsOf(t, rec))
}

func TestCheckIn_ResponseOmitsDueDate(t *testing.T) {
	m := &svcMock{
		checkInFn: func(ctx context.Context, customerID, videoID int64) (*rs.Info, error) {
			return &rs.Info{ID: 5, CustomerID: 1, VideoID: 2, VideosCheckedOutCount: 0, AvailableInventory: 2}, nil
		},
	}
	rec := doJSON(t, newController(m).CheckIn, http.MethodPost, "/rentals/check-in",
		`{"customer_id":1,"video_id":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "customer_id")
	require.Contains(t, raw, "available_inventory")
	require.NotContains(t, raw, "due_date")
}

func TestList_BadPageSize(t *testing.T) {
	rec := doJSON(t, newController(&svcMock{}).List, http.MethodGet, "/rentals?n=zero", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, errorsOf(t, rec))
}
