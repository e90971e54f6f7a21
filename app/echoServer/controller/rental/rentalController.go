package rental

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	rs "github.com/sundbean/retro-video-store/service/rental"
	"github.com/sundbean/retro-video-store/util/httpx"
	"github.com/sundbean/retro-video-store/util/query"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /rentals
func (h *Controller) List(c echo.Context) error {
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Svc.List(c.Request().Context(), qp)
	if err != nil {
		if rs.Code(err) == rs.ErrBadQuery {
			return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
		}
		h.Log.Error("rental list", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /rentals/overdue
func (h *Controller) Overdue(c echo.Context) error {
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Svc.Overdue(c.Request().Context(), qp)
	if err != nil {
		if rs.Code(err) == rs.ErrBadQuery {
			return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
		}
		h.Log.Error("rental overdue", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /rentals/check-out
func (h *Controller) CheckOut(c echo.Context) error {
	var req CheckOutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}

	info, err := h.Svc.CheckOut(c.Request().Context(), req.CustomerID, req.VideoID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrVideoNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
		case rs.ErrCustomerNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
		case rs.ErrNoInventory:
			return c.JSON(http.StatusBadRequest, httpx.Errors("No available inventory for that title"))
		case rs.ErrAlreadyOut:
			return c.JSON(http.StatusBadRequest, httpx.Errors("Customer already has that video checked out"))
		default:
			h.Log.Error("rental check-out", "err", err)
			return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
		}
	}
	return c.JSON(http.StatusOK, info)
}

// POST /rentals/check-in
func (h *Controller) CheckIn(c echo.Context) error {
	var req CheckInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}

	info, err := h.Svc.CheckIn(c.Request().Context(), req.CustomerID, req.VideoID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrCustomerNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
		case rs.ErrVideoNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
		case rs.ErrNoMatchingRental:
			return c.JSON(http.StatusBadRequest, httpx.Errors("No matching record"))
		case rs.ErrAlreadyCheckedIn:
			return c.JSON(http.StatusBadRequest, httpx.Errors("Rental has already been checked in"))
		default:
			h.Log.Error("rental check-in", "err", err)
			return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
		}
	}
	return c.JSON(http.StatusOK, CheckInResp{
		ID:                    info.ID,
		CustomerID:            info.CustomerID,
		VideoID:               info.VideoID,
		VideosCheckedOutCount: info.VideosCheckedOutCount,
		AvailableInventory:    info.AvailableInventory,
	})
}
