package customer

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	cs "github.com/sundbean/retro-video-store/service/customer"
	rs "github.com/sundbean/retro-video-store/service/rental"
	"github.com/sundbean/retro-video-store/util/httpx"
	"github.com/sundbean/retro-video-store/util/query"
)

type Controller struct {
	Svc    cs.Service
	Rental rs.Service
	V      *validator.Validate
	Log    *slog.Logger
}

// GET /customers
func (h *Controller) List(c echo.Context) error {
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Svc.List(c.Request().Context(), qp)
	if err != nil {
		if cs.Code(err) == cs.ErrBadQuery {
			return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
		}
		h.Log.Error("customer list", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /customers
func (h *Controller) Create(c echo.Context) error {
	var req CreateCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
	}

	id, err := h.Svc.Create(c.Request().Context(), req.Name, req.PostalCode, req.Phone)
	if err != nil {
		if cs.Code(err) == cs.ErrBadInput {
			return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid data"))
		}
		h.Log.Error("customer create", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /customers/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if cs.Code(err) == cs.ErrNotFound {
			return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
		}
		h.Log.Error("customer get", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, row)
}

// PUT /customers/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	}
	var req UpdateCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid or missing data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid or missing data"))
	}

	row, err := h.Svc.Update(c.Request().Context(), id, cs.Update{
		Name:       req.Name,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
	})
	if err != nil {
		if cs.Code(err) == cs.ErrNotFound {
			return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
		}
		h.Log.Error("customer update", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /customers/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	}
	deleted, err := h.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch cs.Code(err) {
		case cs.ErrNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
		case cs.ErrHasOpenRentals:
			return c.JSON(http.StatusBadRequest, httpx.Errors("Customer has videos checked out"))
		default:
			h.Log.Error("customer delete", "err", err)
			return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": deleted})
}

// GET /customers/:id/rentals
func (h *Controller) Rentals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	}
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Rental.ListForCustomer(c.Request().Context(), id, qp)
	if err != nil {
		return h.rentalViewErr(c, err, "customer rentals")
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /customers/:id/history
func (h *Controller) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	}
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Rental.HistoryForCustomer(c.Request().Context(), id, qp)
	if err != nil {
		return h.rentalViewErr(c, err, "customer history")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Controller) rentalViewErr(c echo.Context, err error, op string) error {
	switch rs.Code(err) {
	case rs.ErrCustomerNotFound:
		return c.JSON(http.StatusNotFound, httpx.Errors("Customer does not exist"))
	case rs.ErrBadQuery:
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
