package video

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	rs "github.com/sundbean/retro-video-store/service/rental"
	vs "github.com/sundbean/retro-video-store/service/video"
	"github.com/sundbean/retro-video-store/util/httpx"
	"github.com/sundbean/retro-video-store/util/query"
)

type Controller struct {
	Svc    vs.Service
	Rental rs.Service
	V      *validator.Validate
	Log    *slog.Logger
}

// GET /videos
func (h *Controller) List(c echo.Context) error {
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Svc.List(c.Request().Context(), qp)
	if err != nil {
		if vs.Code(err) == vs.ErrBadQuery {
			return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
		}
		h.Log.Error("video list", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /videos
func (h *Controller) Create(c echo.Context) error {
	var req CreateVideoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Missing or invalid data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Missing or invalid data"))
	}

	id, err := h.Svc.Create(c.Request().Context(), req.Title, req.ReleaseDate, *req.TotalInventory)
	if err != nil {
		if vs.Code(err) == vs.ErrBadInput {
			return c.JSON(http.StatusBadRequest, httpx.Errors("Missing or invalid data"))
		}
		h.Log.Error("video create", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GET /videos/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if vs.Code(err) == vs.ErrNotFound {
			return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
		}
		h.Log.Error("video get", "err", err)
		return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
	}
	return c.JSON(http.StatusOK, row)
}

// PUT /videos/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
	}
	var req UpdateVideoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid or missing data"))
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid or missing data"))
	}

	row, err := h.Svc.Update(c.Request().Context(), id, vs.Update{
		Title:          req.Title,
		ReleaseDate:    req.ReleaseDate,
		TotalInventory: req.TotalInventory,
	})
	if err != nil {
		switch vs.Code(err) {
		case vs.ErrNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
		case vs.ErrBadInput:
			return c.JSON(http.StatusBadRequest, httpx.Errors("Invalid or missing data"))
		default:
			h.Log.Error("video update", "err", err)
			return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
		}
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /videos/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
	}
	deleted, err := h.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		switch vs.Code(err) {
		case vs.ErrNotFound:
			return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
		case vs.ErrHasOpenRentals:
			return c.JSON(http.StatusBadRequest, httpx.Errors("Video is currently checked out"))
		default:
			h.Log.Error("video delete", "err", err)
			return c.JSON(http.StatusInternalServerError, httpx.Errors("Internal error"))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": deleted})
}

// GET /videos/:id/rentals
func (h *Controller) Rentals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
	}
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Rental.ListForVideo(c.Request().Context(), id, qp)
	if err != nil {
		return h.rentalViewErr(c, err, "video rentals")
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /videos/:id/history
func (h *Controller) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
	}
	qp, err := query.Parse(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpx.Errors(err.Error()))
	}
	rows, err := h.Rental.HistoryForVideo(c.Request().Context(), id, qp)
	if err != nil {
		return h.rentalViewErr(c, err, "video history")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Controller) rentalViewErr(c echo.Context, err error, op string) error {
	switch rs.Code(err) {
	case rs.ErrVideoNotFound:
		return c.JSON(http.StatusNotFound, httpx.Errors("Video does not exist"))
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
