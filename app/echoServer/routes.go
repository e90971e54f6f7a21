package echoServer

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sundbean/retro-video-store/app/echoServer/controller/customer"
	"github.com/sundbean/retro-video-store/app/echoServer/controller/rental"
	"github.com/sundbean/retro-video-store/app/echoServer/controller/video"
)

type C struct {
	Customer *customer.Controller
	Video    *video.Controller
	Rental   *rental.Controller
}

func Register(e *echo.Echo, c C) {
	// Customers
	e.GET("/customers", c.Customer.List)
	e.POST("/customers", c.Customer.Create)
	e.GET("/customers/:id", c.Customer.Get)
	e.PUT("/customers/:id", c.Customer.Update)
	e.DELETE("/customers/:id", c.Customer.Delete)
	e.GET("/customers/:id/rentals", c.Customer.Rentals)
	e.GET("/customers/:id/history", c.Customer.History)

	// Videos
	e.GET("/videos", c.Video.List)
	e.POST("/videos", c.Video.Create)
	e.GET("/videos/:id", c.Video.Get)
	e.PUT("/videos/:id", c.Video.Update)
	e.DELETE("/videos/:id", c.Video.Delete)
	e.GET("/videos/:id/rentals", c.Video.Rentals)
	e.GET("/videos/:id/history", c.Video.History)

	// Rentals
	e.GET("/rentals", c.Rental.List)
	e.GET("/rentals/overdue", c.Rental.Overdue)
	e.POST("/rentals/check-out", c.Rental.CheckOut)
	e.POST("/rentals/check-in", c.Rental.CheckIn)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
