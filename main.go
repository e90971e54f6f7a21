// Package main retro video store API.
//
// Tracks customers, videos and the rentals between them: CRUD for both
// entities plus check-out/check-in lifecycle transitions with inventory
// bookkeeping.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sundbean/retro-video-store/app/echoServer"
	customerctrl "github.com/sundbean/retro-video-store/app/echoServer/controller/customer"
	rentalctrl "github.com/sundbean/retro-video-store/app/echoServer/controller/rental"
	videoctrl "github.com/sundbean/retro-video-store/app/echoServer/controller/video"
	"github.com/sundbean/retro-video-store/app/echoServer/validation"
	"github.com/sundbean/retro-video-store/config"
	customerrepo "github.com/sundbean/retro-video-store/repository/customer"
	rentalrepo "github.com/sundbean/retro-video-store/repository/rental"
	videorepo "github.com/sundbean/retro-video-store/repository/video"
	customersvc "github.com/sundbean/retro-video-store/service/customer"
	rentalsvc "github.com/sundbean/retro-video-store/service/rental"
	videosvc "github.com/sundbean/retro-video-store/service/video"
	"github.com/sundbean/retro-video-store/util/database"
)

func main() {

	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	cr := customerrepo.New(db)
	vr := videorepo.New(db)
	rr := rentalrepo.New(db)

	// services
	cs := customersvc.New(cr)
	vs := videosvc.New(vr)
	rs := rentalsvc.New(rr, cr, vr)

	// controllers
	v := validator.New()
	customerC := &customerctrl.Controller{Svc: cs, Rental: rs, V: v, Log: log}
	videoC := &videoctrl.Controller{Svc: vs, Rental: rs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Customer: customerC,
		Video:    videoC,
		Rental:   rentalC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	log.Info("starting server", "addr", cfg.Server.Host+":"+port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(cfg.Server.Host + ":" + port))
}
