package server

import (
	"mall/internal/config"
	"mall/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Start はechoを組み立てて起動する
func Start(
	addr string,
	cfg config.Config,
	authH *handler.AuthHandler,
	addressH *handler.AddressHandler,
	cartH *handler.CartHandler,
	orderH *handler.OrderHandler,
	adminOrderH *handler.AdminOrderHandler,
) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	authH.RegisterRoutes(e)
	addressH.RegisterRoutes(e, cfg)
	cartH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
	adminOrderH.RegisterRoutes(e, cfg)

	return e.Start(addr)
}
