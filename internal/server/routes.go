package server

import (
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cartH *handler.CartHandler,
	favH *handler.FavoritesHandler,
	checkoutH *handler.CheckoutHandler,
	orderH *handler.OrderHandler,
) {
	cartH.RegisterRoutes(e)
	favH.RegisterRoutes(e)
	checkoutH.RegisterRoutes(e)
	orderH.RegisterRoutes(e)
}
