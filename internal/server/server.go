package server

import (
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

// New はルート登録済みのechoを返す。
func New(
	cartH *handler.CartHandler,
	favH *handler.FavoritesHandler,
	checkoutH *handler.CheckoutHandler,
	orderH *handler.OrderHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cartH, favH, checkoutH, orderH)
	return e
}

func Start(
	addr string,
	cartH *handler.CartHandler,
	favH *handler.FavoritesHandler,
	checkoutH *handler.CheckoutHandler,
	orderH *handler.OrderHandler,
) error {
	e := New(cartH, favH, checkoutH, orderH)
	return e.Start(addr)
}
