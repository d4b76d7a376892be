package handler

import (
	"net/http"

	"storefront/internal/client"
	"storefront/internal/session"

	"github.com/labstack/echo/v4"
)

// /ordersのHTTP（リモートの注文APIをそのまま引く読み取り専用ビュー）
type OrderHandler struct {
	orders   *client.OrderClient
	sessions *session.Manager
}

// DI
func NewOrderHandler(orders *client.OrderClient, sessions *session.Manager) *OrderHandler {
	return &OrderHandler{orders: orders, sessions: sessions}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/orders/:id", h.detail)
}

func (h *OrderHandler) detail(c echo.Context) error {
	ctx := c.Request().Context()

	sess, ok := h.sessions.Current(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "sign in required"})
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	order, err := h.orders.GetOrder(ctx, sess.AccessToken, orderID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, order)
}
