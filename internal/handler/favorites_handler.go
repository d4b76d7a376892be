package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /favoritesのHTTP
type FavoritesHandler struct {
	uc *usecase.FavoritesUsecase
}

// DI
func NewFavoritesHandler(uc *usecase.FavoritesUsecase) *FavoritesHandler {
	return &FavoritesHandler{uc: uc}
}

type ToggleFavoriteRequest struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price"`
}

type ToggleFavoriteResponse struct {
	Added bool  `json:"added"`
	Count int64 `json:"count"`
}

func (h *FavoritesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/favorites", h.list)
	e.POST("/favorites/toggle", h.toggle)
	e.DELETE("/favorites/:productId", h.remove)
}

func (h *FavoritesHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.List(c.Request().Context()))
}

func (h *FavoritesHandler) toggle(c echo.Context) error {
	var req ToggleFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ctx := c.Request().Context()

	added, err := h.uc.Toggle(ctx, usecase.FavoriteInput{
		ProductID:     req.ProductID,
		Name:          req.Name,
		Image:         req.Image,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ToggleFavoriteResponse{
		Added: added,
		Count: h.uc.Count(ctx),
	})
}

func (h *FavoritesHandler) remove(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Remove(c.Request().Context(), productID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.uc.List(c.Request().Context()))
}
