package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	ProductID     int64  `json:"product_id"`
	VariantID     int64  `json:"variant_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Color         string `json:"color"`
	Size          string `json:"size"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price"`
	MaxQuantity   int64  `json:"max_quantity"`
	Quantity      int64  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Delta int64 `json:"delta"`
}

// 数量は生の文字列のまま受け取る（空・非数値は変更なしで返す約束）
type SetQuantityRequest struct {
	Quantity string `json:"quantity"`
}

// /cart, /cart/items を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cart", h.getCart)
	e.DELETE("/cart", h.clearCart)
	e.POST("/cart/items", h.addItem)
	e.PATCH("/cart/items/:index", h.updateQuantity)
	e.PUT("/cart/items/:index/quantity", h.setQuantity)
	e.DELETE("/cart/items/:index", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.View(c.Request().Context()))
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), usecase.AddItemInput{
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Name:          req.Name,
		SKU:           req.SKU,
		Color:         req.Color,
		Size:          req.Size,
		Image:         req.Image,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		MaxQuantity:   req.MaxQuantity,
		Quantity:      req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	index, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid index"})
	}

	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), index, req.Delta)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	index, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid index"})
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), index, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	index, err := parseIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid index"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), index)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	h.uc.Clear(c.Request().Context())
	return c.JSON(http.StatusOK, h.uc.View(c.Request().Context()))
}

func parseIndex(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("index"))
}
