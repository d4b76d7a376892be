package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type QRPreviewResponse struct {
	QRCodeURL string `json:"qr_code_url"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/checkout", h.submit)
	e.GET("/checkout/qr-preview", h.qrPreview)
}

func (h *CheckoutHandler) submit(c echo.Context) error {
	var form model.CheckoutForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result := h.uc.Submit(c.Request().Context(), form)
	return c.JSON(statusCodeFor(result), result)
}

func (h *CheckoutHandler) qrPreview(c echo.Context) error {
	return c.JSON(http.StatusOK, QRPreviewResponse{
		QRCodeURL: h.uc.PreviewQR(c.Request().Context()),
	})
}

// 結果をHTTPステータスへ写す
func statusCodeFor(r usecase.CheckoutResult) int {
	switch r.Status {
	case model.CheckoutStatusConfirmed:
		return http.StatusOK
	case model.CheckoutStatusStockRejected:
		return http.StatusConflict
	case model.CheckoutStatusSubmitFailed:
		switch r.FailureCode {
		case usecase.FailureSignInRequired:
			return http.StatusUnauthorized
		case usecase.FailureValidation:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}
