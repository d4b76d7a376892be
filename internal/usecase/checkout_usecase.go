package usecase

import (
	"context"
	"strings"

	"storefront/internal/client"
	"storefront/internal/domain/model"
)

// 注文APIへの送信の約束（実装は internal/client）
type OrderGateway interface {
	SubmitOrder(ctx context.Context, token string, in client.OrderRequest) (model.Order, error)
}

// セッション資格情報の読み出しの約束（実装は internal/session）
type SessionReader interface {
	Current(ctx context.Context) (model.Session, bool)
}

// 送料は固定で0
const shippingFee int64 = 0

// ローカル生成QRの説明文（プレースホルダ）
const qrDescription = "Thanh toan don hang"

// 確定失敗の区分
const (
	FailureSignInRequired = "SIGN_IN_REQUIRED"
	FailureValidation     = "VALIDATION"
	FailureAPI            = "API"
)

// 在庫超過の明細（確定時の再検証で見つかったもの）
type StockViolation struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// 確定フローの結果。Statusが状態機械の到達点。
type CheckoutResult struct {
	Status          model.CheckoutStatus `json:"status"`
	FailureCode     string               `json:"failure_code,omitempty"`
	Reason          string               `json:"reason,omitempty"`
	StockViolations []StockViolation     `json:"stock_violations,omitempty"`
	OrderID         string               `json:"order_id,omitempty"`
	PaymentMethod   model.PaymentMethod  `json:"payment_method,omitempty"`
	Total           int64                `json:"total,omitempty"`
	QRCodeURL       string               `json:"qr_code_url,omitempty"`
}

// CheckoutUsecase は確定フローの状態機械です。
// IDLE -> VALIDATING -> (STOCK_REJECTED | SUBMITTING) -> (SUBMIT_FAILED | CONFIRMED)
// SUBMIT_FAILED ではカートを一切触らない（そのまま再送できる）。
type CheckoutUsecase struct {
	cart     *CartUsecase
	sessions SessionReader
	orders   OrderGateway
	qr       QRConfig
}

// DI
func NewCheckoutUsecase(cart *CartUsecase, sessions SessionReader, orders OrderGateway, qr QRConfig) *CheckoutUsecase {
	return &CheckoutUsecase{
		cart:     cart,
		sessions: sessions,
		orders:   orders,
		qr:       qr,
	}
}

// Submit は確定フローを最後まで実行する。
// すべての結果はCheckoutResultとして返す（通信エラーもここに正規化される）。
func (u *CheckoutUsecase) Submit(ctx context.Context, form model.CheckoutForm) CheckoutResult {
	// 資格情報が無い・期限切れは、汎用エラーではなく「要ログイン」で返す。通信はしない。
	sess, ok := u.sessions.Current(ctx)
	if !ok {
		return CheckoutResult{
			Status:      model.CheckoutStatusSubmitFailed,
			FailureCode: FailureSignInRequired,
			Reason:      "sign in required",
		}
	}

	// VALIDATING: 必須項目とカート
	if missing := missingFields(form); len(missing) > 0 {
		return CheckoutResult{
			Status:      model.CheckoutStatusSubmitFailed,
			FailureCode: FailureValidation,
			Reason:      "missing required fields: " + strings.Join(missing, ", "),
		}
	}
	if !form.PaymentMethod.Valid() {
		return CheckoutResult{
			Status:      model.CheckoutStatusSubmitFailed,
			FailureCode: FailureValidation,
			Reason:      "invalid payment method",
		}
	}

	lines := u.cart.Snapshot(ctx)
	if len(lines) == 0 {
		return CheckoutResult{
			Status:      model.CheckoutStatusSubmitFailed,
			FailureCode: FailureValidation,
			Reason:      "cart is empty",
		}
	}

	// 在庫の再検証（唯一の検証点）。
	// MaxQuantityは追加時点の値なので古い可能性がある。ここはベストエフォートで、
	// 最終的な正はリモートの注文API側にある。
	// 超過は1件ずつではなく、まとめて1回で返す。
	var violations []StockViolation
	for _, l := range lines {
		if l.Quantity > l.MaxQuantity {
			violations = append(violations, StockViolation{
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Name:      l.Name,
				Requested: l.Quantity,
				Available: l.MaxQuantity,
			})
		}
	}
	if len(violations) > 0 {
		return CheckoutResult{
			Status:          model.CheckoutStatusStockRejected,
			StockViolations: violations,
		}
	}

	// SUBMITTING
	items := make([]client.OrderLine, 0, len(lines))
	var subtotal int64
	for _, l := range lines {
		items = append(items, client.OrderLine{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			Price:     l.EffectivePrice(),
		})
		subtotal += l.Subtotal()
	}
	total := subtotal + shippingFee

	order, err := u.orders.SubmitOrder(ctx, sess.AccessToken, client.OrderRequest{
		ShippingName:    strings.TrimSpace(form.Name),
		ShippingPhone:   strings.TrimSpace(form.Phone),
		ShippingAddress: strings.TrimSpace(form.Address),
		Note:            form.Note,
		PaymentMethod:   form.PaymentMethod,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		Total:           total,
	})
	if err != nil {
		// カートはそのまま。結果はIDLE相当に戻り、再送できる。
		return CheckoutResult{
			Status:      model.CheckoutStatusSubmitFailed,
			FailureCode: FailureAPI,
			Reason:      err.Error(),
		}
	}

	// CONFIRMED: ここで初めてカートを空にする（cart-changedが0件で飛ぶ）
	u.cart.Clear(ctx)

	result := CheckoutResult{
		Status:        model.CheckoutStatusConfirmed,
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		Total:         total,
	}

	// QRは振込のときだけ。APIが返したURLが最優先、無ければローカルで組み立てる。
	if form.PaymentMethod == model.PaymentMethodBankTransfer {
		if order.QRCodeURL != "" {
			result.QRCodeURL = order.QRCodeURL
		} else {
			result.QRCodeURL = QRURL(u.qr.BankID, u.qr.AccountNo, u.qr.AccountName, total, qrDescription)
		}
	}

	return result
}

// PreviewQR はチェックアウト画面のプレビュー用QR（現在のカート合計で組み立てる）
func (u *CheckoutUsecase) PreviewQR(ctx context.Context) string {
	return QRURL(u.qr.BankID, u.qr.AccountNo, u.qr.AccountName, u.cart.Total(ctx), qrDescription)
}

func missingFields(form model.CheckoutForm) []string {
	var missing []string
	if strings.TrimSpace(form.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(form.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(form.Address) == "" {
		missing = append(missing, "address")
	}
	return missing
}
