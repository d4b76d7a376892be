package model

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodBankTransfer
}

// 注文明細（注文APIが返す確定済みの形。単価は確定時点の値）
type OrderItem struct {
	VariantID int64 `json:"variantId"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

// 注文は外部の注文APIが所有する。ここでは読み取り専用の参照。
// JSONタグはリモートAPIのワイヤ形式（camelCase）に合わせる。
type Order struct {
	ID            string        `json:"id"`
	Items         []OrderItem   `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	ShippingFee   int64         `json:"shippingFee"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	QRCodeURL     string        `json:"qrCodeUrl,omitempty"`
	Status        string        `json:"status"`
}
