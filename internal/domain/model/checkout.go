package model

// チェックアウトの状態。IDLE以外は確定フロー中の状態。
// SUBMIT_FAILED はカートを保持したまま再送可能、CONFIRMED のみ終端。
type CheckoutStatus string

const (
	CheckoutStatusIdle          CheckoutStatus = "IDLE"
	CheckoutStatusValidating    CheckoutStatus = "VALIDATING"
	CheckoutStatusStockRejected CheckoutStatus = "STOCK_REJECTED"
	CheckoutStatusSubmitting    CheckoutStatus = "SUBMITTING"
	CheckoutStatusSubmitFailed  CheckoutStatus = "SUBMIT_FAILED"
	CheckoutStatusConfirmed     CheckoutStatus = "CONFIRMED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed
}

func (s CheckoutStatus) String() string {
	return string(s)
}

// チェックアウト画面の入力。画面の寿命の間だけ存在し、永続化しない。
type CheckoutForm struct {
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Note          string        `json:"note"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}
