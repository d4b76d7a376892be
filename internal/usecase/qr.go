package usecase

import (
	"fmt"
	"net/url"
	"strconv"
)

// 振込用QR画像のテンプレートエンドポイント。
// ここは文字列を組み立てるだけで、通信は一切しない（決済セッションではない）。
const qrImageBase = "https://img.vietqr.io/image"

// 振込先の設定
type QRConfig struct {
	BankID      string
	AccountNo   string
	AccountName string
}

// QRURL は振込用QR画像のURLを組み立てる純関数。
// accountNameとdescriptionは必ずURLエンコードする。
func QRURL(bankID string, accountNo string, accountName string, amount int64, description string) string {
	q := url.Values{}
	q.Set("amount", strconv.FormatInt(amount, 10))
	q.Set("addInfo", description)
	q.Set("accountName", accountName)

	return fmt.Sprintf("%s/%s-%s-compact2.png?%s", qrImageBase, bankID, accountNo, q.Encode())
}
