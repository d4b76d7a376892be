package model

import "time"

// カートの明細
// 表示用データと価格は「追加時点」のスナップショットを必ず保存。
// MaxQuantity も追加時点の在庫数であり、以降は再取得しない（確定時に再検証する）。
type CartLine struct {
	ProductID     int64     `json:"product_id"`
	VariantID     int64     `json:"variant_id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Color         string    `json:"color"`
	Size          string    `json:"size"`
	Image         string    `json:"image"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	Quantity      int64     `json:"quantity"`
	MaxQuantity   int64     `json:"max_quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// (ProductID, VariantID) がカート内の一意キー
func (l CartLine) SameUnit(productID int64, variantID int64) bool {
	return l.ProductID == productID && l.VariantID == variantID
}

// 割引価格があり、かつ定価より安い場合のみ割引価格を使う
func (l CartLine) EffectivePrice() int64 {
	if l.DiscountPrice != nil && *l.DiscountPrice < l.Price {
		return *l.DiscountPrice
	}
	return l.Price
}

// 明細の小計（数量 × 有効単価）
func (l CartLine) Subtotal() int64 {
	return l.Quantity * l.EffectivePrice()
}
