package model

import "time"

// お気に入り
// ProductID が一意キー。数量の概念は無い。
type FavoriteItem struct {
	ProductID     int64     `json:"product_id"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}
