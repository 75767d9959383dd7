package model

import "time"

// カートの1行。(user_id, sku_id) はユニークで、同一SKUの追加は数量加算になる。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uniq_cart_user_sku" json:"user_id"`
	SkuID     int64     `gorm:"not null;uniqueIndex:uniq_cart_user_sku" json:"sku_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Selected  bool      `gorm:"not null;default:true" json:"selected"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
