package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細に埋め込むSKUの凍結コピー。
// カタログ側の価格・属性が後で変わっても、ここは一切変わらない。
type SkuSnapshot struct {
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;column:snapshot_price" json:"price"`
	Attributes  AttributeList   `gorm:"type:json;column:snapshot_attributes" json:"attributes"`
	SpuName     string          `gorm:"type:varchar(255);not null;column:snapshot_spu_name" json:"spu_name"`
	SpuSubtitle string          `gorm:"type:varchar(255);column:snapshot_spu_subtitle" json:"spu_subtitle"`
	SpuImage    string          `gorm:"type:varchar(500);column:snapshot_spu_image" json:"spu_image"`
}

// 注文の1明細。sku_idは追跡用で、価格・属性の正はスナップショット側。
type OrderLine struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`
	SkuID   int64 `gorm:"not null;index" json:"sku_id"`

	Snapshot SkuSnapshot `gorm:"embedded" json:"snapshot"`

	Quantity   int64           `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
