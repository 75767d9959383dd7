package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusUnpaid      OrderStatus = "UNPAID"
	OrderStatusToBeShipped OrderStatus = "TO_BE_SHIPPED"
	OrderStatusShipped     OrderStatus = "SHIPPED"
	OrderStatusCompleted   OrderStatus = "COMPLETED"
	OrderStatusCanceled    OrderStatus = "CANCELED"
)

type PayStatus string

const (
	PayStatusUnpaid   PayStatus = "UNPAID"
	PayStatusPaid     PayStatus = "PAID"
	PayStatusRefunded PayStatus = "REFUNDED"
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusShipped   DeliveryStatus = "SHIPPED"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

// 注文作成時点の配送先の凍結コピー。Orderに埋め込みで保存する（外部キーではない）。
type AddressSnapshot struct {
	ReceiverName     string `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone    string `gorm:"type:varchar(30)" json:"receiver_phone"`
	ReceiverProvince string `gorm:"type:varchar(100)" json:"receiver_province"`
	ReceiverCity     string `gorm:"type:varchar(100)" json:"receiver_city"`
	ReceiverCounty   string `gorm:"type:varchar(100)" json:"receiver_county"`
	ReceiverTown     string `gorm:"type:varchar(100)" json:"receiver_town"`
	ReceiverDetail   string `gorm:"type:varchar(500)" json:"receiver_detail"`
	ReceiverPostal   string `gorm:"type:varchar(20)" json:"receiver_postal"`
}

// 注文ヘッダ。金額4種とスナップショットは作成後に再計算・変更しない。
// ステータス3軸とタイムスタンプだけが状態遷移で更新される。
type Order struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderSn string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_sn"`
	UserID  int64  `gorm:"not null;index" json:"user_id"`

	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	FreightAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"freight_amount"`
	PayAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"pay_amount"`

	PayType *string `gorm:"type:varchar(30)" json:"pay_type"`

	Status         OrderStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	PayStatus      PayStatus      `gorm:"type:varchar(20);not null" json:"pay_status"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(20);not null" json:"delivery_status"`

	Address AddressSnapshot `gorm:"embedded" json:"address"`
	Remark  string          `gorm:"type:varchar(500)" json:"remark"`

	PaidAt     *time.Time `json:"paid_at"`
	ShippedAt  *time.Time `json:"shipped_at"`
	ReceivedAt *time.Time `json:"received_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
