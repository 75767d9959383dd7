package model

import "time"

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//省・都道府県
	Province string `gorm:"type:varchar(100);not null" json:"province"`

	//市
	City string `gorm:"type:varchar(100);not null" json:"city"`

	//区・県
	County string `gorm:"type:varchar(100)" json:"county"`

	//町・村
	Town string `gorm:"type:varchar(100)" json:"town"`

	//番地・建物名など
	Detail string `gorm:"type:varchar(500);not null" json:"detail"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 注文に埋め込むための凍結コピーを作る
func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		ReceiverName:     a.Name,
		ReceiverPhone:    a.Phone,
		ReceiverProvince: a.Province,
		ReceiverCity:     a.City,
		ReceiverCounty:   a.County,
		ReceiverTown:     a.Town,
		ReceiverDetail:   a.Detail,
		ReceiverPostal:   a.PostalCode,
	}
}
