package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SPU（商品の概念単位）。表示用の情報だけ持つ。
type Spu struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Subtitle  string    `gorm:"type:varchar(255)" json:"subtitle"`
	MainImage string    `gorm:"type:varchar(500)" json:"main_image"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// SKU（購入可能な具体バリエーション）。価格と属性を持つ。
type Sku struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SpuID      int64           `gorm:"not null;index" json:"spu_id"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Attributes AttributeList   `gorm:"type:json" json:"attributes"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// SKU属性の1組（例: color=red）
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// JSONカラムとして保存する属性リスト。
// 形を固定した値型にして、任意形のblobを許さない。
type AttributeList []Attribute

func (a AttributeList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *AttributeList) Scan(src interface{}) error {
	if src == nil {
		*a = AttributeList{}
		return nil
	}

	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("attribute list: unsupported scan type")
	}

	if len(b) == 0 {
		*a = AttributeList{}
		return nil
	}
	return json.Unmarshal(b, a)
}

// SKUに親SPUの表示情報を結合した読み取り結果。
// カタログは本サブシステムからは読み取り専用。
type SkuDetail struct {
	SkuID       int64           `json:"sku_id"`
	SpuID       int64           `json:"spu_id"`
	Price       decimal.Decimal `json:"price"`
	Attributes  AttributeList   `json:"attributes"`
	SpuName     string          `json:"spu_name"`
	SpuSubtitle string          `json:"spu_subtitle"`
	SpuImage    string          `json:"spu_image"`
}
