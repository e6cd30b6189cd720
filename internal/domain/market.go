package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market price units.
const (
	MarketUnitKg     = "kg"
	MarketUnitPiece  = "piece"
	MarketUnitBundle = "bundle"
	MarketUnitLiter  = "liter"
	MarketUnitTon    = "ton"
	MarketUnitBox    = "box"
)

// MarketProduct is an agricultural product traded at local markets
// (crops, livestock, produce). Distinct from ChemicalProduct, which is
// a packaged agro-chemical.
type MarketProduct struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;index" json:"name" form:"name"`
	Category    string    `gorm:"size:100;index" json:"category" form:"category"`
	Description string    `gorm:"type:text" json:"description" form:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (MarketProduct) TableName() string {
	return "market_product"
}

// Market is a physical marketplace.
type Market struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:150;index" json:"name" form:"name"`
	Location    string    `gorm:"size:200" json:"location" form:"location"`
	Description string    `gorm:"type:text" json:"description" form:"description"`
	ContactInfo string    `gorm:"size:200" json:"contact_info" form:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Market) TableName() string {
	return "market_market"
}

// MarketPrice records the price of a product at a market on a date.
// One observation per (product, market, date).
type MarketPrice struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"index;uniqueIndex:idx_market_obs;not null" json:"product_id" form:"product_id"`
	MarketID  int64 `gorm:"index;uniqueIndex:idx_market_obs;not null" json:"market_id" form:"market_id"`

	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price" form:"price"`
	Unit         string          `gorm:"size:20;default:'kg'" json:"unit" form:"unit"`
	DateRecorded time.Time       `gorm:"index;uniqueIndex:idx_market_obs" json:"date_recorded" form:"date_recorded"`
	Notes        string          `gorm:"type:text" json:"notes" form:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *MarketProduct `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Market  *Market        `gorm:"foreignKey:MarketID;constraint:OnDelete:CASCADE" json:"market,omitempty"`
}

func (MarketPrice) TableName() string {
	return "market_price"
}
