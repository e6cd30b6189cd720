package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package units accepted for chemical products.
const (
	UnitKg     = "kg"
	UnitLiter  = "liter"
	UnitGram   = "gram"
	UnitMl     = "ml"
	UnitBag    = "bag"
	UnitBottle = "bottle"
	UnitPacket = "packet"
)

// Formulation is the explicit liquid/solid marker on a product. Legacy
// rows may carry an empty value, in which case callers fall back to the
// concentration heuristic.
const (
	FormulationLiquid = "liquid"
	FormulationSolid  = "solid"
)

// ChemicalCategory groups agricultural chemicals (fertilizer, pesticide...).
type ChemicalCategory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;index" json:"name" form:"name"`
	CategoryType string    `gorm:"size:20;index" json:"category_type" form:"category_type"`
	Description  string    `gorm:"type:text" json:"description" form:"description"`
	Icon         string    `gorm:"size:50" json:"icon" form:"icon"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ChemicalCategory) TableName() string {
	return "supplies_category"
}

// ChemicalProduct is an agricultural chemical product as packaged and sold.
type ChemicalProduct struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string `gorm:"size:200;index;uniqueIndex:idx_product_pkg" json:"name" form:"name"`
	CategoryID       int64  `gorm:"index" json:"category_id" form:"category_id"`
	Brand            string `gorm:"size:100;uniqueIndex:idx_product_pkg" json:"brand" form:"brand"`
	ActiveIngredient string `gorm:"size:200" json:"active_ingredient" form:"active_ingredient"`
	Concentration    string `gorm:"size:50" json:"concentration" form:"concentration"` // e.g. "20% EC", "80% WP"
	// Formulation is set from the classifier at write time; empty for
	// rows created before the column existed.
	Formulation string `gorm:"size:10;index" json:"formulation"`

	Description       string `gorm:"type:text" json:"description" form:"description"`
	UsageInstructions string `gorm:"type:text" json:"usage_instructions" form:"usage_instructions"`
	Dosage            string `gorm:"size:200" json:"dosage" form:"dosage"`
	ApplicationMethod string `gorm:"size:20" json:"application_method" form:"application_method"` // foliar|soil|seed|drip|spray

	PackageSize decimal.Decimal `gorm:"type:decimal(10,2);uniqueIndex:idx_product_pkg" json:"package_size" form:"package_size"`
	PackageUnit string          `gorm:"size:20;uniqueIndex:idx_product_pkg" json:"package_unit" form:"package_unit"`

	SafetyWarnings     string `gorm:"type:text" json:"safety_warnings" form:"safety_warnings"`
	RegistrationNumber string `gorm:"size:100" json:"registration_number" form:"registration_number"`

	TargetCrops string `gorm:"type:text" json:"target_crops" form:"target_crops"`
	TargetPests string `gorm:"type:text" json:"target_pests" form:"target_pests"`

	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *ChemicalCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (ChemicalProduct) TableName() string {
	return "supplies_product"
}

// Shop is an agro supply vendor. Country is always set; region and city
// narrow the location when known.
type Shop struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:200;index" json:"name" form:"name"`
	ShopType  string `gorm:"size:20;index;default:'retail'" json:"shop_type" form:"shop_type"` // retail|wholesale|distributor|online|cooperative
	OwnerName string `gorm:"size:100" json:"owner_name" form:"owner_name"`

	PhoneNumber    string `gorm:"size:20" json:"phone_number" form:"phone_number"`
	WhatsappNumber string `gorm:"size:20" json:"whatsapp_number" form:"whatsapp_number"`
	Email          string `gorm:"size:200" json:"email" form:"email"`
	Website        string `gorm:"size:500" json:"website" form:"website"`
	GoogleMapsLink string `gorm:"size:500" json:"google_maps_link" form:"google_maps_link"`

	CountryID int64  `gorm:"index;not null" json:"country_id" form:"country_id"`
	RegionID  *int64 `gorm:"index" json:"region_id" form:"region_id"`
	CityID    *int64 `gorm:"index" json:"city_id" form:"city_id"`
	Address   string `gorm:"type:text" json:"address" form:"address"`

	LicenseNumber   string `gorm:"size:100" json:"license_number" form:"license_number"`
	EstablishedYear *int   `json:"established_year" form:"established_year"`
	Description     string `gorm:"type:text" json:"description" form:"description"`

	WorkingHours      string `gorm:"size:200" json:"working_hours" form:"working_hours"`
	DeliveryAvailable bool   `gorm:"default:false" json:"delivery_available" form:"delivery_available"`
	DeliveryRadiusKm  *int   `json:"delivery_radius_km" form:"delivery_radius_km"`

	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Country *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Region  *Region  `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	City    *City    `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (Shop) TableName() string {
	return "supplies_shop"
}

// LocationDisplay renders "city, region, country" from whatever parts
// are loaded.
func (s *Shop) LocationDisplay() string {
	var parts []string
	if s.City != nil {
		parts = append(parts, s.City.Name)
	}
	if s.Region != nil {
		parts = append(parts, s.Region.Name)
	}
	if s.Country != nil {
		parts = append(parts, s.Country.Name)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// ChemicalPrice is a shop's current listing of a product. One row per
// (product, shop). Version guards concurrent operator edits.
type ChemicalPrice struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"index;uniqueIndex:idx_product_shop;not null" json:"product_id" form:"product_id"`
	ShopID    int64 `gorm:"index;uniqueIndex:idx_product_shop;not null" json:"shop_id" form:"shop_id"`

	Price              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price" form:"price"`
	Currency           string          `gorm:"size:10;default:'KGS'" json:"currency" form:"currency"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percentage" form:"discount_percentage"`

	IsInStock     bool `gorm:"default:true;index" json:"is_in_stock" form:"is_in_stock"`
	StockQuantity *int `json:"stock_quantity" form:"stock_quantity"`
	MinimumOrder  int  `gorm:"default:1" json:"minimum_order" form:"minimum_order"`

	BulkPriceThreshold *int             `json:"bulk_price_threshold" form:"bulk_price_threshold"`
	BulkPrice          *decimal.Decimal `gorm:"type:decimal(10,2)" json:"bulk_price" form:"bulk_price"`

	Version   int64     `gorm:"default:0" json:"version"`
	UpdatedBy string    `gorm:"size:100" json:"updated_by"`
	Notes     string    `gorm:"type:text" json:"notes" form:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"last_updated"`

	Product *ChemicalProduct `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Shop    *Shop            `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"shop,omitempty"`
}

func (ChemicalPrice) TableName() string {
	return "supplies_price"
}

// PriceHistory is the append-only change log of a listing. Rows are
// never mutated or deleted except by cascade from their price row.
type PriceHistory struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ChemicalPriceID int64           `gorm:"index;not null" json:"chemical_price_id"`
	OldPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"old_price"`
	NewPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"new_price"`
	ChangeDate      time.Time       `gorm:"autoCreateTime;index" json:"change_date"`
	ChangedBy       string          `gorm:"size:100" json:"changed_by"`
	Reason          string          `gorm:"size:200" json:"reason"`

	ChemicalPrice *ChemicalPrice `gorm:"foreignKey:ChemicalPriceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PriceHistory) TableName() string {
	return "supplies_price_history"
}
