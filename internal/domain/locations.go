package domain

// Country is the root of the location hierarchy.
type Country struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:100;uniqueIndex" json:"name" form:"name"`
	Code string `gorm:"size:3;uniqueIndex" json:"code" form:"code"` // ISO code (KG, US, RU)
}

func (Country) TableName() string {
	return "loc_country"
}

// Region represents states, oblasts, provinces.
type Region struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CountryID int64  `gorm:"index;uniqueIndex:idx_country_region" json:"country_id" form:"country_id"`
	Name      string `gorm:"size:100;uniqueIndex:idx_country_region" json:"name" form:"name"`
	TypeName  string `gorm:"size:20;default:'Region'" json:"type_name" form:"type_name"`

	Country *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

func (Region) TableName() string {
	return "loc_region"
}

// City represents cities, towns, villages and districts.
type City struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RegionID int64  `gorm:"index;uniqueIndex:idx_region_city" json:"region_id" form:"region_id"`
	Name     string `gorm:"size:100;uniqueIndex:idx_region_city" json:"name" form:"name"`
	TypeName string `gorm:"size:20;default:'city'" json:"type_name" form:"type_name"` // city|town|village|district|settlement

	Region *Region `gorm:"foreignKey:RegionID" json:"region,omitempty"`
}

func (City) TableName() string {
	return "loc_city"
}
