package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Locations
	&Country{},
	&Region{},
	&City{},
	// Agro supplies
	&ChemicalCategory{},
	&ChemicalProduct{},
	&Shop{},
	&ChemicalPrice{},
	&PriceHistory{},
	// Market
	&MarketProduct{},
	&Market{},
	&MarketPrice{},
}
