// Package pricing converts raw shop listings into comparable
// per-standard-unit prices. Liquids are priced per liter, solids per
// kilogram. All functions are pure.
package pricing

import (
	"strings"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/shopspring/decimal"
)

// StandardUnit is the measure prices are normalized to.
type StandardUnit string

const (
	PerLiter StandardUnit = "liter"
	PerKg    StandardUnit = "kg"
)

// Label returns the display form ("per liter" / "per kg").
func (u StandardUnit) Label() string {
	return "per " + string(u)
}

// liquidTokens are formulation codes that indicate a liquid product
// (emulsifiable concentrate, soluble liquid, suspension concentrate,
// aqueous solution).
var liquidTokens = []string{"EC", "SL", "SC", "AS"}

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Classify derives the formulation from the package unit and the
// free-text concentration string. The token search is a heuristic kept
// for compatibility with legacy data; new products store the result in
// ChemicalProduct.Formulation at write time.
func Classify(packageUnit, concentration string) string {
	if packageUnit == domain.UnitLiter || packageUnit == domain.UnitMl {
		return domain.FormulationLiquid
	}
	upper := strings.ToUpper(concentration)
	for _, token := range liquidTokens {
		if strings.Contains(upper, token) {
			return domain.FormulationLiquid
		}
	}
	return domain.FormulationSolid
}

// IsLiquid reports whether the product is priced per liter. An explicit
// formulation set on the product wins over the heuristic.
func IsLiquid(product *domain.ChemicalProduct) bool {
	switch product.Formulation {
	case domain.FormulationLiquid:
		return true
	case domain.FormulationSolid:
		return false
	}
	return Classify(product.PackageUnit, product.Concentration) == domain.FormulationLiquid
}

// StandardUnitOf returns the unit the product's prices normalize to.
func StandardUnitOf(product *domain.ChemicalProduct) StandardUnit {
	if IsLiquid(product) {
		return PerLiter
	}
	return PerKg
}

// EffectivePrice applies the discount percentage to the raw price.
// Discounts outside [0,100] are rejected at write time and never reach
// this function.
func EffectivePrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return price
	}
	return price.Sub(price.Mul(discountPercent).Div(hundred))
}

// StandardSize converts the package size to the standard unit. Only
// metric units are converted; count-based packages (bag, bottle,
// packet, box) are taken as already expressed in the standard unit.
func StandardSize(size decimal.Decimal, packageUnit string, liquid bool) decimal.Decimal {
	if liquid {
		if packageUnit == domain.UnitMl {
			return size.Div(thousand)
		}
		return size
	}
	if packageUnit == domain.UnitGram {
		return size.Div(thousand)
	}
	return size
}

// Normalized is a price expressed per standard unit.
type Normalized struct {
	Value decimal.Decimal `json:"value"`
	Unit  StandardUnit    `json:"unit"`
}

// Normalize computes the comparable per-standard-unit price for a
// listing. A non-positive standard size falls back to the unconverted
// effective price rather than failing.
func Normalize(price *domain.ChemicalPrice, product *domain.ChemicalProduct) Normalized {
	liquid := IsLiquid(product)
	unit := PerKg
	if liquid {
		unit = PerLiter
	}

	effective := EffectivePrice(price.Price, price.DiscountPercentage)
	standardSize := StandardSize(product.PackageSize, product.PackageUnit, liquid)
	if standardSize.Sign() <= 0 {
		return Normalized{Value: effective, Unit: unit}
	}
	return Normalized{Value: effective.Div(standardSize), Unit: unit}
}

// ChangePercent computes the relative price change in percent. A zero
// old price yields zero.
func ChangePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.Sign() <= 0 {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(hundred)
}

// BulkSavings returns the per-package saving when a bulk price
// undercuts the list price, zero otherwise.
func BulkSavings(price *domain.ChemicalPrice) decimal.Decimal {
	if price.BulkPrice == nil {
		return decimal.Zero
	}
	if price.BulkPrice.Cmp(price.Price) >= 0 {
		return decimal.Zero
	}
	return price.Price.Sub(*price.BulkPrice)
}
