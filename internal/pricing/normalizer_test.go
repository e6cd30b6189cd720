package pricing

import (
	"testing"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectivePrice(t *testing.T) {
	t.Run("zero discount returns raw price", func(t *testing.T) {
		got := EffectivePrice(dec("300"), decimal.Zero)
		assert.True(t, got.Equal(dec("300")))
	})

	t.Run("full discount returns zero", func(t *testing.T) {
		got := EffectivePrice(dec("300"), dec("100"))
		assert.True(t, got.IsZero())
	})

	t.Run("applies percentage", func(t *testing.T) {
		got := EffectivePrice(dec("1000"), dec("10"))
		assert.True(t, got.Equal(dec("900")))
	})

	t.Run("fractional discount", func(t *testing.T) {
		got := EffectivePrice(dec("200"), dec("12.5"))
		assert.True(t, got.Equal(dec("175")))
	})

	t.Run("zero price stays zero", func(t *testing.T) {
		got := EffectivePrice(decimal.Zero, dec("50"))
		assert.True(t, got.IsZero())
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		unit          string
		concentration string
		want          string
	}{
		{"liter unit is liquid", domain.UnitLiter, "", domain.FormulationLiquid},
		{"ml unit is liquid", domain.UnitMl, "80% WP", domain.FormulationLiquid},
		{"EC token is liquid", domain.UnitKg, "20% EC", domain.FormulationLiquid},
		{"SL token is liquid", domain.UnitBottle, "17.8% SL", domain.FormulationLiquid},
		{"lowercase token matches", domain.UnitBottle, "25% sc", domain.FormulationLiquid},
		{"AS token is liquid", domain.UnitPacket, "40% AS", domain.FormulationLiquid},
		{"WP powder is solid", domain.UnitKg, "80% WP", domain.FormulationSolid},
		{"bag with no tokens is solid", domain.UnitBag, "", domain.FormulationSolid},
		{"gram is solid", domain.UnitGram, "granular", domain.FormulationSolid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.unit, tt.concentration))
		})
	}
}

func TestIsLiquid_ExplicitFormulationWins(t *testing.T) {
	// Concentration says liquid but the product was recorded as solid.
	p := &domain.ChemicalProduct{
		PackageUnit:   domain.UnitKg,
		Concentration: "20% EC",
		Formulation:   domain.FormulationSolid,
	}
	assert.False(t, IsLiquid(p))

	p.Formulation = domain.FormulationLiquid
	assert.True(t, IsLiquid(p))

	// Legacy row without the explicit field falls back to the heuristic.
	p.Formulation = ""
	assert.True(t, IsLiquid(p))
}

func TestStandardSize(t *testing.T) {
	t.Run("ml converts to liters", func(t *testing.T) {
		got := StandardSize(dec("500"), domain.UnitMl, true)
		assert.True(t, got.Equal(dec("0.5")))
	})

	t.Run("gram converts to kg", func(t *testing.T) {
		got := StandardSize(dec("250"), domain.UnitGram, false)
		assert.True(t, got.Equal(dec("0.25")))
	})

	t.Run("liter and kg pass through", func(t *testing.T) {
		assert.True(t, StandardSize(dec("5"), domain.UnitLiter, true).Equal(dec("5")))
		assert.True(t, StandardSize(dec("25"), domain.UnitKg, false).Equal(dec("25")))
	})

	t.Run("count packages are taken as-is", func(t *testing.T) {
		assert.True(t, StandardSize(dec("10"), domain.UnitBag, false).Equal(dec("10")))
		assert.True(t, StandardSize(dec("2"), domain.UnitBottle, true).Equal(dec("2")))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("500ml SL liquid at 300", func(t *testing.T) {
		product := &domain.ChemicalProduct{
			PackageSize:   dec("500"),
			PackageUnit:   domain.UnitMl,
			Concentration: "17.8% SL",
		}
		price := &domain.ChemicalPrice{Price: dec("300")}

		require.True(t, IsLiquid(product))
		got := Normalize(price, product)
		assert.Equal(t, PerLiter, got.Unit)
		assert.True(t, got.Value.Equal(dec("600")), "got %s", got.Value)
	})

	t.Run("25kg solid at 1000 with 10 percent off", func(t *testing.T) {
		product := &domain.ChemicalProduct{
			PackageSize:   dec("25"),
			PackageUnit:   domain.UnitKg,
			Concentration: "80% WP",
		}
		price := &domain.ChemicalPrice{
			Price:              dec("1000"),
			DiscountPercentage: dec("10"),
		}

		got := Normalize(price, product)
		assert.Equal(t, PerKg, got.Unit)
		assert.True(t, got.Value.Equal(dec("36")), "got %s", got.Value)
	})

	t.Run("bag package divides by package size unscaled", func(t *testing.T) {
		product := &domain.ChemicalProduct{
			PackageSize: dec("10"),
			PackageUnit: domain.UnitBag,
		}
		price := &domain.ChemicalPrice{Price: dec("450")}

		got := Normalize(price, product)
		assert.Equal(t, PerKg, got.Unit)
		assert.True(t, got.Value.Equal(dec("45")), "got %s", got.Value)
	})

	t.Run("non-positive standard size falls back to effective price", func(t *testing.T) {
		product := &domain.ChemicalProduct{
			PackageSize: decimal.Zero,
			PackageUnit: domain.UnitKg,
		}
		price := &domain.ChemicalPrice{
			Price:              dec("200"),
			DiscountPercentage: dec("50"),
		}

		got := Normalize(price, product)
		assert.True(t, got.Value.Equal(dec("100")), "got %s", got.Value)
	})

	t.Run("idempotent for unchanged inputs", func(t *testing.T) {
		product := &domain.ChemicalProduct{
			PackageSize:   dec("500"),
			PackageUnit:   domain.UnitMl,
			Concentration: "17.8% SL",
		}
		price := &domain.ChemicalPrice{Price: dec("300")}

		first := Normalize(price, product)
		second := Normalize(price, product)
		assert.Equal(t, first.Unit, second.Unit)
		assert.True(t, first.Value.Equal(second.Value))
	})
}

func TestChangePercent(t *testing.T) {
	t.Run("increase", func(t *testing.T) {
		got := ChangePercent(dec("100"), dec("120"))
		assert.True(t, got.Equal(dec("20")), "got %s", got)
	})

	t.Run("decrease", func(t *testing.T) {
		got := ChangePercent(dec("200"), dec("150"))
		assert.True(t, got.Equal(dec("-25")), "got %s", got)
	})

	t.Run("zero old price guards division", func(t *testing.T) {
		got := ChangePercent(decimal.Zero, dec("120"))
		assert.True(t, got.IsZero())
	})
}

func TestBulkSavings(t *testing.T) {
	bulk := dec("80")
	p := &domain.ChemicalPrice{Price: dec("100"), BulkPrice: &bulk}
	assert.True(t, BulkSavings(p).Equal(dec("20")))

	higher := dec("120")
	p.BulkPrice = &higher
	assert.True(t, BulkSavings(p).IsZero())

	p.BulkPrice = nil
	assert.True(t, BulkSavings(p).IsZero())
}

func TestStandardUnitLabel(t *testing.T) {
	assert.Equal(t, "per liter", PerLiter.Label())
	assert.Equal(t, "per kg", PerKg.Label())
}
