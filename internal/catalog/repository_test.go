package catalog

import (
	"context"
	"testing"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB builds a gorm handle that renders SQL without touching a
// server, for asserting generated queries.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func productListSQL(t *testing.T, filter ProductFilter) string {
	t.Helper()
	repo := NewGormProductRepository(newDryRunDB(t))
	var products []domain.ChemicalProduct
	tx := repo.productQuery(context.Background(), filter).Find(&products)
	require.NoError(t, tx.Error)
	return tx.Statement.SQL.String()
}

func TestProductQueryLocationFilters(t *testing.T) {
	t.Run("region filter applies without country", func(t *testing.T) {
		sql := productListSQL(t, ProductFilter{RegionID: 7})
		assert.Contains(t, sql, "supplies_shop.region_id")
		assert.Contains(t, sql, "JOIN supplies_shop")
		assert.NotContains(t, sql, "supplies_shop.country_id")
	})

	t.Run("country and region compose", func(t *testing.T) {
		sql := productListSQL(t, ProductFilter{CountryID: 1, RegionID: 7})
		assert.Contains(t, sql, "supplies_shop.country_id")
		assert.Contains(t, sql, "supplies_shop.region_id")
	})

	t.Run("no location filter avoids the join", func(t *testing.T) {
		sql := productListSQL(t, ProductFilter{})
		assert.NotContains(t, sql, "JOIN supplies_shop")
		assert.Contains(t, sql, "is_active")
	})
}
