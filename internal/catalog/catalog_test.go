package catalog

import (
	"context"
	"testing"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeProductRepo struct {
	products map[int64]*domain.ChemicalProduct
}

func newFakeProductRepo(products ...*domain.ChemicalProduct) *fakeProductRepo {
	r := &fakeProductRepo{products: map[int64]*domain.ChemicalProduct{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetActive(_ context.Context, id int64) (*domain.ChemicalProduct, error) {
	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter ProductFilter, page, pageSize int) ([]domain.ChemicalProduct, int64, error) {
	var out []domain.ChemicalProduct
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.ChemicalProduct) error {
	p.ID = int64(len(r.products) + 1)
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.ChemicalProduct) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

type fakeShopRepo struct {
	shops map[int64]*domain.Shop
}

func newFakeShopRepo(shops ...*domain.Shop) *fakeShopRepo {
	r := &fakeShopRepo{shops: map[int64]*domain.Shop{}}
	for _, s := range shops {
		r.shops[s.ID] = s
	}
	return r
}

func (r *fakeShopRepo) GetActive(_ context.Context, id int64) (*domain.Shop, error) {
	s, ok := r.shops[id]
	if !ok || !s.IsActive {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *fakeShopRepo) List(_ context.Context, _ ShopFilter, _, _ int) ([]domain.Shop, int64, error) {
	var out []domain.Shop
	for _, s := range r.shops {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeShopRepo) Create(_ context.Context, s *domain.Shop) error {
	r.shops[s.ID] = s
	return nil
}

func (r *fakeShopRepo) Update(_ context.Context, s *domain.Shop) error {
	r.shops[s.ID] = s
	return nil
}

func (r *fakeShopRepo) Delete(_ context.Context, id int64) error {
	delete(r.shops, id)
	return nil
}

type fakePriceRepo struct {
	prices       map[int64]*domain.ChemicalPrice
	history      map[int64][]domain.PriceHistory
	nextID       int64
	getByIDCalls int
}

func newFakePriceRepo(prices ...*domain.ChemicalPrice) *fakePriceRepo {
	r := &fakePriceRepo{
		prices:  map[int64]*domain.ChemicalPrice{},
		history: map[int64][]domain.PriceHistory{},
		nextID:  1000,
	}
	for _, p := range prices {
		r.prices[p.ID] = p
	}
	return r
}

func (r *fakePriceRepo) GetByID(_ context.Context, id int64) (*domain.ChemicalPrice, error) {
	r.getByIDCalls++
	p, ok := r.prices[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePriceRepo) ListByProduct(_ context.Context, productID int64, loc LocationFilter, inStockOnly bool) ([]domain.ChemicalPrice, error) {
	var out []domain.ChemicalPrice
	for _, p := range r.prices {
		if p.ProductID != productID {
			continue
		}
		if inStockOnly && !p.IsInStock {
			continue
		}
		if p.Shop != nil {
			if loc.CountryID > 0 && p.Shop.CountryID != loc.CountryID {
				continue
			}
			if loc.RegionID > 0 && (p.Shop.RegionID == nil || *p.Shop.RegionID != loc.RegionID) {
				continue
			}
			if loc.CityID > 0 && (p.Shop.CityID == nil || *p.Shop.CityID != loc.CityID) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePriceRepo) ListByShop(_ context.Context, shopID, _ int64, _ string, _, _ int) ([]domain.ChemicalPrice, int64, error) {
	var out []domain.ChemicalPrice
	for _, p := range r.prices {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePriceRepo) Create(_ context.Context, price *domain.ChemicalPrice) error {
	for _, p := range r.prices {
		if p.ProductID == price.ProductID && p.ShopID == price.ShopID {
			return ErrDuplicateListing
		}
	}
	r.nextID++
	price.ID = r.nextID
	r.prices[price.ID] = price
	return nil
}

func (r *fakePriceRepo) UpdatePrice(_ context.Context, upd PriceUpdate) (*domain.ChemicalPrice, *domain.PriceHistory, error) {
	row, ok := r.prices[upd.PriceID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if upd.ExpectedVersion >= 0 && row.Version != upd.ExpectedVersion {
		return nil, nil, ErrVersionConflict
	}
	old := row.Price
	row.Price = upd.NewPrice
	row.Version++
	row.UpdatedBy = upd.ChangedBy
	entry := domain.PriceHistory{
		ChemicalPriceID: row.ID,
		OldPrice:        old,
		NewPrice:        upd.NewPrice,
		ChangedBy:       upd.ChangedBy,
		Reason:          upd.Reason,
	}
	r.history[row.ID] = append(r.history[row.ID], entry)
	clone := *row
	return &clone, &entry, nil
}

func (r *fakePriceRepo) Delete(_ context.Context, id int64) error {
	delete(r.prices, id)
	return nil
}

func (r *fakePriceRepo) History(_ context.Context, priceID int64) ([]domain.PriceHistory, error) {
	rows := r.history[priceID]
	// newest first
	out := make([]domain.PriceHistory, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = rows[i]
	}
	return out, nil
}

func regionPtr(id int64) *int64 { return &id }

func testFixtures() (*fakeProductRepo, *fakeShopRepo, *fakePriceRepo) {
	liquid := &domain.ChemicalProduct{
		ID: 1, Name: "Aminka", Brand: "AgroChem",
		PackageSize: dec("500"), PackageUnit: domain.UnitMl,
		Concentration: "17.8% SL", IsActive: true,
	}
	solid := &domain.ChemicalProduct{
		ID: 2, Name: "Urea", Brand: "FertCo",
		PackageSize: dec("25"), PackageUnit: domain.UnitKg,
		IsActive: true,
	}
	inactive := &domain.ChemicalProduct{
		ID: 3, Name: "Old", Brand: "Gone",
		PackageSize: dec("1"), PackageUnit: domain.UnitKg,
		IsActive: false,
	}

	bishkek := &domain.Shop{
		ID: 10, Name: "AgroMart", CountryID: 1, RegionID: regionPtr(100),
		Country: &domain.Country{ID: 1, Name: "Kyrgyzstan"},
		Region:  &domain.Region{ID: 100, Name: "Chuy"}, IsActive: true,
	}
	osh := &domain.Shop{
		ID: 11, Name: "FarmSupply", CountryID: 1, RegionID: regionPtr(200),
		Country: &domain.Country{ID: 1, Name: "Kyrgyzstan"},
		Region:  &domain.Region{ID: 200, Name: "Osh"}, IsActive: true,
	}

	products := newFakeProductRepo(liquid, solid, inactive)
	shops := newFakeShopRepo(bishkek, osh)
	prices := newFakePriceRepo(
		// 300 for 0.5L -> 600 per liter
		&domain.ChemicalPrice{ID: 21, ProductID: 1, ShopID: 10, Shop: bishkek,
			Price: dec("300"), Currency: "KGS", IsInStock: true},
		// 280 for 0.5L with 0 discount -> 560 per liter, cheaper normalized
		&domain.ChemicalPrice{ID: 22, ProductID: 1, ShopID: 11, Shop: osh,
			Price: dec("280"), Currency: "KGS", IsInStock: false},
	)
	return products, shops, prices
}

func TestComparison_ComparePrices(t *testing.T) {
	products, _, prices := testFixtures()
	comparison := NewComparison(products, prices)

	t.Run("sorts ascending by normalized price", func(t *testing.T) {
		result, err := comparison.ComparePrices(context.Background(), 1, LocationFilter{})
		require.NoError(t, err)
		require.Len(t, result.Quotes, 2)

		assert.Equal(t, "FarmSupply", result.Quotes[0].ShopName)
		assert.True(t, result.Quotes[0].NormalizedPrice.Equal(dec("560")))
		assert.Equal(t, "per liter", result.Quotes[0].StandardUnit)
		assert.True(t, result.Quotes[1].NormalizedPrice.Equal(dec("600")))
	})

	t.Run("stats cover raw prices", func(t *testing.T) {
		result, err := comparison.ComparePrices(context.Background(), 1, LocationFilter{})
		require.NoError(t, err)
		assert.Equal(t, 280.0, result.Stats.Min)
		assert.Equal(t, 300.0, result.Stats.Max)
		assert.Equal(t, 290.0, result.Stats.Avg)
		assert.Equal(t, 2, result.Stats.Count)
	})

	t.Run("location filter narrows quotes", func(t *testing.T) {
		result, err := comparison.ComparePrices(context.Background(), 1, LocationFilter{CountryID: 1, RegionID: 100})
		require.NoError(t, err)
		require.Len(t, result.Quotes, 1)
		assert.Equal(t, "AgroMart", result.Quotes[0].ShopName)
	})

	t.Run("empty filtered region is a valid empty result", func(t *testing.T) {
		result, err := comparison.ComparePrices(context.Background(), 1, LocationFilter{CountryID: 1, RegionID: 999})
		require.NoError(t, err)
		assert.Empty(t, result.Quotes)
		assert.Equal(t, PriceStatistics{}, result.Stats)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := comparison.ComparePrices(context.Background(), 404, LocationFilter{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive product is not found", func(t *testing.T) {
		_, err := comparison.ComparePrices(context.Background(), 3, LocationFilter{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestComparison_InStockPrices(t *testing.T) {
	products, _, prices := testFixtures()
	comparison := NewComparison(products, prices)

	product, rows, err := comparison.InStockPrices(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Aminka", product.Name)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Price.Equal(dec("300")))
}

func TestService_UpdatePrice(t *testing.T) {
	products, shops, prices := testFixtures()
	// Seed a deterministic listing at 100.
	prices.prices[21].Price = dec("100")
	prices.prices[21].Version = 0

	bus := EventBus.New()
	service := NewService(products, shops, prices, bus)

	t.Run("writes exactly one history row", func(t *testing.T) {
		var got PriceUpdatedEvent
		require.NoError(t, bus.Subscribe(TopicPriceUpdated, func(e PriceUpdatedEvent) {
			got = e
		}))

		updated, err := service.UpdatePrice(context.Background(), PriceUpdate{
			PriceID:         21,
			NewPrice:        dec("120"),
			ExpectedVersion: 0,
			ChangedBy:       "operator",
			Reason:          "supplier increase",
		})
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(dec("120")))
		assert.Equal(t, int64(1), updated.Version)

		history := prices.history[21]
		require.Len(t, history, 1)
		assert.True(t, history[0].OldPrice.Equal(dec("100")))
		assert.True(t, history[0].NewPrice.Equal(dec("120")))
		assert.Equal(t, "operator", history[0].ChangedBy)

		assert.True(t, got.ChangePercent.Equal(dec("20")), "got %s", got.ChangePercent)
	})

	t.Run("event old price comes from the locked history row", func(t *testing.T) {
		var got PriceUpdatedEvent
		require.NoError(t, bus.Subscribe(TopicPriceUpdated, func(e PriceUpdatedEvent) {
			got = e
		}))

		before := prices.getByIDCalls
		_, err := service.UpdatePrice(context.Background(), PriceUpdate{
			PriceID:         21,
			NewPrice:        dec("150"),
			ExpectedVersion: 1,
			ChangedBy:       "operator",
		})
		require.NoError(t, err)

		// no read outside the transaction, so the event cannot see a
		// price another operator changed in between
		assert.Equal(t, before, prices.getByIDCalls)

		history := prices.history[21]
		latest := history[len(history)-1]
		assert.True(t, got.OldPrice.Equal(latest.OldPrice))
		assert.True(t, got.NewPrice.Equal(latest.NewPrice))
		assert.True(t, got.ChangePercent.Equal(dec("25")), "got %s", got.ChangePercent)
	})

	t.Run("stale version is rejected without history", func(t *testing.T) {
		before := len(prices.history[21])
		_, err := service.UpdatePrice(context.Background(), PriceUpdate{
			PriceID:         21,
			NewPrice:        dec("130"),
			ExpectedVersion: 0, // row has been updated twice since
			ChangedBy:       "other",
		})
		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.Len(t, prices.history[21], before)
	})

	t.Run("negative price is a validation error", func(t *testing.T) {
		_, err := service.UpdatePrice(context.Background(), PriceUpdate{
			PriceID:  21,
			NewPrice: dec("-5"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown price is not found", func(t *testing.T) {
		_, err := service.UpdatePrice(context.Background(), PriceUpdate{
			PriceID:  9999,
			NewPrice: dec("10"),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_CreateListing(t *testing.T) {
	products, shops, prices := testFixtures()
	service := NewService(products, shops, prices, nil)

	t.Run("rejects out of range discount", func(t *testing.T) {
		err := service.CreateListing(context.Background(), &domain.ChemicalPrice{
			ProductID: 2, ShopID: 10,
			Price:              dec("100"),
			DiscountPercentage: dec("150"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		err := service.CreateListing(context.Background(), &domain.ChemicalPrice{
			ProductID: 3, ShopID: 10, Price: dec("100"),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects duplicate pair", func(t *testing.T) {
		err := service.CreateListing(context.Background(), &domain.ChemicalPrice{
			ProductID: 1, ShopID: 10, Price: dec("100"),
		})
		assert.ErrorIs(t, err, ErrDuplicateListing)
	})

	t.Run("creates listing with default currency", func(t *testing.T) {
		listing := &domain.ChemicalPrice{ProductID: 2, ShopID: 10, Price: dec("950")}
		require.NoError(t, service.CreateListing(context.Background(), listing))
		assert.Equal(t, "KGS", listing.Currency)
		assert.NotZero(t, listing.ID)
	})
}

func TestService_SaveProduct(t *testing.T) {
	products, shops, prices := testFixtures()
	service := NewService(products, shops, prices, nil)

	t.Run("stamps formulation from classifier", func(t *testing.T) {
		p := &domain.ChemicalProduct{
			Name: "Spray", Brand: "X",
			PackageSize: dec("1"), PackageUnit: domain.UnitKg,
			Concentration: "20% EC", IsActive: true,
		}
		require.NoError(t, service.SaveProduct(context.Background(), p))
		assert.Equal(t, domain.FormulationLiquid, p.Formulation)
	})

	t.Run("rejects non-positive package size", func(t *testing.T) {
		err := service.SaveProduct(context.Background(), &domain.ChemicalProduct{
			Name: "Bad", Brand: "X",
			PackageSize: decimal.Zero, PackageUnit: domain.UnitKg,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown package unit", func(t *testing.T) {
		err := service.SaveProduct(context.Background(), &domain.ChemicalProduct{
			Name: "Bad", Brand: "X",
			PackageSize: dec("1"), PackageUnit: "barrel",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestService_PriceHistory(t *testing.T) {
	products, shops, prices := testFixtures()
	service := NewService(products, shops, prices, nil)

	_, err := service.UpdatePrice(context.Background(), PriceUpdate{
		PriceID: 22, NewPrice: dec("350"), ExpectedVersion: -1, ChangedBy: "op",
	})
	require.NoError(t, err)
	_, err = service.UpdatePrice(context.Background(), PriceUpdate{
		PriceID: 22, NewPrice: dec("175"), ExpectedVersion: -1, ChangedBy: "op",
	})
	require.NoError(t, err)

	entries, err := service.PriceHistory(context.Background(), 22)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first: 350 -> 175 is -50%
	assert.True(t, entries[0].ChangePercent.Equal(dec("-50")), "got %s", entries[0].ChangePercent)
	assert.True(t, entries[1].OldPrice.Equal(dec("280")))
}
