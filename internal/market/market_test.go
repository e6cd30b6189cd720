package market

import (
	"context"
	"testing"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRepo struct {
	products  map[int64]*domain.MarketProduct
	markets   map[int64]*domain.Market
	prices    []domain.MarketPrice
	nextID    int64
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[int64]*domain.MarketProduct{},
		markets:  map[int64]*domain.Market{},
		nextID:   1,
	}
}

func (r *fakeRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) GetProduct(_ context.Context, id int64) (*domain.MarketProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListProducts(_ context.Context) ([]domain.MarketProduct, error) {
	var out []domain.MarketProduct
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) ListMarkets(_ context.Context) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range r.markets {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeRepo) ListPrices(_ context.Context, filter PriceFilter, _, _ int) ([]domain.MarketPrice, int64, error) {
	var out []domain.MarketPrice
	for _, p := range r.prices {
		if filter.ProductID > 0 && p.ProductID != filter.ProductID {
			continue
		}
		if filter.MarketID > 0 && p.MarketID != filter.MarketID {
			continue
		}
		if !filter.Since.IsZero() && p.DateRecorded.Before(filter.Since) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) PricesForProduct(_ context.Context, productID, marketID int64) ([]domain.MarketPrice, error) {
	var out []domain.MarketPrice
	for _, p := range r.prices {
		if p.ProductID != productID {
			continue
		}
		if marketID > 0 && p.MarketID != marketID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) FindOrCreateProduct(_ context.Context, name, category string) (*domain.MarketProduct, error) {
	for _, p := range r.products {
		if p.Name == name {
			return p, nil
		}
	}
	p := &domain.MarketProduct{ID: r.id(), Name: name, Category: category}
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeRepo) FindOrCreateMarket(_ context.Context, name, location string) (*domain.Market, error) {
	for _, m := range r.markets {
		if m.Name == name {
			return m, nil
		}
	}
	m := &domain.Market{ID: r.id(), Name: name, Location: location}
	r.markets[m.ID] = m
	return m, nil
}

func (r *fakeRepo) CreatePrice(_ context.Context, price *domain.MarketPrice) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.prices {
		if p.ProductID == price.ProductID && p.MarketID == price.MarketID && p.DateRecorded.Equal(price.DateRecorded) {
			return errors.Wrap(gorm.ErrDuplicatedKey, "create market price")
		}
	}
	price.ID = r.id()
	r.prices = append(r.prices, *price)
	return nil
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
}

func TestService_ProductTrend(t *testing.T) {
	repo := newFakeRepo()
	potato := &domain.MarketProduct{ID: 1, Name: "Potatoes"}
	repo.products[1] = potato
	repo.prices = []domain.MarketPrice{
		{ID: 11, ProductID: 1, MarketID: 5, Price: dec("20"), Unit: domain.MarketUnitKg, DateRecorded: day(1)},
		{ID: 12, ProductID: 1, MarketID: 5, Price: dec("25"), Unit: domain.MarketUnitKg, DateRecorded: day(2)},
		{ID: 13, ProductID: 1, MarketID: 5, Price: dec("20"), Unit: domain.MarketUnitKg, DateRecorded: day(3)},
	}
	service := NewService(repo)

	t.Run("computes per-step change percents", func(t *testing.T) {
		trend, err := service.ProductTrend(context.Background(), 1, 0)
		require.NoError(t, err)
		require.Len(t, trend.Points, 3)

		assert.True(t, trend.Points[0].ChangePercent.IsZero())
		assert.True(t, trend.Points[1].ChangePercent.Equal(dec("25")), "got %s", trend.Points[1].ChangePercent)
		assert.True(t, trend.Points[2].ChangePercent.Equal(dec("-20")), "got %s", trend.Points[2].ChangePercent)

		assert.Equal(t, 20.0, trend.Min)
		assert.Equal(t, 25.0, trend.Max)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := service.ProductTrend(context.Background(), 99, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no observations is an empty trend", func(t *testing.T) {
		repo.products[2] = &domain.MarketProduct{ID: 2, Name: "Apples"}
		trend, err := service.ProductTrend(context.Background(), 2, 0)
		require.NoError(t, err)
		assert.Empty(t, trend.Points)
		assert.Zero(t, trend.Avg)
	})
}

func TestParseCSV(t *testing.T) {
	now := day(15)

	t.Run("parses valid rows", func(t *testing.T) {
		data := "product,category,market,location,price,unit,date,notes\n" +
			"Tomatoes,Vegetables,Central Market,Batken,45.50,kg,2026-08-10,fresh\n" +
			"Apples,Fruits,Farmers Market,Kadamjay,80,,," // empty unit and date
		records, problems := ParseCSV(data, now)
		require.Empty(t, problems)
		require.Len(t, records, 2)

		assert.Equal(t, "Tomatoes", records[0].Product)
		assert.True(t, records[0].Price.Equal(dec("45.5")))
		assert.Equal(t, 10, records[0].Date.Day())

		assert.Equal(t, domain.MarketUnitKg, records[1].Unit)
		assert.Equal(t, now, records[1].Date)
	})

	t.Run("reports bad rows without aborting", func(t *testing.T) {
		data := "product,category,market,location,price,unit,date,notes\n" +
			"Tomatoes,,Central Market,,abc,kg,,\n" +
			",,Central Market,,10,kg,,\n" +
			"Carrots,,Central Market,,15,kg,not-a-date,\n" +
			"Onions,,Central Market,,12,kg,,\n"
		records, problems := ParseCSV(data, now)
		assert.Len(t, problems, 3)
		require.Len(t, records, 1)
		assert.Equal(t, "Onions", records[0].Product)
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		data := "product,category,market,location,price,unit,date,notes\n" +
			"Tomatoes,,Central Market,,-5,kg,,\n"
		records, problems := ParseCSV(data, now)
		assert.Empty(t, records)
		assert.Len(t, problems, 1)
	})
}

func TestService_ImportCSV(t *testing.T) {
	t.Run("skips same-day duplicates only", func(t *testing.T) {
		repo := newFakeRepo()
		service := NewService(repo)

		data := "product,category,market,location,price,unit,date,notes\n" +
			"Tomatoes,Vegetables,Central Market,Batken,45.50,kg,2026-08-10,\n" +
			"Tomatoes,Vegetables,Central Market,Batken,46.00,kg,2026-08-10,\n" + // same day duplicate
			"Potatoes,Vegetables,Central Market,Batken,20,kg,2026-08-10,\n"

		result, err := service.ImportCSV(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 1, result.Skipped)

		products, _ := repo.ListProducts(context.Background())
		assert.Len(t, products, 2)
		markets, _ := repo.ListMarkets(context.Background())
		assert.Len(t, markets, 1)
	})

	t.Run("database errors abort the import", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = errors.New("connection refused")
		service := NewService(repo)

		data := "product,category,market,location,price,unit,date,notes\n" +
			"Tomatoes,Vegetables,Central Market,Batken,45.50,kg,2026-08-10,\n"

		result, err := service.ImportCSV(context.Background(), data)
		require.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestLocalizedDisplay(t *testing.T) {
	price := &domain.MarketPrice{Price: dec("120"), Unit: domain.MarketUnitKg}

	assert.Equal(t, "120 som/kg", LocalizedPriceDisplay(price, "en"))
	assert.Equal(t, "120 сом/кг", LocalizedPriceDisplay(price, "ru"))
	assert.Equal(t, "120 сом/кг", LocalizedPriceDisplay(price, "ky"))

	// Unknown languages fall back to English.
	assert.Equal(t, "120 som/kg", LocalizedPriceDisplay(price, "fr"))
	assert.Equal(t, "120 som/kg", LocalizedPriceDisplay(price, ""))

	piece := &domain.MarketPrice{Price: dec("15"), Unit: domain.MarketUnitPiece}
	assert.Equal(t, "15 сом/шт", LocalizedPriceDisplay(piece, "ru"))
}
