package catalog

import (
	"context"
	"sort"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/pricing"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceQuote is one vendor's offer for a product, enriched with the
// comparable per-standard-unit price.
type PriceQuote struct {
	PriceID         int64           `json:"price_id"`
	ShopID          int64           `json:"shop_id"`
	ShopName        string          `json:"shop_name"`
	ShopLocation    string          `json:"shop_location"`
	RawPrice        decimal.Decimal `json:"raw_price"`
	EffectivePrice  decimal.Decimal `json:"effective_price"`
	NormalizedPrice decimal.Decimal `json:"normalized_price"`
	StandardUnit    string          `json:"standard_unit"`
	Currency        string          `json:"currency"`
	InStock         bool            `json:"in_stock"`
	BulkSavings     decimal.Decimal `json:"bulk_savings"`
	Version         int64           `json:"version"`
}

// PriceStatistics summarizes the raw (not normalized) price column.
type PriceStatistics struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// ComparisonResult is the full price comparison for one product.
type ComparisonResult struct {
	Product *domain.ChemicalProduct `json:"product"`
	Quotes  []PriceQuote            `json:"quotes"`
	Stats   PriceStatistics         `json:"stats"`
}

// Comparison answers read-only price comparison queries.
type Comparison struct {
	products ProductRepository
	prices   PriceRepository
}

func NewComparison(products ProductRepository, prices PriceRepository) *Comparison {
	return &Comparison{products: products, prices: prices}
}

// ComparePrices returns every vendor offer for an active product in the
// filtered area, sorted ascending by normalized price, plus raw-price
// statistics. No matching vendors is an empty result, not an error.
func (c *Comparison) ComparePrices(ctx context.Context, productID int64, loc LocationFilter) (*ComparisonResult, error) {
	product, err := c.products.GetActive(ctx, productID)
	if err != nil {
		return nil, err
	}

	rows, err := c.prices.ListByProduct(ctx, productID, loc, false)
	if err != nil {
		return nil, err
	}

	quotes := make([]PriceQuote, 0, len(rows))
	for i := range rows {
		quotes = append(quotes, buildQuote(&rows[i], product))
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].NormalizedPrice.Cmp(quotes[j].NormalizedPrice) < 0
	})

	return &ComparisonResult{
		Product: product,
		Quotes:  quotes,
		Stats:   rawPriceStats(rows),
	}, nil
}

// InStockPrices returns a product's in-stock offers sorted ascending by
// raw price, for the public JSON endpoint.
func (c *Comparison) InStockPrices(ctx context.Context, productID int64) (*domain.ChemicalProduct, []domain.ChemicalPrice, error) {
	product, err := c.products.GetActive(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := c.prices.ListByProduct(ctx, productID, LocationFilter{}, true)
	if err != nil {
		return nil, nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Price.Cmp(rows[j].Price) < 0
	})
	return product, rows, nil
}

func buildQuote(row *domain.ChemicalPrice, product *domain.ChemicalProduct) PriceQuote {
	normalized := pricing.Normalize(row, product)
	quote := PriceQuote{
		PriceID:         row.ID,
		ShopID:          row.ShopID,
		RawPrice:        row.Price,
		EffectivePrice:  pricing.EffectivePrice(row.Price, row.DiscountPercentage),
		NormalizedPrice: normalized.Value,
		StandardUnit:    normalized.Unit.Label(),
		Currency:        row.Currency,
		InStock:         row.IsInStock,
		BulkSavings:     pricing.BulkSavings(row),
		Version:         row.Version,
	}
	if row.Shop != nil {
		quote.ShopName = row.Shop.Name
		quote.ShopLocation = row.Shop.LocationDisplay()
	}
	return quote
}

// rawPriceStats computes min/max/avg over the raw price column.
func rawPriceStats(rows []domain.ChemicalPrice) PriceStatistics {
	if len(rows) == 0 {
		return PriceStatistics{}
	}
	values := make([]float64, 0, len(rows))
	for i := range rows {
		values = append(values, rows[i].Price.InexactFloat64())
	}

	min, err := stats.Min(values)
	if err != nil {
		return PriceStatistics{}
	}
	max, _ := stats.Max(values)
	avg, _ := stats.Mean(values)
	return PriceStatistics{Min: min, Max: max, Avg: avg, Count: len(values)}
}

// CategoryComparison is the per-product price range used by the bulk
// comparison view.
type CategoryComparison struct {
	Product domain.ChemicalProduct `json:"product"`
	Stats   PriceStatistics        `json:"stats"`
}

// CompareCategory computes raw price ranges for a page of products
// matching the filter. Products without any price in the filtered area
// are skipped.
func (c *Comparison) CompareCategory(ctx context.Context, filter ProductFilter, loc LocationFilter, limit int) ([]CategoryComparison, error) {
	products, _, err := c.products.List(ctx, filter, 1, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list products for comparison")
	}

	out := make([]CategoryComparison, 0, len(products))
	for i := range products {
		rows, err := c.prices.ListByProduct(ctx, products[i].ID, loc, false)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		out = append(out, CategoryComparison{
			Product: products[i],
			Stats:   rawPriceStats(rows),
		})
	}
	return out, nil
}
