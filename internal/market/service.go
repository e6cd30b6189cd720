package market

import (
	"context"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/pricing"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// TrendPoint is one observation in a product's price trend, with the
// relative change from the previous observation.
type TrendPoint struct {
	domain.MarketPrice
	ChangePercent decimal.Decimal `json:"change_percent"`
}

// Trend is the ordered price history of one market product.
type Trend struct {
	Product *domain.MarketProduct `json:"product"`
	Points  []TrendPoint          `json:"points"`
	Min     float64               `json:"min"`
	Max     float64               `json:"max"`
	Avg     float64               `json:"avg"`
}

// Service answers market price tracking queries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repo exposes the repository for handlers that need plain listings.
func (s *Service) Repo() Repository {
	return s.repo
}

// ProductTrend returns a product's observations ordered by date with
// per-step change percents and summary statistics. An unknown product
// is ErrNotFound; a product without observations yields empty points.
func (s *Service) ProductTrend(ctx context.Context, productID, marketID int64) (*Trend, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.PricesForProduct(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	trend := &Trend{Product: product, Points: make([]TrendPoint, 0, len(rows))}
	values := make([]float64, 0, len(rows))
	for i, row := range rows {
		change := decimal.Zero
		if i > 0 {
			change = pricing.ChangePercent(rows[i-1].Price, row.Price)
		}
		trend.Points = append(trend.Points, TrendPoint{MarketPrice: row, ChangePercent: change})
		values = append(values, row.Price.InexactFloat64())
	}

	if len(values) > 0 {
		trend.Min, _ = stats.Min(values)
		trend.Max, _ = stats.Max(values)
		trend.Avg, _ = stats.Mean(values)
	}
	return trend, nil
}
