package market

import (
	"context"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned for missing market records.
var ErrNotFound = errors.New("not found")

// PriceFilter narrows market price observations.
type PriceFilter struct {
	ProductID int64
	MarketID  int64
	Since     time.Time
	Query     string
}

// Repository is the data access surface for market price tracking.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*domain.MarketProduct, error)
	ListProducts(ctx context.Context) ([]domain.MarketProduct, error)
	ListMarkets(ctx context.Context) ([]domain.Market, error)

	// ListPrices returns a page of observations, newest first.
	ListPrices(ctx context.Context, filter PriceFilter, page, pageSize int) ([]domain.MarketPrice, int64, error)

	// PricesForProduct returns all observations for a product ordered
	// by recording date ascending, optionally per market.
	PricesForProduct(ctx context.Context, productID, marketID int64) ([]domain.MarketPrice, error)

	// FindOrCreateProduct and FindOrCreateMarket support bulk import.
	FindOrCreateProduct(ctx context.Context, name, category string) (*domain.MarketProduct, error)
	FindOrCreateMarket(ctx context.Context, name, location string) (*domain.Market, error)

	CreatePrice(ctx context.Context, price *domain.MarketPrice) error
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetProduct(ctx context.Context, id int64) (*domain.MarketProduct, error) {
	var product domain.MarketProduct
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query market product")
	}
	return &product, nil
}

func (r *GormRepository) ListProducts(ctx context.Context) ([]domain.MarketProduct, error) {
	var products []domain.MarketProduct
	err := r.db.WithContext(ctx).Order("name").Find(&products).Error
	return products, errors.Wrap(err, "list market products")
}

func (r *GormRepository) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	var markets []domain.Market
	err := r.db.WithContext(ctx).Order("name").Find(&markets).Error
	return markets, errors.Wrap(err, "list markets")
}

func (r *GormRepository) ListPrices(ctx context.Context, filter PriceFilter, page, pageSize int) ([]domain.MarketPrice, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.MarketPrice{})

	if filter.ProductID > 0 {
		query = query.Where("market_price.product_id = ?", filter.ProductID)
	}
	if filter.MarketID > 0 {
		query = query.Where("market_price.market_id = ?", filter.MarketID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("market_price.date_recorded >= ?", filter.Since)
	}
	if filter.Query != "" {
		query = query.
			Joins("JOIN market_product ON market_product.id = market_price.product_id").
			Where("market_product.name ILIKE ?", "%"+filter.Query+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count market prices")
	}

	var prices []domain.MarketPrice
	err := query.
		Preload("Product").Preload("Market").
		Order("market_price.date_recorded DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&prices).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list market prices")
	}
	return prices, total, nil
}

func (r *GormRepository) PricesForProduct(ctx context.Context, productID, marketID int64) ([]domain.MarketPrice, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID)
	if marketID > 0 {
		query = query.Where("market_id = ?", marketID)
	}

	var prices []domain.MarketPrice
	err := query.
		Preload("Market").
		Order("date_recorded ASC").
		Find(&prices).Error
	return prices, errors.Wrap(err, "query product prices")
}

func (r *GormRepository) FindOrCreateProduct(ctx context.Context, name, category string) (*domain.MarketProduct, error) {
	var product domain.MarketProduct
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "query market product")
	}
	product = domain.MarketProduct{Name: name, Category: category}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, errors.Wrap(err, "create market product")
	}
	return &product, nil
}

func (r *GormRepository) FindOrCreateMarket(ctx context.Context, name, location string) (*domain.Market, error) {
	var market domain.Market
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&market).Error
	if err == nil {
		return &market, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "query market")
	}
	market = domain.Market{Name: name, Location: location}
	if err := r.db.WithContext(ctx).Create(&market).Error; err != nil {
		return nil, errors.Wrap(err, "create market")
	}
	return &market, nil
}

func (r *GormRepository) CreatePrice(ctx context.Context, price *domain.MarketPrice) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(price).Error, "create market price")
}
