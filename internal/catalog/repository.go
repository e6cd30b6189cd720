package catalog

import (
	"context"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned for missing or inactive records.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a price row changed under an
	// operator since it was read.
	ErrVersionConflict = errors.New("price version conflict")
	// ErrDuplicateListing is returned when a (product, shop) pair
	// already has a price row.
	ErrDuplicateListing = errors.New("listing already exists")
)

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID int64
	CountryID  int64
	RegionID   int64
	Query      string
}

// ShopFilter narrows shop listings.
type ShopFilter struct {
	ShopType  string
	CountryID int64
	RegionID  int64
	CityID    int64
	Query     string
}

// LocationFilter narrows price rows by the owning shop's location.
// Filters AND-compose: country, then region within it, then city.
type LocationFilter struct {
	CountryID int64
	RegionID  int64
	CityID    int64
}

// ProductRepository is the catalog read/write surface for products.
type ProductRepository interface {
	// GetActive returns an active product or ErrNotFound.
	GetActive(ctx context.Context, id int64) (*domain.ChemicalProduct, error)

	// List returns a page of active products and the total count.
	List(ctx context.Context, filter ProductFilter, page, pageSize int) ([]domain.ChemicalProduct, int64, error)

	Create(ctx context.Context, product *domain.ChemicalProduct) error
	Update(ctx context.Context, product *domain.ChemicalProduct) error
	Delete(ctx context.Context, id int64) error
}

// ShopRepository is the catalog read/write surface for shops.
type ShopRepository interface {
	// GetActive returns an active shop with its location preloaded, or
	// ErrNotFound.
	GetActive(ctx context.Context, id int64) (*domain.Shop, error)

	List(ctx context.Context, filter ShopFilter, page, pageSize int) ([]domain.Shop, int64, error)

	Create(ctx context.Context, shop *domain.Shop) error
	Update(ctx context.Context, shop *domain.Shop) error
	Delete(ctx context.Context, id int64) error
}

// PriceUpdate carries one operator price change.
type PriceUpdate struct {
	PriceID  int64
	NewPrice decimal.Decimal
	// ExpectedVersion guards against lost concurrent edits. A negative
	// value skips the check (legacy last-writer-wins clients).
	ExpectedVersion int64
	ChangedBy       string
	Reason          string
}

// PriceRepository is the data access surface for price rows and their
// history log.
type PriceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ChemicalPrice, error)

	// ListByProduct returns price rows for a product with shops and
	// their locations preloaded, filtered by shop location.
	ListByProduct(ctx context.Context, productID int64, loc LocationFilter, inStockOnly bool) ([]domain.ChemicalPrice, error)

	// ListByShop returns a page of a shop's listings with products
	// preloaded, optionally narrowed by category or search text.
	ListByShop(ctx context.Context, shopID, categoryID int64, query string, page, pageSize int) ([]domain.ChemicalPrice, int64, error)

	Create(ctx context.Context, price *domain.ChemicalPrice) error

	// UpdatePrice changes the raw price inside one transaction: row
	// lock, version check, update, exactly one history row. Returns
	// the refreshed row and the history entry so callers see the old
	// price that was actually locked in.
	UpdatePrice(ctx context.Context, upd PriceUpdate) (*domain.ChemicalPrice, *domain.PriceHistory, error)

	Delete(ctx context.Context, id int64) error

	// History returns the change log, newest first.
	History(ctx context.Context, priceID int64) ([]domain.PriceHistory, error)
}

// GormProductRepository is the GORM implementation of ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetActive(ctx context.Context, id int64) (*domain.ChemicalProduct, error) {
	var product domain.ChemicalProduct
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &product, nil
}

// productQuery builds the filtered base query for product listings.
func (r *GormProductRepository) productQuery(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&domain.ChemicalProduct{}).
		Where("supplies_product.is_active = ?", true)

	if filter.CategoryID > 0 {
		query = query.Where("supplies_product.category_id = ?", filter.CategoryID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where(
			"supplies_product.name ILIKE ? OR supplies_product.brand ILIKE ? OR supplies_product.active_ingredient ILIKE ? OR supplies_product.target_crops ILIKE ?",
			like, like, like, like)
	}
	// Location filters look through listings to the selling shops. Each
	// filter narrows independently, region does not require country.
	if filter.CountryID > 0 || filter.RegionID > 0 {
		query = query.
			Joins("JOIN supplies_price ON supplies_price.product_id = supplies_product.id").
			Joins("JOIN supplies_shop ON supplies_shop.id = supplies_price.shop_id").
			Distinct("supplies_product.*")
		if filter.CountryID > 0 {
			query = query.Where("supplies_shop.country_id = ?", filter.CountryID)
		}
		if filter.RegionID > 0 {
			query = query.Where("supplies_shop.region_id = ?", filter.RegionID)
		}
	}
	return query
}

func (r *GormProductRepository) List(ctx context.Context, filter ProductFilter, page, pageSize int) ([]domain.ChemicalProduct, int64, error) {
	query := r.productQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var products []domain.ChemicalProduct
	err := query.
		Preload("Category").
		Order("brand, name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return products, total, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.ChemicalProduct) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.ChemicalProduct) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(product).Error, "update product")
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.ChemicalProduct{}, id).Error, "delete product")
}

// GormShopRepository is the GORM implementation of ShopRepository.
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) GetActive(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).
		Preload("Country").Preload("Region").Preload("City").
		Where("id = ? AND is_active = ?", id, true).
		First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query shop")
	}
	return &shop, nil
}

func (r *GormShopRepository) List(ctx context.Context, filter ShopFilter, page, pageSize int) ([]domain.Shop, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Shop{}).
		Where("is_active = ?", true)

	if filter.ShopType != "" {
		query = query.Where("shop_type = ?", filter.ShopType)
	}
	if filter.CountryID > 0 {
		query = query.Where("country_id = ?", filter.CountryID)
	}
	if filter.RegionID > 0 {
		query = query.Where("region_id = ?", filter.RegionID)
	}
	if filter.CityID > 0 {
		query = query.Where("city_id = ?", filter.CityID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("name ILIKE ? OR owner_name ILIKE ? OR address ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count shops")
	}

	var shops []domain.Shop
	err := query.
		Preload("Country").Preload("Region").Preload("City").
		Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&shops).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list shops")
	}
	return shops, total, nil
}

func (r *GormShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(shop).Error, "create shop")
}

func (r *GormShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(shop).Error, "update shop")
}

func (r *GormShopRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.Shop{}, id).Error, "delete shop")
}

// GormPriceRepository is the GORM implementation of PriceRepository.
type GormPriceRepository struct {
	db *gorm.DB
}

func NewGormPriceRepository(db *gorm.DB) *GormPriceRepository {
	return &GormPriceRepository{db: db}
}

func (r *GormPriceRepository) GetByID(ctx context.Context, id int64) (*domain.ChemicalPrice, error) {
	var price domain.ChemicalPrice
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Shop").Preload("Shop.Country").Preload("Shop.Region").Preload("Shop.City").
		First(&price, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query price")
	}
	return &price, nil
}

func (r *GormPriceRepository) ListByProduct(ctx context.Context, productID int64, loc LocationFilter, inStockOnly bool) ([]domain.ChemicalPrice, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.ChemicalPrice{}).
		Joins("JOIN supplies_shop ON supplies_shop.id = supplies_price.shop_id").
		Where("supplies_price.product_id = ?", productID).
		Where("supplies_shop.is_active = ?", true)

	if loc.CountryID > 0 {
		query = query.Where("supplies_shop.country_id = ?", loc.CountryID)
	}
	if loc.RegionID > 0 {
		query = query.Where("supplies_shop.region_id = ?", loc.RegionID)
	}
	if loc.CityID > 0 {
		query = query.Where("supplies_shop.city_id = ?", loc.CityID)
	}
	if inStockOnly {
		query = query.Where("supplies_price.is_in_stock = ?", true)
	}

	var prices []domain.ChemicalPrice
	err := query.
		Preload("Shop").Preload("Shop.Country").Preload("Shop.Region").Preload("Shop.City").
		Order("supplies_price.price ASC").
		Find(&prices).Error
	if err != nil {
		return nil, errors.Wrap(err, "list prices by product")
	}
	return prices, nil
}

func (r *GormPriceRepository) ListByShop(ctx context.Context, shopID, categoryID int64, query string, page, pageSize int) ([]domain.ChemicalPrice, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.ChemicalPrice{}).
		Joins("JOIN supplies_product ON supplies_product.id = supplies_price.product_id").
		Where("supplies_price.shop_id = ?", shopID)

	if categoryID > 0 {
		q = q.Where("supplies_product.category_id = ?", categoryID)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("supplies_product.name ILIKE ? OR supplies_product.brand ILIKE ? OR supplies_product.active_ingredient ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count shop prices")
	}

	var prices []domain.ChemicalPrice
	err := q.
		Preload("Product").Preload("Product.Category").
		Order("supplies_product.category_id, supplies_product.name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&prices).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list shop prices")
	}
	return prices, total, nil
}

func (r *GormPriceRepository) Create(ctx context.Context, price *domain.ChemicalPrice) error {
	// the (product, shop) unique index is the authority; a lost race
	// surfaces as a duplicate key, not a generic failure
	err := r.db.WithContext(ctx).Create(price).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateListing
	}
	return errors.Wrap(err, "create price")
}

// UpdatePrice performs the read-modify-write inside one transaction so
// a raw price change and its history row commit or fail together.
func (r *GormPriceRepository) UpdatePrice(ctx context.Context, upd PriceUpdate) (*domain.ChemicalPrice, *domain.PriceHistory, error) {
	var updated domain.ChemicalPrice
	var entry domain.PriceHistory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.ChemicalPrice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, upd.PriceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "lock price row")
		}

		if upd.ExpectedVersion >= 0 && row.Version != upd.ExpectedVersion {
			return ErrVersionConflict
		}

		oldPrice := row.Price
		row.Price = upd.NewPrice
		row.Version++
		row.UpdatedBy = upd.ChangedBy
		if err := tx.Save(&row).Error; err != nil {
			return errors.Wrap(err, "update price")
		}

		history := domain.PriceHistory{
			ChemicalPriceID: row.ID,
			OldPrice:        oldPrice,
			NewPrice:        upd.NewPrice,
			ChangedBy:       upd.ChangedBy,
			Reason:          upd.Reason,
		}
		if err := tx.Create(&history).Error; err != nil {
			return errors.Wrap(err, "append price history")
		}

		updated = row
		entry = history
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, &entry, nil
}

func (r *GormPriceRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.ChemicalPrice{}, id).Error, "delete price")
}

func (r *GormPriceRepository) History(ctx context.Context, priceID int64) ([]domain.PriceHistory, error) {
	var rows []domain.PriceHistory
	err := r.db.WithContext(ctx).
		Where("chemical_price_id = ?", priceID).
		Order("change_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query price history")
	}
	return rows, nil
}
