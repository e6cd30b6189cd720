package catalog

import (
	"context"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/pricing"
	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TopicPriceUpdated carries PriceUpdatedEvent on the in-process bus.
const TopicPriceUpdated = "price.updated"

// PriceUpdatedEvent is published after a price change commits.
type PriceUpdatedEvent struct {
	PriceID       int64
	ProductID     int64
	ShopID        int64
	OldPrice      decimal.Decimal
	NewPrice      decimal.Decimal
	ChangePercent decimal.Decimal
	ChangedBy     string
}

// ErrValidation marks write-time input rejections (negative price,
// discount out of range, non-positive package size).
var ErrValidation = errors.New("validation failed")

// Service is the write path of the catalog: listing creation and
// operator price updates with history.
type Service struct {
	products ProductRepository
	shops    ShopRepository
	prices   PriceRepository
	bus      EventBus.Bus
}

func NewService(products ProductRepository, shops ShopRepository, prices PriceRepository, bus EventBus.Bus) *Service {
	return &Service{products: products, shops: shops, prices: prices, bus: bus}
}

// Bus exposes the event bus for subscribers.
func (s *Service) Bus() EventBus.Bus {
	return s.bus
}

// ValidateProduct enforces product write invariants.
func ValidateProduct(product *domain.ChemicalProduct) error {
	if product.PackageSize.Sign() <= 0 {
		return errors.Wrap(ErrValidation, "package size must be positive")
	}
	switch product.PackageUnit {
	case domain.UnitKg, domain.UnitLiter, domain.UnitGram, domain.UnitMl,
		domain.UnitBag, domain.UnitBottle, domain.UnitPacket:
	default:
		return errors.Wrapf(ErrValidation, "unknown package unit %q", product.PackageUnit)
	}
	return nil
}

// ValidateListing enforces price write invariants.
func ValidateListing(price decimal.Decimal, discountPercent decimal.Decimal) error {
	if price.Sign() < 0 {
		return errors.Wrap(ErrValidation, "price must not be negative")
	}
	if discountPercent.Sign() < 0 || discountPercent.Cmp(decimal.NewFromInt(100)) > 0 {
		return errors.Wrap(ErrValidation, "discount percentage must be within 0-100")
	}
	return nil
}

// SaveProduct creates or updates a product, stamping the formulation
// from the classifier so reads never depend on the heuristic.
func (s *Service) SaveProduct(ctx context.Context, product *domain.ChemicalProduct) error {
	if err := ValidateProduct(product); err != nil {
		return err
	}
	product.Formulation = pricing.Classify(product.PackageUnit, product.Concentration)
	if product.ID == 0 {
		return s.products.Create(ctx, product)
	}
	return s.products.Update(ctx, product)
}

// CreateListing adds a shop's price for a product. The (product, shop)
// pair must not already be listed and both sides must exist.
func (s *Service) CreateListing(ctx context.Context, price *domain.ChemicalPrice) error {
	if err := ValidateListing(price.Price, price.DiscountPercentage); err != nil {
		return err
	}
	if _, err := s.products.GetActive(ctx, price.ProductID); err != nil {
		return err
	}
	if _, err := s.shops.GetActive(ctx, price.ShopID); err != nil {
		return err
	}
	if price.Currency == "" {
		price.Currency = "KGS"
	}
	return s.prices.Create(ctx, price)
}

// UpdatePrice applies an operator price change. The repository performs
// the transactional update plus history append; on success an event is
// published for interested listeners. The event's old price comes from
// the history row written under the row lock, so it always agrees with
// the log even when operators race.
func (s *Service) UpdatePrice(ctx context.Context, upd PriceUpdate) (*domain.ChemicalPrice, error) {
	if err := ValidateListing(upd.NewPrice, decimal.Zero); err != nil {
		return nil, err
	}

	updated, entry, err := s.prices.UpdatePrice(ctx, upd)
	if err != nil {
		return nil, err
	}

	event := PriceUpdatedEvent{
		PriceID:       updated.ID,
		ProductID:     updated.ProductID,
		ShopID:        updated.ShopID,
		OldPrice:      entry.OldPrice,
		NewPrice:      updated.Price,
		ChangePercent: pricing.ChangePercent(entry.OldPrice, updated.Price),
		ChangedBy:     upd.ChangedBy,
	}
	if s.bus != nil {
		s.bus.Publish(TopicPriceUpdated, event)
	}
	zap.L().Info("price updated",
		zap.Int64("price_id", event.PriceID),
		zap.String("old", event.OldPrice.String()),
		zap.String("new", event.NewPrice.String()),
		zap.String("by", event.ChangedBy))
	return updated, nil
}

// PriceHistory returns the append-only change log for a listing,
// newest first, with the relative change of each entry.
type HistoryEntry struct {
	domain.PriceHistory
	ChangePercent decimal.Decimal `json:"change_percent"`
}

func (s *Service) PriceHistory(ctx context.Context, priceID int64) ([]HistoryEntry, error) {
	if _, err := s.prices.GetByID(ctx, priceID); err != nil {
		return nil, err
	}
	rows, err := s.prices.History(ctx, priceID)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			PriceHistory:  row,
			ChangePercent: pricing.ChangePercent(row.OldPrice, row.NewPrice),
		})
	}
	return entries, nil
}
