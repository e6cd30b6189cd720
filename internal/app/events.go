package app

import (
	"github.com/agronet/agroportal/internal/catalog"
	"go.uber.org/zap"
)

// subscribeEvents wires in-process listeners to the event bus.
func (a *Application) subscribeEvents() {
	err := a.bus.Subscribe(catalog.TopicPriceUpdated, func(event catalog.PriceUpdatedEvent) {
		zap.L().Info("price change observed",
			zap.Int64("price_id", event.PriceID),
			zap.Int64("product_id", event.ProductID),
			zap.Int64("shop_id", event.ShopID),
			zap.String("old", event.OldPrice.String()),
			zap.String("new", event.NewPrice.String()),
			zap.String("change_percent", event.ChangePercent.String()),
			zap.String("changed_by", event.ChangedBy))
	})
	if err != nil {
		zap.L().Error("failed to subscribe price events", zap.Error(err))
	}
}
