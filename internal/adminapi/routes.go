package adminapi

import (
	"github.com/agronet/agroportal/internal/catalog"
	"github.com/asaskevich/EventBus"
	"github.com/labstack/echo/v4"
)

var eventBus EventBus.Bus

// RegisterRoutes wires every API route group. The bus carries
// price-change events to in-process subscribers.
func RegisterRoutes(bus EventBus.Bus) {
	eventBus = bus
	registerProductRoutes()
	registerShopRoutes()
	registerPriceRoutes()
	registerLocationRoutes()
	registerMarketRoutes()
}

// catalogService builds the request-scoped catalog write service.
func catalogService(c echo.Context) *catalog.Service {
	db := GetDB(c)
	return catalog.NewService(
		catalog.NewGormProductRepository(db),
		catalog.NewGormShopRepository(db),
		catalog.NewGormPriceRepository(db),
		eventBus,
	)
}

// comparison builds the request-scoped read-only comparison service.
func comparison(c echo.Context) *catalog.Comparison {
	db := GetDB(c)
	return catalog.NewComparison(
		catalog.NewGormProductRepository(db),
		catalog.NewGormPriceRepository(db),
	)
}
