package adminapi

import (
	"fmt"
	"net/http"

	"github.com/agronet/agroportal/internal/catalog"
	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type listingPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	ShopID    int64 `json:"shop_id" validate:"required,gt=0"`

	Price              decimal.Decimal `json:"price"`
	Currency           string          `json:"currency" validate:"omitempty,len=3"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`

	IsInStock     bool `json:"is_in_stock"`
	StockQuantity *int `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinimumOrder  int  `json:"minimum_order" validate:"omitempty,gte=1"`

	BulkPriceThreshold *int             `json:"bulk_price_threshold" validate:"omitempty,gte=1"`
	BulkPrice          *decimal.Decimal `json:"bulk_price"`

	Notes string `json:"notes"`
}

type priceUpdatePayload struct {
	Price decimal.Decimal `json:"price"`
	// Version as read by the operator. Omitting it (-1) skips the
	// conflict check for legacy clients.
	Version *int64 `json:"version"`
	Reason  string `json:"reason" validate:"omitempty,max=200"`
}

type stockPayload struct {
	IsInStock     bool `json:"is_in_stock"`
	StockQuantity *int `json:"stock_quantity" validate:"omitempty,gte=0"`
}

func registerPriceRoutes() {
	webserver.ApiPOST("/supplies/prices", createListing)
	webserver.ApiGET("/supplies/prices/:id", getListing)
	webserver.ApiPUT("/supplies/prices/:id", updateListingPrice)
	webserver.ApiPUT("/supplies/prices/:id/stock", updateListingStock)
	webserver.ApiDELETE("/supplies/prices/:id", deleteListing)
	webserver.ApiGET("/supplies/prices/:id/history", getListingHistory)
}

func createListing(c echo.Context) error {
	var payload listingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse listing parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	minOrder := payload.MinimumOrder
	if minOrder < 1 {
		minOrder = 1
	}
	price := domain.ChemicalPrice{
		ProductID:          payload.ProductID,
		ShopID:             payload.ShopID,
		Price:              payload.Price,
		Currency:           payload.Currency,
		DiscountPercentage: payload.DiscountPercentage,
		IsInStock:          payload.IsInStock,
		StockQuantity:      payload.StockQuantity,
		MinimumOrder:       minOrder,
		BulkPriceThreshold: payload.BulkPriceThreshold,
		BulkPrice:          payload.BulkPrice,
		Notes:              payload.Notes,
		UpdatedBy:          operatorName(c),
	}
	if err := catalogService(c).CreateListing(c.Request().Context(), &price); err != nil {
		return failFromErr(c, err, "listing")
	}
	recordOprLog(c, "create_listing", fmt.Sprintf("product=%d shop=%d price=%s", price.ProductID, price.ShopID, price.Price))
	return ok(c, price)
}

func getListing(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price ID", nil)
	}
	price, err := catalog.NewGormPriceRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "listing")
	}
	return ok(c, price)
}

func updateListingPrice(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price ID", nil)
	}

	var payload priceUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	expected := int64(-1)
	if payload.Version != nil {
		expected = *payload.Version
	}
	updated, err := catalogService(c).UpdatePrice(c.Request().Context(), catalog.PriceUpdate{
		PriceID:         id,
		NewPrice:        payload.Price,
		ExpectedVersion: expected,
		ChangedBy:       operatorName(c),
		Reason:          payload.Reason,
	})
	if err != nil {
		return failFromErr(c, err, "price")
	}
	recordOprLog(c, "update_price", fmt.Sprintf("price=%d new=%s", id, updated.Price))
	return ok(c, updated)
}

// updateListingStock flips stock availability without touching the
// price, so no history row is written.
func updateListingStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price ID", nil)
	}

	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	db := GetDB(c)
	repo := catalog.NewGormPriceRepository(db)
	price, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "listing")
	}

	updates := map[string]interface{}{
		"is_in_stock":    payload.IsInStock,
		"stock_quantity": payload.StockQuantity,
		"updated_by":     operatorName(c),
	}
	if err := db.WithContext(c.Request().Context()).
		Model(&domain.ChemicalPrice{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update stock", err.Error())
	}
	price.IsInStock = payload.IsInStock
	price.StockQuantity = payload.StockQuantity
	recordOprLog(c, "update_stock", fmt.Sprintf("price=%d in_stock=%t", id, payload.IsInStock))
	return ok(c, price)
}

func deleteListing(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price ID", nil)
	}
	if err := catalog.NewGormPriceRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failFromErr(c, err, "listing")
	}
	recordOprLog(c, "delete_listing", fmt.Sprintf("id=%d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func getListingHistory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid price ID", nil)
	}
	entries, err := catalogService(c).PriceHistory(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "listing")
	}
	return ok(c, entries)
}
