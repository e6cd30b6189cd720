package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agronet/agroportal/internal/catalog"
	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/labstack/echo/v4"
)

type shopPayload struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	ShopType  string `json:"shop_type" validate:"omitempty,oneof=retail wholesale distributor online cooperative"`
	OwnerName string `json:"owner_name" validate:"omitempty,max=100"`

	PhoneNumber    string `json:"phone_number" validate:"omitempty,max=20"`
	WhatsappNumber string `json:"whatsapp_number" validate:"omitempty,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
	Website        string `json:"website" validate:"omitempty,url"`
	GoogleMapsLink string `json:"google_maps_link" validate:"omitempty,url"`

	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	RegionID  *int64 `json:"region_id"`
	CityID    *int64 `json:"city_id"`
	Address   string `json:"address"`

	LicenseNumber   string `json:"license_number" validate:"omitempty,max=100"`
	EstablishedYear *int   `json:"established_year" validate:"omitempty,gte=1900,lte=2100"`
	Description     string `json:"description"`

	WorkingHours      string `json:"working_hours" validate:"omitempty,max=200"`
	DeliveryAvailable bool   `json:"delivery_available"`
	DeliveryRadiusKm  *int   `json:"delivery_radius_km" validate:"omitempty,gte=0"`
}

func registerShopRoutes() {
	webserver.ApiGET("/supplies/shops", listShops)
	webserver.ApiGET("/supplies/shops/:id", getShop)
	webserver.ApiPOST("/supplies/shops", createShop)
	webserver.ApiPUT("/supplies/shops/:id", updateShop)
	webserver.ApiDELETE("/supplies/shops/:id", deleteShop)
}

func listShops(c echo.Context) error {
	page, pageSize := parsePagination(c, 10)
	filter := catalog.ShopFilter{
		ShopType:  strings.TrimSpace(c.QueryParam("shop_type")),
		CountryID: parseInt64Query(c, "country"),
		RegionID:  parseInt64Query(c, "region"),
		CityID:    parseInt64Query(c, "city"),
		Query:     strings.TrimSpace(c.QueryParam("q")),
	}

	repo := catalog.NewGormShopRepository(GetDB(c))
	shops, total, err := repo.List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shops", err.Error())
	}
	return paged(c, shops, total, page, pageSize)
}

// getShop returns the shop plus a page of its listings grouped by
// category, optionally narrowed by category or search text.
func getShop(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	db := GetDB(c)
	shop, err := catalog.NewGormShopRepository(db).GetActive(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "shop")
	}

	page, pageSize := parsePagination(c, 15)
	prices, total, err := catalog.NewGormPriceRepository(db).ListByShop(
		c.Request().Context(), id,
		parseInt64Query(c, "category"),
		strings.TrimSpace(c.QueryParam("q")),
		page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shop listings", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     "OK",
		"data":     shop,
		"listings": prices,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func bindShopPayload(c echo.Context, payload *shopPayload) error {
	if err := c.Bind(payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse shop parameters", nil)
	}
	if err := c.Validate(payload); err != nil {
		return handleValidationError(c, err)
	}
	return nil
}

func applyShopPayload(shop *domain.Shop, payload *shopPayload) {
	shop.Name = strings.TrimSpace(payload.Name)
	shop.ShopType = payload.ShopType
	if shop.ShopType == "" {
		shop.ShopType = "retail"
	}
	shop.OwnerName = strings.TrimSpace(payload.OwnerName)
	shop.PhoneNumber = payload.PhoneNumber
	shop.WhatsappNumber = payload.WhatsappNumber
	shop.Email = payload.Email
	shop.Website = payload.Website
	shop.GoogleMapsLink = payload.GoogleMapsLink
	shop.CountryID = payload.CountryID
	shop.RegionID = payload.RegionID
	shop.CityID = payload.CityID
	shop.Address = payload.Address
	shop.LicenseNumber = payload.LicenseNumber
	shop.EstablishedYear = payload.EstablishedYear
	shop.Description = payload.Description
	shop.WorkingHours = payload.WorkingHours
	shop.DeliveryAvailable = payload.DeliveryAvailable
	shop.DeliveryRadiusKm = payload.DeliveryRadiusKm
}

func createShop(c echo.Context) error {
	var payload shopPayload
	if err := bindShopPayload(c, &payload); err != nil {
		return err
	}

	shop := domain.Shop{IsActive: true}
	applyShopPayload(&shop, &payload)
	repo := catalog.NewGormShopRepository(GetDB(c))
	if err := repo.Create(c.Request().Context(), &shop); err != nil {
		return failFromErr(c, err, "shop")
	}
	recordOprLog(c, "create_shop", shop.Name)
	return ok(c, shop)
}

func updateShop(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	repo := catalog.NewGormShopRepository(GetDB(c))
	shop, err := repo.GetActive(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "shop")
	}

	var payload shopPayload
	if err := bindShopPayload(c, &payload); err != nil {
		return err
	}
	applyShopPayload(shop, &payload)
	// reset stale preloads so the response reflects the new location ids
	shop.Country, shop.Region, shop.City = nil, nil, nil
	if err := repo.Update(c.Request().Context(), shop); err != nil {
		return failFromErr(c, err, "shop")
	}
	recordOprLog(c, "update_shop", shop.Name)
	return ok(c, shop)
}

func deleteShop(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}
	repo := catalog.NewGormShopRepository(GetDB(c))
	if err := repo.Delete(c.Request().Context(), id); err != nil {
		return failFromErr(c, err, "shop")
	}
	recordOprLog(c, "delete_shop", fmt.Sprintf("id=%d", id))
	return ok(c, map[string]interface{}{"id": id})
}
