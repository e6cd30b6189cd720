package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agronet/agroportal/internal/catalog"
	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type productPayload struct {
	Name               string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID         int64           `json:"category_id" validate:"required,gt=0"`
	Brand              string          `json:"brand" validate:"required,min=1,max=100"`
	ActiveIngredient   string          `json:"active_ingredient" validate:"omitempty,max=200"`
	Concentration      string          `json:"concentration" validate:"omitempty,max=50"`
	Description        string          `json:"description"`
	UsageInstructions  string          `json:"usage_instructions"`
	Dosage             string          `json:"dosage" validate:"omitempty,max=200"`
	ApplicationMethod  string          `json:"application_method" validate:"omitempty,oneof=foliar soil seed drip spray"`
	PackageSize        decimal.Decimal `json:"package_size"`
	PackageUnit        string          `json:"package_unit" validate:"required,oneof=kg liter gram ml bag bottle packet"`
	SafetyWarnings     string          `json:"safety_warnings"`
	RegistrationNumber string          `json:"registration_number" validate:"omitempty,max=100"`
	TargetCrops        string          `json:"target_crops"`
	TargetPests        string          `json:"target_pests"`
}

// registerProductRoutes registers product catalog endpoints.
func registerProductRoutes() {
	webserver.ApiGET("/supplies/categories", listCategories)
	webserver.ApiGET("/supplies/products", listProducts)
	webserver.ApiGET("/supplies/products/:id", getProduct)
	webserver.ApiPOST("/supplies/products", createProduct)
	webserver.ApiPUT("/supplies/products/:id", updateProduct)
	webserver.ApiDELETE("/supplies/products/:id", deleteProduct)
	webserver.ApiGET("/supplies/products/:id/prices", getProductPrices)
	webserver.ApiGET("/supplies/products/:id/compare", compareProduct)
	webserver.ApiGET("/supplies/products/:id/compare/export", exportProductComparison)
	webserver.ApiGET("/supplies/compare", compareCategory)
}

func listCategories(c echo.Context) error {
	var categories []domain.ChemicalCategory
	if err := GetDB(c).Order("category_type, name").Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, categories)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c, 15)
	filter := catalog.ProductFilter{
		CategoryID: parseInt64Query(c, "category"),
		CountryID:  parseInt64Query(c, "country"),
		RegionID:   parseInt64Query(c, "region"),
		Query:      strings.TrimSpace(c.QueryParam("q")),
	}

	repo := catalog.NewGormProductRepository(GetDB(c))
	products, total, err := repo.List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, products, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	loc := catalog.LocationFilter{
		CountryID: parseInt64Query(c, "country"),
		RegionID:  parseInt64Query(c, "region"),
		CityID:    parseInt64Query(c, "city"),
	}
	result, err := comparison(c).ComparePrices(c.Request().Context(), id, loc)
	if err != nil {
		return failFromErr(c, err, "product")
	}
	return ok(c, result)
}

func bindProductPayload(c echo.Context, payload *productPayload) error {
	if err := c.Bind(payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(payload); err != nil {
		return handleValidationError(c, err)
	}
	return nil
}

func applyProductPayload(product *domain.ChemicalProduct, payload *productPayload) {
	product.Name = strings.TrimSpace(payload.Name)
	product.CategoryID = payload.CategoryID
	product.Brand = strings.TrimSpace(payload.Brand)
	product.ActiveIngredient = strings.TrimSpace(payload.ActiveIngredient)
	product.Concentration = strings.TrimSpace(payload.Concentration)
	product.Description = payload.Description
	product.UsageInstructions = payload.UsageInstructions
	product.Dosage = payload.Dosage
	product.ApplicationMethod = payload.ApplicationMethod
	product.PackageSize = payload.PackageSize
	product.PackageUnit = payload.PackageUnit
	product.SafetyWarnings = payload.SafetyWarnings
	product.RegistrationNumber = payload.RegistrationNumber
	product.TargetCrops = payload.TargetCrops
	product.TargetPests = payload.TargetPests
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := bindProductPayload(c, &payload); err != nil {
		return err
	}

	product := domain.ChemicalProduct{IsActive: true}
	applyProductPayload(&product, &payload)
	if err := catalogService(c).SaveProduct(c.Request().Context(), &product); err != nil {
		return failFromErr(c, err, "product")
	}
	recordOprLog(c, "create_product", fmt.Sprintf("%s %s", product.Brand, product.Name))
	return ok(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	repo := catalog.NewGormProductRepository(GetDB(c))
	product, err := repo.GetActive(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "product")
	}

	var payload productPayload
	if err := bindProductPayload(c, &payload); err != nil {
		return err
	}
	applyProductPayload(product, &payload)
	if err := catalogService(c).SaveProduct(c.Request().Context(), product); err != nil {
		return failFromErr(c, err, "product")
	}
	recordOprLog(c, "update_product", fmt.Sprintf("%s %s", product.Brand, product.Name))
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	repo := catalog.NewGormProductRepository(GetDB(c))
	if err := repo.Delete(c.Request().Context(), id); err != nil {
		return failFromErr(c, err, "product")
	}
	recordOprLog(c, "delete_product", fmt.Sprintf("id=%d", id))
	return ok(c, map[string]interface{}{"id": id})
}

// getProductPrices returns in-stock prices sorted ascending by raw
// price, in the legacy JSON shape consumed by the price calculator.
func getProductPrices(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	product, prices, err := comparison(c).InStockPrices(c.Request().Context(), id)
	if err != nil {
		return failFromErr(c, err, "product")
	}

	priceData := make([]map[string]interface{}, 0, len(prices))
	for i := range prices {
		row := map[string]interface{}{
			"id":           prices[i].ID,
			"price":        prices[i].Price,
			"currency":     prices[i].Currency,
			"package_size": product.PackageSize,
			"package_unit": product.PackageUnit,
		}
		if prices[i].Shop != nil {
			row["shop_name"] = prices[i].Shop.Name
			row["shop_location"] = prices[i].Shop.LocationDisplay()
		}
		priceData = append(priceData, row)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"product_name": fmt.Sprintf("%s %s", product.Brand, product.Name),
		"package_size": product.PackageSize,
		"package_unit": product.PackageUnit,
		"prices":       priceData,
	})
}

func compareProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	loc := catalog.LocationFilter{
		CountryID: parseInt64Query(c, "country"),
		RegionID:  parseInt64Query(c, "region"),
		CityID:    parseInt64Query(c, "city"),
	}
	result, err := comparison(c).ComparePrices(c.Request().Context(), id, loc)
	if err != nil {
		return failFromErr(c, err, "product")
	}
	return ok(c, result)
}

func exportProductComparison(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	loc := catalog.LocationFilter{
		CountryID: parseInt64Query(c, "country"),
		RegionID:  parseInt64Query(c, "region"),
		CityID:    parseInt64Query(c, "city"),
	}
	result, err := comparison(c).ComparePrices(c.Request().Context(), id, loc)
	if err != nil {
		return failFromErr(c, err, "product")
	}

	book := catalog.BuildComparisonWorkbook(result)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="price-comparison-%d.xlsx"`, id))
	c.Response().WriteHeader(http.StatusOK)
	return book.Write(c.Response())
}

// compareCategory returns per-product raw price ranges for a filtered
// set of products.
func compareCategory(c echo.Context) error {
	filter := catalog.ProductFilter{
		CategoryID: parseInt64Query(c, "category"),
		Query:      strings.TrimSpace(c.QueryParam("q")),
	}
	loc := catalog.LocationFilter{
		CountryID: parseInt64Query(c, "country"),
		RegionID:  parseInt64Query(c, "region"),
		CityID:    parseInt64Query(c, "city"),
	}

	// bounded for response size, matching the legacy comparison page
	rows, err := comparison(c).CompareCategory(c.Request().Context(), filter, loc, 20)
	if err != nil {
		return failFromErr(c, err, "comparison")
	}
	return ok(c, rows)
}
