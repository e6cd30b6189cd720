package adminapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/market"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerMarketRoutes() {
	webserver.ApiGET("/market/products", listMarketProducts)
	webserver.ApiGET("/market/markets", listMarkets)
	webserver.ApiGET("/market/prices", listMarketPrices)
	webserver.ApiGET("/market/products/:id/trend", getMarketTrend)
	webserver.ApiPOST("/market/prices/import", importMarketPrices)
}

func marketService(c echo.Context) *market.Service {
	return market.NewService(market.NewGormRepository(GetDB(c)))
}

func listMarketProducts(c echo.Context) error {
	products, err := marketService(c).Repo().ListProducts(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query market products", err.Error())
	}
	return ok(c, products)
}

func listMarkets(c echo.Context) error {
	markets, err := marketService(c).Repo().ListMarkets(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query markets", err.Error())
	}
	return ok(c, markets)
}

// marketPriceView wraps an observation with its localized display form.
type marketPriceView struct {
	domain.MarketPrice
	Display string `json:"display"`
}

// listMarketPrices returns recent observations, newest first. date_range
// selects the trailing window in days and defaults to one week.
func listMarketPrices(c echo.Context) error {
	page, pageSize := parsePagination(c, 15)

	days := 7
	if v, err := strconv.Atoi(c.QueryParam("date_range")); err == nil && v > 0 {
		days = v
	}
	filter := market.PriceFilter{
		ProductID: parseInt64Query(c, "product"),
		MarketID:  parseInt64Query(c, "market"),
		Since:     time.Now().AddDate(0, 0, -days),
		Query:     strings.TrimSpace(c.QueryParam("q")),
	}

	prices, total, err := marketService(c).Repo().ListPrices(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query market prices", err.Error())
	}

	lang := requestLanguage(c)
	views := make([]marketPriceView, 0, len(prices))
	for i := range prices {
		views = append(views, marketPriceView{
			MarketPrice: prices[i],
			Display:     market.LocalizedPriceDisplay(&prices[i], lang),
		})
	}
	return paged(c, views, total, page, pageSize)
}

func getMarketTrend(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	trend, err := marketService(c).ProductTrend(c.Request().Context(), id, parseInt64Query(c, "market"))
	if err != nil {
		return failFromErr(c, err, "market product")
	}
	return ok(c, trend)
}

// importMarketPrices accepts a CSV body (or multipart "file" part) of
// price observations and persists the valid rows.
func importMarketPrices(c echo.Context) error {
	var data []byte
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open uploaded file", nil)
		}
		defer src.Close()
		data, err = io.ReadAll(src)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read uploaded file", nil)
		}
	} else {
		data, err = io.ReadAll(c.Request().Body)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read request body", nil)
		}
	}
	if len(data) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Empty import payload", nil)
	}

	result, err := marketService(c).ImportCSV(c.Request().Context(), string(data))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to import market prices", err.Error())
	}
	recordOprLog(c, "import_market_prices", strconv.Itoa(result.Imported)+" rows imported")
	return ok(c, result)
}

// requestLanguage prefers the lang query param over Accept-Language.
func requestLanguage(c echo.Context) string {
	if lang := strings.TrimSpace(c.QueryParam("lang")); lang != "" {
		return lang
	}
	return c.Request().Header.Get("Accept-Language")
}
