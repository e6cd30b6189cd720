package adminapi

import (
	"net/http"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/labstack/echo/v4"
)

// Location routes back the cascading country/region/city selectors.
func registerLocationRoutes() {
	webserver.ApiGET("/locations/countries", listCountries)
	webserver.ApiGET("/locations/regions", listRegions)
	webserver.ApiGET("/locations/cities", listCities)
}

func listCountries(c echo.Context) error {
	var countries []domain.Country
	if err := GetDB(c).Order("name").Find(&countries).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query countries", err.Error())
	}
	return ok(c, countries)
}

func listRegions(c echo.Context) error {
	query := GetDB(c).Order("name")
	if countryID := parseInt64Query(c, "country_id"); countryID > 0 {
		query = query.Where("country_id = ?", countryID)
	}
	var regions []domain.Region
	if err := query.Find(&regions).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query regions", err.Error())
	}
	return ok(c, regions)
}

func listCities(c echo.Context) error {
	query := GetDB(c).Order("name")
	if regionID := parseInt64Query(c, "region_id"); regionID > 0 {
		query = query.Where("region_id = ?", regionID)
	}
	var cities []domain.City
	if err := query.Find(&cities).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query cities", err.Error())
	}
	return ok(c, cities)
}
