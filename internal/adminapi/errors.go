package adminapi

import (
	"net/http"

	"github.com/agronet/agroportal/internal/catalog"
	"github.com/agronet/agroportal/internal/market"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// failFromErr maps service errors to the response envelope.
func failFromErr(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound) || errors.Is(err, market.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", message+" not found", nil)
	case errors.Is(err, catalog.ErrValidation):
		return fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, catalog.ErrVersionConflict):
		return fail(c, http.StatusConflict, "VERSION_CONFLICT", "The price was changed by another operator, reload and retry", nil)
	case errors.Is(err, catalog.ErrDuplicateListing):
		return fail(c, http.StatusConflict, "LISTING_EXISTS", "This shop already lists the product", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process "+message, err.Error())
	}
}
