package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/internal/webserver"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": "OK",
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     "OK",
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// parsePagination reads page/perPage query params with a per-endpoint
// default page size.
func parsePagination(c echo.Context, defaultSize int) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = defaultSize
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 200 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// parseInt64Query returns the query param as int64, zero when absent or
// malformed.
func parseInt64Query(c echo.Context, name string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(c.QueryParam(name)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		return fail(c, http.StatusBadRequest, "VALIDATION", "Invalid request parameters", fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION", "Invalid request parameters", err.Error())
}

// operatorName resolves the acting operator for write attribution.
func operatorName(c echo.Context) string {
	if name := strings.TrimSpace(c.Request().Header.Get("X-Operator")); name != "" {
		return name
	}
	return "system"
}

// recordOprLog appends an operator action entry.
func recordOprLog(c echo.Context, action, desc string) {
	GetDB(c).Create(&domain.SysOprLog{
		OprName:   operatorName(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
