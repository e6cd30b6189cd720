package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agronet/agroportal/config"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContextKeyDB is the echo context key carrying the request database
// handle.
const ContextKeyDB = "gormdb"

var server *WebServer

// WebServer wraps the echo instance and the /api group all handlers
// register against.
type WebServer struct {
	root      *echo.Echo
	api       *echo.Group
	appConfig *config.AppConfig
}

// jsonSerializer plugs json-iterator into echo.
type jsonSerializer struct{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

// payloadValidator adapts go-playground/validator to echo's Validator.
type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the global web server. The database handle is injected
// into every request context so handlers stay wiring-free.
func Init(appConfig *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyDB, db)
			return next(c)
		}
	})
	e.Use(requestLogger())

	server = &WebServer{
		root:      e,
		api:       e.Group("/api"),
		appConfig: appConfig,
	}
	return server
}

// requestLogger logs each request with zap.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			zap.L().Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()))
			return nil
		}
	}
}

// Instance returns the global web server.
func Instance() *WebServer {
	return server
}

// Start blocks serving HTTP until the listener fails or is shut down.
func Start() error {
	addr := fmt.Sprintf("%s:%d", server.appConfig.Web.Host, server.appConfig.Web.Port)
	zap.S().Infof("starting web server on %s", addr)
	return server.root.Start(addr)
}

// Echo exposes the underlying echo instance (tests, shutdown).
func Echo() *echo.Echo {
	return server.root
}

// ApiGET registers a GET handler under /api.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers a POST handler under /api.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers a PUT handler under /api.
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers a DELETE handler under /api.
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
