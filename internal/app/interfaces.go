package app

import (
	"github.com/agronet/agroportal/config"
	"gorm.io/gorm"
)

// DBProvider supplies the shared database handle.
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider supplies the loaded application configuration.
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider reads runtime settings stored in the database.
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// AppContext is the full application surface handed to components that
// need configuration, settings and the database together.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
}
