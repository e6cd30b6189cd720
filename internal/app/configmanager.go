package app

import (
	"sync"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const configCacheTTL = 30 * time.Second

// ConfigManager reads runtime settings from sys_config with a short
// in-memory cache so hot paths do not hit the database per call.
type ConfigManager struct {
	app *Application

	mu       sync.RWMutex
	cache    map[string]string
	cachedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, cache: make(map[string]string)}
}

func (m *ConfigManager) load() map[string]string {
	m.mu.RLock()
	if time.Since(m.cachedAt) < configCacheTTL {
		cache := m.cache
		m.mu.RUnlock()
		return cache
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.app.DB().Find(&rows).Error; err != nil {
		zap.L().Error("failed to load sys_config", zap.Error(err))
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}

	cache := make(map[string]string, len(rows))
	for _, row := range rows {
		cache[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = cache
	m.cachedAt = time.Now()
	m.mu.Unlock()
	return cache
}

// GetString returns the setting value, empty when unset.
func (m *ConfigManager) GetString(category, name string) string {
	return m.load()[category+"."+name]
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// SetValue upserts a setting and invalidates the cache.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var row domain.SysConfig
	err := m.app.DB().Where("type = ? AND name = ?", category, name).First(&row).Error
	if err == nil {
		err = m.app.DB().Model(&domain.SysConfig{}).Where("id = ?", row.ID).Update("value", value).Error
	} else {
		err = m.app.DB().Create(&domain.SysConfig{Type: category, Name: name, Value: value}).Error
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cachedAt = time.Time{}
	m.mu.Unlock()
	return nil
}
