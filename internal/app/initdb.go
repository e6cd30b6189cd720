package app

import (
	"strings"
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/agronet/agroportal/pkg/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "agroportal"

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashedPassword, herr := common.BcryptHash(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)
	if !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// defaultSettings seed sys_config on first boot.
var defaultSettings = []domain.SysConfig{
	{Sort: 1, Type: "system", Name: "default_currency", Value: "KGS", Remark: "Currency assumed when a listing omits one"},
	{Sort: 2, Type: "system", Name: "stale_price_days", Value: "30", Remark: "Days before a listing counts as stale in the audit job"},
	{Sort: 3, Type: "system", Name: "oprlog_keep_days", Value: "365", Remark: "Retention of operator action logs"},
	{Sort: 4, Type: "market", Name: "default_date_range", Value: "7", Remark: "Default trailing window in days for market price queries"},
}

func (a *Application) checkSettings() {
	for _, setting := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", setting.Type, setting.Name).
			Count(&count)
		if count == 0 {
			a.gormDB.Create(&setting)
			zap.L().Info("initialized config",
				zap.String("key", setting.Type+"."+setting.Name),
				zap.String("default", setting.Value))
		}
	}
}

// checkCategories initializes the standard chemical categories.
func (a *Application) checkCategories() {
	defaultCategories := []domain.ChemicalCategory{
		{Name: "Fertilizer", CategoryType: "fertilizer", Icon: "leaf", Description: "Mineral and organic fertilizers"},
		{Name: "Herbicide", CategoryType: "herbicide", Icon: "ban", Description: "Weed control products"},
		{Name: "Insecticide", CategoryType: "insecticide", Icon: "bug", Description: "Insect pest control products"},
		{Name: "Fungicide", CategoryType: "fungicide", Icon: "shield", Description: "Fungal disease control products"},
		{Name: "Growth Regulator", CategoryType: "growth_regulator", Icon: "chart", Description: "Plant growth regulators and stimulants"},
		{Name: "Seed Treatment", CategoryType: "seed_treatment", Icon: "seedling", Description: "Seed protectants and coatings"},
	}

	for _, category := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.ChemicalCategory{}).Where("category_type = ?", category.CategoryType).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&category).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("name", category.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("name", category.Name))
			}
		}
	}
}

// checkCountries seeds the location hierarchy root.
func (a *Application) checkCountries() {
	defaultCountries := []domain.Country{
		{Name: "Kyrgyzstan", Code: "KG"},
		{Name: "Kazakhstan", Code: "KZ"},
		{Name: "Uzbekistan", Code: "UZ"},
		{Name: "Tajikistan", Code: "TJ"},
	}

	for _, country := range defaultCountries {
		var count int64
		a.gormDB.Model(&domain.Country{}).Where("code = ?", country.Code).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&country).Error; err != nil {
				zap.L().Error("failed to create default country", zap.String("code", country.Code), zap.Error(err))
				continue
			}
			zap.L().Info("initialized default country", zap.String("name", country.Name))
		}
	}

	// Kyrgyz oblasts under the primary country
	var kg domain.Country
	if err := a.gormDB.Where("code = ?", "KG").First(&kg).Error; err != nil {
		return
	}
	defaultRegions := []string{"Chuy", "Osh", "Jalal-Abad", "Issyk-Kul", "Naryn", "Talas", "Batken"}
	for _, name := range defaultRegions {
		var count int64
		a.gormDB.Model(&domain.Region{}).Where("country_id = ? AND name = ?", kg.ID, name).Count(&count)
		if count == 0 {
			a.gormDB.Create(&domain.Region{CountryID: kg.ID, Name: name, TypeName: "Oblast"})
		}
	}
}
