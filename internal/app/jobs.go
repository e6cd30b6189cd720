package app

import (
	"time"

	"github.com/agronet/agroportal/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// initJob registers the background cron jobs.
func (a *Application) initJob() {
	a.sched = cron.New(cron.WithLocation(time.Local))

	_, err := a.sched.AddFunc("@every 60s", a.jobSystemMonitor)
	if err != nil {
		zap.L().Error("failed to schedule system monitor job", zap.Error(err))
	}
	_, err = a.sched.AddFunc("@daily", a.jobCleanOprLogs)
	if err != nil {
		zap.L().Error("failed to schedule oprlog cleanup job", zap.Error(err))
	}
	_, err = a.sched.AddFunc("@daily", a.jobStalePriceAudit)
	if err != nil {
		zap.L().Error("failed to schedule stale price audit job", zap.Error(err))
	}

	a.sched.Start()
}

// jobSystemMonitor samples host load for the operations log.
func (a *Application) jobSystemMonitor() {
	percents, err := cpu.Percent(time.Second, false)
	cpuUse := 0.0
	if err == nil && len(percents) > 0 {
		cpuUse = percents[0]
	}
	vm, err := mem.VirtualMemory()
	memUse := 0.0
	if err == nil {
		memUse = vm.UsedPercent
	}
	zap.L().Debug("system monitor",
		zap.Float64("cpu_percent", cpuUse),
		zap.Float64("mem_percent", memUse))
}

// jobCleanOprLogs drops operator log rows past the retention window.
func (a *Application) jobCleanOprLogs() {
	keepDays := a.GetSettingsInt64Value("system", "oprlog_keep_days")
	if keepDays <= 0 {
		keepDays = 365
	}
	cutoff := time.Now().AddDate(0, 0, -int(keepDays))
	result := a.gormDB.Where("opt_time < ?", cutoff).Delete(&domain.SysOprLog{})
	if result.Error != nil {
		zap.L().Error("oprlog cleanup failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("cleaned operator logs", zap.Int64("rows", result.RowsAffected))
	}
}

// jobStalePriceAudit reports listings whose price has not been touched
// within the configured window so operators can chase shops for updates.
func (a *Application) jobStalePriceAudit() {
	staleDays := a.GetSettingsInt64Value("system", "stale_price_days")
	if staleDays <= 0 {
		staleDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -int(staleDays))

	var stale int64
	err := a.gormDB.Model(&domain.ChemicalPrice{}).
		Where("updated_at < ? AND is_in_stock = ?", cutoff, true).
		Count(&stale).Error
	if err != nil {
		zap.L().Error("stale price audit failed", zap.Error(err))
		return
	}
	if stale > 0 {
		zap.L().Warn("stale in-stock listings found",
			zap.Int64("count", stale),
			zap.Int64("older_than_days", staleDays))
	}
}
