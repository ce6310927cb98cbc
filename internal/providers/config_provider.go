package providers

import (
	"fmt"
	"path/filepath"
	"rucd/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "RUCD_LOG_LEVEL")
	viper.BindEnv("persistence.filePath", "RUCD_FLEET_FILE")
	viper.BindEnv("persistence.backupPath", "RUCD_FLEET_BACKUP_FILE")
	viper.BindEnv("reminders.enabled", "RUCD_REMINDERS_ENABLED")
	viper.BindEnv("reminders.fireHour", "RUCD_FIRE_HOUR")
	viper.BindEnv("reminders.sweepInterval", "RUCD_SWEEP_INTERVAL")
	viper.BindEnv("cache.enabled", "RUCD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "RUCD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "RucReminderDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
