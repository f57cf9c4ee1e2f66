package config

import "github.com/spf13/viper"

type Config struct {
	DBPath      string `mapstructure:"CHEGA_DB_PATH"`
	ExportDir   string `mapstructure:"CHEGA_EXPORT_DIR"`
	SirenFile   string `mapstructure:"CHEGA_SIREN_FILE"`
	SimulateGPS bool   `mapstructure:"CHEGA_SIMULATE_GPS"`
	MockAlerts  bool   `mapstructure:"CHEGA_MOCK_ALERTS"`
	EnableBLE   bool   `mapstructure:"CHEGA_ENABLE_BLE"`

	PressWindowMs  int     `mapstructure:"CHEGA_PRESS_WINDOW_MS"`
	ShakeThreshold float64 `mapstructure:"CHEGA_SHAKE_THRESHOLD"`

	SampleIntervalSec   int     `mapstructure:"CHEGA_SAMPLE_INTERVAL_SEC"`
	SafetyIntervalSec   int     `mapstructure:"CHEGA_SAFETY_INTERVAL_SEC"`
	StationaryGapSec    int     `mapstructure:"CHEGA_STATIONARY_GAP_SEC"`
	StationaryRadiusM   float64 `mapstructure:"CHEGA_STATIONARY_RADIUS_M"`
	BatteryWarnPct      int     `mapstructure:"CHEGA_BATTERY_WARN_PCT"`
	BatteryAlertPct     int     `mapstructure:"CHEGA_BATTERY_ALERT_PCT"`
	HistoryCap          int     `mapstructure:"CHEGA_HISTORY_CAP"`
	QuickMenuTimeoutSec int     `mapstructure:"CHEGA_QUICK_MENU_TIMEOUT_SEC"`
	EmergencyExpireMin  int     `mapstructure:"CHEGA_EMERGENCY_EXPIRE_MIN"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("CHEGA_DB_PATH", "chega.db")
	viper.SetDefault("CHEGA_EXPORT_DIR", "trajetos")
	viper.SetDefault("CHEGA_SIREN_FILE", "assets/siren.wav")
	viper.SetDefault("CHEGA_SIMULATE_GPS", false)
	viper.SetDefault("CHEGA_MOCK_ALERTS", false)
	viper.SetDefault("CHEGA_ENABLE_BLE", true)
	viper.SetDefault("CHEGA_PRESS_WINDOW_MS", 2000)
	viper.SetDefault("CHEGA_SHAKE_THRESHOLD", 30.0)
	viper.SetDefault("CHEGA_SAMPLE_INTERVAL_SEC", 30)
	viper.SetDefault("CHEGA_SAFETY_INTERVAL_SEC", 60)
	viper.SetDefault("CHEGA_STATIONARY_GAP_SEC", 300)
	viper.SetDefault("CHEGA_STATIONARY_RADIUS_M", 10.0)
	viper.SetDefault("CHEGA_BATTERY_WARN_PCT", 20)
	viper.SetDefault("CHEGA_BATTERY_ALERT_PCT", 10)
	viper.SetDefault("CHEGA_HISTORY_CAP", 100)
	viper.SetDefault("CHEGA_QUICK_MENU_TIMEOUT_SEC", 5)
	viper.SetDefault("CHEGA_EMERGENCY_EXPIRE_MIN", 0)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
