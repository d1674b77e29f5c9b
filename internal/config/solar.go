package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SolarConfig carries the economic constants used by the sizing and
// financial calculators. Values reflect the Spanish residential market.
type SolarConfig struct {
	PanelWattage        int     `mapstructure:"panelWattage"`
	ElectricityPriceEUR float64 `mapstructure:"electricityPriceEur"`
	CostPerKwEUR        float64 `mapstructure:"costPerKwEur"`
	SystemLossPercent   float64 `mapstructure:"systemLossPercent"`
}

func DefaultSolarConfig() SolarConfig {
	return SolarConfig{
		PanelWattage:        550,
		ElectricityPriceEUR: 0.25,
		CostPerKwEUR:        1200,
		SystemLossPercent:   14,
	}
}

// SolarConfigHolder exposes the current solar economics, hot-reloaded
// from solar.yml when the file changes.
type SolarConfigHolder struct {
	current atomic.Value // holds SolarConfig
}

func NewSolarConfigHolder(logger *zap.Logger) (*SolarConfigHolder, error) {
	log := logger.Named("config.solar")
	v := viper.New()

	v.SetConfigName("solar")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/helios/config")
	v.AddConfigPath("/etc/helios")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HELIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSolarConfig()
	v.SetDefault("solar.panelWattage", defaults.PanelWattage)
	v.SetDefault("solar.electricityPriceEur", defaults.ElectricityPriceEUR)
	v.SetDefault("solar.costPerKwEur", defaults.CostPerKwEUR)
	v.SetDefault("solar.systemLossPercent", defaults.SystemLossPercent)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg SolarConfig
	if err := v.UnmarshalKey("solar", &cfg); err != nil {
		return nil, err
	}
	if err := validateSolarConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SolarConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SolarConfig
		if err := v.UnmarshalKey("solar", &updated); err != nil {
			log.Warn("solar config reload failed", zap.Error(err))
			return
		}
		if err := validateSolarConfig(updated); err != nil {
			log.Warn("invalid solar config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("solar config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticSolarConfigHolder wraps a fixed config without file watching.
func NewStaticSolarConfigHolder(cfg SolarConfig) *SolarConfigHolder {
	holder := &SolarConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SolarConfigHolder) Get() SolarConfig {
	return h.current.Load().(SolarConfig)
}

func validateSolarConfig(cfg SolarConfig) error {
	if cfg.PanelWattage <= 0 {
		return errors.New("solar.panelWattage must be positive")
	}
	if cfg.ElectricityPriceEUR <= 0 {
		return errors.New("solar.electricityPriceEur must be positive")
	}
	if cfg.CostPerKwEUR <= 0 {
		return errors.New("solar.costPerKwEur must be positive")
	}
	if cfg.SystemLossPercent < 0 || cfg.SystemLossPercent >= 100 {
		return errors.New("solar.systemLossPercent out of range")
	}
	return nil
}
