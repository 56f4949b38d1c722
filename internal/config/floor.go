package config

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FloorConfig carries the two floor tunables the engine consumes:
// the reservation block window and the auto-promotion grace window.
type FloorConfig struct {
	ReservationBlockHours   int `mapstructure:"reservationBlockHours"`
	AutoPromoteGraceMinutes int `mapstructure:"autoPromoteGraceMinutes"`
}

func (c FloorConfig) BlockWindow() time.Duration {
	return time.Duration(c.ReservationBlockHours) * time.Hour
}

func (c FloorConfig) GraceWindow() time.Duration {
	return time.Duration(c.AutoPromoteGraceMinutes) * time.Minute
}

func DefaultFloorConfig() FloorConfig {
	return FloorConfig{
		ReservationBlockHours:   2,
		AutoPromoteGraceMinutes: 15,
	}
}

// FloorConfigHolder serves the current FloorConfig snapshot; the file is
// watched so operators can tune windows without a restart.
type FloorConfigHolder struct {
	current atomic.Value // holds FloorConfig
}

func NewFloorConfigHolder() (*FloorConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("floor")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/floorops")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLOOROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultFloorConfig()
	v.SetDefault("floor.reservationBlockHours", defaults.ReservationBlockHours)
	v.SetDefault("floor.autoPromoteGraceMinutes", defaults.AutoPromoteGraceMinutes)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg FloorConfig
	if err := v.UnmarshalKey("floor", &cfg); err != nil {
		return nil, err
	}
	cfg = clampFloorConfig(cfg)

	holder := &FloorConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FloorConfig
		if err := v.UnmarshalKey("floor", &updated); err != nil {
			log.Printf("[floor-config] reload failed: %v", err)
			return
		}
		holder.current.Store(clampFloorConfig(updated))
		log.Printf("[floor-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticFloorConfigHolder wraps a fixed config, clamped the same way
// as the file-backed holder. Used where no config file is watched.
func NewStaticFloorConfigHolder(cfg FloorConfig) *FloorConfigHolder {
	holder := &FloorConfigHolder{}
	holder.current.Store(clampFloorConfig(cfg))
	return holder
}

func (h *FloorConfigHolder) Get() FloorConfig {
	return h.current.Load().(FloorConfig)
}

// clampFloorConfig keeps the windows inside their operational bounds:
// block window 0..24 hours, grace window 1..180 minutes.
func clampFloorConfig(cfg FloorConfig) FloorConfig {
	if cfg.ReservationBlockHours < 0 {
		cfg.ReservationBlockHours = 0
	}
	if cfg.ReservationBlockHours > 24 {
		cfg.ReservationBlockHours = 24
	}
	if cfg.AutoPromoteGraceMinutes < 1 {
		cfg.AutoPromoteGraceMinutes = 1
	}
	if cfg.AutoPromoteGraceMinutes > 180 {
		cfg.AutoPromoteGraceMinutes = 180
	}
	return cfg
}
