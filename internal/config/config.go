package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/harborlight-systems/engagewatch/internal/scale"
)

// Config is the top-level engagewatch configuration.
type Config struct {
	Engine Engine `mapstructure:"engine"`
	Output Output `mapstructure:"output"`
}

// Engine holds every tunable the scoring engine reads. All fields have
// documented defaults, so the engine is runnable with zero configuration.
type Engine struct {
	CapFeedback          int             `mapstructure:"cap_feedback"`
	RetentionHorizonDays int             `mapstructure:"retention_horizon_days"`
	ROIWindowDays        int             `mapstructure:"roi_window_days"`
	PromoterWeights      PromoterWeights `mapstructure:"promoter_weights"`
	PriorityWeights      PriorityWeights `mapstructure:"priority_weights"`
	NormBounds           NormBounds      `mapstructure:"norm_bounds"`
}

// PromoterWeights defines the promoter composite weights.
type PromoterWeights struct {
	Satisfaction float64 `mapstructure:"satisfaction"`
	Attendance   float64 `mapstructure:"attendance"`
	Objectives   float64 `mapstructure:"objectives"`
	Feedback     float64 `mapstructure:"feedback"`
}

// PriorityWeights defines the initiative priority blend weights.
type PriorityWeights struct {
	ROI           float64 `mapstructure:"roi"`
	RetentionLift float64 `mapstructure:"retention_lift"`
	ReferralROI   float64 `mapstructure:"referral_roi"`
}

// NormBounds defines the normalization bounds for each priority signal.
type NormBounds struct {
	ROI           scale.Bounds `mapstructure:"roi"`
	RetentionLift scale.Bounds `mapstructure:"retention_lift"`
	ReferralROI   scale.Bounds `mapstructure:"referral_roi"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// ConfigurationError reports an invalid configuration value. It is
// raised at load time, before any record is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a validated Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("engine.cap_feedback", DefaultCapFeedback)
	v.SetDefault("engine.retention_horizon_days", DefaultRetentionHorizonDays)
	v.SetDefault("engine.roi_window_days", DefaultROIWindowDays)
	v.SetDefault("engine.promoter_weights.satisfaction", DefaultPromoterWeights.Satisfaction)
	v.SetDefault("engine.promoter_weights.attendance", DefaultPromoterWeights.Attendance)
	v.SetDefault("engine.promoter_weights.objectives", DefaultPromoterWeights.Objectives)
	v.SetDefault("engine.promoter_weights.feedback", DefaultPromoterWeights.Feedback)
	v.SetDefault("engine.priority_weights.roi", DefaultPriorityWeights.ROI)
	v.SetDefault("engine.priority_weights.retention_lift", DefaultPriorityWeights.RetentionLift)
	v.SetDefault("engine.priority_weights.referral_roi", DefaultPriorityWeights.ReferralROI)
	v.SetDefault("engine.norm_bounds.roi.min", DefaultNormBounds.ROI.Min)
	v.SetDefault("engine.norm_bounds.roi.max", DefaultNormBounds.ROI.Max)
	v.SetDefault("engine.norm_bounds.retention_lift.min", DefaultNormBounds.RetentionLift.Min)
	v.SetDefault("engine.norm_bounds.retention_lift.max", DefaultNormBounds.RetentionLift.Max)
	v.SetDefault("engine.norm_bounds.referral_roi.min", DefaultNormBounds.ReferralROI.Min)
	v.SetDefault("engine.norm_bounds.referral_roi.max", DefaultNormBounds.ReferralROI.Max)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the engine configuration and returns a
// ConfigurationError for the first invalid field. A bad config fails
// here, fast, rather than silently corrupting every score downstream.
func (e Engine) Validate() error {
	if e.CapFeedback <= 0 {
		return &ConfigurationError{Field: "cap_feedback", Reason: "must be positive"}
	}
	if e.RetentionHorizonDays <= 0 {
		return &ConfigurationError{Field: "retention_horizon_days", Reason: "must be positive"}
	}
	if e.ROIWindowDays <= 0 {
		return &ConfigurationError{Field: "roi_window_days", Reason: "must be positive"}
	}

	weights := []struct {
		field string
		value float64
	}{
		{"promoter_weights.satisfaction", e.PromoterWeights.Satisfaction},
		{"promoter_weights.attendance", e.PromoterWeights.Attendance},
		{"promoter_weights.objectives", e.PromoterWeights.Objectives},
		{"promoter_weights.feedback", e.PromoterWeights.Feedback},
		{"priority_weights.roi", e.PriorityWeights.ROI},
		{"priority_weights.retention_lift", e.PriorityWeights.RetentionLift},
		{"priority_weights.referral_roi", e.PriorityWeights.ReferralROI},
	}
	for _, w := range weights {
		if w.value < 0 {
			return &ConfigurationError{Field: w.field, Reason: "must not be negative"}
		}
	}

	bounds := []struct {
		field string
		value scale.Bounds
	}{
		{"norm_bounds.roi", e.NormBounds.ROI},
		{"norm_bounds.retention_lift", e.NormBounds.RetentionLift},
		{"norm_bounds.referral_roi", e.NormBounds.ReferralROI},
	}
	for _, entry := range bounds {
		if !entry.value.Valid() {
			return &ConfigurationError{
				Field:  entry.field,
				Reason: fmt.Sprintf("min (%g) must be less than max (%g)", entry.value.Min, entry.value.Max),
			}
		}
	}

	return nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
