// Package config provides configuration loading, defaults, and
// validation for engagewatch.
package config

import "github.com/harborlight-systems/engagewatch/internal/scale"

// DefaultConfigDir is the default location for engagewatch configuration.
const DefaultConfigDir = "~/.config/engagewatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "engagewatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultCapFeedback is the positive-feedback ceiling beyond which extra
// feedback adds nothing to the promoter score.
const DefaultCapFeedback = 10

// DefaultRetentionHorizonDays is the horizon, in days after an activity
// ends, at which participant retention is evaluated.
const DefaultRetentionHorizonDays = 90

// DefaultROIWindowDays is the window, in days after an activity ends,
// over which attributed revenue is collected.
const DefaultROIWindowDays = 90

// DefaultPromoterWeights holds the default promoter composite weights.
var DefaultPromoterWeights = PromoterWeights{
	Satisfaction: 0.35,
	Attendance:   0.25,
	Objectives:   0.20,
	Feedback:     0.20,
}

// DefaultPriorityWeights holds the default initiative priority weights.
var DefaultPriorityWeights = PriorityWeights{
	ROI:           0.40,
	RetentionLift: 0.30,
	ReferralROI:   0.30,
}

// DefaultNormBounds holds the default normalization bounds for the
// priority blend. ROI bands run from write-off territory to
// clearly-worth-scaling; retention lift covers the plausible
// percentage-point range for community activities.
var DefaultNormBounds = NormBounds{
	ROI:           scale.Bounds{Min: -100, Max: 300},
	RetentionLift: scale.Bounds{Min: -20, Max: 20},
	ReferralROI:   scale.Bounds{Min: -100, Max: 300},
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
