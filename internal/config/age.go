package config

import (
	"fmt"
	"strconv"
	"strings"
)

// AgeConfig holds the flake input timestamp and the day thresholds used to
// classify it.
type AgeConfig struct {
	// ModifiedDate is the flake.lock modification time in unix seconds. Zero means unknown.
	ModifiedDate int64 `yaml:"modified_date"`
	// GoodDays is the highest age that is still Good.
	GoodDays int64 `yaml:"good_days"`
	// UpdateDays is the age from which an update is suggested (Warning).
	UpdateDays int64 `yaml:"update_days"`
	// OutOfDateDays is the age from which the system is Critical.
	OutOfDateDays int64 `yaml:"out_of_date_days"`
}

// DefaultAgeConfig returns the default thresholds and the build-time timestamp.
func DefaultAgeConfig() AgeConfig {
	var modified int64
	if ts, err := strconv.ParseInt(strings.TrimSpace(BuildModifiedDate), 10, 64); err == nil {
		modified = ts
	}
	return AgeConfig{
		ModifiedDate:  modified,
		GoodDays:      13,
		UpdateDays:    14,
		OutOfDateDays: 30,
	}
}

// Validate checks 0 <= good < update <= out_of_date.
func (a AgeConfig) Validate() error {
	if a.ModifiedDate < 0 {
		return fmt.Errorf("age.modified_date must not be negative, got %d", a.ModifiedDate)
	}
	if a.GoodDays < 0 {
		return fmt.Errorf("age.good_days must not be negative, got %d", a.GoodDays)
	}
	if a.GoodDays >= a.UpdateDays {
		return fmt.Errorf("age.good_days (%d) must be below age.update_days (%d)", a.GoodDays, a.UpdateDays)
	}
	if a.UpdateDays > a.OutOfDateDays {
		return fmt.Errorf("age.update_days (%d) must not exceed age.out_of_date_days (%d)", a.UpdateDays, a.OutOfDateDays)
	}
	return nil
}
