package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/matrixise/balance-board/internal/scheduler"
	"github.com/matrixise/balance-board/internal/wallet"
)

// Config represents the application configuration
type Config struct {
	BalancesFile   string           `mapstructure:"balances_file" validate:"required"`
	PricesFile     string           `mapstructure:"prices_file" validate:"required"`
	Priorities     []PriorityConfig `mapstructure:"priorities" validate:"omitempty,unique=Chain,dive"`
	Interval       string           `mapstructure:"interval" validate:"omitempty,schedule"`
	LogLevel       string           `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTPPort       int              `mapstructure:"http_port" validate:"omitempty,min=1024,max=65535"`
	RunImmediately *bool            `mapstructure:"run_immediately"`
	Timezone       string           `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// PriorityConfig ranks one blockchain
type PriorityConfig struct {
	Chain    string `mapstructure:"chain" validate:"required,max=100"`
	Priority int    `mapstructure:"priority" validate:"required,gt=0"`
}

// Normalize trims values and resolves relative snapshot paths against baseDir
func (c *Config) Normalize(baseDir string) {
	c.BalancesFile = resolvePath(baseDir, c.BalancesFile)
	c.PricesFile = resolvePath(baseDir, c.PricesFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Interval = strings.TrimSpace(c.Interval)
	for i := range c.Priorities {
		c.Priorities[i].Chain = strings.TrimSpace(c.Priorities[i].Chain)
	}
}

func resolvePath(baseDir, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// PriorityTable builds the chain ranking. Without configured priorities the
// default table is used.
func (c *Config) PriorityTable() (wallet.PriorityTable, error) {
	if len(c.Priorities) == 0 {
		return wallet.DefaultPriorityTable(), nil
	}
	m := make(map[string]int, len(c.Priorities))
	for _, p := range c.Priorities {
		if _, dup := m[p.Chain]; dup {
			return wallet.PriorityTable{}, fmt.Errorf("chain %q listed twice", p.Chain)
		}
		m[p.Chain] = p.Priority
	}
	return wallet.NewPriorityTable(m)
}

// GetTimezone returns the configured location, UTC when unset or invalid
func (c *Config) GetTimezone() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ShouldRunImmediately reports whether the daemon refreshes at startup
func (c *Config) ShouldRunImmediately() bool {
	if c.RunImmediately == nil {
		return true
	}
	return *c.RunImmediately
}

// IsCronExpression reports whether Interval is a cron expression
func (c *Config) IsCronExpression() bool {
	return scheduler.IsCronExpression(c.Interval)
}

// scheduleValidator validates durations and cron expressions
func scheduleValidator(fl validator.FieldLevel) bool {
	return scheduler.ValidateScheduleInterval(fl.Field().String()) == nil
}

// NewValidator creates a validator with custom validation rules
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("schedule", scheduleValidator)
	return validate
}
