// Package scheduler runs the board refresh on a clock-aligned gocron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobFunc is a scheduled refresh
type JobFunc func(ctx context.Context) error

// Config holds scheduler configuration
type Config struct {
	Interval       string         // Duration (e.g., "5m") or cron expression (e.g., "*/5 * * * *")
	Timezone       *time.Location // Timezone for cron expressions (default: UTC)
	RunImmediately bool           // Refresh once before the first tick
	Logger         *slog.Logger
}

// Schedule is a parsed refresh interval
type Schedule struct {
	Cron        string
	WithSeconds bool
	// Period is the fixed spacing between ticks, zero for cron expressions
	Period time.Duration
}

// Scheduler wraps gocron v2. Runs never overlap: a tick that fires while the
// previous refresh is still running is skipped.
type Scheduler struct {
	gocron   gocron.Scheduler
	job      gocron.Job
	schedule Schedule
	timezone *time.Location
	runNow   bool
	logger   *slog.Logger
}

var (
	// cronPattern matches cron expressions (5 or 6 fields)
	cronPattern = regexp.MustCompile(`^(\S+\s+){4,5}\S+$`)

	validSecondIntervals = map[int]bool{
		1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 10: true, 12: true,
		15: true, 20: true, 30: true,
	}
	validMinuteIntervals = validSecondIntervals
	validHourIntervals   = map[int]bool{
		1: true, 2: true, 3: true, 4: true, 6: true, 8: true, 12: true, 24: true,
	}
)

// ErrNoInterval is returned by ParseSchedule for an empty interval
var ErrNoInterval = errors.New("no refresh interval configured")

// New builds a scheduler that calls job on every tick of cfg.Interval
func New(ctx context.Context, cfg Config, job JobFunc) (*Scheduler, error) {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	schedule, err := ParseSchedule(cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}

	gs, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Timezone),
		gocron.WithLogger(newGocronLoggerAdapter(cfg.Logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	s := &Scheduler{
		gocron:   gs,
		schedule: schedule,
		timezone: cfg.Timezone,
		runNow:   cfg.RunImmediately,
		logger:   cfg.Logger,
	}

	s.logger.Info("Refresh schedule", "interval", cfg.Interval, "cron", schedule.Cron, "timezone", cfg.Timezone.String())

	s.job, err = gs.NewJob(
		gocron.CronJob(schedule.Cron, schedule.WithSeconds),
		gocron.NewTask(func() {
			if err := job(ctx); err != nil {
				s.logger.Error("Refresh failed", "error", err)
			}
		}),
		gocron.WithName("refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = gs.Shutdown()
		return nil, fmt.Errorf("failed to create scheduled job: %w", err)
	}

	return s, nil
}

// Start begins ticking
func (s *Scheduler) Start() {
	s.gocron.Start()

	if s.runNow {
		s.logger.Info("Refreshing immediately before first tick")
		if err := s.job.RunNow(); err != nil {
			s.logger.Error("Immediate refresh failed", "error", err)
		}
	}

	if next, err := s.NextRun(); err == nil {
		s.logger.Info("Scheduler started", "next_run", next.Format(time.RFC3339), "timezone", s.timezone.String())
	} else {
		s.logger.Info("Scheduler started")
	}
}

// Stop waits for a running refresh to finish and stops the scheduler
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.gocron.Shutdown()
}

// NextRun returns the next scheduled refresh
func (s *Scheduler) NextRun() (time.Time, error) {
	next, err := s.job.NextRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get next run: %w", err)
	}
	return next, nil
}

// Schedule returns the parsed schedule
func (s *Scheduler) Schedule() Schedule {
	return s.schedule
}

// IsCronExpression reports whether s is a cron expression rather than a duration
func IsCronExpression(s string) bool {
	return cronPattern.MatchString(s)
}

// ParseSchedule turns a duration or cron expression into a Schedule.
// Durations are aligned to the wall clock, so "5m" fires at :00, :05, :10...
func ParseSchedule(interval string) (Schedule, error) {
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return Schedule{}, ErrNoInterval
	}

	if IsCronExpression(interval) {
		return Schedule{Cron: interval, WithSeconds: len(strings.Fields(interval)) == 6}, nil
	}

	period, err := time.ParseDuration(interval)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid duration format: %w", err)
	}
	expr, err := durationToCron(period)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Cron: expr, WithSeconds: period < time.Minute, Period: period}, nil
}

// durationToCron converts a duration to a clock-aligned cron expression
//
//	5m  -> "*/5 * * * *"
//	1h  -> "0 */1 * * *"
//	30s -> "*/30 * * * * *"
func durationToCron(d time.Duration) (string, error) {
	switch {
	case d <= 0:
		return "", fmt.Errorf("interval must be positive (got %s)", d)

	case d < time.Minute:
		if d%time.Second != 0 || !validSecondIntervals[int(d/time.Second)] {
			return "", fmt.Errorf("second intervals must divide evenly into 60 (got %s)", d)
		}
		return fmt.Sprintf("*/%d * * * * *", int(d/time.Second)), nil

	case d < time.Hour:
		if d%time.Minute != 0 || !validMinuteIntervals[int(d/time.Minute)] {
			return "", fmt.Errorf("minute intervals must divide evenly into 60 (got %s)", d)
		}
		return fmt.Sprintf("*/%d * * * *", int(d/time.Minute)), nil

	case d%time.Hour == 0:
		if !validHourIntervals[int(d/time.Hour)] {
			return "", fmt.Errorf("hour intervals must divide evenly into 24 (got %s)", d)
		}
		return fmt.Sprintf("0 */%d * * *", int(d/time.Hour)), nil

	default:
		return "", fmt.Errorf("duration must be whole seconds, minutes, or hours (got %s)", d)
	}
}

// ValidateScheduleInterval validates a refresh interval. Empty means one-shot.
func ValidateScheduleInterval(interval string) error {
	if strings.TrimSpace(interval) == "" {
		return nil
	}
	_, err := ParseSchedule(interval)
	return err
}

// DescribeSchedule provides a human-readable description of the schedule
func DescribeSchedule(interval string, timezone *time.Location) string {
	if timezone == nil {
		timezone = time.UTC
	}

	schedule, err := ParseSchedule(interval)
	switch {
	case err == nil && schedule.Period == 0:
		return fmt.Sprintf("cron: %s (%s)", schedule.Cron, timezone)
	case err == nil:
		return fmt.Sprintf("every %s (aligned to clock, cron: %s, %s)", schedule.Period, schedule.Cron, timezone)
	case errors.Is(err, ErrNoInterval):
		return "once"
	default:
		return fmt.Sprintf("invalid: %s", interval)
	}
}

// gocronLoggerAdapter adapts slog.Logger to gocron.Logger interface
type gocronLoggerAdapter struct {
	logger *slog.Logger
}

func newGocronLoggerAdapter(logger *slog.Logger) gocron.Logger {
	return &gocronLoggerAdapter{logger: logger.With("component", "scheduler")}
}

func (a *gocronLoggerAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *gocronLoggerAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *gocronLoggerAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *gocronLoggerAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
