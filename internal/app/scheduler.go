package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-payday/internal/attendance"
	"go-payday/internal/employee"
	"go-payday/internal/holiday"
	"go-payday/internal/leave"
	"go-payday/internal/messaging/kafka"
	"go-payday/internal/notification"
	"go-payday/internal/payroll"
	payrollerrors "go-payday/internal/payroll/errors"
	"go-payday/internal/shared/clock"
	"go-payday/internal/shared/connection"
	"go-payday/internal/shared/schedule"

	"go.uber.org/zap"
)

// payrollRunHour is the local hour the semi-monthly payroll fires on a
// payday (the 15th and the last day of the month).
const payrollRunHour = 17

// RunScheduler hosts the periodic jobs: the payroll trigger, the
// leave/day-off sweeps and the Sunday closure. The outbox publisher runs
// in the worker binary, not here.
func RunScheduler() error {
	logger := zap.L().Named("app.scheduler")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		logger.Warn("redis unavailable, run lock falls back to the ledger constraint", zap.Error(err))
		redisClient = nil
	}

	clk, err := clock.NewOrgClock(os.Getenv("ORG_TIMEZONE"))
	if err != nil {
		return err
	}

	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	notificationService := notification.NewService(
		notificationRepo,
		notification.NewSMTPSenderFromEnv(),
		notification.NewHTTPSMSClientFromEnv(),
	)
	holidayService := holiday.NewService(gormDB, holidayRepo, holiday.NewAPIClientFromEnv(), redisClient)
	payrollService := payroll.NewService(
		gormDB, payrollRepo, employeeRepo, attendanceRepo, leaveRepo,
		holidayService, outboxRepo, redisClient, clk,
	)
	sweepService := leave.NewSweepService(gormDB, leaveRepo, employeeRepo, notificationService)

	sched := schedule.NewScheduler(logger)

	sched.AddJob("payroll_run", time.Hour, func(ctx context.Context) error {
		now := clk.Now()
		if now.Hour() != payrollRunHour || !isPayday(now) {
			return nil
		}
		_, err := payrollService.Run(ctx, now)
		if err == payrollerrors.ErrRunInProgress {
			logger.Info("payroll run already in progress, skipping scheduled trigger")
			return nil
		}
		return err
	})

	sched.AddJob("leave_day_off_sweep", time.Hour, func(ctx context.Context) error {
		today := clock.DateOf(clk.Now())
		if err := sweepService.MarkStartedDayOffs(ctx, today); err != nil {
			return err
		}
		if err := sweepService.CompleteElapsed(ctx, today); err != nil {
			return err
		}
		return sweepService.AutoRejectStale(ctx, today)
	})

	sched.AddJob("sunday_off_duty", time.Hour, func(ctx context.Context) error {
		if clk.Now().Weekday() == time.Sunday {
			return employeeRepo.SetAllStatus(ctx, employee.StatusOffDuty)
		}
		return employeeRepo.SetAllStatus(ctx, employee.StatusActive)
	})

	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("scheduler shutting down")
	sched.Stop()
	return nil
}

func isPayday(now time.Time) bool {
	if now.Day() == 15 {
		return true
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	return now.Day() == lastDay.Day()
}
