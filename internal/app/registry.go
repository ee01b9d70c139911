package app

import (
	"database/sql"

	"go-payday/internal/attendance"
	"go-payday/internal/employee"
	"go-payday/internal/holiday"
	"go-payday/internal/leave"
	"go-payday/internal/messaging/kafka"
	"go-payday/internal/middleware"
	"go-payday/internal/notification"
	"go-payday/internal/payroll"
	"go-payday/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	clk clock.Clock,
) error {
	router.Use(middleware.RequestID())

	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	notificationService := notification.NewService(
		notificationRepo,
		notification.NewSMTPSenderFromEnv(),
		notification.NewHTTPSMSClientFromEnv(),
	)
	employeeService := employee.NewService(gormDB, employeeRepo)
	attendanceService := attendance.NewService(gormDB, attendanceRepo, employeeRepo, clk)
	holidayService := holiday.NewService(gormDB, holidayRepo, holiday.NewAPIClientFromEnv(), rdb)
	leaveService := leave.NewService(gormDB, leaveRepo, employeeRepo, notificationService, clk)
	payrollService := payroll.NewService(
		gormDB, payrollRepo, employeeRepo, attendanceRepo, leaveRepo,
		holidayService, outboxRepo, rdb, clk,
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	leaveHandler := leave.NewHandler(leaveService)
	holidayHandler := holiday.NewHandler(holidayService)
	payrollHandler := payroll.NewHandler(payrollService, rdb, clk)

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler)
		attendance.RegisterRoutes(api, attendanceHandler)
		leave.RegisterRoutes(api, leaveHandler)
		holiday.RegisterRoutes(api, holidayHandler)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
	}

	return nil
}
