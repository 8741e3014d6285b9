package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/config"
	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	appHTTP "github.com/cmlabs-hris/leave-engine/internal/handler/http"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	"github.com/cmlabs-hris/leave-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/leave-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/leave-engine/internal/service/leave"
)

var version = "dev"

// repositories is the storage backend selected by DB_DRIVER.
type repositories struct {
	logs          attendance.AttendanceLogRepository
	exceptions    attendance.AttendanceExceptionRepository
	leaveTypes    leave.LeaveTypeRepository
	balances      leave.LeaveBalanceRepository
	applications  leave.LeaveApplicationRepository
	days          leave.LeaveApplicationDayRepository
	transactions  leave.LeaveTransactionRepository
	holidays      leave.HolidayRepository
	grantRequests leave.LeaveGrantRequestRepository
	tx            database.Transactor
	close         func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := parseLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System(cfg.Location())

	repos, err := openRepositories(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer repos.close()

	leavePolicy := cfg.LeavePolicy()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	ledgerService := leaveService.NewLedgerService(repos.balances, leavePolicy)
	journalService := leaveService.NewJournalService(repos.transactions, clk)
	calendarService := leaveService.NewCalendarService(repos.days, repos.applications, repos.tx, clk)
	applicationService := leaveService.NewApplicationService(
		repos.leaveTypes,
		repos.applications,
		repos.days,
		repos.balances,
		repos.holidays,
		calendarService,
		ledgerService,
		journalService,
		repos.tx,
		clk,
		leavePolicy,
	)
	grantService := leaveService.NewGrantService(repos.leaveTypes, repos.balances, repos.grantRequests, ledgerService, repos.tx, clk)
	leaveTypeService := leaveService.NewLeaveTypeService(repos.leaveTypes)
	holidayService := leaveService.NewHolidayService(repos.holidays)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.logs,
		repos.exceptions,
		repos.leaveTypes,
		ledgerService,
		journalService,
		repos.tx,
		clk,
		cfg.AttendancePolicy(),
		leavePolicy,
	)

	leaveJobs := cron.NewLeaveJobs(ledgerService, repos.tx, clk)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			Version:        version,
			AllowedOrigins: []string{cfg.App.FrontendURL},
			LogLevel:       level,
		},
		JWTService,
		appHTTP.Handlers{
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave: appHTTP.NewLeaveHandler(
				leaveTypeService,
				ledgerService,
				applicationService,
				grantService,
				journalService,
				holidayService,
			),
			Jobs: appHTTP.NewJobsHandler(leaveJobs),
		},
	)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler()
		leaveJobs.RegisterJobs(scheduler, cfg.Cron.Interval)
		scheduler.Start(ctx)
		defer scheduler.Stop()
		slog.Info("Cron scheduler started", "jobs", scheduler.Jobs(), "interval", cfg.Cron.Interval)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, clk clock.Clock) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on exit")
		store := memory.NewStore(clk)
		return repositories{
			logs:          store.AttendanceLogs(),
			exceptions:    store.AttendanceExceptions(),
			leaveTypes:    store.LeaveTypes(),
			balances:      store.Balances(),
			applications:  store.Applications(),
			days:          store.ApplicationDays(),
			transactions:  store.Transactions(),
			holidays:      store.Holidays(),
			grantRequests: store.GrantRequests(),
			tx:            store,
			close:         func() {},
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return repositories{}, fmt.Errorf("connect database: %w", err)
		}
		return repositories{
			logs:          postgresql.NewAttendanceLogRepository(db),
			exceptions:    postgresql.NewAttendanceExceptionRepository(db),
			leaveTypes:    postgresql.NewLeaveTypeRepository(db),
			balances:      postgresql.NewLeaveBalanceRepository(db),
			applications:  postgresql.NewLeaveApplicationRepository(db),
			days:          postgresql.NewLeaveApplicationDayRepository(db),
			transactions:  postgresql.NewLeaveTransactionRepository(db),
			holidays:      postgresql.NewHolidayRepository(db),
			grantRequests: postgresql.NewLeaveGrantRequestRepository(db),
			tx:            postgresql.NewTransactor(db),
			close:         db.Close,
		}, nil
	}
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
