package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/config"
	appHTTP "github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/middleware"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/cache"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/database"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/jwt"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/oauth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/ratelimit"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/storage"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
	accessService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/access"
	attendanceService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/attendance"
	serviceAuth "github.com/nabd-altamayyuz/hr-backend-go/internal/service/auth"
	serviceCompany "github.com/nabd-altamayyuz/hr-backend-go/internal/service/company"
	dashboardService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/dashboard"
	employeeService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/employee"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
	reportService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/report"
	taskService "github.com/nabd-altamayyuz/hr-backend-go/internal/service/task"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	loc := cfg.Location()
	m := metrics.New()

	var limiter ratelimit.Limiter = ratelimit.NewInMemory(cfg.RateLimit.Window)
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedis(redisClient, cfg.RateLimit.Window)
		slog.Info("login rate limiting backed by redis", "addr", cfg.Redis.Addr)
	}

	var localStorage *storage.LocalStorage
	switch cfg.Storage.Type {
	case "local":
		localStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	fileService := file.NewFileService(localStorage)

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL(), cfg.App.IsProduction())
	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	resolver := accessService.NewResolver(companyRepo)
	authService := serviceAuth.NewAuthService(transactor, userRepo, companyRepo, refreshTokenRepo, JWTService, limiter, cfg.RateLimit.LoginAttempts, m)
	companySvc := serviceCompany.NewCompanyService(transactor, companyRepo, userRepo, resolver, fileService, m, loc)
	employeeSvc := employeeService.NewEmployeeService(transactor, userRepo, companyRepo, resolver, fileService, m)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, resolver, m, loc)
	taskSvc := taskService.NewTaskService(transactor, taskRepo, userRepo, resolver, fileService, loc)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, companyRepo, taskRepo, attendanceRepo, loc)
	reportSvc := reportService.NewReportService(reportRepo, resolver, loc)

	if err := authService.EnsureSuperAdmin(ctx, cfg.Bootstrap.SuperAdminEmail, cfg.Bootstrap.SuperAdminPassword); err != nil {
		return fmt.Errorf("bootstrap super admin: %w", err)
	}

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		middleware.NewAccountGuard(userRepo, companyRepo),
		m,
		localStorage.BasePath(),
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL, cfg.App.IsProduction()),
			Scope:      appHTTP.NewScopeHandler(resolver),
			Company:    appHTTP.NewCompanyHandler(companySvc),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Task:       appHTTP.NewTaskHandler(taskSvc),
			Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", srv.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
