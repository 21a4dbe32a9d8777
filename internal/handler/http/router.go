package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/config"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/middleware"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/jwt"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       AuthHandler
	Scope      ScopeHandler
	Company    CompanyHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Task       TaskHandler
	Dashboard  DashboardHandler
	Report     ReportHandler
}

func NewRouter(app config.AppConfig, jwtService jwt.Service, guard *middleware.AccountGuard, m *metrics.Metrics, uploadsDir string, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(!app.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hr-backend"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(m.Middleware)

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", m.Handler())
	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))
			r.Use(guard.RequireActiveAccount)

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/password", h.Auth.ChangePassword)
			r.Get("/scope", h.Scope.Get)
			r.Get("/dashboard", h.Dashboard.Get)
			r.With(middleware.RequirePermission(user.PermissionReportsView)).Get("/reports/{type}", h.Report.Generate)

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", h.Company.List)
				r.With(middleware.RequirePermission(user.PermissionCompanyCreate)).Post("/", h.Company.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Company.GetByID)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionCompanyManage))
						r.Put("/", h.Company.Update)
						r.Post("/sub-companies", h.Company.CreateSub)
						r.Post("/suspend", h.Company.ToggleSuspend)
						r.Post("/attachment", h.Company.UploadAttachment)
					})
					r.With(middleware.RequirePermission(user.PermissionCompanyDelete)).Delete("/", h.Company.Delete)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
				r.Get("/", h.Employee.List)
				r.Post("/", h.Employee.Create)
				r.Get("/{id}", h.Employee.GetByID)
				r.Put("/{id}", h.Employee.Update)
				r.Delete("/{id}", h.Employee.Delete)
				r.Post("/{id}/suspend", h.Employee.Suspend)
				r.Post("/{id}/attachment", h.Employee.UploadAttachment)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCompany)
					r.Use(middleware.RequirePermission(user.PermissionAttendanceSelf))
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
					r.Get("/today", h.Attendance.Today)
					r.Get("/my", h.Attendance.MyHistory)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Get("/sheet", h.Attendance.Sheet)
					r.Post("/manual", h.Attendance.RecordManual)
					r.Put("/{id}", h.Attendance.Edit)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionTaskViewOwn))
				r.Get("/", h.Task.List)
				r.Get("/{id}", h.Task.GetByID)
				r.Patch("/{id}/status", h.Task.UpdateStatus)
				r.Post("/{id}/complete", h.Task.Complete)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTaskManage))
					r.Post("/", h.Task.Create)
					r.Put("/{id}", h.Task.Update)
					r.Delete("/{id}", h.Task.Delete)
					r.Post("/{id}/attachment", h.Task.UploadAttachment)
				})
			})
		})
	})
	return r
}
