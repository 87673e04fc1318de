/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in error logs
  2. Logger:     zap request log (method, path, status, duration)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Allowed origins from CORS_ORIGINS

ROUTE GROUPS:
  public         /api/health, /api/auth/login
  authenticated  self-service: punch, own attendance/payroll/deductions,
                 overtime filing, holiday and catalog reads
  admin          employees, reviews, configuration, payroll runs, reports
  dev admin      /api/reset, /api/scenarios/* (non-production only)
  /*             Static files (frontend), when web/dist exists

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: RequireAuth / RequireAdmin
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Get("/auth/me", h.Me)
			r.Post("/auth/logout", h.Logout)

			// Self-service (admin or the employee in {id})
			r.Post("/attendance/punch", h.RecordPunch)
			r.Get("/employees/{id}", h.GetEmployee)
			r.Get("/employees/{id}/attendance", h.GetAttendance)
			r.Get("/employees/{id}/payroll", h.GetEmployeePayroll)
			r.Get("/employees/{id}/deductions", h.ListDeductions)

			r.Post("/overtime", h.CreateOvertime)
			r.Get("/overtime", h.ListOvertime)
			r.Put("/overtime/{id}", h.UpdateOvertime)
			r.Delete("/overtime/{id}", h.DeleteOvertime)

			r.Get("/holidays", h.ListHolidays)
			r.Get("/deductions/catalog", h.DeductionCatalog)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/employees", h.ListEmployees)
				r.Post("/employees", h.CreateEmployee)
				r.Post("/employees/{id}/deductions", h.AddDeduction)

				r.Post("/overtime/{id}/approve", h.ApproveOvertime)
				r.Post("/overtime/{id}/reject", h.RejectOvertime)

				r.Post("/holidays", h.CreateHoliday)
				r.Delete("/holidays/{id}", h.DeleteHoliday)

				r.Get("/rules", h.ListRules)
				r.Post("/rules", h.SaveRule)
				r.Get("/shifts", h.ListShifts)
				r.Post("/shifts", h.CreateShift)

				r.Get("/payroll/runs", h.ListPayrollRuns)
				r.Post("/payroll/runs", h.CreatePayrollRun)

				r.Get("/reports/payroll", h.PayrollReport)
				r.Get("/reports/payroll.xlsx", h.PayrollReportXLSX)

				if !cfg.IsProduction() {
					r.Post("/reset", h.ResetDatabase)
					r.Get("/scenarios", h.ListScenarios)
					r.Get("/scenarios/current", h.GetCurrentScenario)
					r.Post("/scenarios/load", h.LoadScenario)
				}
			})
		})
	})

	mountStatic(r)
	return r
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// mountStatic serves the built frontend from ./web/dist (or next to the
// executable), falling back to index.html for client-side routing.
func mountStatic(r chi.Router) {
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}
	if _, err := os.Stat(staticDir); err != nil {
		return
	}

	fileServer := http.FileServer(http.Dir(staticDir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
