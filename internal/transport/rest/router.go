package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/activity"
	"github.com/liuqy/experiment-management/internal/auth"
	"github.com/liuqy/experiment-management/internal/batch"
	"github.com/liuqy/experiment-management/internal/competitorfile"
	"github.com/liuqy/experiment-management/internal/experiment"
	"github.com/liuqy/experiment-management/internal/fingerblood"
	"github.com/liuqy/experiment-management/internal/person"
	"github.com/liuqy/experiment-management/internal/sensor"
	"github.com/liuqy/experiment-management/internal/transport/middleware"
	"github.com/liuqy/experiment-management/internal/transport/swagger"
	"github.com/liuqy/experiment-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	User           *user.Handler
	Batch          *batch.Handler
	Person         *person.Handler
	Experiment     *experiment.Handler
	CompetitorFile *competitorfile.Handler
	FingerBlood    *fingerblood.Handler
	Sensor         *sensor.Handler
	Activity       *activity.Handler
}

// RegisterAllRoutes mounts the whole API surface. Only login, register,
// health, the root banner, swagger and the OpenAPI document are reachable
// without a token; everything else sits behind AuthMiddleware plus a
// per-module permission gate.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, h Handlers, rbac *auth.RBACAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Experiment Management API"}`))
	})

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded files are also browsable directly.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.UploadDir)))
	router.Handle("/uploads/*", fileServer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/register", h.Auth.Register)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Get("/activities", h.Activity.List)

			pr.Route("/batches", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModuleBatch, auth.ActionRead)).Get("/", h.Batch.List)
				er.With(rbac.RequireModule(auth.ModuleBatch, auth.ActionRead)).Get("/{id}", h.Batch.Get)
				er.With(rbac.RequireModule(auth.ModuleBatch, auth.ActionWrite)).Post("/", h.Batch.Create)
				er.With(rbac.RequireModule(auth.ModuleBatch, auth.ActionWrite)).Put("/{id}", h.Batch.Update)
				er.With(rbac.RequireModule(auth.ModuleBatch, auth.ActionDelete)).Delete("/{id}", h.Batch.Delete)
			})

			pr.Route("/persons", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModulePerson, auth.ActionRead)).Get("/", h.Person.List)
				er.With(rbac.RequireModule(auth.ModulePerson, auth.ActionRead)).Get("/{id}", h.Person.Get)
				er.With(rbac.RequireModule(auth.ModulePerson, auth.ActionWrite)).Post("/", h.Person.Create)
				er.With(rbac.RequireModule(auth.ModulePerson, auth.ActionWrite)).Put("/{id}", h.Person.Update)
				er.With(rbac.RequireModule(auth.ModulePerson, auth.ActionDelete)).Delete("/{id}", h.Person.Delete)
			})

			pr.Route("/experiments", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionRead)).Get("/", h.Experiment.List)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionRead)).Get("/{id}", h.Experiment.Get)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionWrite)).Post("/", h.Experiment.Create)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionWrite)).Put("/{id}", h.Experiment.Update)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionWrite)).Post("/{id}/members", h.Experiment.AddMember)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionWrite)).Delete("/{id}/members/{personID}", h.Experiment.RemoveMember)
				er.With(rbac.RequireModule(auth.ModuleExperiment, auth.ActionDelete)).Delete("/{id}", h.Experiment.Delete)
			})

			pr.Route("/competitor-files", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionRead)).Get("/", h.CompetitorFile.List)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionRead)).Get("/export", h.CompetitorFile.Export)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionRead)).Get("/{id}", h.CompetitorFile.Get)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionRead)).Get("/{id}/download", h.CompetitorFile.Download)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionWrite)).Post("/", h.CompetitorFile.Upload)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionWrite)).Put("/{id}", h.CompetitorFile.Rename)
				er.With(rbac.RequireModule(auth.ModuleCompetitorFile, auth.ActionDelete)).Delete("/{id}", h.CompetitorFile.Delete)
			})

			pr.Route("/finger-blood", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionRead)).Get("/", h.FingerBlood.List)
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionRead)).Get("/export", h.FingerBlood.Export)
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionRead)).Get("/{id}", h.FingerBlood.Get)
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionWrite)).Post("/", h.FingerBlood.Create)
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionWrite)).Put("/{id}", h.FingerBlood.Update)
				er.With(rbac.RequireModule(auth.ModuleFingerBlood, auth.ActionDelete)).Delete("/{id}", h.FingerBlood.Delete)
			})

			pr.Route("/sensors", func(er chi.Router) {
				er.With(rbac.RequireModule(auth.ModuleSensor, auth.ActionRead)).Get("/", h.Sensor.List)
				er.With(rbac.RequireModule(auth.ModuleSensor, auth.ActionRead)).Get("/{id}", h.Sensor.Get)
				er.With(rbac.RequireModule(auth.ModuleSensor, auth.ActionWrite)).Post("/", h.Sensor.Create)
				er.With(rbac.RequireModule(auth.ModuleSensor, auth.ActionWrite)).Put("/{id}", h.Sensor.Update)
				er.With(rbac.RequireModule(auth.ModuleSensor, auth.ActionDelete)).Delete("/{id}", h.Sensor.Delete)
			})

			// Account management is reserved for admins.
			pr.Route("/users", func(ar chi.Router) {
				ar.Use(rbac.RequireAdmin())
				ar.Get("/", h.User.List)
				ar.Get("/{id}", h.User.Get)
				ar.Put("/{id}/permissions", h.User.AssignPermissions)
				ar.Delete("/{id}", h.User.Delete)
			})
		})
	})
}
