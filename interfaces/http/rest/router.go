package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"memgate/infrastructure/di"
	"memgate/interfaces/http/rest/handlers"
	"memgate/interfaces/http/rest/middleware"
	"memgate/pkg/common"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger, c.Metrics))

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.memgate.dev"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Project-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Service-level probes stay outside authentication.
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.TokenValidator, c.RateLimiter, c.Logger))

		// Collection and document endpoints
		r.Route("/collections", func(r chi.Router) {
			collectionHandler := handlers.NewCollectionHandler(c.Collections, c.Logger)
			r.Get("/", collectionHandler.List)
			r.Post("/", collectionHandler.Create)
			r.Get("/{name}", collectionHandler.Get)
			r.Get("/{name}/count", collectionHandler.Count)
			r.Get("/{name}/peek", collectionHandler.Peek)
			r.Post("/{name}/fork", collectionHandler.Fork)
			r.Delete("/{name}", collectionHandler.Delete)

			documentHandler := handlers.NewDocumentHandler(c.Documents, c.Logger)
			r.Post("/{name}/documents", documentHandler.Add)
			r.Get("/{name}/documents/{id}", documentHandler.Get)
			r.Put("/{name}/documents/{id}", documentHandler.Update)
			r.Delete("/{name}/documents/{id}", documentHandler.Delete)
			r.Post("/{name}/query", documentHandler.Query)
		})

		// Tenant cache endpoints
		r.Route("/memory", func(r chi.Router) {
			memoryHandler := handlers.NewMemoryHandler(c.Cache, c.Logger)
			r.Post("/entries", memoryHandler.Set)
			r.Get("/entries/{key}", memoryHandler.Get)
			r.Get("/stats", memoryHandler.Stats)
			r.Post("/clear", memoryHandler.Clear)
			r.Post("/clear-all", memoryHandler.ClearAll)
		})

		// Entity graph endpoints
		r.Route("/graph", func(r chi.Router) {
			graphHandler := handlers.NewGraphHandler(c.Graph, c.Logger)
			r.Post("/entities", graphHandler.CreateEntity)
			r.Get("/entities", graphHandler.ListEntities)
			r.Get("/entities/{id}", graphHandler.GetEntity)
			r.Get("/entities/{id}/connected", graphHandler.GetConnected)
			r.Post("/relationships", graphHandler.CreateRelationship)
			r.Get("/relationships", graphHandler.GetRelationshipsBetween)
			r.Get("/path", graphHandler.FindPath)
			r.Get("/stats", graphHandler.Statistics)
			r.Get("/export", graphHandler.Export)
			r.Post("/import", graphHandler.Import)
		})

		// Usage trail and smell endpoints
		r.Route("/swarm", func(r chi.Router) {
			swarmHandler := handlers.NewSwarmHandler(c.Trails, c.Smells, c.Logger)
			r.Get("/trails", swarmHandler.HotTrails)
			r.Get("/patterns/{collection}", swarmHandler.CollectionPatterns)
			r.Get("/smells", swarmHandler.Smells)
		})

		// Maintenance introspection
		r.Route("/admin", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(c.Scheduler, c.AutoScaler, c.Logger)
			r.Get("/jobs", adminHandler.Jobs)
			r.Post("/scaling/analyze", adminHandler.AnalyzeScaling)
			r.Get("/scaling/history", adminHandler.ScalingHistory)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, rt.container.Health.Report())
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if err := rt.container.Store.Ping(req.Context()); err != nil {
		common.RespondError(w, http.StatusServiceUnavailable, "NOT_READY", "vector store unreachable")
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
