package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/Vallit0/asistencia-senoriales/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	identitiesHandler := handlers.NewIdentitiesHandler(s.deps.Catalog, s.deps.Runner)
	eventsHandler := handlers.NewEventsHandler(s.deps.Events, s.deps.Runner)
	statsHandler := handlers.NewStatsHandler(s.deps.Runner)
	zonesHandler := handlers.NewZonesHandler(s.deps.Runner.Processor())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", identitiesHandler.Enroll)
		r.Post("/identities/reload", identitiesHandler.Reload)

		// Events
		r.Get("/events", eventsHandler.List)
		r.Get("/events/stream", eventsHandler.Stream)

		// Stats
		r.Get("/stats", statsHandler.Get)

		// Zones
		r.Get("/zones", zonesHandler.Get)
		r.Put("/zones", zonesHandler.Put)
		r.Post("/zones/nudge", zonesHandler.Nudge)
	})
}
