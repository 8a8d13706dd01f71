package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/touchline/internal/analytics"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/config"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/notifier"
	"github.com/mauv0809/touchline/internal/processor"
	"github.com/unrolled/render"
)

// Deps are the services the HTTP layer routes to.
type Deps struct {
	Store          club.ClubStore
	Sheets         matchsheet.Store
	Workflow       *matchsheet.Service
	Importer       *importer.Importer
	Analytics      *analytics.Service
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	MetricsHandler http.Handler
	Cfg            config.Config
}

type Server struct {
	Deps
	Router *chi.Mux
	render *render.Render
}
