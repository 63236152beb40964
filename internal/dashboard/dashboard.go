package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

// Dashboard serves the movie search page and its JSON and WebSocket API.
type Dashboard struct {
	service    *search.Service
	logger     *slog.Logger
	collection string
	page       []byte
}

// New creates a Dashboard and renders its page.
func New(service *search.Service, collection string, logger *slog.Logger) (*Dashboard, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	page, err := renderPage()
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		service:    service,
		logger:     logger,
		collection: collection,
		page:       page,
	}, nil
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Post("/api/search", d.handleSearch)
	r.Get("/api/stats", d.handleStats)
	r.Get("/ws/search", d.handleWebSocket)
}
