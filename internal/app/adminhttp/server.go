package adminhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options — параметры служебного сервера.
type Options struct {
	Version string
	// Gatherer — источник метрик; nil означает prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Started — момент запуска процесса, от него считается аптайм.
	Started time.Time
}

// Server отдаёт health-check и метрики процесса.
type Server struct {
	version  string
	gatherer prometheus.Gatherer
	started  time.Time
	now      func() time.Time
}

// New создаёт HTTP-обработчик служебного интерфейса.
func New(opts Options) http.Handler {
	srv := &Server{
		version:  opts.Version,
		gatherer: opts.Gatherer,
		started:  opts.Started,
		now:      time.Now,
	}
	if srv.gatherer == nil {
		srv.gatherer = prometheus.DefaultGatherer
	}
	if srv.started.IsZero() {
		srv.started = srv.now()
	}

	return srv.routes()
}

// routes регистрирует обработчики здоровья и метрик.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", a.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	return r
}
