package resthttp

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sir_venger/msg2json/internal/config"
	"github.com/sir_venger/msg2json/internal/metrics"
	"github.com/sir_venger/msg2json/internal/models"
	"github.com/sir_venger/msg2json/internal/outlook"
	"github.com/sir_venger/msg2json/internal/usecase/msgsvc"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

type Server struct {
	MsgService msgsvc.Service
	Cfg        *config.Config
	Log        *slog.Logger
	Metrics    *metrics.Upload
}

// Deps — внешние зависимости сервера. Нулевые значения заменяются умолчаниями:
// slog.Default(), prometheus.DefaultRegisterer и конвертер outlook.
type Deps struct {
	Logger    *slog.Logger
	Registry  prometheus.Registerer
	Converter msgsvc.Converter
}

// NewServer конструктор
func NewServer(cfg *config.Config, deps Deps) (http.Handler, *Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("rest config: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.NewUpload(deps.Registry)
	if err := m.Register(); err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	srv := &Server{
		MsgService: buildMsgService(deps.Converter, m),
		Cfg:        cfg,
		Log:        logger,
		Metrics:    m,
	}

	rtr := chi.NewRouter()
	rtr.Use(srv.requestLog, srv.recoverer)

	// Любой другой путь или метод отдаёт 404.
	rtr.NotFound(srv.notFound)
	rtr.MethodNotAllowed(srv.notFound)

	rtr.With(srv.limitBody).Post(msgproto.ConvertPath, srv.postMsg)

	return rtr, srv, nil
}

func buildMsgService(conv msgsvc.Converter, m *metrics.Upload) msgsvc.Service {
	if conv == nil {
		conv = outlook.NewConverter()
	}

	return msgsvc.New(msgsvc.Deps{
		Converter: conv,
		Metrics:   m,
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.reject(w, r, fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, models.ErrNotFound))
}
