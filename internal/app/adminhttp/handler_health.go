package adminhttp

import (
	"net/http"
	"time"

	"github.com/sir_venger/msg2json/internal/jsoncodec"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK            bool    `json:"ok"`
	Version       string  `json:"version"`
	StartedAt     string  `json:"started_at"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// health сообщает, что процесс жив. Зависимостей у конвертера нет, поэтому OK всегда true.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	now := a.now()

	w.Header().Set("Content-Type", msgproto.ContentTypeJSON)
	err := jsoncodec.Encode(w, healthStats{
		OK:            true,
		Version:       a.version,
		StartedAt:     a.started.UTC().Format(time.RFC3339),
		UptimeSeconds: now.Sub(a.started).Truncate(time.Millisecond).Seconds(),
	})

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
