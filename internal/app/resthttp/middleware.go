package resthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sir_venger/msg2json/internal/models"
	"github.com/sir_venger/msg2json/pkg/httperrors"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

type loggerKey struct{}

// loggerFrom достаёт логгер запроса, заведённый requestLog.
func (s *Server) loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return s.Log
}

// requestLog присваивает запросу X-Request-ID и пишет итоговую строку лога.
// Пришедший от клиента идентификатор сохраняется, если это валидный UUID.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(msgproto.HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(msgproto.HeaderRequestID, id)

		log := s.Log.With("request_id", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey{}, log)))

		log.Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// recoverer превращает панику обработчика в обычный ответ 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.reject(w, r, fmt.Errorf("handler panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}

// limitBody ограничивает размер всего тела запроса. Заявленный Content-Length
// проверяется сразу, до разбора multipart; тело без длины обрезается по ходу чтения.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := s.Cfg.MaxUploadBytes
		if r.ContentLength > limit {
			s.reject(w, r, fmt.Errorf("content length %s exceeds %s: %w",
				humanize.IBytes(uint64(r.ContentLength)), humanize.IBytes(uint64(limit)), models.ErrPayloadTooLarge))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// reject пишет ответ на ошибку конвейера.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, err error) {
	log := s.loggerFrom(r.Context())
	kind := httperrors.Kind(err)

	switch kind {
	case "internal":
		log.Error("unhandled error", "error", err)
	case "not_found":
		log.Debug("route not found", "method", r.Method, "path", r.URL.Path)
	default:
		log.Warn("request rejected", "reason", kind, "error", err)
	}

	s.Metrics.ObserveRequest(kind)
	httperrors.Write(w, err)
}
