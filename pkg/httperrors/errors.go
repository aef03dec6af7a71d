package httperrors

import (
	"errors"
	"io"
	"net/http"

	"github.com/sir_venger/msg2json/internal/models"
)

// Фиксированные тела ответов. Детали ошибки клиенту не отдаются.
const (
	BodyNotFound        = "Not Found"
	BodyPayloadTooLarge = "Payload too large"
	BodyInvalidHeader   = "{}"
	BodyUnprocessable   = "Unprocessable Entity"
	BodyInternal        = "Internal Server Error"
)

// Status переводит ошибку конвейера в HTTP-статус и тело ответа.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, BodyNotFound
	case errors.Is(err, models.ErrPayloadTooLarge):
		return http.StatusBadRequest, BodyPayloadTooLarge
	case errors.Is(err, models.ErrInvalidHeader):
		return http.StatusBadRequest, BodyInvalidHeader
	case errors.Is(err, models.ErrUnprocessable):
		return http.StatusUnprocessableEntity, BodyUnprocessable
	default:
		return http.StatusInternalServerError, BodyInternal
	}
}

// Kind возвращает короткую метку ошибки для логов и метрик.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, models.ErrInvalidHeader):
		return "invalid_header"
	case errors.Is(err, models.ErrUnprocessable):
		return "unprocessable"
	default:
		return "internal"
	}
}

// Write отвечает клиенту по ошибке. Сама по себе упасть не может.
func Write(w http.ResponseWriter, err error) {
	code, body := Status(err)

	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}
