package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sir_venger/msg2json/internal/models"
)

func TestWrite(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
		kind string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, "Not Found", "not_found"},
		{"payload too large", fmt.Errorf("read part: %w", models.ErrPayloadTooLarge), http.StatusBadRequest, "Payload too large", "payload_too_large"},
		{"invalid header", fmt.Errorf("part %q: %w", "msg", models.ErrInvalidHeader), http.StatusBadRequest, "{}", "invalid_header"},
		{"unprocessable", fmt.Errorf("%w: %w", models.ErrUnprocessable, errors.New("bad signature")), http.StatusUnprocessableEntity, "Unprocessable Entity", "unprocessable"},
		{"unclassified", errors.New("connection reset by peer"), http.StatusInternalServerError, "Internal Server Error", "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tc.err)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.kind, Kind(tc.err))
		})
	}
}

func TestWriteDoesNotLeakCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("open /secret/path: %w", errors.New("permission denied")))

	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestKindOK(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
}
