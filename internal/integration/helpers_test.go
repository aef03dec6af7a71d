package integration

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sir_venger/msg2json/internal/app/adminhttp"
	"github.com/sir_venger/msg2json/internal/app/resthttp"
	"github.com/sir_venger/msg2json/internal/config"
)

type stack struct {
	rest  *httptest.Server
	admin *httptest.Server
}

// newStack поднимает API и служебный сервер с настоящим конвертером outlook.
func newStack(t *testing.T, cfg *config.Config) *stack {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}

	reg := prometheus.NewRegistry()
	handler, _, err := resthttp.NewServer(cfg, resthttp.Deps{
		Logger:   slog.New(slog.DiscardHandler),
		Registry: reg,
	})
	if err != nil {
		t.Fatalf("new rest server: %v", err)
	}

	st := &stack{
		rest:  httptest.NewServer(handler),
		admin: httptest.NewServer(adminhttp.New(adminhttp.Options{Version: "it", Gatherer: reg})),
	}
	t.Cleanup(st.rest.Close)
	t.Cleanup(st.admin.Close)

	return st
}

type part struct {
	name        string
	contentType string
	data        []byte
}

// postForm отправляет multipart-форму и возвращает статус и тело ответа.
func postForm(url string, parts ...part) (int, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="upload.msg"`, p.name))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			return 0, nil, err
		}
		if _, err := w.Write(p.data); err != nil {
			return 0, nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, nil, err
	}

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func get(url string) (int, []byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}
