// Package msgclient — HTTP-клиент сервиса конвертации .msg в JSON.
package msgclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/sir_venger/msg2json/pkg/msgproto"
)

type ConvertRequest struct {
	FileName string
	// ContentType части "msg"; пустое значение — application/vnd.ms-outlook.
	ContentType string
	Reader      io.Reader
	// Size нужен только для индикатора прогресса; 0 — размер неизвестен.
	Size int64
}

type Client interface {
	// Convert Отправить документ и получить JSON
	Convert(ctx context.Context, req ConvertRequest) ([]byte, error)
}

// StatusError — сервис ответил не 200. Body содержит тело ответа как есть.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("msg2json: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

type Option func(*httpClient)

// WithHTTPClient подменяет http.Client (таймауты, транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.c = c }
}

// WithProgress включает ASCII-индикатор выполнения в out.
func WithProgress(out io.Writer) Option {
	return func(h *httpClient) { h.progress = out }
}

type httpClient struct {
	c        *http.Client
	baseURL  string
	progress io.Writer
}

// New создаёт HTTP-клиент для сервиса по адресу baseURL.
func New(baseURL string, opts ...Option) Client {
	h := &httpClient{
		c:       &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Convert стримит документ multipart-формой через io.Pipe, не собирая тело в памяти.
func (h *httpClient) Convert(ctx context.Context, req ConvertRequest) ([]byte, error) {
	if req.Reader == nil {
		return nil, errors.New("msgclient: nil document reader")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = msgproto.ContentTypeOutlook
	}

	var bar *progressBar
	body := req.Reader
	if h.progress != nil {
		bar = newProgressBar(h.progress, fmt.Sprintf("Uploading %s", displayName(req.FileName)), req.Size)
		body = io.TeeReader(req.Reader, progressWriter{bar: bar})
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, req.FileName, contentType, body))
	}()
	// Сервер может ответить, не дочитав тело: закрываем pipe и ждём горутину формы.
	defer func() {
		_ = pr.Close()
		<-done
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+msgproto.ConvertPath, pr)
	if err != nil {
		bar.Fail(err)
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	bar.render(true, "")

	resp, err := h.c.Do(httpReq)
	if err != nil {
		bar.Fail(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err = &StatusError{Code: resp.StatusCode, Body: string(b)}
		bar.Fail(err)
		return nil, err
	}
	bar.Finish()

	var respBody io.ReadCloser = resp.Body
	if h.progress != nil {
		rbar := newProgressBar(h.progress, "Receiving JSON", resp.ContentLength)
		rbar.render(true, "")
		respBody = newProgressReadCloser(resp.Body, rbar)
	}

	return io.ReadAll(respBody)
}

func writeForm(mw *multipart.Writer, fileName, contentType string, body io.Reader) error {
	h := textproto.MIMEHeader{}
	disp := fmt.Sprintf(`form-data; name=%q`, msgproto.DocumentField)
	if fileName != "" {
		disp += fmt.Sprintf(`; filename=%q`, fileName)
	}
	h.Set("Content-Disposition", disp)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}

	return mw.Close()
}

func displayName(fileName string) string {
	if fileName == "" {
		return "document"
	}
	return fileName
}
