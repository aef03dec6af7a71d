package resthttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/sir_venger/msg2json/internal/models"
	"github.com/sir_venger/msg2json/internal/usecase/msgsvc"
	"github.com/sir_venger/msg2json/pkg/httperrors"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

// postMsg принимает multipart-форму, вычитывает часть "msg" и отдаёт её конвертеру.
func (s *Server) postMsg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := s.decodeUpload(ctx, r)
	if err != nil {
		s.reject(w, r, err)
		return
	}

	out, err := s.MsgService.Convert(ctx, payload)
	if err != nil {
		s.reject(w, r, err)
		return
	}

	s.Metrics.ObserveRequest(httperrors.Kind(nil))
	w.Header().Set("Content-Type", msgproto.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// decodeUpload проходит части формы по порядку. Первая ошибка классификации
// обрывает разбор, следующие части не читаются. Части не "msg" вычитываются
// вхолостую. Если "msg" встречается несколько раз, документом становится последняя.
// nil без ошибки означает, что документа в запросе не было.
func (s *Server) decodeUpload(ctx context.Context, r *http.Request) (*models.DocumentPayload, error) {
	log := s.loggerFrom(ctx)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, multipartError(r, err)
	}

	var doc *models.DocumentPayload
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, msgsvc.ReadError("decode multipart", err)
		}

		part := models.Part{
			Name:        p.FormName(),
			FileName:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
		}
		log.Info("received file", "field", part.Name, "file", part.FileName, "mime_type", part.ContentType)

		verdict, err := msgsvc.Classify(part)
		if err != nil {
			s.Metrics.ObservePart("rejected")
			_ = p.Close()
			return nil, err
		}
		s.Metrics.ObservePart(verdict.String())

		if !verdict.IsDocument() {
			if _, err := io.Copy(io.Discard, p); err != nil {
				return nil, msgsvc.ReadError("drain part", err)
			}
			continue
		}
		logVerdict(log, verdict)

		data, err := msgsvc.Accumulate(ctx, p)
		if err != nil {
			return nil, err
		}
		s.Metrics.ObservePayload(len(data))
		log.Debug("document accumulated", "file", part.FileName, "size", humanize.IBytes(uint64(len(data))))

		doc = &models.DocumentPayload{
			FileName:    part.FileName,
			ContentType: part.ContentType,
			Data:        data,
		}
	}
}

// multipartError отделяет негодный заголовок Content-Type (400) от его
// отсутствия, которое остаётся внутренней ошибкой.
func multipartError(r *http.Request, err error) error {
	if r.Header.Get("Content-Type") == "" {
		return fmt.Errorf("open multipart body: no content type: %w", err)
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return fmt.Errorf("open multipart body: %w: %w", models.ErrInvalidHeader, err)
	}
	return fmt.Errorf("open multipart body: %w", err)
}

func logVerdict(log *slog.Logger, v msgsvc.Verdict) {
	switch v {
	case msgsvc.VerdictOutlook:
		log.Info("outlook message file found")
	case msgsvc.VerdictOctetStream:
		log.Info("possible outlook message file found")
	}
}
