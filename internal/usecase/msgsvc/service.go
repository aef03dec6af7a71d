package msgsvc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sir_venger/msg2json/internal/metrics"
	"github.com/sir_venger/msg2json/internal/models"
)

const tracerName = "github.com/sir_venger/msg2json/internal/usecase/msgsvc"

type (
	// Converter — внешний конвертер документа: байты на входе, JSON-текст на выходе.
	Converter interface {
		Convert(ctx context.Context, data []byte) (string, error)
	}

	// Service — шлюз конвертации, через который обработчик получает JSON.
	Service interface {
		Convert(ctx context.Context, payload *models.DocumentPayload) (string, error)
	}
)

type Deps struct {
	Converter Converter
	Metrics   *metrics.Upload
}

type Gateway struct {
	Deps
}

// New конструирует шлюз конвертации с заданными зависимостями.
func New(deps Deps) *Gateway {
	return &Gateway{Deps: deps}
}

var _ Service = (*Gateway)(nil)

// Convert отдаёт документ конвертеру. Если документа не было, конвертер не
// вызывается и возвращается пустой объект "{}". Ошибка разбора документа
// оборачивается в ErrUnprocessable.
func (g *Gateway) Convert(ctx context.Context, payload *models.DocumentPayload) (string, error) {
	if payload == nil {
		return models.EmptyDocumentJSON, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "outlook.Convert",
		trace.WithAttributes(
			attribute.Int("msg2json.payload_bytes", payload.Size()),
			attribute.String("msg2json.content_type", payload.ContentType),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := g.Converter.Convert(ctx, payload.Data)
	g.Metrics.ObserveConversion(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversion failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("convert document: %w", ctxErr)
		}
		return "", fmt.Errorf("convert document: %w: %w", models.ErrUnprocessable, err)
	}

	return out, nil
}
