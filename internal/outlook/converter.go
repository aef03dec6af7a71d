// Package outlook превращает письма Outlook (.msg, Compound File Binary) в JSON.
package outlook

import (
	"context"
	"fmt"

	"github.com/sir_venger/msg2json/internal/jsoncodec"
)

// Converter разбирает .msg и кодирует результат в JSON. Состояния не хранит,
// один экземпляр можно использовать из любого числа горутин.
type Converter struct{}

// NewConverter создаёт конвертер.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert возвращает JSON-представление письма или ошибку разбора.
func (c *Converter) Convert(ctx context.Context, data []byte) (out string, err error) {
	if err = ctx.Err(); err != nil {
		return "", err
	}

	// Паника парсера считается ошибкой документа.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = "", fmt.Errorf("outlook: parser panic: %v", rec)
		}
	}()

	msg, err := Parse(data)
	if err != nil {
		return "", err
	}

	b, err := jsoncodec.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	return string(b), nil
}
