package msgsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sir_venger/msg2json/internal/models"
)

const readChunkSize = 32 << 10

// Accumulate дочитывает поток части до конца и возвращает один непрерывный буфер.
// Собственного лимита нет: размер ограничен потолком на весь запрос.
// При ошибке частично прочитанные данные отбрасываются.
func Accumulate(ctx context.Context, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("accumulate payload: %w", err)
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, ReadError("accumulate payload", err)
		}
	}
}

// ReadError оборачивает ошибку чтения тела запроса. Срабатывание
// http.MaxBytesReader превращается в ErrPayloadTooLarge, всё остальное
// остаётся неклассифицированным.
func ReadError(op string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%s: limit %d bytes: %w", op, maxErr.Limit, models.ErrPayloadTooLarge)
	}

	return fmt.Errorf("%s: %w", op, err)
}
