package msgsvc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/msg2json/internal/models"
)

func TestAccumulateReadsEverything(t *testing.T) {
	payload := bytes.Repeat([]byte{0xD0, 0xCF, 0x11, 0xE0}, 50_000)

	got, err := Accumulate(context.Background(), iotest.HalfReader(bytes.NewReader(payload)))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAccumulateEmptyStream(t *testing.T) {
	got, err := Accumulate(context.Background(), bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAccumulateDiscardsOnReadError(t *testing.T) {
	r := io.MultiReader(bytes.NewReader([]byte("partial")), iotest.ErrReader(io.ErrUnexpectedEOF))

	got, err := Accumulate(context.Background(), r)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, got)
	assert.False(t, errors.Is(err, models.ErrPayloadTooLarge))
}

func TestAccumulateMapsBodyLimit(t *testing.T) {
	body := io.NopCloser(bytes.NewReader(make([]byte, 1024)))
	limited := http.MaxBytesReader(nil, body, 100)

	_, err := Accumulate(context.Background(), limited)
	require.ErrorIs(t, err, models.ErrPayloadTooLarge)
}

func TestAccumulateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Accumulate(ctx, bytes.NewReader([]byte("data")))
	require.ErrorIs(t, err, context.Canceled)
}
