// Package jsoncodec — единая точка JSON-кодирования поверх sonic.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

// defaultConfig совместим с encoding/json: сортирует ключи map и экранирует HTML.
var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}
