package models

import "errors"

// Сигналы отказа конвейера загрузки. Всё, что не оборачивает ни один из них,
// считается неклассифицированной ошибкой и отдаётся клиенту как 500.
var (
	ErrNotFound        = errors.New("route not found")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidHeader   = errors.New("invalid content type header")
	ErrUnprocessable   = errors.New("document could not be converted")
)
