// Package msgproto описывает HTTP-протокол сервиса конвертации .msg в JSON.
package msgproto

// Параметры REST-протокола, общие для сервера и клиента.
const (
	ConvertPath   = "/api/msg_to_json"
	DocumentField = "msg"

	ContentTypeOutlook     = "application/vnd.ms-outlook"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeJSON        = "application/json"

	HeaderRequestID = "X-Request-ID"

	// DefaultMaxUploadBytes — потолок размера всего запроса (20 MiB).
	DefaultMaxUploadBytes int64 = 20_971_520
)
