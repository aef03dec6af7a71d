// Package adminhttp реализует служебный HTTP-интерфейс сервиса конвертации. Слушает
// отдельный loopback-порт, чтобы не смешиваться с маршрутами API. Эндпоинты:
//   - GET /health — признак жизни, версия и аптайм процесса в JSON.
//   - GET /metrics — метрики Prometheus (promhttp).
package adminhttp
