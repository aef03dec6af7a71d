// Package metrics собирает Prometheus-метрики конвейера загрузки.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "msg2json"
	subsystem = "upload"
)

// Upload хранит коллекторы конвейера. Все методы допускают nil-получателя,
// чтобы сервис можно было собрать без метрик.
type Upload struct {
	mu         sync.Mutex
	registered bool
	registerer prometheus.Registerer

	requestsTotal   *prometheus.CounterVec
	partsTotal      *prometheus.CounterVec
	payloadBytes    prometheus.Histogram
	conversionTimes *prometheus.HistogramVec
}

// NewUpload создаёт коллекторы. При nil используется prometheus.DefaultRegisterer.
func NewUpload(registerer prometheus.Registerer) *Upload {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Upload{
		registerer: registerer,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Upload requests by outcome",
		}, []string{"outcome"}),
		partsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parts_total",
			Help:      "Multipart sections seen by the classifier, by verdict",
		}, []string{"verdict"}),
		payloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payload_bytes",
			Help:      "Size of accumulated document payloads",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 9),
		}),
		conversionTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "conversion",
			Name:      "duration_seconds",
			Help:      "Time spent in the document converter",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
}

// Register регистрирует коллекторы. Повторный вызов безопасен.
func (m *Upload) Register() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.partsTotal,
		m.payloadBytes,
		m.conversionTimes,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// ObserveRequest учитывает завершённый запрос.
func (m *Upload) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObservePart учитывает решение классификатора по одной части.
func (m *Upload) ObservePart(verdict string) {
	if m == nil {
		return
	}
	m.partsTotal.WithLabelValues(verdict).Inc()
}

// ObservePayload записывает размер вычитанного документа.
func (m *Upload) ObservePayload(size int) {
	if m == nil {
		return
	}
	m.payloadBytes.Observe(float64(size))
}

// ObserveConversion записывает длительность вызова конвертера.
func (m *Upload) ObserveConversion(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.conversionTimes.WithLabelValues(result).Observe(d.Seconds())
}
