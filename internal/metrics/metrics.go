package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invoice_bot"

// Metrics структура для метрик Prometheus. Нулевой *Metrics ничего не пишет
type Metrics struct {
	UpdatesProcessed     *prometheus.CounterVec
	UpdateProcessingTime prometheus.Histogram
	SessionsStarted      prometheus.Counter
	SessionsCompleted    prometheus.Counter
	SessionsCancelled    prometheus.Counter
	ValidationRejections *prometheus.CounterVec
	InvoiceFailures      prometheus.Counter
	InvoiceRenderTime    prometheus.Histogram
}

// New создает метрики и регистрирует их в reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_processed_total",
			Help:      "Telegram updates processed, by kind.",
		}, []string{"kind"}),

		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_processing_seconds",
			Help:      "Time spent handling a single update.",
			Buckets:   prometheus.DefBuckets,
		}),

		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Booking conversations started.",
		}),

		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Booking conversations that reached the final step.",
		}),

		SessionsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_cancelled_total",
			Help:      "Booking conversations cancelled by the user.",
		}),

		ValidationRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "User inputs rejected by step validation.",
		}, []string{"step"}),

		InvoiceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_failures_total",
			Help:      "Invoices that could not be rendered or delivered.",
		}),

		InvoiceRenderTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_render_seconds",
			Help:      "Time spent rendering an invoice.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// IncUpdate учитывает обработанное обновление по виду
func (m *Metrics) IncUpdate(kind string) {
	if m == nil {
		return
	}
	m.UpdatesProcessed.WithLabelValues(kind).Inc()
}

// ObserveUpdate записывает время обработки обновления
func (m *Metrics) ObserveUpdate(seconds float64) {
	if m == nil {
		return
	}
	m.UpdateProcessingTime.Observe(seconds)
}

// IncSessionStarted учитывает начатое бронирование
func (m *Metrics) IncSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// IncSessionCompleted учитывает завершенное бронирование
func (m *Metrics) IncSessionCompleted() {
	if m == nil {
		return
	}
	m.SessionsCompleted.Inc()
}

// IncSessionCancelled учитывает отмененное бронирование
func (m *Metrics) IncSessionCancelled() {
	if m == nil {
		return
	}
	m.SessionsCancelled.Inc()
}

// IncValidationRejection учитывает отклоненный ввод на шаге step
func (m *Metrics) IncValidationRejection(step string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(step).Inc()
}

// IncInvoiceFailure учитывает ошибку генерации или отправки счета
func (m *Metrics) IncInvoiceFailure() {
	if m == nil {
		return
	}
	m.InvoiceFailures.Inc()
}

// ObserveInvoiceRender записывает время генерации счета
func (m *Metrics) ObserveInvoiceRender(seconds float64) {
	if m == nil {
		return
	}
	m.InvoiceRenderTime.Observe(seconds)
}
