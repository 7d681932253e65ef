// metrics — Prometheus-счётчики жизненного цикла сессии.
// Все методы безопасны для nil-получателя, поэтому компоненты
// могут работать без метрик.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "brainboost"

// Результаты обновления токена.
const (
	RefreshOK     = "ok"
	RefreshFailed = "failed"
	RefreshNoAuth = "no_refresh_token"
)

type Metrics struct {
	refreshes     *prometheus.CounterVec
	retried       prometheus.Counter
	queueLength   prometheus.Gauge
	forcedLogouts prometheus.Counter
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_retried_total",
			Help:      "Requests re-issued with a refreshed access token.",
		}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_queue_length",
			Help:      "Requests waiting for the in-flight token refresh.",
		}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_logouts_total",
			Help:      "Sessions terminated after an unrecoverable refresh failure.",
		}),
	}

	reg.MustRegister(m.refreshes, m.retried, m.queueLength, m.forcedLogouts)
	return m
}

func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) Retried() {
	if m == nil {
		return
	}
	m.retried.Inc()
}

func (m *Metrics) QueueLength(n int) {
	if m == nil {
		return
	}
	m.queueLength.Set(float64(n))
}

func (m *Metrics) ForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}
