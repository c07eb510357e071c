package bridge

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "picobridge"

// Metrics counts webhook deliveries, forwarding attempts and binding
// updates. Labels are bounded enums; ids never appear in labels.
type Metrics struct {
	WebhookRequests *prometheus.CounterVec
	Forwards        *prometheus.CounterVec
	BindingUpdates  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when it is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "webhook_requests_total",
				Help:      "Inbound webhook deliveries by platform and outcome",
			},
			[]string{"platform", "outcome"},
		),
		Forwards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "forwards_total",
				Help:      "Forwarding attempts by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		BindingUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "binding_updates_total",
				Help:      "Destination binding writes by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.WebhookRequests, m.Forwards, m.BindingUpdates)
	}
	return m
}

const (
	directionLINEToTelegram = "line_to_telegram"
	directionTelegramToLINE = "telegram_to_line"
)
