package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// KioskMetrics records the counters worth watching on a deployed kiosk.
type KioskMetrics struct {
	ordersPaid  prometheus.Counter
	cartQuotes  prometheus.Counter
	menuImports *prometheus.CounterVec
}

// NewKioskMetrics registers the kiosk counters on the provided registerer.
func NewKioskMetrics(reg prometheus.Registerer) *KioskMetrics {
	if reg == nil {
		return &KioskMetrics{}
	}
	ordersPaid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Orders completed at the kiosk.",
	})
	cartQuotes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_quotes_total",
		Help: "Price quotes computed for product customizations.",
	})
	menuImports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_imports_total",
		Help: "Menu import attempts by source and outcome.",
	}, []string{"source", "outcome"})
	reg.MustRegister(ordersPaid, cartQuotes, menuImports)
	return &KioskMetrics{
		ordersPaid:  ordersPaid,
		cartQuotes:  cartQuotes,
		menuImports: menuImports,
	}
}

// IncOrderPaid increments the completed-orders counter.
func (m *KioskMetrics) IncOrderPaid() {
	if m == nil || m.ordersPaid == nil {
		return
	}
	m.ordersPaid.Inc()
}

// IncCartQuote increments the quote counter.
func (m *KioskMetrics) IncCartQuote() {
	if m == nil || m.cartQuotes == nil {
		return
	}
	m.cartQuotes.Inc()
}

// IncMenuImport records an import attempt for the named source.
func (m *KioskMetrics) IncMenuImport(source string, success bool) {
	if m == nil || m.menuImports == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.menuImports.WithLabelValues(source, outcome).Inc()
}
