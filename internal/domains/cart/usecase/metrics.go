package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fake-store/go-client/pkg/models"
)

type Gauges struct {
	quantity prometheus.Gauge
	amount   prometheus.Gauge
	lines    prometheus.Gauge
}

func NewGauges(reg prometheus.Registerer, namespace string) *Gauges {
	factory := promauto.With(reg)
	return &Gauges{
		quantity: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "total_quantity",
			Help:      "Sum of quantities over all cart lines.",
		}),
		amount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "total_amount_cents",
			Help:      "Sum of line totals over all cart lines, in cents.",
		}),
		lines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "lines",
			Help:      "Number of distinct cart lines.",
		}),
	}
}

func (g *Gauges) observe(state models.CartState) {
	if g == nil {
		return
	}
	g.quantity.Set(float64(state.TotalQuantity))
	g.amount.Set(float64(state.TotalAmount))
	g.lines.Set(float64(len(state.Items)))
}
