package envsense

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exported by the service. A nil *Metrics records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	cycles      prometheus.Counter
	temperature *prometheus.GaugeVec
	pressure    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envsense_aggregations_total",
				Help: "Aggregation runs by result.",
			},
			[]string{"result"},
		),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "envsense_cycles_total",
			Help: "Completed sampling cycles.",
		}),
		temperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "envsense_temperature_celsius",
				Help: "Last averaged temperature.",
			},
			[]string{"sensor"},
		),
		pressure: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "envsense_pressure_hpa",
				Help: "Last averaged pressure.",
			},
			[]string{"sensor"},
		),
	}
	reg.MustRegister(m.runs, m.cycles, m.temperature, m.pressure)
	return m
}

func (m *Metrics) observe(cycles int, r Report) {
	if m == nil {
		return
	}
	m.runs.With(prometheus.Labels{"result": "ok"}).Inc()
	m.cycles.Add(float64(cycles))
	for name, v := range r.Measurements {
		m.temperature.With(prometheus.Labels{"sensor": name}).Set(v.Temperature)
		m.pressure.With(prometheus.Labels{"sensor": name}).Set(v.Pressure)
	}
}

func (m *Metrics) failed(cycles int) {
	if m == nil {
		return
	}
	m.runs.With(prometheus.Labels{"result": "error"}).Inc()
	m.cycles.Add(float64(cycles))
}
