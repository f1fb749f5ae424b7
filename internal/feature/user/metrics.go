package user

import "github.com/prometheus/client_golang/prometheus"

var opsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "users_operations_total", Help: "User resource operations by outcome"},
	[]string{"operation", "outcome"},
)

func init() { prometheus.MustRegister(opsTotal) }

func observe(op string, o Outcome, err error) {
	label := o.Kind.String()
	if err != nil {
		label = "error"
	}
	opsTotal.WithLabelValues(op, label).Inc()
}
