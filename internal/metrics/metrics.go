package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "cycles_total", Help: "Completed evaluation sweeps"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals generated per product"},
		[]string{"product", "action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"product", "side", "mode"},
	)
	SkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skips_total", Help: "Products skipped during a sweep"},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SignalsTotal, OrdersTotal, SkipsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
