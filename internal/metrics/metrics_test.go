package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	SignalsTotal.WithLabelValues("BTC-USD", "BUY").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "signals_total" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("signals_total metric not found")
	}
}
