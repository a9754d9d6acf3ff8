// Package metrics provides build metrics for footnotelinker.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never require nil checks:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Monitoring.MetricsAddr != "" {
//	    reg := prometheus.NewRegistry()
//	    recorder = metrics.NewPrometheusRecorder(reg)
//	    http.Handle("/metrics", metrics.HTTPHandler(reg))
//	}
//
// The Prometheus metrics live in the "footnotelinker" namespace.
package metrics
