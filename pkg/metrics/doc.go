// Package metrics exposes Prometheus metrics for the receiver.
//
// A Collector is created once and handed to the listener and delivery loops
// through their configuration:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//
//	cfg := server.DefaultServerConfig()
//	cfg.Metrics = m
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics
