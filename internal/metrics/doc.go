// Package metrics records pipeline and server metrics.
//
// Components receive a Recorder through their constructors. NoopRecorder is
// the default so callers never need nil checks; PrometheusRecorder is used
// when metrics are enabled in the configuration and is exposed through
// HTTPHandler.
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	svc := site.NewService(cfg, registry, site.WithRecorder(rec))
package metrics
