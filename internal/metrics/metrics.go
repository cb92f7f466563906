// Package metrics exposes daemon cycle outcomes in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
)

const namespace = "flameup"

// Registry holds the daemon metrics on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	created       prometheus.Counter
	failures      prometheus.Counter
	evicted       prometheus.Counter
	retained      prometheus.Gauge
	lastSuccess   prometheus.Gauge
	cycleDuration prometheus.Histogram
}

func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.created = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_created_total",
		Help:      "Snapshots successfully created",
	})
	r.failures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_failures_total",
		Help:      "Scheduled creates that failed",
	})
	r.evicted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_evicted_total",
		Help:      "Snapshots removed by retention",
	})
	r.retained = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshots_retained",
		Help:      "Snapshots present under the backup root after the last create",
	})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful create",
	})
	r.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of one scheduler cycle",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	})

	r.reg.MustRegister(
		r.created,
		r.failures,
		r.evicted,
		r.retained,
		r.lastSuccess,
		r.cycleDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCycle records one scheduler cycle. Evictions count even when the
// create itself failed afterwards.
func (r *Registry) ObserveCycle(res backup.Result, err error, elapsed time.Duration) {
	r.cycleDuration.Observe(elapsed.Seconds())
	r.evicted.Add(float64(len(res.Evicted)))

	if err != nil {
		r.failures.Inc()
		return
	}
	r.created.Inc()
	r.retained.Set(float64(res.Retained))
	r.lastSuccess.SetToCurrentTime()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Registry) Serve(ctx context.Context, addr string, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
