// Package telemetry holds the Prometheus metrics of a photonrlc process and
// the optional /metrics endpoint that exposes them.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// TrialsTotal counts finished trials by result ("ok", "error", "canceled").
	TrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photonrlc_trials_total",
		Help: "Total trials by result",
	}, []string{"result"})

	// TrialDuration tracks wall time per trial.
	TrialDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "photonrlc_trial_duration_seconds",
		Help:    "Trial wall time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// SamplerAttempts counts rejection sampling candidates by outcome.
	SamplerAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photonrlc_sampler_attempts_total",
		Help: "Photon candidates drawn by outcome",
	}, []string{"outcome"})

	// SegmentsTotal counts integrated perturbation segments.
	SegmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photonrlc_segments_total",
		Help: "Total perturbation segments integrated",
	})

	// EnergyDelta tracks the per-trial energy difference against baseline.
	EnergyDelta = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "photonrlc_energy_delta",
		Help:    "Per-trial energy delta against the unperturbed baseline",
		Buckets: prometheus.ExponentialBuckets(1e-12, 4, 16),
	})
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Info("metrics endpoint listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
