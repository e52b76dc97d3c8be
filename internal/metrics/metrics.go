package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Collector struct {
	reg *prometheus.Registry

	Restrictions prometheus.Gauge
	Dropped      prometheus.Gauge

	Built         prometheus.Counter
	ParseFailures *prometheus.CounterVec // reason label, see build.Reason
	Reloads       *prometheus.CounterVec // result label: ok|error

	Checks        *prometheus.CounterVec // result label: allowed|forbidden
	CheckDuration prometheus.Histogram
	Evaluations   *prometheus.CounterVec // active label: true|false

	Requests      *prometheus.CounterVec // status label: allowed|forbidden|bad_request
	NATSConnected prometheus.Gauge

	RefreshInterval   prometheus.Gauge // seconds
	ZoneOffsetMinutes prometheus.Gauge
}

func NewCollector(refreshInterval time.Duration, zoneOffsetMinutes int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Restrictions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restrictiond_restrictions",
			Help: "Number of turn restrictions in the current index.",
		}),
		Dropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restrictiond_restrictions_dropped",
			Help: "Number of records dropped during the last reload.",
		}),
		Built: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restrictiond_restrictions_built_total",
			Help: "Total turn restrictions built from records.",
		}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restrictiond_parse_failures_total",
			Help: "Total records rejected while building restrictions.",
		}, []string{"reason"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restrictiond_reloads_total",
			Help: "Total restriction reloads.",
		}, []string{"result"}),
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restrictiond_checks_total",
			Help: "Total turn checks.",
		}, []string{"result"}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "restrictiond_check_duration_seconds",
			Help:    "Duration of a single turn check.",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restrictiond_window_evaluations_total",
			Help: "Total time window evaluations, when tracing is enabled.",
		}, []string{"active"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restrictiond_nats_requests_total",
			Help: "Total NATS turn check requests.",
		}, []string{"status"}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restrictiond_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		RefreshInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restrictiond_refresh_interval_seconds",
			Help: "Restriction reload interval in seconds.",
		}),
		ZoneOffsetMinutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "restrictiond_zone_offset_minutes",
			Help: "Default zone offset applied to time domains.",
		}),
	}

	reg.MustRegister(
		c.Restrictions, c.Dropped,
		c.Built, c.ParseFailures, c.Reloads,
		c.Checks, c.CheckDuration, c.Evaluations,
		c.Requests, c.NATSConnected,
		c.RefreshInterval, c.ZoneOffsetMinutes,
	)

	c.RefreshInterval.Set(refreshInterval.Seconds())
	c.ZoneOffsetMinutes.Set(float64(zoneOffsetMinutes))

	return c
}

func (c *Collector) ParseFailureInc(reason string) { c.ParseFailures.WithLabelValues(reason).Inc() }
func (c *Collector) RestrictionBuiltInc()          { c.Built.Inc() }
func (c *Collector) ReloadInc(result string)       { c.Reloads.WithLabelValues(result).Inc() }

func (c *Collector) RestrictionsSet(loaded, dropped int) {
	c.Restrictions.Set(float64(loaded))
	c.Dropped.Set(float64(dropped))
}

func (c *Collector) CheckObserve(allowed bool, d time.Duration) {
	if allowed {
		c.Checks.WithLabelValues("allowed").Inc()
	} else {
		c.Checks.WithLabelValues("forbidden").Inc()
	}
	c.CheckDuration.Observe(d.Seconds())
}

// ObserveEvaluation matches timedomain.Hook.
func (c *Collector) ObserveEvaluation(_ time.Time, active bool) {
	if active {
		c.Evaluations.WithLabelValues("true").Inc()
	} else {
		c.Evaluations.WithLabelValues("false").Inc()
	}
}

func (c *Collector) RequestInc(status string) { c.Requests.WithLabelValues(status).Inc() }

func (c *Collector) SetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))
	return srv
}
