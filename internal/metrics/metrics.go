// Package metrics records dataset fetch and view render activity in
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch results.
const (
	ResultUpdated   = "updated"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

// Recorder is what the fetcher and renderers report to.
type Recorder interface {
	Fetch(region, result string)
	Render(mode string, d time.Duration)
}

// Nop records nothing.
type Nop struct{}

func (Nop) Fetch(string, string)        {}
func (Nop) Render(string, time.Duration) {}

// Prom records into Prometheus collectors.
type Prom struct {
	fetches     *prometheus.CounterVec
	renders     *prometheus.CounterVec
	renderTimes *prometheus.HistogramVec
}

// NewProm registers the collectors on reg (the default registerer when nil).
// Collectors that are already registered are reused.
func NewProm(reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_fetch_total",
		Help: "Dataset fetch attempts by region and result",
	}, []string{"region", "result"})
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_render_total",
		Help: "View renders by mode",
	}, []string{"mode"})
	renderTimes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_render_seconds",
		Help:    "Time spent building view-models",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	var err error
	if fetches, err = register(reg, fetches); err != nil {
		return nil, err
	}
	if renders, err = register(reg, renders); err != nil {
		return nil, err
	}
	if renderTimes, err = register(reg, renderTimes); err != nil {
		return nil, err
	}
	return &Prom{fetches: fetches, renders: renders, renderTimes: renderTimes}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (p *Prom) Fetch(region, result string) {
	p.fetches.WithLabelValues(region, result).Inc()
}

func (p *Prom) Render(mode string, d time.Duration) {
	p.renders.WithLabelValues(mode).Inc()
	p.renderTimes.WithLabelValues(mode).Observe(d.Seconds())
}
