// Package metrics defines the service's Prometheus metrics and the HTTP
// endpoint that exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Login results.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultDisabled           = "disabled"
	ResultError              = "error"
	ResultRejected           = "rejected"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal       *prometheus.CounterVec
	TokenChecksTotal  *prometheus.CounterVec
	TokensIssuedTotal *prometheus.CounterVec
	PasswordHash      *prometheus.HistogramVec
}

// New creates the collectors on a private registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg)
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		TokenChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_token_checks_total",
				Help: "Bearer token checks by expected kind, last stage reached and result",
			},
			[]string{"kind", "stage", "result"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_tokens_issued_total",
				Help: "Tokens issued by kind",
			},
			[]string{"kind"},
		),
		PasswordHash: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_password_hash_seconds",
				Help:    "Time spent hashing and verifying passwords",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.LoginsTotal, m.TokenChecksTotal, m.TokensIssuedTotal, m.PasswordHash)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) TokenCheck(kind, stage, result string) {
	if m == nil {
		return
	}
	m.TokenChecksTotal.WithLabelValues(kind, stage, result).Inc()
}

func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(kind).Inc()
}

// ObserveHash matches auth.HashObserver.
func (m *Metrics) ObserveHash(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.PasswordHash.WithLabelValues(op).Observe(d.Seconds())
}
