package corehost

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Performance metrics for monitoring hosting operations
var (
	// Operation counters
	bootstrapCount      = atomic.NewUint64(0)
	bootstrapFailures   = atomic.NewUint64(0)
	symbolResolutions   = atomic.NewUint64(0)
	runtimeInits        = atomic.NewUint64(0)
	contextCloses       = atomic.NewUint64(0)
	delegateResolutions = atomic.NewUint64(0)
	invocations         = atomic.NewUint64(0)

	// Timing metrics (nanoseconds)
	totalBootstrapTime = atomic.NewUint64(0)
	totalInvokeTime    = atomic.NewUint64(0)

	// Error counters
	invocationFailures = atomic.NewUint64(0)
	invalidArguments   = atomic.NewUint64(0)
	channelFailures    = atomic.NewUint64(0)
	resourceErrors     = atomic.NewUint64(0)
)

// Metrics provides access to performance metrics
type Metrics struct {
	Bootstraps          uint64 `json:"bootstraps"`
	BootstrapFailures   uint64 `json:"bootstrap_failures"`
	SymbolResolutions   uint64 `json:"symbol_resolutions"`
	RuntimeInits        uint64 `json:"runtime_inits"`
	ContextCloses       uint64 `json:"context_closes"`
	DelegateResolutions uint64 `json:"delegate_resolutions"`
	Invocations         uint64 `json:"invocations"`
	AvgBootstrapTimeNs  uint64 `json:"avg_bootstrap_time_ns"`
	AvgInvokeTimeNs     uint64 `json:"avg_invoke_time_ns"`
	InvocationFailures  uint64 `json:"invocation_failures"`
	InvalidArguments    uint64 `json:"invalid_arguments"`
	ChannelFailures     uint64 `json:"channel_failures"`
	ResourceErrors      uint64 `json:"resource_errors"`
}

// GetMetrics returns current performance metrics
func GetMetrics() Metrics {
	boots := bootstrapCount.Load()
	calls := invocations.Load()

	var avgBoot, avgInvoke uint64
	if boots > 0 {
		avgBoot = totalBootstrapTime.Load() / boots
	}
	if calls > 0 {
		avgInvoke = totalInvokeTime.Load() / calls
	}

	return Metrics{
		Bootstraps:          boots,
		BootstrapFailures:   bootstrapFailures.Load(),
		SymbolResolutions:   symbolResolutions.Load(),
		RuntimeInits:        runtimeInits.Load(),
		ContextCloses:       contextCloses.Load(),
		DelegateResolutions: delegateResolutions.Load(),
		Invocations:         calls,
		AvgBootstrapTimeNs:  avgBoot,
		AvgInvokeTimeNs:     avgInvoke,
		InvocationFailures:  invocationFailures.Load(),
		InvalidArguments:    invalidArguments.Load(),
		ChannelFailures:     channelFailures.Load(),
		ResourceErrors:      resourceErrors.Load(),
	}
}

// ResetMetrics clears all performance metrics
func ResetMetrics() {
	for _, c := range []*atomic.Uint64{
		bootstrapCount, bootstrapFailures, symbolResolutions, runtimeInits,
		contextCloses, delegateResolutions, invocations, totalBootstrapTime,
		totalInvokeTime, invocationFailures, invalidArguments, channelFailures,
		resourceErrors,
	} {
		c.Store(0)
	}
}

// Internal metric recording functions
func recordBootstrap(duration time.Duration) {
	bootstrapCount.Inc()
	totalBootstrapTime.Add(uint64(duration.Nanoseconds()))
}

func recordBootstrapFailure() {
	bootstrapFailures.Inc()
}

func recordSymbolResolution() {
	symbolResolutions.Inc()
}

func recordRuntimeInit() {
	runtimeInits.Inc()
}

func recordContextClose() {
	contextCloses.Inc()
}

func recordDelegateResolution() {
	delegateResolutions.Inc()
}

func recordInvocation(duration time.Duration) {
	invocations.Inc()
	totalInvokeTime.Add(uint64(duration.Nanoseconds()))
}

func recordInvocationFailure() {
	invocationFailures.Inc()
}

func recordInvalidArgument() {
	invalidArguments.Inc()
}

func recordChannelFailure() {
	channelFailures.Inc()
}

func recordResourceError() {
	resourceErrors.Inc()
}

// Collector exports the metrics snapshot to Prometheus.
type Collector struct {
	descs map[string]*prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector whose metric names carry namespace.
func NewCollector(namespace string) *Collector {
	d := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &Collector{descs: map[string]*prometheus.Desc{
		"bootstraps":            d("bootstraps_total", "Successful hostfxr bootstraps."),
		"bootstrap_failures":    d("bootstrap_failures_total", "Failed hostfxr bootstraps."),
		"symbol_resolutions":    d("symbol_resolutions_total", "hostfxr exports resolved."),
		"runtime_inits":         d("runtime_inits_total", "Runtime contexts initialized."),
		"context_closes":        d("context_closes_total", "Runtime contexts closed."),
		"delegate_resolutions":  d("delegate_resolutions_total", "Assembly entry points resolved."),
		"invocations":           d("invocations_total", "Managed entry points invoked."),
		"invocation_failures":   d("invocation_failures_total", "Invocation requests that failed before the managed call."),
		"invalid_arguments":     d("invalid_arguments_total", "Requests rejected by argument validation."),
		"channel_failures":      d("channel_failures_total", "Log channel dial or write failures."),
		"resource_errors":       d("resource_errors_total", "Native library load failures."),
		"avg_bootstrap_seconds": d("bootstrap_duration_seconds_avg", "Average bootstrap duration."),
		"avg_invoke_seconds":    d("invoke_duration_seconds_avg", "Average managed call duration."),
	}}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := GetMetrics()
	counter := func(key string, v uint64) {
		ch <- prometheus.MustNewConstMetric(c.descs[key], prometheus.CounterValue, float64(v))
	}
	gauge := func(key string, ns uint64) {
		ch <- prometheus.MustNewConstMetric(c.descs[key], prometheus.GaugeValue, time.Duration(ns).Seconds())
	}
	counter("bootstraps", m.Bootstraps)
	counter("bootstrap_failures", m.BootstrapFailures)
	counter("symbol_resolutions", m.SymbolResolutions)
	counter("runtime_inits", m.RuntimeInits)
	counter("context_closes", m.ContextCloses)
	counter("delegate_resolutions", m.DelegateResolutions)
	counter("invocations", m.Invocations)
	counter("invocation_failures", m.InvocationFailures)
	counter("invalid_arguments", m.InvalidArguments)
	counter("channel_failures", m.ChannelFailures)
	counter("resource_errors", m.ResourceErrors)
	gauge("avg_bootstrap_seconds", m.AvgBootstrapTimeNs)
	gauge("avg_invoke_seconds", m.AvgInvokeTimeNs)
}
