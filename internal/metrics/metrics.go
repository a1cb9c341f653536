// Package metrics records compile and apply results in Prometheus
// textfile format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zonegen/internal/engine"
)

// Registry holds the gauges for a single run.
type Registry struct {
	reg *prometheus.Registry

	Commands        prometheus.Gauge
	Duplicates      prometheus.Gauge
	Rulesets        prometheus.Gauge
	RuleInstances   prometheus.Gauge
	LintWarnings    prometheus.Gauge
	CompileDuration prometheus.Gauge
	LastRun         prometheus.Gauge

	// ApplySuccess is only registered once an apply has run, so runs
	// without one do not report a failure.
	ApplySuccess prometheus.Gauge
	applied      bool
}

// New returns a Registry with every compile gauge registered.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.Commands = r.gauge("zonegen_commands", "Number of configuration commands emitted after deduplication.")
	r.Duplicates = r.gauge("zonegen_duplicate_commands", "Number of duplicate commands removed.")
	r.Rulesets = r.gauge("zonegen_rulesets", "Number of named rulesets declared.")
	r.RuleInstances = r.gauge("zonegen_rule_instances", "Number of numbered rule instances emitted.")
	r.LintWarnings = r.gauge("zonegen_lint_warnings", "Number of policy lint warnings.")
	r.CompileDuration = r.gauge("zonegen_compile_duration_seconds", "Time spent compiling the policy.")
	r.LastRun = r.gauge("zonegen_last_run_timestamp_seconds", "Unix time of the last run.")
	r.ApplySuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "zonegen_apply_success",
		Help: "1 if the last apply succeeded, 0 if it failed. Absent when no apply ran.",
	})

	return r
}

func (r *Registry) gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	r.reg.MustRegister(g)
	return g
}

// RecordCompile stores the compile statistics and stamps the run time.
func (r *Registry) RecordCompile(stats engine.Stats, at time.Time) {
	r.Commands.Set(float64(stats.Emitted - stats.Duplicates))
	r.Duplicates.Set(float64(stats.Duplicates))
	r.Rulesets.Set(float64(stats.Rulesets))
	r.RuleInstances.Set(float64(stats.RuleInstances))
	r.LintWarnings.Set(float64(stats.Warnings))
	r.CompileDuration.Set(stats.Duration.Seconds())
	r.LastRun.Set(float64(at.Unix()))
}

// RecordApply stores the result of an apply that actually ran.
func (r *Registry) RecordApply(ok bool) {
	if !r.applied {
		r.reg.MustRegister(r.ApplySuccess)
		r.applied = true
	}
	if ok {
		r.ApplySuccess.Set(1)
		return
	}
	r.ApplySuccess.Set(0)
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile atomically writes all gauges to path.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
