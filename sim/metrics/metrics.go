// Package metrics exposes the outcome of a simulation run as Prometheus
// metrics, labelled per virtual CPU, for scraping or for the node exporter's
// textfile collector.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/inference-sim/cbs-sim/sim"
	"github.com/inference-sim/cbs-sim/sim/trace"
)

const namespace = "cbs_sim"

// Collector holds the metrics of one run on a private registry.
type Collector struct {
	registry *prometheus.Registry

	workTicks      *prometheus.CounterVec
	jobsAdmitted   *prometheus.CounterVec
	jobsCompleted  *prometheus.CounterVec
	replenishments *prometheus.CounterVec
	bandwidth      *prometheus.GaugeVec
	utilization    *prometheus.GaugeVec
	deadline       *prometheus.GaugeVec

	clock     prometheus.Gauge
	idleTicks prometheus.Gauge
}

// NewCollector creates and registers the run metrics.
func NewCollector() *Collector {
	vcpu := []string{"vcpu"}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		workTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "work_ticks_total",
			Help:      "Ticks on which the virtual CPU executed a unit of work.",
		}, vcpu),
		jobsAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_admitted_total",
			Help:      "Jobs admitted to the virtual CPU's queue.",
		}, vcpu),
		jobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Jobs that ran to completion.",
		}, vcpu),
		replenishments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replenishments_total",
			Help:      "Budget replenishments performed by the CBS server.",
		}, vcpu),
		bandwidth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reserved_bandwidth_ratio",
			Help:      "Reserved share Q/P of the virtual CPU.",
		}, vcpu),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "utilization_ratio",
			Help:      "Work ticks divided by the simulated makespan.",
		}, vcpu),
		deadline: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deadline_ticks",
			Help:      "Scheduling deadline of the CBS server at the end of the run.",
		}, vcpu),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_ticks",
			Help:      "Simulation clock when the run ended.",
		}),
		idleTicks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "idle_ticks",
			Help:      "Ticks skipped because no virtual CPU was active.",
		}),
	}
	c.registry.MustRegister(
		c.workTicks, c.jobsAdmitted, c.jobsCompleted, c.replenishments,
		c.bandwidth, c.utilization, c.deadline,
		c.clock, c.idleTicks,
	)
	return c
}

// Observe records the state of every server of a finished run.
func (c *Collector) Observe(s *sim.Simulator, res sim.Result) {
	for _, server := range s.RunQueue.Servers() {
		name := server.Name()
		summary := trace.Summarize(server.Trace, res.Clock)

		c.workTicks.WithLabelValues(name).Add(float64(server.WorkTicks()))
		c.jobsAdmitted.WithLabelValues(name).Add(float64(summary.JobsAdmitted))
		c.jobsCompleted.WithLabelValues(name).Add(float64(summary.JobsCompleted))
		c.replenishments.WithLabelValues(name).Add(float64(server.Replenishments()))
		c.bandwidth.WithLabelValues(name).Set(server.VCPU.Bandwidth())
		c.utilization.WithLabelValues(name).Set(summary.Utilization)
		c.deadline.WithLabelValues(name).Set(float64(server.Deadline()))
	}
	c.clock.Set(float64(res.Clock))
	c.idleTicks.Set(float64(s.IdleTicks))
}

// WriteTextfile writes the metrics in the text exposition format to path,
// atomically replacing any previous file.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Write gathers the metrics and writes them in the text exposition format.
func (c *Collector) Write(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
