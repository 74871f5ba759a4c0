package synth

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label set cAdvisor attaches to container series, in the order consumers
// usually see them.
var baseLabels = []string{
	"container_name", "container", "id", "image",
	"name", "namespace", "pod", "kubernetes_io_hostname",
}

func withLabel(extra string) []string {
	return append(append([]string(nil), baseLabels...), extra)
}

var (
	descCPUSeconds = prometheus.NewDesc(
		"container_cpu_usage_seconds_total",
		"Cumulative cpu time consumed in seconds.",
		baseLabels, nil)
	descMemoryBytes = prometheus.NewDesc(
		"container_memory_usage_bytes",
		"Current memory usage in bytes, including all memory regardless of when it was accessed.",
		baseLabels, nil)
	descFsReadsBytes = prometheus.NewDesc(
		"container_fs_reads_bytes_total",
		"Cumulative count of bytes read.",
		withLabel("device"), nil)
	descFsWritesBytes = prometheus.NewDesc(
		"container_fs_writes_bytes_total",
		"Cumulative count of bytes written.",
		withLabel("device"), nil)
	descFsReads = prometheus.NewDesc(
		"container_fs_reads_total",
		"Cumulative count of reads completed.",
		withLabel("device"), nil)
	descFsWrites = prometheus.NewDesc(
		"container_fs_writes_total",
		"Cumulative count of writes completed.",
		withLabel("device"), nil)
	descNetTxBytes = prometheus.NewDesc(
		"container_network_transmit_bytes_total",
		"Cumulative count of bytes transmitted.",
		withLabel("interface"), nil)
	descNetRxBytes = prometheus.NewDesc(
		"container_network_receive_bytes_total",
		"Cumulative count of bytes received.",
		withLabel("interface"), nil)
	descNetTxErrors = prometheus.NewDesc(
		"container_network_transmit_errors_total",
		"Cumulative count of errors encountered while transmitting.",
		withLabel("interface"), nil)
	descNetRxErrors = prometheus.NewDesc(
		"container_network_receive_errors_total",
		"Cumulative count of errors encountered while receiving.",
		withLabel("interface"), nil)
)

// Describe implements prometheus.Collector.
func (g *Generator) Describe(ch chan<- *prometheus.Desc) {
	ch <- descCPUSeconds
	ch <- descMemoryBytes
	ch <- descFsReadsBytes
	ch <- descFsWritesBytes
	ch <- descFsReads
	ch <- descFsWrites
	ch <- descNetTxBytes
	ch <- descNetRxBytes
	ch <- descNetTxErrors
	ch <- descNetRxErrors
}

// Collect implements prometheus.Collector. Values are read under the lock so
// a scrape never interleaves with a tick.
func (g *Generator) Collect(ch chan<- prometheus.Metric) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, p := range g.pods {
		lv := []string{
			p.container, p.container, p.uid, p.image,
			p.name, p.namespace, p.name, p.node,
		}
		ch <- prometheus.MustNewConstMetric(descCPUSeconds, prometheus.CounterValue, p.cpuSeconds, lv...)
		ch <- prometheus.MustNewConstMetric(descMemoryBytes, prometheus.GaugeValue, p.memoryBytes, lv...)

		disk := append(append([]string(nil), lv...), "pod")
		ch <- prometheus.MustNewConstMetric(descFsReadsBytes, prometheus.CounterValue, p.fsReadsBytes, disk...)
		ch <- prometheus.MustNewConstMetric(descFsWritesBytes, prometheus.CounterValue, p.fsWritesBytes, disk...)
		ch <- prometheus.MustNewConstMetric(descFsReads, prometheus.CounterValue, p.fsReads, disk...)
		ch <- prometheus.MustNewConstMetric(descFsWrites, prometheus.CounterValue, p.fsWrites, disk...)

		net := append(append([]string(nil), lv...), "eth0")
		ch <- prometheus.MustNewConstMetric(descNetTxBytes, prometheus.CounterValue, p.netTxBytes, net...)
		ch <- prometheus.MustNewConstMetric(descNetRxBytes, prometheus.CounterValue, p.netRxBytes, net...)
		ch <- prometheus.MustNewConstMetric(descNetTxErrors, prometheus.CounterValue, p.netTxErrors, net...)
		ch <- prometheus.MustNewConstMetric(descNetRxErrors, prometheus.CounterValue, p.netRxErrors, net...)
	}
}

// Handler serves the generator's series on a dedicated registry, keeping the
// process's own metrics out of the synthetic scrape.
func (g *Generator) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(g)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
