package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes a Registry to Prometheus.
// Keys ending in "_total" are reported as counters, everything else as gauges.
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector wraps reg so it can be registered with a prometheus.Registerer.
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{
		registry:  reg,
		namespace: namespace,
	}
}

// Describe sends no descriptors: the metric set grows as keys are first touched,
// so the collector is registered unchecked.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect emits one constant metric per registry key.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.registry.Snapshot()

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		valueType := prometheus.GaugeValue
		if strings.HasSuffix(k, "_total") {
			valueType = prometheus.CounterValue
		}

		desc := prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "", k),
			"canoncache metric "+k,
			nil, nil,
		)
		ch <- prometheus.MustNewConstMetric(desc, valueType, float64(snap[k]))
	}
}

// PrometheusHandler returns an http.Handler serving reg in the Prometheus text format,
// together with the default Go and process collectors.
func PrometheusHandler(reg *Registry, namespace string) http.Handler {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(prometheus.NewGoCollector())
	promReg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	promReg.MustRegister(NewCollector(reg, namespace))

	return promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
}
