package app

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roman-kulish/radiometer/internal/pipeline"
)

const metricsNamespace = "radiometer"

// runMetrics holds the gauges describing a single pipeline run. Every run gets
// its own registry so the textfile only contains this run.
type runMetrics struct {
	registry *prometheus.Registry

	lines           prometheus.Gauge
	comments        prometheus.Gauge
	bins            prometheus.Gauge
	edgePoints      prometheus.Gauge
	modelDegree     prometheus.Gauge
	modelRMS        prometheus.Gauge
	meanTemperature *prometheus.GaugeVec // Mean temperature per frequency bin
	correctedTemp   *prometheus.GaugeVec // Corrected temperature per frequency bin
}

func newRunMetrics() *runMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &runMetrics{
		registry: reg,
		lines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "data_lines",
			Help:      "Number of data lines aggregated",
		}),
		comments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "comment_lines",
			Help:      "Number of comment lines skipped",
		}),
		bins: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "frequency_bins",
			Help:      "Number of frequency bins in the mean spectrum",
		}),
		edgePoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "edge_points",
			Help:      "Number of edge samples used for the noise model",
		}),
		modelDegree: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "noise_model_degree",
			Help:      "Polynomial degree of the noise model, -1 when no model was fitted",
		}),
		modelRMS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "noise_model_rms_kelvin",
			Help:      "RMS residual of the noise model over the edge samples",
		}),
		meanTemperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mean_temperature_kelvin",
			Help:      "Mean temperature per frequency bin",
		}, []string{"frequency_mhz"}),
		correctedTemp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "corrected_temperature_kelvin",
			Help:      "Noise corrected temperature per frequency bin",
		}, []string{"frequency_mhz"}),
	}
}

func (m *runMetrics) observe(res *pipeline.Result) {
	m.lines.Set(float64(res.Lines))
	m.comments.Set(float64(res.Comments))
	m.bins.Set(float64(len(res.Mean)))
	m.edgePoints.Set(float64(len(res.Edge)))

	for _, p := range res.Mean {
		m.meanTemperature.WithLabelValues(frequencyLabel(p.Frequency)).Set(p.Temperature)
	}

	if !res.Corrected() {
		m.modelDegree.Set(-1)
		return
	}

	m.modelDegree.Set(float64(res.Model.Degree()))
	m.modelRMS.Set(res.Model.RMS())
	for _, p := range res.CorrectedFull {
		m.correctedTemp.WithLabelValues(frequencyLabel(p.Frequency)).Set(p.Temperature)
	}
}

// writeTextfile writes the metrics in the node exporter textfile format.
func (m *runMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func frequencyLabel(mhz float64) string {
	return strconv.FormatFloat(mhz, 'f', -1, 64)
}
