package dashboard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry registers the dashboard gauges populated from data.
func NewRegistry(data *Data) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	factory.NewGauge(prometheus.GaugeOpts{
		Name: "styleguide_code_ratio_overall",
		Help: "Overall code-to-text ratio across non-exempt language guides",
	}).Set(data.Ratio.Overall)
	factory.NewGauge(prometheus.GaugeOpts{
		Name: "styleguide_code_ratio_target",
		Help: "Target code-to-text ratio",
	}).Set(data.Ratio.Target)
	factory.NewGauge(prometheus.GaugeOpts{
		Name: "styleguide_guides_eligible",
		Help: "Language guides subject to the ratio target",
	}).Set(float64(data.Eligible()))
	factory.NewGauge(prometheus.GaugeOpts{
		Name: "styleguide_guides_passing",
		Help: "Language guides meeting the ratio target",
	}).Set(float64(data.Passing()))
	factory.NewGauge(prometheus.GaugeOpts{
		Name: "styleguide_docs_pages",
		Help: "Markdown pages in the docs tree",
	}).Set(float64(data.Project.TotalPages))

	perGuide := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "styleguide_guide_code_ratio",
		Help: "Code-to-text ratio per language guide",
	}, []string{"guide"})
	for _, g := range data.Ratio.Guides {
		perGuide.WithLabelValues(g.Name).Set(g.Ratio)
	}

	if data.Lint != nil {
		issues := factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "styleguide_lint_issues",
			Help: "Lint issues from the last run by severity",
		}, []string{"severity"})
		issues.WithLabelValues("error").Set(float64(data.Lint.Errors))
		issues.WithLabelValues("warning").Set(float64(data.Lint.Warnings))
	}
	return reg
}

// WriteMetrics writes data as a Prometheus textfile collector file.
func WriteMetrics(filename string, data *Data) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("dashboard: create %s: %w", filepath.Dir(filename), err)
	}
	if err := prometheus.WriteToTextfile(filename, NewRegistry(data)); err != nil {
		return fmt.Errorf("dashboard: write metrics %s: %w", filename, err)
	}
	return nil
}
