// Package output renders workload estimation reports.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"strings"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/calculator"
	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatHuman is a human-readable report with a cost table
	FormatHuman Format = "human"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatHuman:
		return FormatHuman, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.TypeUnsupported, "unknown output format '%s', expected one of: human|json|yaml", s)
	}
}

// Report pairs a workload with its estimation for structured output modes.
type Report struct {
	Workload   workload.WorkloadDescription  `json:"workload" yaml:"workload"`
	Estimation calculator.WorkloadEstimation `json:"estimation" yaml:"estimation"`
}

// Renderer produces output in a specific format. Renderers also act as the
// advisory sink for the normalizer, so diagnostics follow the selected
// output discipline.
type Renderer interface {
	workload.Advisor

	// Welcome announces the connection being made
	Welcome(cfg config.Source)

	// Info reports a progress or status message
	Info(msg string)

	// Render writes the final report
	Render(reports []Report) error
}

// NewRenderer returns the renderer for a format, writing to w.
func NewRenderer(format Format, w io.Writer) Renderer {
	if format == FormatHuman {
		return &humanRenderer{w: w}
	}
	return &structuredRenderer{format: format, w: w}
}
